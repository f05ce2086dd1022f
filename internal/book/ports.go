package book

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=book

// Repository defines the read-only contract against the ledger store.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, int, error)
	GetDetail(ctx context.Context, bookID int64) (Detail, error)
}

// DetailCache memoizes computed detail views. Implemented by bookcache.
type DetailCache interface {
	Get(bookID int64) (Detail, bool)
	Put(bookID int64, view Detail)
}
