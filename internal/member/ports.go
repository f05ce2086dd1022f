package member

import (
	"context"
)

//go:generate mockgen -source=ports.go -destination=mock_repository.go -package=member

// Repository defines the read-only contract against the ledger store.
type Repository interface {
	List(ctx context.Context, q Query) ([]Member, int, error)
	GetDetail(ctx context.Context, memberID int64) (Detail, error)
}
