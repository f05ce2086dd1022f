package lending

import (
	"context"
	"time"
)

// Ledger is the transactional boundary around the durable store. WithinTx
// runs fn inside one transaction: a nil return commits, any error rolls
// back with no partial writes.
type Ledger interface {
	WithinTx(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of ledger operations available inside one transaction.
type Tx interface {
	MemberExists(ctx context.Context, memberID int64) (bool, error)

	// BookForUpdate loads the book row and locks it against concurrent
	// borrow/return until the transaction ends.
	BookForUpdate(ctx context.Context, bookID int64) (Book, error)

	SetBookHolder(ctx context.Context, bookID int64, holderID *int64) error

	InsertBorrowRecord(ctx context.Context, memberID, bookID int64, borrowedAt time.Time) error

	// OpenRecordID finds the open borrow record for (member, book), if any.
	OpenRecordID(ctx context.Context, memberID, bookID int64) (int64, bool, error)

	CloseBorrowRecord(ctx context.Context, recordID int64, returnedAt time.Time, score int) error
}

// Invalidator drops a cached book view after a committed mutation.
// Implemented by bookcache.
type Invalidator interface {
	Invalidate(bookID int64)
}

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
