package lending

import (
	"context"
	"errors"
)

// Service executes borrow and return transitions. It holds no entity
// state between calls; every operation re-reads inside its transaction.
type Service struct {
	ledger Ledger
	cache  Invalidator
	clock  Clock
}

func NewService(ledger Ledger, cache Invalidator) *Service {
	return &Service{ledger: ledger, cache: cache, clock: realClock{}}
}

// WithClock replaces the time source. Tests use this to pin timestamps.
func (s *Service) WithClock(clock Clock) *Service {
	s.clock = clock
	return s
}

// Borrow lends bookID to memberID. Preconditions are checked inside the
// transaction, in order: member exists, book exists, book has no holder.
// The cache entry for the book is invalidated only after the commit.
func (s *Service) Borrow(ctx context.Context, memberID, bookID int64) error {
	err := s.ledger.WithinTx(ctx, func(tx Tx) error {
		exists, err := tx.MemberExists(ctx, memberID)
		if err != nil {
			return err
		}
		if !exists {
			return ErrMemberNotFound
		}

		book, err := tx.BookForUpdate(ctx, bookID)
		if err != nil {
			return err
		}
		if book.HolderID != nil {
			return ErrAlreadyBorrowed
		}

		if err := tx.SetBookHolder(ctx, bookID, &memberID); err != nil {
			return err
		}
		return tx.InsertBorrowRecord(ctx, memberID, bookID, s.clock.Now())
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(bookID)
	return nil
}

// Return closes the open loan of bookID by memberID and records the
// score. A missing book and a book held by someone else both fail with
// ErrNotBorrowedByMember; the cases are deliberately not distinguished.
func (s *Service) Return(ctx context.Context, memberID, bookID int64, score int) error {
	if score < 0 || score > 10 {
		return ErrInvalidScore
	}

	err := s.ledger.WithinTx(ctx, func(tx Tx) error {
		book, err := tx.BookForUpdate(ctx, bookID)
		if err != nil {
			if errors.Is(err, ErrBookNotFound) {
				return ErrNotBorrowedByMember
			}
			return err
		}
		if book.HolderID == nil || *book.HolderID != memberID {
			return ErrNotBorrowedByMember
		}

		recordID, ok, err := tx.OpenRecordID(ctx, memberID, bookID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrNoOpenRecord
		}

		if err := tx.SetBookHolder(ctx, bookID, nil); err != nil {
			return err
		}
		return tx.CloseBorrowRecord(ctx, recordID, s.clock.Now(), score)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(bookID)
	return nil
}
