// Package lending implements the borrow/return state machine. Every
// operation runs as one transaction against the ledger store; the book
// row is locked for the duration so that at most one member can hold a
// book at any time.
package lending

import "errors"

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrBookNotFound   = errors.New("book not found")

	// ErrAlreadyBorrowed rejects a borrow of a book that already has a
	// holder. A retried borrow must fail, not succeed silently; that is
	// how the single-holder invariant is enforced.
	ErrAlreadyBorrowed = errors.New("book is already borrowed")

	// ErrNotBorrowedByMember covers both a missing book and a book held
	// by someone else on return, matching the externally observed
	// behavior of the API.
	ErrNotBorrowedByMember = errors.New("book is not borrowed by this member")

	// ErrNoOpenRecord means the book row and the borrow history have
	// diverged. The invariant forbids this; the engine still refuses to
	// guess.
	ErrNoOpenRecord = errors.New("no active borrow record found")

	ErrInvalidScore = errors.New("score must be between 0 and 10")

	// ErrConflict is a concurrent mutation detected by the store at
	// commit, as opposed to a precondition that already failed at read
	// time. The caller may retry as a fresh attempt.
	ErrConflict = errors.New("conflicting concurrent update")
)

// Book is the projection of a book row the engine operates on.
type Book struct {
	ID       int64
	HolderID *int64
}
