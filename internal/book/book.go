package book

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// UnratedScore is reported for books that have never received a score,
// distinguishing "never rated" from "rated zero".
const UnratedScore = -1

// Book is a catalog entry. HolderID references the member currently
// holding it, or nil when the book sits on the shelf.
type Book struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Year     int    `json:"year"`
	HolderID *int64 `json:"holder_id"`
}

// Detail is the rich single-book view served by GET /books/{bookID}.
// It is the unit stored in the read cache.
type Detail struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Author        string         `json:"author"`
	Year          int            `json:"year"`
	CurrentHolder *string        `json:"current_holder"`
	Score         float64        `json:"score"`
	BorrowHistory []HistoryEntry `json:"borrow_history"`
	Stats         Stats          `json:"stats"`
}

// HistoryEntry is one loan in a book's borrow history, newest first.
type HistoryEntry struct {
	BorrowedAt time.Time  `json:"borrowed_at"`
	ReturnedAt *time.Time `json:"returned_at"`
	Score      *int       `json:"score"`
	Borrower   string     `json:"borrower"`
	MemberID   int64      `json:"member_id"`
}

type Stats struct {
	TotalBorrows int        `json:"total_borrows"`
	LastBorrowed *time.Time `json:"last_borrowed"`
	IsAvailable  bool       `json:"is_available"`
}

// Query defines filters and pagination for listing books.
type Query struct {
	Search        string
	AvailableOnly bool
	Limit         int
	Offset        int
}
