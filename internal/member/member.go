package member

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a member is not found.
var ErrNotFound = errors.New("member not found")

// Member is a registered library member.
type Member struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Detail is the view served by GET /members/{memberID}: the member plus
// the books they currently hold and their returned-loan history.
type Detail struct {
	ID    int64 `json:"id"`
	Name  string `json:"name"`
	Books Books `json:"books"`
}

type Books struct {
	Present []HeldBook     `json:"present"`
	Past    []ReturnedBook `json:"past"`
}

// HeldBook is a book the member has out right now.
type HeldBook struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

// ReturnedBook is one closed loan from the member's history.
type ReturnedBook struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	BorrowedAt time.Time `json:"borrowed_at"`
	ReturnedAt time.Time `json:"returned_at"`
	Score      *int      `json:"score"`
}

// Query defines filters and pagination for listing members.
type Query struct {
	Search string
	Limit  int
	Offset int
}
