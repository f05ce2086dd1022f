package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argn, argn))
		args = append(args, "%"+strings.TrimSpace(q.Search)+"%")
		argn++
	}

	if q.AvailableOnly {
		clauses = append(clauses, "holder_id IS NULL")
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	countSQL := "SELECT COUNT(*) FROM books " + where
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}

	listSQL := fmt.Sprintf(
		"SELECT id, title, author, year, holder_id FROM books %s ORDER BY title ASC LIMIT $%d OFFSET $%d",
		where, argn, argn+1,
	)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.Query(timeoutCtx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.Year, &b.HolderID); err != nil {
			return nil, 0, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return books, total, nil
}

func (r *PostgresRepo) GetDetail(ctx context.Context, bookID int64) (Detail, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const bookSQL = `
	SELECT b.id, b.title, b.author, b.year, m.name
	FROM books b
	LEFT JOIN members m ON m.id = b.holder_id
	WHERE b.id = $1
	LIMIT 1
	`
	var d Detail
	err := r.db.QueryRow(timeoutCtx, bookSQL, bookID).Scan(
		&d.ID, &d.Title, &d.Author, &d.Year, &d.CurrentHolder,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}

	const scoreSQL = `
	SELECT AVG(score)::FLOAT, COUNT(score)
	FROM borrow_records
	WHERE book_id = $1 AND score IS NOT NULL
	`
	var average sql.NullFloat64
	var scored int
	if err := r.db.QueryRow(timeoutCtx, scoreSQL, bookID).Scan(&average, &scored); err != nil {
		return Detail{}, fmt.Errorf("aggregate score: %w", err)
	}
	if average.Valid {
		d.Score = math.Round(average.Float64*100) / 100
	} else {
		d.Score = UnratedScore
	}

	const historySQL = `
	SELECT r.borrowed_at, r.returned_at, r.score, m.name, m.id
	FROM borrow_records r
	JOIN members m ON m.id = r.member_id
	WHERE r.book_id = $1
	ORDER BY r.borrowed_at DESC
	`
	rows, err := r.db.Query(timeoutCtx, historySQL, bookID)
	if err != nil {
		return Detail{}, fmt.Errorf("borrow history: %w", err)
	}
	defer rows.Close()

	d.BorrowHistory = []HistoryEntry{}
	for rows.Next() {
		var h HistoryEntry
		if err := rows.Scan(&h.BorrowedAt, &h.ReturnedAt, &h.Score, &h.Borrower, &h.MemberID); err != nil {
			return Detail{}, err
		}
		d.BorrowHistory = append(d.BorrowHistory, h)
	}
	if err := rows.Err(); err != nil {
		return Detail{}, err
	}

	d.Stats = Stats{
		TotalBorrows: len(d.BorrowHistory),
		IsAvailable:  d.CurrentHolder == nil,
	}
	if len(d.BorrowHistory) > 0 {
		last := d.BorrowHistory[0].BorrowedAt
		d.Stats.LastBorrowed = &last
	}

	return d, nil
}
