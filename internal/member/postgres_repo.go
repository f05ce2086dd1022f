package member

import (
	"context"
	"errors"
	"fmt"
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

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Member, int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	argn := 1

	if q.Search != "" {
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", argn))
		args = append(args, "%"+strings.TrimSpace(q.Search)+"%")
		argn++
	}

	where := "WHERE " + strings.Join(clauses, " AND ")

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var total int
	countSQL := "SELECT COUNT(*) FROM members " + where
	if err := r.db.QueryRow(timeoutCtx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	listSQL := fmt.Sprintf(
		"SELECT id, name FROM members %s ORDER BY name ASC LIMIT $%d OFFSET $%d",
		where, argn, argn+1,
	)
	args = append(args, q.Limit, q.Offset)

	rows, err := r.db.Query(timeoutCtx, listSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	members := []Member{}
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Name); err != nil {
			return nil, 0, err
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return members, total, nil
}

func (r *PostgresRepo) GetDetail(ctx context.Context, memberID int64) (Detail, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	const memberSQL = `SELECT id, name FROM members WHERE id = $1 LIMIT 1`
	var d Detail
	if err := r.db.QueryRow(timeoutCtx, memberSQL, memberID).Scan(&d.ID, &d.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Detail{}, ErrNotFound
		}
		return Detail{}, err
	}

	// Books the member has out now, with the open record's borrow time.
	const presentSQL = `
	SELECT b.id, b.title, b.author, r.borrowed_at
	FROM books b
	JOIN borrow_records r ON r.book_id = b.id AND r.member_id = $1 AND r.returned_at IS NULL
	WHERE b.holder_id = $1
	ORDER BY r.borrowed_at DESC
	`
	rows, err := r.db.Query(timeoutCtx, presentSQL, memberID)
	if err != nil {
		return Detail{}, fmt.Errorf("present books: %w", err)
	}
	defer rows.Close()

	d.Books.Present = []HeldBook{}
	for rows.Next() {
		var hb HeldBook
		if err := rows.Scan(&hb.ID, &hb.Title, &hb.Author, &hb.BorrowedAt); err != nil {
			return Detail{}, err
		}
		d.Books.Present = append(d.Books.Present, hb)
	}
	if err := rows.Err(); err != nil {
		return Detail{}, err
	}

	const pastSQL = `
	SELECT b.id, b.title, b.author, r.borrowed_at, r.returned_at, r.score
	FROM borrow_records r
	JOIN books b ON b.id = r.book_id
	WHERE r.member_id = $1 AND r.returned_at IS NOT NULL
	ORDER BY r.borrowed_at DESC
	`
	pastRows, err := r.db.Query(timeoutCtx, pastSQL, memberID)
	if err != nil {
		return Detail{}, fmt.Errorf("past books: %w", err)
	}
	defer pastRows.Close()

	d.Books.Past = []ReturnedBook{}
	for pastRows.Next() {
		var rb ReturnedBook
		if err := pastRows.Scan(&rb.ID, &rb.Title, &rb.Author, &rb.BorrowedAt, &rb.ReturnedAt, &rb.Score); err != nil {
			return Detail{}, err
		}
		d.Books.Past = append(d.Books.Past, rb)
	}
	if err := pastRows.Err(); err != nil {
		return Detail{}, err
	}

	return d, nil
}
