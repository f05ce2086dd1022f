package lending

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresLedger implements Ledger on a pgx pool. Read-committed
// isolation plus the FOR UPDATE lock on the book row is enough to
// serialize two concurrent borrows of the same book: the loser re-reads
// the committed holder and fails its precondition.
type PostgresLedger struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresLedger(db *pgxpool.Pool, timeout time.Duration) *PostgresLedger {
	return &PostgresLedger{db: db, timeout: timeout}
}

func (l *PostgresLedger) WithinTx(ctx context.Context, fn func(tx Tx) error) error {
	timeoutCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	tx, err := l.db.Begin(timeoutCtx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(timeoutCtx)

	if err := fn(&pgxTx{tx: tx}); err != nil {
		return mapPgError(err)
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return mapPgError(err)
	}
	return nil
}

// mapPgError folds store-level concurrency failures into ErrConflict:
// serialization failures, deadlocks, and the partial unique index on
// open borrow records.
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "23505":
			return ErrConflict
		}
	}
	return err
}

type pgxTx struct {
	tx pgx.Tx
}

func (t *pgxTx) MemberExists(ctx context.Context, memberID int64) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM members WHERE id = $1)`
	var exists bool
	if err := t.tx.QueryRow(ctx, query, memberID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (t *pgxTx) BookForUpdate(ctx context.Context, bookID int64) (Book, error) {
	const query = `SELECT id, holder_id FROM books WHERE id = $1 FOR UPDATE`
	var b Book
	if err := t.tx.QueryRow(ctx, query, bookID).Scan(&b.ID, &b.HolderID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrBookNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (t *pgxTx) SetBookHolder(ctx context.Context, bookID int64, holderID *int64) error {
	const query = `UPDATE books SET holder_id = $2 WHERE id = $1`
	tag, err := t.tx.Exec(ctx, query, bookID, holderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("set holder: book %d not updated", bookID)
	}
	return nil
}

func (t *pgxTx) InsertBorrowRecord(ctx context.Context, memberID, bookID int64, borrowedAt time.Time) error {
	const query = `
	INSERT INTO borrow_records (book_id, member_id, borrowed_at)
	VALUES ($1, $2, $3)
	`
	_, err := t.tx.Exec(ctx, query, bookID, memberID, borrowedAt)
	return err
}

func (t *pgxTx) OpenRecordID(ctx context.Context, memberID, bookID int64) (int64, bool, error) {
	const query = `
	SELECT id FROM borrow_records
	WHERE member_id = $1 AND book_id = $2 AND returned_at IS NULL
	LIMIT 1
	`
	var id int64
	if err := t.tx.QueryRow(ctx, query, memberID, bookID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return id, true, nil
}

func (t *pgxTx) CloseBorrowRecord(ctx context.Context, recordID int64, returnedAt time.Time, score int) error {
	// Guarded on returned_at so a closed record can never be reopened or
	// rewritten.
	const query = `
	UPDATE borrow_records
	SET returned_at = $2, score = $3
	WHERE id = $1 AND returned_at IS NULL
	`
	tag, err := t.tx.Exec(ctx, query, recordID, returnedAt, score)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrNoOpenRecord
	}
	return nil
}
