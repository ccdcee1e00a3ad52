package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	"github.com/gofrs/uuid/v5"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return core.Transaction{}, fmt.Errorf("generate transaction id: %w", err)
	}
	tx.ID = id.String()
	tx.CreatedAt = time.Now().UTC()

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO transactions (id, owner_id, title, amount_cents, type, category, description, date, division, payment_method, emotion, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.OwnerID, tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category,
		tx.Description, tx.Date.Format(dateLayout), string(tx.Division), tx.PaymentMethod,
		string(tx.Emotion), string(tx.Status), tx.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"title", tx.Title,
		"amount_cents", tx.Amount.Cents,
		"type", tx.Type)

	return tx, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, selectColumns+` FROM transactions ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	var txs []core.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return txs, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` FROM transactions WHERE id = ?`, id)
	tx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

func (r *SQLiteRepository) Replace(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET owner_id = ?, title = ?, amount_cents = ?, type = ?, category = ?, description = ?, date = ?, division = ?, payment_method = ?, emotion = ?
		WHERE id = ?`,
		tx.OwnerID, tx.Title, tx.Amount.Cents, string(tx.Type), tx.Category,
		tx.Description, tx.Date.Format(dateLayout), string(tx.Division), tx.PaymentMethod,
		string(tx.Emotion), id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return r.Get(ctx, id)
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status core.Status) error {
	res, err := r.db.ExecContext(ctx, `UPDATE transactions SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("update transaction status: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

const selectColumns = `SELECT id, owner_id, title, amount_cents, type, category, description, date, division, payment_method, emotion, status, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		tx        core.Transaction
		date      string
		createdAt string
	)
	err := row.Scan(&tx.ID, &tx.OwnerID, &tx.Title, &tx.Amount.Cents,
		(*string)(&tx.Type), &tx.Category, &tx.Description, &date,
		(*string)(&tx.Division), &tx.PaymentMethod, (*string)(&tx.Emotion),
		(*string)(&tx.Status), &createdAt)
	if err != nil {
		return core.Transaction{}, err
	}

	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", date, err)
	}
	tx.Date = core.Date{Time: d}

	tx.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}

	return tx, nil
}
