package storage

import (
	"context"

	"fintrack/internal/core"
)

// TransactionStore is the persistence port for transactions. Lookups on
// unknown ids return core.ErrNotFound.
type TransactionStore interface {
	// Insert persists a new transaction and returns it with its
	// store-assigned ID and CreatedAt filled in.
	Insert(ctx context.Context, tx core.Transaction) (core.Transaction, error)

	// List returns every transaction, newest CreatedAt first.
	List(ctx context.Context) ([]core.Transaction, error)

	// Get returns the transaction with the given id.
	Get(ctx context.Context, id string) (core.Transaction, error)

	// Replace overwrites the mutable fields of an existing transaction.
	// ID, CreatedAt and Status are preserved from the stored record.
	Replace(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error)

	// UpdateStatus transitions the record's status.
	UpdateStatus(ctx context.Context, id string, status core.Status) error

	// Delete removes the record permanently.
	Delete(ctx context.Context, id string) error
}
