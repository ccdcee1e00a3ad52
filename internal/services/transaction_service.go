package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/mail"
	"fintrack/internal/storage"
)

// CreateOutcome describes how a create request ended.
type CreateOutcome int

const (
	// OutcomeCreated: persisted, and the notice (if requested) was
	// delivered.
	OutcomeCreated CreateOutcome = iota
	// OutcomeNoticeFailed: persisted, but the email notice failed. The
	// record stays pending; nothing is rolled back.
	OutcomeNoticeFailed
)

// CreateResult is the full outcome of a create request.
type CreateResult struct {
	Transaction core.Transaction
	Outcome     CreateOutcome
	MailErr     error
}

// Notifier delivers one email through the relay.
type Notifier interface {
	Send(ctx context.Context, params map[string]string) error
}

// EventPublisher emits transaction lifecycle events.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, id, action string) error
}

// TransactionService orchestrates transaction persistence, email
// notices and lifecycle events. Notifier and publisher may be nil when
// the corresponding integration is not configured.
type TransactionService struct {
	store       storage.TransactionStore
	notifier    Notifier
	publisher   EventPublisher
	sendTimeout time.Duration
}

func NewTransactionService(store storage.TransactionStore, notifier Notifier, publisher EventPublisher, sendTimeout time.Duration) *TransactionService {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &TransactionService{
		store:       store,
		notifier:    notifier,
		publisher:   publisher,
		sendTimeout: sendTimeout,
	}
}

// Create validates and persists a transaction, then optionally sends a
// confirmation email. The email is a single bounded attempt; a failure
// leaves the saved record pending and is reported in the result, never
// rolled back.
func (s *TransactionService) Create(ctx context.Context, tx core.Transaction, notifyEmail string) (CreateResult, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return CreateResult{}, err
	}

	saved, err := s.store.Insert(ctx, tx)
	if err != nil {
		return CreateResult{}, fmt.Errorf("save transaction: %w", err)
	}

	result := CreateResult{Transaction: saved}

	if notifyEmail != "" {
		if mailErr := s.sendNotice(ctx, saved, notifyEmail); mailErr != nil {
			slog.ErrorContext(ctx, "Transaction notice failed",
				"id", saved.ID, "recipient", notifyEmail, "error", mailErr)
			result.Outcome = OutcomeNoticeFailed
			result.MailErr = mailErr
			s.publishEvent(ctx, saved.ID, amqp.ActionCreated)
			return result, nil
		}
	}

	if err := s.store.UpdateStatus(ctx, saved.ID, core.StatusSuccess); err != nil {
		return CreateResult{}, fmt.Errorf("mark transaction success: %w", err)
	}
	result.Transaction.Status = core.StatusSuccess

	s.publishEvent(ctx, saved.ID, amqp.ActionCreated)
	return result, nil
}

func (s *TransactionService) sendNotice(ctx context.Context, tx core.Transaction, recipient string) error {
	if s.notifier == nil {
		return fmt.Errorf("mail relay not configured")
	}

	notice := mail.TransactionNotice{
		Recipient:     recipient,
		OwnerID:       tx.OwnerID,
		TransactionID: tx.ID,
		Amount:        tx.Amount,
		Title:         tx.Title,
		Date:          tx.Date,
	}

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	return s.notifier.Send(ctx, notice.Params())
}

// List returns all transactions, newest first.
func (s *TransactionService) List(ctx context.Context) ([]core.Transaction, error) {
	txs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return txs, nil
}

// Replace overwrites the mutable fields of an existing transaction.
func (s *TransactionService) Replace(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	tx.Normalize()
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	updated, err := s.store.Replace(ctx, id, tx)
	if err != nil {
		return core.Transaction{}, err
	}

	s.publishEvent(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

// Remove deletes a transaction permanently.
func (s *TransactionService) Remove(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.publishEvent(ctx, id, amqp.ActionDeleted)
	return nil
}

// publishEvent emits a lifecycle event. Publish failures never fail the
// request; the record is already persisted.
func (s *TransactionService) publishEvent(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event",
			"id", id, "action", action)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			"id", id, "action", action, "error", err)
	}
}
