package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/mail"
	"fintrack/internal/storage"
)

// ErrNoRecipient is returned when neither the request nor the
// configuration names a destination address.
var ErrNoRecipient = errors.New("no mail recipient configured")

// MailService sends the on-demand summary and motivation mails.
type MailService struct {
	store            storage.TransactionStore
	notifier         Notifier
	defaultRecipient string
	sendTimeout      time.Duration
}

func NewMailService(store storage.TransactionStore, notifier Notifier, defaultRecipient string, sendTimeout time.Duration) *MailService {
	if sendTimeout <= 0 {
		sendTimeout = 10 * time.Second
	}
	return &MailService{
		store:            store,
		notifier:         notifier,
		defaultRecipient: defaultRecipient,
		sendTimeout:      sendTimeout,
	}
}

func (s *MailService) resolveRecipient(recipient string) (string, error) {
	if recipient != "" {
		return recipient, nil
	}
	if s.defaultRecipient != "" {
		return s.defaultRecipient, nil
	}
	return "", ErrNoRecipient
}

// SendSummary computes the financial summary over all transactions and
// mails it. An empty recipient falls back to the configured default.
func (s *MailService) SendSummary(ctx context.Context, recipient string) (mail.Summary, error) {
	to, err := s.resolveRecipient(recipient)
	if err != nil {
		return mail.Summary{}, err
	}
	if s.notifier == nil {
		return mail.Summary{}, fmt.Errorf("mail relay not configured")
	}

	txs, err := s.store.List(ctx)
	if err != nil {
		return mail.Summary{}, fmt.Errorf("list transactions: %w", err)
	}

	summary := mail.NewSummary(txs, time.Now())

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, mail.SummaryParams(to, summary)); err != nil {
		return summary, err
	}

	slog.InfoContext(ctx, "Summary mail sent",
		"recipient", to,
		"transactions", summary.Transactions,
		"health_score", summary.HealthScore)

	return summary, nil
}

// SendMotivation mails a random quote from the fixed set.
func (s *MailService) SendMotivation(ctx context.Context, recipient string) (mail.Quote, error) {
	to, err := s.resolveRecipient(recipient)
	if err != nil {
		return mail.Quote{}, err
	}
	if s.notifier == nil {
		return mail.Quote{}, fmt.Errorf("mail relay not configured")
	}

	quote := mail.RandomQuote()
	params, err := mail.MotivationParams(to, quote)
	if err != nil {
		return mail.Quote{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	if err := s.notifier.Send(ctx, params); err != nil {
		return quote, err
	}

	slog.InfoContext(ctx, "Motivation mail sent", "recipient", to, "author", quote.Author)

	return quote, nil
}
