// Package worker runs the out-of-band mail schedules: an activity-gated
// financial summary and an unconditional motivational quote.
package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/mail"
)

// MailSender is the slice of the mail service the worker needs.
type MailSender interface {
	SendSummary(ctx context.Context, recipient string) (mail.Summary, error)
	SendMotivation(ctx context.Context, recipient string) (mail.Quote, error)
}

// DigestWorker consumes transaction lifecycle events and sends scheduled
// mail. The summary only goes out when at least one transaction changed
// since the previous send; the motivation mail is unconditional. Every
// send is a single attempt, failures are logged and dropped.
type DigestWorker struct {
	mailer             MailSender
	summaryInterval    time.Duration
	motivationInterval time.Duration

	// activity counts lifecycle events since the last summary send.
	activity atomic.Int64
}

func NewDigestWorker(mailer MailSender, summaryInterval, motivationInterval time.Duration) *DigestWorker {
	return &DigestWorker{
		mailer:             mailer,
		summaryInterval:    summaryInterval,
		motivationInterval: motivationInterval,
	}
}

// HandleEvent records one lifecycle event. Plugged into the AMQP
// consumer; it never fails, so events are always acked.
func (w *DigestWorker) HandleEvent(msg *amqp.TransactionEventMessage) error {
	w.activity.Add(1)
	slog.Debug("Recorded transaction activity",
		"id", msg.ID,
		"action", msg.Action,
		"pending", w.activity.Load())
	return nil
}

// PendingActivity returns the number of events since the last summary.
func (w *DigestWorker) PendingActivity() int64 {
	return w.activity.Load()
}

// RunSummaryLoop sends the summary on every tick that saw activity.
// Blocks until the context is cancelled.
func (w *DigestWorker) RunSummaryLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.summaryInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Summary schedule started", "interval", w.summaryInterval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Summary schedule stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.SendSummaryIfActive(ctx)
		}
	}
}

// SendSummaryIfActive sends the summary when activity occurred since the
// last send, and reports whether a send was attempted. The activity
// counter resets even when delivery fails: the attempt consumed the
// window, and there are no retries.
func (w *DigestWorker) SendSummaryIfActive(ctx context.Context) bool {
	pending := w.activity.Swap(0)
	if pending == 0 {
		slog.DebugContext(ctx, "No activity since last summary, skipping send")
		return false
	}

	summary, err := w.mailer.SendSummary(ctx, "")
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled summary mail failed",
			"error", err, "activity", pending)
		return true
	}

	slog.InfoContext(ctx, "Scheduled summary mail sent",
		"activity", pending,
		"transactions", summary.Transactions,
		"health_score", summary.HealthScore)
	return true
}

// RunMotivationLoop sends the motivational quote on every tick.
// Blocks until the context is cancelled.
func (w *DigestWorker) RunMotivationLoop(ctx context.Context) error {
	ticker := time.NewTicker(w.motivationInterval)
	defer ticker.Stop()

	slog.InfoContext(ctx, "Motivation schedule started", "interval", w.motivationInterval)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Motivation schedule stopped", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			w.SendMotivation(ctx)
		}
	}
}

// SendMotivation sends one quote mail. Failures are logged and dropped.
func (w *DigestWorker) SendMotivation(ctx context.Context) {
	quote, err := w.mailer.SendMotivation(ctx, "")
	if err != nil {
		slog.ErrorContext(ctx, "Scheduled motivation mail failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "Scheduled motivation mail sent", "author", quote.Author)
}
