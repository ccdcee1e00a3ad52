package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/mail"
)

type fakeMailer struct {
	mu          sync.Mutex
	summaries   int
	motivations int
	err         error
}

func (f *fakeMailer) SendSummary(_ context.Context, _ string) (mail.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries++
	return mail.Summary{Transactions: 3}, f.err
}

func (f *fakeMailer) SendMotivation(_ context.Context, _ string) (mail.Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.motivations++
	return mail.Quote{Text: "x", Author: "y"}, f.err
}

func (f *fakeMailer) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries, f.motivations
}

func TestHandleEventCountsActivity(t *testing.T) {
	w := NewDigestWorker(&fakeMailer{}, time.Hour, time.Hour)

	for i := 0; i < 3; i++ {
		if err := w.HandleEvent(amqp.NewTransactionEventMessage("tx-1", amqp.ActionCreated)); err != nil {
			t.Fatalf("handle event: %v", err)
		}
	}
	if got := w.PendingActivity(); got != 3 {
		t.Fatalf("expected 3 pending events, got %d", got)
	}
}

func TestSendSummaryIfActive(t *testing.T) {
	mailer := &fakeMailer{}
	w := NewDigestWorker(mailer, time.Hour, time.Hour)
	ctx := context.Background()

	// No activity: no send.
	if w.SendSummaryIfActive(ctx) {
		t.Fatal("should not send without activity")
	}
	if s, _ := mailer.counts(); s != 0 {
		t.Fatalf("expected no summary sends, got %d", s)
	}

	// Activity gates exactly one send and resets the counter.
	w.HandleEvent(amqp.NewTransactionEventMessage("tx-1", amqp.ActionCreated))
	w.HandleEvent(amqp.NewTransactionEventMessage("tx-2", amqp.ActionDeleted))

	if !w.SendSummaryIfActive(ctx) {
		t.Fatal("expected a send after activity")
	}
	if got := w.PendingActivity(); got != 0 {
		t.Fatalf("activity should reset after send, got %d", got)
	}
	if w.SendSummaryIfActive(ctx) {
		t.Fatal("second tick without new activity should not send")
	}
	if s, _ := mailer.counts(); s != 1 {
		t.Fatalf("expected exactly one summary send, got %d", s)
	}
}

func TestSendSummaryFailureConsumesWindow(t *testing.T) {
	mailer := &fakeMailer{err: errors.New("relay down")}
	w := NewDigestWorker(mailer, time.Hour, time.Hour)
	ctx := context.Background()

	w.HandleEvent(amqp.NewTransactionEventMessage("tx-1", amqp.ActionCreated))

	if !w.SendSummaryIfActive(ctx) {
		t.Fatal("expected an attempt")
	}
	// No retry: the failed attempt consumed the activity window.
	if w.SendSummaryIfActive(ctx) {
		t.Fatal("failed send must not be retried on the next tick")
	}
}

func TestSendMotivationIsUnconditional(t *testing.T) {
	mailer := &fakeMailer{}
	w := NewDigestWorker(mailer, time.Hour, time.Hour)
	ctx := context.Background()

	w.SendMotivation(ctx)
	w.SendMotivation(ctx)
	if _, m := mailer.counts(); m != 2 {
		t.Fatalf("expected 2 motivation sends, got %d", m)
	}
}

func TestRunLoopsStopOnCancel(t *testing.T) {
	w := NewDigestWorker(&fakeMailer{}, 10*time.Millisecond, 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 2)
	go func() { done <- w.RunSummaryLoop(ctx) }()
	go func() { done <- w.RunMotivationLoop(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			if !errors.Is(err, context.Canceled) {
				t.Fatalf("expected context.Canceled, got %v", err)
			}
		case <-time.After(time.Second):
			t.Fatal("loop did not stop after cancel")
		}
	}
}
