package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func sample() core.Transaction {
	return core.Transaction{
		OwnerID:       "anonymous",
		Title:         "Groceries",
		Amount:        core.Money{Cents: 4500},
		Type:          core.Expense,
		Category:      "Food",
		Description:   "weekly shop",
		Date:          core.NewDate(2025, 3, 10),
		Division:      core.DivisionPersonal,
		PaymentMethod: "Cash",
		Emotion:       core.EmotionNeutral,
		Status:        core.StatusPending,
	}
}

func TestInsertAssignsIdentity(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	saved, err := s.Insert(ctx, sample())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if saved.ID == "" {
		t.Fatal("expected assigned id")
	}
	if saved.CreatedAt.IsZero() {
		t.Fatal("expected assigned created_at")
	}

	other, err := s.Insert(ctx, sample())
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if other.ID == saved.ID {
		t.Fatal("ids must be unique")
	}
}

func TestListNewestFirst(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time {
		now = now.Add(time.Minute)
		return now
	})

	first, _ := s.Insert(ctx, sample())
	second, _ := s.Insert(ctx, sample())
	third, _ := s.Insert(ctx, sample())

	got, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].ID != third.ID || got[1].ID != second.ID || got[2].ID != first.ID {
		t.Fatal("expected newest first ordering")
	}
}

func TestGetMissing(t *testing.T) {
	s := NewStore()
	if _, err := s.Get(context.Background(), "nope"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReplacePreservesIdentityAndStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	saved, _ := s.Insert(ctx, sample())
	if err := s.UpdateStatus(ctx, saved.ID, core.StatusSuccess); err != nil {
		t.Fatalf("update status: %v", err)
	}

	update := sample()
	update.Title = "Groceries and more"
	update.ID = "attacker-chosen"
	update.Status = core.StatusPending

	got, err := s.Replace(ctx, saved.ID, update)
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if got.ID != saved.ID {
		t.Fatalf("id changed: %q", got.ID)
	}
	if !got.CreatedAt.Equal(saved.CreatedAt) {
		t.Fatal("created_at changed")
	}
	if got.Status != core.StatusSuccess {
		t.Fatalf("status must be preserved, got %q", got.Status)
	}
	if got.Title != "Groceries and more" {
		t.Fatalf("title not updated: %q", got.Title)
	}

	if _, err := s.Replace(ctx, "missing", update); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	saved, _ := s.Insert(ctx, sample())
	if err := s.Delete(ctx, saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatal("expected record gone")
	}
	if err := s.Delete(ctx, saved.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUpdateStatusMissing(t *testing.T) {
	s := NewStore()
	if err := s.UpdateStatus(context.Background(), "nope", core.StatusSuccess); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
