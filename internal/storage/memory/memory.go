// Package memory provides an in-memory TransactionStore used by tests
// and by the memory data backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"fintrack/internal/core"

	"github.com/gofrs/uuid/v5"
)

type Store struct {
	mu  sync.RWMutex
	txs map[string]core.Transaction

	// clock is swappable so tests can control CreatedAt ordering.
	clock func() time.Time
}

func NewStore() *Store {
	return &Store{
		txs:   make(map[string]core.Transaction),
		clock: func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the CreatedAt source. Test use only.
func (s *Store) SetClock(clock func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clock = clock
}

func (s *Store) Insert(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, err := uuid.NewV4()
	if err != nil {
		return core.Transaction{}, err
	}
	tx.ID = id.String()
	tx.CreatedAt = s.clock()
	s.txs[tx.ID] = tx
	return tx, nil
}

func (s *Store) List(_ context.Context) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Transaction, 0, len(s.txs))
	for _, tx := range s.txs {
		out = append(out, tx)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) Get(_ context.Context, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return tx, nil
}

func (s *Store) Replace(_ context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.txs[id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	tx.ID = existing.ID
	tx.CreatedAt = existing.CreatedAt
	tx.Status = existing.Status
	s.txs[id] = tx
	return tx, nil
}

func (s *Store) UpdateStatus(_ context.Context, id string, status core.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, ok := s.txs[id]
	if !ok {
		return core.ErrNotFound
	}
	tx.Status = status
	s.txs[id] = tx
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.txs[id]; !ok {
		return core.ErrNotFound
	}
	delete(s.txs, id)
	return nil
}
