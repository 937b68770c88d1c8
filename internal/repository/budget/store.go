// Package budget persists reasoning token counters so budgets survive restarts.
package budget

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/jarvis/internal/db"
	"github.com/kailas-cloud/jarvis/internal/domain/usage"
)

// Counter TTLs outlive their window so a late read still sees the final value.
const (
	dailyTTL   = 48 * time.Hour
	monthlyTTL = 62 * 24 * time.Hour
)

// store is the consumer interface for budget operations (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) error
	Expire(ctx context.Context, key string, ttl time.Duration, nx bool) error
}

// Store keeps one INCRBY counter per provider and window.
type Store struct {
	store    store
	prefix   string
	provider string
}

// New creates a budget store. Keys look like {prefix}budget:{provider}:daily:2006-01-02.
func New(s store, prefix, provider string) *Store {
	return &Store{store: s, prefix: prefix, provider: provider}
}

// Add increments the counter of the window containing at and sets its TTL once.
func (s *Store) Add(ctx context.Context, period usage.Period, at time.Time, tokens int64) error {
	key, ttl := s.key(period, at)
	if err := s.store.IncrBy(ctx, key, tokens); err != nil {
		return fmt.Errorf("budget INCRBY %s: %w", key, err)
	}
	// NX: repeat increments must not push the expiry forward.
	if err := s.store.Expire(ctx, key, ttl, true); err != nil {
		return fmt.Errorf("budget EXPIRE %s: %w", key, err)
	}
	return nil
}

// Used returns the tokens recorded for the window containing at; 0 if none.
func (s *Store) Used(ctx context.Context, period usage.Period, at time.Time) (int64, error) {
	key, _ := s.key(period, at)
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("budget GET %s: %w", key, err)
	}

	val, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("budget GET %s parse: %w", key, err)
	}
	return val, nil
}

func (s *Store) key(period usage.Period, at time.Time) (string, time.Duration) {
	at = at.UTC()
	if period == usage.PeriodMonth {
		return fmt.Sprintf("%sbudget:%s:monthly:%s", s.prefix, s.provider, at.Format("2006-01")), monthlyTTL
	}
	return fmt.Sprintf("%sbudget:%s:daily:%s", s.prefix, s.provider, at.Format("2006-01-02")), dailyTTL
}
