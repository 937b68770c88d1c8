// Package memory implements db.Store in process. It backs local development
// without Redis and the end-to-end tests of the SDK; index definitions are
// honoured so queries behave like FT.SEARCH over hashes.
package memory

import (
	"context"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kailas-cloud/jarvis/internal/db"
)

var _ db.Store = (*Store)(nil)

type kvEntry struct {
	value     []byte
	expiresAt time.Time
}

// Store is a mutex-guarded map store.
type Store struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	kv      map[string]kvEntry
	indexes map[string]*db.IndexDefinition
	now     func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		hashes:  make(map[string]map[string]string),
		kv:      make(map[string]kvEntry),
		indexes: make(map[string]*db.IndexDefinition),
		now:     time.Now,
	}
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close is a no-op.
func (s *Store) Close() {}

// WaitForReady returns immediately.
func (s *Store) WaitForReady(context.Context, time.Duration) error { return nil }

// --- hashes ---

// HSetMulti merges several hashes atomically.
func (s *Store) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range items {
		s.hsetLocked(it.Key, it.Fields)
	}
	return nil
}

func (s *Store) hsetLocked(key string, fields map[string]string) {
	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		s.hashes[key] = h
	}
	for k, v := range fields {
		h[k] = v
	}
}

// HGetAll returns a copy of the hash; a missing key yields an empty map.
func (s *Store) HGetAll(_ context.Context, key string) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyFields(s.hashes[key], nil), nil
}

// HGetAllMulti returns copies of several hashes in key order.
func (s *Store) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		out[i] = copyFields(s.hashes[k], nil)
	}
	return out, nil
}

// Del removes hash or KV keys.
func (s *Store) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.hashes, k)
		delete(s.kv, k)
	}
	return nil
}

// Scan returns sorted keys matching a glob pattern.
func (s *Store) Scan(_ context.Context, pattern string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var keys []string
	for k := range s.hashes {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	for k := range s.kv {
		if _, live := s.liveLocked(k); !live {
			continue
		}
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// --- kv ---

func (s *Store) liveLocked(key string) (kvEntry, bool) {
	e, ok := s.kv[key]
	if !ok {
		return kvEntry{}, false
	}
	if !e.expiresAt.IsZero() && !s.now().Before(e.expiresAt) {
		return kvEntry{}, false
	}
	return e, true
}

// Get returns the value at key or db.ErrKeyNotFound.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), nil
}

// IncrBy adds val to an integer counter, creating it at zero.
func (s *Store) IncrBy(_ context.Context, key string, val int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	var cur int64
	if ok {
		n, err := strconv.ParseInt(string(e.value), 10, 64)
		if err != nil {
			return &db.Error{Op: db.OpIncrBy, Err: err}
		}
		cur = n
	} else {
		e = kvEntry{}
	}
	e.value = []byte(strconv.FormatInt(cur+val, 10))
	s.kv[key] = e
	return nil
}

// Expire sets a TTL; with nx only when none is set.
func (s *Store) Expire(_ context.Context, key string, ttl time.Duration, nx bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.liveLocked(key)
	if !ok {
		return nil
	}
	if nx && !e.expiresAt.IsZero() {
		return nil
	}
	e.expiresAt = s.now().Add(ttl)
	s.kv[key] = e
	return nil
}

// --- indexes ---

// CreateIndex registers def.
func (s *Store) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	if err := def.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[def.Name]; ok {
		return db.ErrIndexExists
	}
	cp := *def
	s.indexes[def.Name] = &cp
	return nil
}

// DropIndex forgets an index; documents are kept.
func (s *Store) DropIndex(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indexes[name]; !ok {
		return db.ErrIndexNotFound
	}
	delete(s.indexes, name)
	return nil
}

// IndexExists reports whether name is registered.
func (s *Store) IndexExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.indexes[name]
	return ok, nil
}

// --- search ---

// Search evaluates the filter over every hash under the index prefixes.
func (s *Store) Search(_ context.Context, q *db.FilterQuery) (*db.SearchResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.matchLocked(q)
	if err != nil {
		return nil, err
	}
	total := len(entries)

	if q.Offset >= len(entries) {
		entries = nil
	} else {
		entries = entries[q.Offset:min(len(entries), q.Offset+q.Limit)]
	}
	for i := range entries {
		entries[i].Fields = copyFields(entries[i].Fields, q.ReturnFields)
	}
	return &db.SearchResult{Total: total, Entries: entries}, nil
}

// Count returns the number of matching hashes.
func (s *Store) Count(_ context.Context, q *db.FilterQuery) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries, err := s.matchLocked(q)
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *Store) matchLocked(q *db.FilterQuery) ([]db.SearchEntry, error) {
	idx, ok := s.indexes[q.IndexName]
	if !ok {
		return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
	}

	var entries []db.SearchEntry
	for key, fields := range s.hashes {
		if !hasAnyPrefix(key, idx.Prefixes) {
			continue
		}
		if !q.Filters.Matches(fields) {
			continue
		}
		entries = append(entries, db.SearchEntry{Key: key, Fields: fields})
	}

	sortEntries(entries, q.SortBy, q.Descending)
	return entries, nil
}

// sortEntries orders by a numeric field when set, falling back to key order
// so results are deterministic.
func sortEntries(entries []db.SearchEntry, field string, desc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		if field != "" {
			a, _ := strconv.ParseFloat(entries[i].Fields[field], 64)
			b, _ := strconv.ParseFloat(entries[j].Fields[field], 64)
			if a != b {
				if desc {
					return a > b
				}
				return a < b
			}
		}
		return entries[i].Key < entries[j].Key
	})
}

func hasAnyPrefix(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}

func copyFields(src map[string]string, only []string) map[string]string {
	if len(only) == 0 {
		out := make(map[string]string, len(src))
		for k, v := range src {
			out[k] = v
		}
		return out
	}
	out := make(map[string]string, len(only))
	for _, k := range only {
		if v, ok := src[k]; ok {
			out[k] = v
		}
	}
	return out
}
