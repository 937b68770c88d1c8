package db

import (
	"errors"

	"github.com/kailas-cloud/jarvis/internal/domain/search/filter"
)

// FilterQuery selects documents of one index by structured constraints.
type FilterQuery struct {
	IndexName    string
	Filters      filter.Expression
	SortBy       string // optional SORTABLE field
	Descending   bool
	Offset       int
	Limit        int
	ReturnFields []string
}

// Validate checks the query before it reaches a driver.
func (q *FilterQuery) Validate() error {
	if q.IndexName == "" {
		return errors.New("index name is required")
	}
	if q.Offset < 0 {
		return errors.New("offset must not be negative")
	}
	if q.Limit <= 0 {
		return errors.New("limit must be positive")
	}
	return nil
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit.
type SearchEntry struct {
	Key    string
	Fields map[string]string
}
