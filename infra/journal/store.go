// Package journal keeps an append-only record of generated proposals so an
// operator can trace which file was produced from which row of which run.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/schedulegen/config"
)

// Record describes one generated proposal.
type Record struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Input     string    `json:"input"`
	Row       int       `json:"row"`
	File      string    `json:"file"`
	Sender    string    `json:"sender"`
	Receiver  string    `json:"receiver"`
	Mode      string    `json:"mode"`
	// Total is the transferred amount in micro-units.
	Total    string `json:"total"`
	Releases int    `json:"releases"`
	Skipped  int    `json:"skipped"`
}

// Query defines filters for retrieving records. Zero values match everything.
type Query struct {
	RunID  string
	Sender string
	Start  time.Time
	End    time.Time
}

func (q Query) match(r Record) bool {
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Sender != "" && r.Sender != q.Sender {
		return false
	}
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

// Open returns the store selected by cfg.
func Open(cfg config.JournalConfig) (Store, error) {
	switch cfg.Backend {
	case "", "none":
		return NopStore{}, nil
	case "jsonl":
		return NewJSONLStore(cfg.Path)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown journal backend %s", cfg.Backend)
	}
}
