// Package store persists meta box values per record. Every adapter keeps one
// value per (record, key) pair and applies SetMany as a single atomic batch.
package store

import (
	"context"
	"errors"
	"strings"
)

// ErrRecordRequired is returned when a record id is blank.
var ErrRecordRequired = errors.New("store: record id is required")

// Store reads and writes field values for a record.
type Store interface {
	// Get returns the value saved under key and whether it exists.
	Get(ctx context.Context, recordID, key string) (string, bool, error)
	// GetAll returns the saved values for keys. Missing keys are absent from
	// the result.
	GetAll(ctx context.Context, recordID string, keys []string) (map[string]string, error)
	// SetMany creates or overwrites every value in one batch.
	SetMany(ctx context.Context, recordID string, values map[string]string) error
}

func checkRecord(recordID string) error {
	if strings.TrimSpace(recordID) == "" {
		return ErrRecordRequired
	}
	return nil
}
