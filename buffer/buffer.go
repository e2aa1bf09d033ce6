// Package buffer persists the capped list of recent records as a single JSON
// file that other processes poll.
package buffer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feedsim/models"
)

// ErrMalformed is returned by Load alongside an empty buffer when the file
// exists but does not decode as a list of records.
var ErrMalformed = errors.New("malformed buffer file")

// Store reads and writes the buffer file
type Store struct {
	path        string
	atomicWrite bool
}

type Option func(*Store)

// WithAtomicWrite makes Save write a temp file and rename it over the target,
// so readers never observe a partially written buffer.
func WithAtomicWrite(enabled bool) Option {
	return func(s *Store) {
		s.atomicWrite = enabled
	}
}

func NewStore(path string, opts ...Option) *Store {
	s := &Store{path: path}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load returns the persisted records. A missing file yields an empty buffer
// and no error; an unreadable document yields an empty buffer and ErrMalformed.
// Any other read failure is returned as is.
func (s *Store) Load(ctx context.Context) ([]models.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Record{}, nil
		}
		return nil, fmt.Errorf("error reading buffer: %w", err)
	}

	var records []models.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return []models.Record{}, fmt.Errorf("%w: %s: %v", ErrMalformed, s.path, err)
	}

	if records == nil {
		records = []models.Record{}
	}

	return records, nil
}

// Save overwrites the file with the full buffer
func (s *Store) Save(ctx context.Context, records []models.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if records == nil {
		records = []models.Record{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding buffer: %w", err)
	}

	if !s.atomicWrite {
		if err := os.WriteFile(s.path, data, 0644); err != nil {
			return fmt.Errorf("error writing buffer: %w", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("error creating temp buffer: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temp buffer: %w", err)
	}
	if err := tmp.Chmod(0644); err != nil {
		tmp.Close()
		return fmt.Errorf("error writing temp buffer: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("error writing temp buffer: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("error replacing buffer: %w", err)
	}

	return nil
}

// Append returns the last capacity records of buf followed by record. The
// input slice is not modified.
func Append(buf []models.Record, record models.Record, capacity int) []models.Record {
	if capacity < 1 {
		capacity = 1
	}

	merged := make([]models.Record, 0, len(buf)+1)
	merged = append(merged, buf...)
	merged = append(merged, record)

	if len(merged) > capacity {
		merged = merged[len(merged)-capacity:]
	}

	return merged
}
