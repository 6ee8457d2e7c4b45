// Package memory is an in-process source, handy for tests and demos.
package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"sales-dashboard/internal/source"
)

// Source serves a fixed header plus data rows. Replace bumps the version so
// caches keyed on the fingerprint reload.
type Source struct {
	mu      sync.RWMutex
	name    string
	rows    [][]string
	version int
	reads   atomic.Int64
	err     error
}

var _ source.Reader = (*Source)(nil)

// New builds a source from a header row and data rows given in the column
// order of the header. Rows beyond source.MaxRows are dropped.
func New(name string, header []string, data [][]string) *Source {
	s := &Source{name: name}
	s.Replace(header, data)
	return s
}

func (s *Source) Replace(header []string, data [][]string) {
	rows := make([][]string, 0, len(data)+1)
	rows = append(rows, source.Pad(header))
	for i, row := range data {
		if i >= source.MaxRows {
			break
		}
		rows = append(rows, source.Pad(row))
	}

	s.mu.Lock()
	s.rows = rows
	s.version++
	s.mu.Unlock()
}

// Fail makes subsequent reads return err; nil clears it.
func (s *Source) Fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// Reads counts ReadRows calls.
func (s *Source) Reads() int64 {
	return s.reads.Load()
}

func (s *Source) Name() string {
	return s.name
}

func (s *Source) Fingerprint(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return "", s.err
	}
	return fmt.Sprintf("%s#%d", s.name, s.version), nil
}

func (s *Source) ReadRows(ctx context.Context) ([][]string, error) {
	s.reads.Add(1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.err != nil {
		return nil, s.err
	}

	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}
