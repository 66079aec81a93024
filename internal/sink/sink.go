// Package sink appends flushed domains to the output file.
package sink

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/law-makers/blocklist/internal/metrics"
	"github.com/rs/zerolog/log"
)

// ErrPersistence is matched by every PersistenceError
var ErrPersistence = errors.New("persistence failure")

// PersistenceError means a batch could not be appended. It is fatal to the run.
type PersistenceError struct {
	Path  string
	Count int
	Err   error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%v: appending %d domains to %s: %v", ErrPersistence, e.Count, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

// Sink persists a pending batch and empties it
type Sink interface {
	Flush(batch *PendingBatch) error
}

// FileSink appends one domain per line to a plain text file
type FileSink struct {
	path    string
	metrics *metrics.Metrics
}

func NewFileSink(path string, m *metrics.Metrics) *FileSink {
	return &FileSink{path: path, metrics: m}
}

func (s *FileSink) Path() string {
	return s.path
}

// Flush writes the whole batch with a single append and clears it on success.
// On failure the batch is left untouched.
func (s *FileSink) Flush(batch *PendingBatch) error {
	if batch == nil || batch.Len() == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, d := range batch.items {
		buf.WriteString(d)
		buf.WriteByte('\n')
	}

	count := batch.Len()
	if err := s.appendBytes(buf.Bytes()); err != nil {
		s.metrics.Flushed(count, err)
		return &PersistenceError{Path: s.path, Count: count, Err: err}
	}

	batch.Reset()
	s.metrics.Flushed(count, nil)
	log.Info().
		Int("count", count).
		Str("path", s.path).
		Msg("Saved new domains")
	return nil
}

func (s *FileSink) appendBytes(data []byte) error {
	file, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
