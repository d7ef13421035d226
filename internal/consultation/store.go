package consultation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"virtual-doctor/internal/platform/monitoring"
	"virtual-doctor/internal/platform/tracking"
)

// defaultFileMode applies when the store file does not exist yet.
const defaultFileMode fs.FileMode = 0o644

// Sink receives every record after it has been appended to the store.
// Sinks are best effort: their errors never fail an append.
type Sink interface {
	Append(ctx context.Context, identity string, rec Record) error
}

// Store keeps patient histories in a single JSON document that is rewritten
// on every append. It assumes it is the only writer of that file.
type Store struct {
	path    string
	logger  *zap.SugaredLogger
	sinks   []Sink
	now     func() time.Time
	newID   func() string
	mu      sync.Mutex
	records map[string][]Record
}

type StoreOption func(*Store)

// WithSink mirrors appended records to s.
func WithSink(s Sink) StoreOption {
	return func(st *Store) { st.sinks = append(st.sinks, s) }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) StoreOption {
	return func(st *Store) { st.now = now }
}

// OpenStore loads path. A missing, unreadable or corrupt file starts an empty
// store; the problem is logged and the file is replaced on the next append.
func OpenStore(path string, logger *zap.SugaredLogger, opts ...StoreOption) *Store {
	s := &Store{
		path:    path,
		logger:  logger,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		records: make(map[string][]Record),
	}
	for _, opt := range opts {
		opt(s)
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return s
	case err != nil:
		logger.Warnw("failed to read patient records, starting empty", "path", path, "error", err)
		return s
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return s
	}
	var loaded map[string][]Record
	if err := json.Unmarshal(data, &loaded); err != nil {
		logger.Warnw("patient records are corrupt, starting empty", "path", path, "error", err)
		return s
	}
	if loaded != nil {
		s.records = loaded
	}
	return s
}

// Append stamps rec and appends it to the identity's history, then rewrites
// the file. The returned record is what was stored. A write error is
// returned but the record stays in memory for the rest of the process.
func (s *Store) Append(ctx context.Context, identity string, rec Record) (Record, error) {
	rec.Timestamp = s.now().Format(TimestampLayout)
	if rec.ID == "" {
		rec.ID = s.newID()
	}
	if rec.PatientInfo != nil {
		info := *rec.PatientInfo
		rec.PatientInfo = &info
	}

	s.mu.Lock()
	s.records[identity] = append(s.records[identity], rec)
	err := s.flushLocked()
	s.mu.Unlock()

	monitoring.RecordsAppended.WithLabelValues(string(rec.InputMethod), fmt.Sprint(err == nil)).Inc()
	if err != nil {
		tracking.CaptureError(err, map[string]interface{}{"component": "patient_store", "path": s.path})
		return rec, fmt.Errorf("failed to save patient records: %w", err)
	}

	for _, sink := range s.sinks {
		if sinkErr := sink.Append(ctx, identity, rec); sinkErr != nil {
			s.logger.Warnw("record mirror failed", "identity", identity, "record_id", rec.ID, "error", sinkErr)
			tracking.CaptureError(sinkErr, map[string]interface{}{"component": "record_mirror", "record_id": rec.ID})
		}
	}
	return rec, nil
}

// History returns a copy of every record stored for identity, oldest first.
func (s *Store) History(identity string) []Record {
	return s.Recent(identity, 0)
}

// Recent returns a copy of at most the n newest records for identity,
// oldest first. n <= 0 returns the full history.
func (s *Store) Recent(identity string, n int) []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.records[identity]
	if n > 0 && len(history) > n {
		history = history[len(history)-n:]
	}
	out := make([]Record, len(history))
	copy(out, history)
	return out
}

func (s *Store) flushLocked() error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(s.records); err != nil {
		return fmt.Errorf("encode records: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, s.fileMode()); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

// fileMode keeps the permissions of an existing store file across rewrites.
func (s *Store) fileMode() fs.FileMode {
	if info, err := os.Stat(s.path); err == nil {
		return info.Mode().Perm()
	}
	return defaultFileMode
}
