package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/syedaman12/Lab-report-interpreter/internal/common"
	"github.com/syedaman12/Lab-report-interpreter/internal/llm"
)

// TimestampLayout is the fixed format for ReportRecord timestamps.
const TimestampLayout = "2006-01-02 15:04:05"

// ReportRecord is one persisted outcome of analyzing a single uploaded
// document, successful or not. Records are never mutated after creation and
// are identified only by their position in the store.
type ReportRecord struct {
	Timestamp string             `json:"timestamp"`
	FileName  string             `json:"file_name"`
	Analysis  llm.AnalysisReport `json:"analysis"`
}

// Store is an append-only, order-indexed collection of report records backed
// by a single JSON file. The file holds the whole sequence and is rewritten
// in full on every save; a mutex serializes the load-append-save cycle so
// concurrent appends cannot lose updates.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *slog.Logger
}

func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the persisted file location.
func (s *Store) Path() string { return s.path }

// Load reads and parses the whole persisted sequence. A missing file is an
// empty store; unreadable or invalid content is ErrCorruptStore, propagated
// rather than silently reset so data loss is never masked.
func (s *Store) Load() ([]ReportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() ([]ReportRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []ReportRecord{}, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", common.ErrCorruptStore, s.path, err)
	}
	var records []ReportRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", common.ErrCorruptStore, s.path, err)
	}
	if records == nil {
		records = []ReportRecord{}
	}
	return records, nil
}

// Save serializes the entire sequence and rewrites the persisted file whole.
// The write goes through a temp file and rename so readers never observe a
// partially written store.
func (s *Store) Save(records []ReportRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

func (s *Store) save(records []ReportRecord) error {
	data, err := json.MarshalIndent(records, "", "    ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}
	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".lab_reports-*.json")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// Append returns a new sequence with rec added at the end. The new record's
// index equals the sequence length before the append (0-based). Indices are
// positional: external truncation or compaction shifts them.
func Append(records []ReportRecord, rec ReportRecord) []ReportRecord {
	out := make([]ReportRecord, len(records), len(records)+1)
	copy(out, records)
	return append(out, rec)
}

// Add runs the whole load-append-save cycle under the store lock and returns
// the index the record landed at.
func (s *Store) Add(rec ReportRecord) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return 0, err
	}
	index := len(records)
	if err := s.save(Append(records, rec)); err != nil {
		return 0, err
	}
	s.logger.Info("store.append.ok", "index", index, "file_name", rec.FileName, "path", s.path)
	return index, nil
}
