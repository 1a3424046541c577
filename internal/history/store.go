package history

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// Store persists history records, newest first.
type Store interface {
	Create(ctx context.Context, rec Record) error
	List(ctx context.Context, limit int) ([]Record, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// MemoryStore keeps at most limit records in memory.
type MemoryStore struct {
	mu      sync.Mutex
	limit   int
	records []Record
}

func NewMemoryStore(limit int) *MemoryStore {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &MemoryStore{limit: limit}
}

func (s *MemoryStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = prepend(s.records, rec, s.limit)
	return nil
}

func (s *MemoryStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return head(s.records, limit), nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	out, err := without(s.records, id)
	if err != nil {
		return err
	}
	s.records = out
	return nil
}

func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = nil
	return nil
}

// FileStore keeps records in a YAML file that is rewritten on every change.
type FileStore struct {
	mu    sync.Mutex
	path  string
	limit int
}

type fileContents struct {
	Records []Record `yaml:"records"`
}

// NewFileStore creates the parent directory of path if needed. A missing
// file is treated as an empty history.
func NewFileStore(path string, limit int) (*FileStore, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	return &FileStore{path: path, limit: limit}, nil
}

func (s *FileStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	return s.save(prepend(records, rec, s.limit))
}

func (s *FileStore) List(_ context.Context, limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	return head(records, limit), nil
}

func (s *FileStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	out, err := without(records, id)
	if err != nil {
		return err
	}
	return s.save(out)
}

func (s *FileStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.save(nil)
}

func (s *FileStore) load() ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	var contents fileContents
	if err := yaml.Unmarshal(data, &contents); err != nil {
		return nil, fmt.Errorf("yaml unmarshal %s: %w", s.path, err)
	}
	return contents.Records, nil
}

func (s *FileStore) save(records []Record) error {
	data, err := yaml.Marshal(fileContents{Records: records})
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename %s: %w", tmp, err)
	}
	return nil
}

func prepend(records []Record, rec Record, limit int) []Record {
	out := make([]Record, 0, min(len(records)+1, limit))
	out = append(out, rec)
	for _, r := range records {
		if len(out) == limit {
			break
		}
		out = append(out, r)
	}
	return out
}

func head(records []Record, limit int) []Record {
	if limit <= 0 || limit > len(records) {
		limit = len(records)
	}
	out := make([]Record, limit)
	copy(out, records[:limit])
	return out
}

func without(records []Record, id string) ([]Record, error) {
	for i, r := range records {
		if r.ID == id {
			out := make([]Record, 0, len(records)-1)
			out = append(out, records[:i]...)
			return append(out, records[i+1:]...), nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
