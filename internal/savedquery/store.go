// Package savedquery keeps named ad-hoc statements in a JSON file.
package savedquery

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
)

// DefaultPath is the store file used when none is configured.
const DefaultPath = "saved_queries.json"

// SavedQuery is one stored statement.
type SavedQuery struct {
	Name        string `json:"name"`
	Query       string `json:"query"`
	Description string `json:"description"`
}

// Store is a JSON array file of SavedQuery values in insertion order. The
// file is rewritten in full by every change. A Store is safe for
// concurrent use.
type Store struct {
	path string

	mu      sync.RWMutex
	queries []SavedQuery
}

// Open loads the store at path. A missing file is an empty store; the file
// is created by the first Save.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file.
func (s *Store) Path() string { return s.path }

// Reload re-reads the backing file, replacing the in-memory list.
func (s *Store) Reload() error {
	queries, err := read(s.path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.queries = queries
	s.mu.Unlock()
	return nil
}

// List returns a copy of every saved query in insertion order.
func (s *Store) List() []SavedQuery {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]SavedQuery{}, s.queries...)
}

// Get returns the query named name.
func (s *Store) Get(name string) (SavedQuery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.index(name); i >= 0 {
		return s.queries[i], true
	}
	return SavedQuery{}, false
}

// Save stores q, replacing any query with the same name. The replacement
// moves to the end of the list.
func (s *Store) Save(q SavedQuery) error {
	q.Name = strings.TrimSpace(q.Name)
	if q.Name == "" {
		return errs.New(errs.ErrKindValidation, "saved query name is required")
	}
	if strings.TrimSpace(q.Query) == "" {
		return errs.New(errs.ErrKindValidation, "saved query text is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	next := make([]SavedQuery, 0, len(s.queries)+1)
	for _, existing := range s.queries {
		if existing.Name != q.Name {
			next = append(next, existing)
		}
	}
	next = append(next, q)
	if err := write(s.path, next); err != nil {
		return err
	}
	s.queries = next
	return nil
}

// Delete removes the query named name. It reports whether one was removed;
// the file is only rewritten when something changed.
func (s *Store) Delete(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.index(name)
	if i < 0 {
		return false, nil
	}
	next := append(append([]SavedQuery{}, s.queries[:i]...), s.queries[i+1:]...)
	if err := write(s.path, next); err != nil {
		return false, err
	}
	s.queries = next
	return true, nil
}

func (s *Store) index(name string) int {
	for i, q := range s.queries {
		if q.Name == name {
			return i
		}
	}
	return -1
}

func read(path string) ([]SavedQuery, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return []SavedQuery{}, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindExport, "cannot read saved queries", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return []SavedQuery{}, nil
	}
	var queries []SavedQuery
	if err := json.Unmarshal(data, &queries); err != nil {
		return nil, errs.Wrap(errs.ErrKindValidation, "malformed saved queries file "+path, err)
	}
	if queries == nil {
		queries = []SavedQuery{}
	}
	return queries, nil
}

// write replaces the file through a temp file in the same directory so a
// concurrent reader never sees a partial array.
func write(path string, queries []SavedQuery) error {
	data, err := json.MarshalIndent(queries, "", "  ")
	if err != nil {
		return errs.Wrap(errs.ErrKindExport, "cannot encode saved queries", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errs.Wrap(errs.ErrKindExport, "cannot create saved queries directory", err)
	}
	tmp, err := os.CreateTemp(dir, ".saved_queries-*.json")
	if err != nil {
		return errs.Wrap(errs.ErrKindExport, "cannot write saved queries", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return errs.Wrap(errs.ErrKindExport, "cannot write saved queries", err)
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.ErrKindExport, "cannot write saved queries", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errs.Wrap(errs.ErrKindExport, "cannot write saved queries", err)
	}
	return nil
}
