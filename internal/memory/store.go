package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store is the durable record of conversation entries and preferences.
// It is the sole writer of its backing file: the full state is loaded at
// startup and flushed on every mutation. Mutations are serialized by a
// write lock; reads run concurrently and copy out consistent snapshots.
type Store struct {
	path string

	mu      sync.RWMutex
	entries []Entry
	prefs   map[string]Preference
	nextID  int64

	now func() time.Time
}

// storeFile is the persisted document layout. Entries are kept as raw
// messages on load so a single unreadable record can be discarded without
// losing the rest of the store.
type storeFile struct {
	Entries     []json.RawMessage     `json:"entries"`
	Preferences map[string]Preference `json:"preferences"`
}

type storeFileOut struct {
	Entries     []Entry               `json:"entries"`
	Preferences map[string]Preference `json:"preferences"`
}

// Open loads the store at path, creating parent directories as needed.
// A missing or corrupt file yields an empty (or partially recovered) store;
// only genuine I/O failures are returned.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, &StorageError{Op: "create dir", Err: err}
	}

	s := &Store{
		path:   path,
		prefs:  make(map[string]Preference),
		nextID: 1,
		now:    time.Now,
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &StorageError{Op: "read", Err: err}
	}

	var doc storeFile
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt document: start empty rather than failing startup.
		return nil
	}

	for _, raw := range doc.Entries {
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue // discard the unreadable record, keep the rest
		}
		if e.ID <= 0 || e.Content == "" {
			continue
		}
		s.entries = append(s.entries, e)
		if e.ID >= s.nextID {
			s.nextID = e.ID + 1
		}
	}
	if doc.Preferences != nil {
		s.prefs = doc.Preferences
	}
	return nil
}

// AddEntry appends a new entry with a fresh id and the current timestamp,
// then persists. Empty content is rejected with ErrEmptyContent. On a
// persist failure the in-memory state is rolled back to the last durable
// state and a StorageError is returned.
func (s *Store) AddEntry(role, content string, tags ...string) (int64, error) {
	if content == "" {
		return 0, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := Entry{
		ID:        s.nextID,
		Timestamp: s.now().UTC(),
		Role:      normalizeRole(role),
		Content:   content,
		Tags:      cleanTags(tags),
	}
	s.entries = append(s.entries, e)
	s.nextID++

	if err := s.persistLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		s.nextID--
		return 0, err
	}
	return e.ID, nil
}

// SetPreference upserts a preference and persists. An existing key is
// overwritten silently.
func (s *Store) SetPreference(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.prefs[key]
	s.prefs[key] = Preference{Value: value, UpdatedAt: s.now().UTC()}

	if err := s.persistLocked(); err != nil {
		if existed {
			s.prefs[key] = prev
		} else {
			delete(s.prefs, key)
		}
		return err
	}
	return nil
}

// GetPreference looks up a preference by exact key. Returns ErrNotFound on
// a miss.
func (s *Store) GetPreference(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.prefs[key]
	if !ok {
		return "", ErrNotFound
	}
	return p.Value, nil
}

// Preferences returns a snapshot copy of all preference values.
func (s *Store) Preferences() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.prefs))
	for k, p := range s.prefs {
		out[k] = p.Value
	}
	return out
}

// Recent returns up to limit entries, most recent first.
func (s *Store) Recent(limit int) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.recentLocked(limit)
}

func (s *Store) recentLocked(limit int) []Entry {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	n := len(s.entries)
	if limit > n {
		limit = n
	}
	out := make([]Entry, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		out = append(out, s.entries[i])
	}
	return out
}

// EntriesByRole returns up to limit entries with the given role, most
// recent first.
func (s *Store) EntriesByRole(role string, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if s.entries[i].Role == role {
			out = append(out, s.entries[i])
		}
	}
	return out
}

// Prune removes entries older than maxAge and persists the result. The
// removed count is returned. A persist failure rolls back and returns a
// StorageError.
func (s *Store) Prune(maxAge time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-maxAge)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.Timestamp.After(cutoff) {
			kept = append(kept, e)
		}
	}
	removed := len(s.entries) - len(kept)
	if removed == 0 {
		return 0, nil
	}

	prev := s.entries
	s.entries = kept
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return 0, err
	}
	return removed, nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// persistLocked writes the full document atomically: marshal, write to a
// temp file in the same directory, rename over the target. Callers hold the
// write lock.
func (s *Store) persistLocked() error {
	doc := storeFileOut{
		Entries:     s.entries,
		Preferences: s.prefs,
	}
	if doc.Entries == nil {
		doc.Entries = []Entry{}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return &StorageError{Op: "marshal", Err: err}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return &StorageError{Op: "write", Err: err}
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return &StorageError{Op: "rename", Err: err}
	}
	return nil
}

func cleanTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
