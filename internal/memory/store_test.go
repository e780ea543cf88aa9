package memory

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeClock hands out strictly increasing timestamps so ordering assertions
// are deterministic.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time {
	c.t = c.t.Add(time.Second)
	return c.t
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "memories.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	clock := &fakeClock{t: time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)}
	s.now = clock.Now
	return s, path
}

func TestOpenMissingFile(t *testing.T) {
	s, _ := newTestStore(t)
	if s.Len() != 0 {
		t.Fatalf("expected empty store, got %d entries", s.Len())
	}
	if prefs := s.Preferences(); len(prefs) != 0 {
		t.Fatalf("expected no preferences, got %d", len(prefs))
	}
}

func TestAddEntryAssignsMonotonicIDs(t *testing.T) {
	s, _ := newTestStore(t)

	var last int64
	for i := 0; i < 5; i++ {
		id, err := s.AddEntry(RoleUser, "entry")
		if err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
		if id <= last {
			t.Fatalf("expected monotonic ids, got %d after %d", id, last)
		}
		last = id
	}
}

func TestAddEntryRejectsEmptyContent(t *testing.T) {
	s, path := newTestStore(t)

	if _, err := s.AddEntry(RoleUser, ""); !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("expected ErrEmptyContent, got %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("rejected entry was kept, got %d entries", s.Len())
	}

	if _, err := s.AddEntry(RoleUser, "kept"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}

	reloaded, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if reloaded.Len() != s.Len() {
		t.Fatalf("reload dropped entries: got %d, want %d", reloaded.Len(), s.Len())
	}
}

func TestAppendOnlyOrdering(t *testing.T) {
	s, _ := newTestStore(t)

	contents := []string{"first", "second", "third", "fourth"}
	for _, c := range contents {
		if _, err := s.AddEntry(RoleUser, c); err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
	}

	sum := s.Summarize(len(contents))
	if len(sum.Recent) != len(contents) {
		t.Fatalf("expected %d recent entries, got %d", len(contents), len(sum.Recent))
	}
	for i, e := range sum.Recent {
		want := contents[len(contents)-1-i]
		if e.Content != want {
			t.Fatalf("recent[%d]: expected %q, got %q", i, want, e.Content)
		}
	}
}

func TestPreferenceOverwrite(t *testing.T) {
	s, _ := newTestStore(t)

	if err := s.SetPreference("k", "a"); err != nil {
		t.Fatalf("SetPreference error: %v", err)
	}
	if err := s.SetPreference("k", "b"); err != nil {
		t.Fatalf("SetPreference overwrite error: %v", err)
	}

	v, err := s.GetPreference("k")
	if err != nil {
		t.Fatalf("GetPreference error: %v", err)
	}
	if v != "b" {
		t.Fatalf("expected overwritten value %q, got %q", "b", v)
	}
	if prefs := s.Preferences(); len(prefs) != 1 {
		t.Fatalf("expected single record for key, got %d", len(prefs))
	}
}

func TestGetPreferenceMiss(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.GetPreference("missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRoundTripPersistence(t *testing.T) {
	s, path := newTestStore(t)

	if _, err := s.AddEntry(RoleUser, "buy milk", "errand"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}
	if _, err := s.AddEntry(RoleAssistant, "noted"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}
	if err := s.SetPreference("voice", "quiet"); err != nil {
		t.Fatalf("SetPreference error: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open reload error: %v", err)
	}
	if s2.Len() != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", s2.Len())
	}

	recent := s2.Recent(10)
	if recent[0].Content != "noted" || recent[1].Content != "buy milk" {
		t.Fatalf("unexpected reload order: %q, %q", recent[0].Content, recent[1].Content)
	}
	if len(recent[1].Tags) != 1 || recent[1].Tags[0] != "errand" {
		t.Fatalf("expected tags to survive reload, got %+v", recent[1].Tags)
	}

	v, err := s2.GetPreference("voice")
	if err != nil || v != "quiet" {
		t.Fatalf("GetPreference after reload: value=%q err=%v", v, err)
	}

	// Fresh ids continue after the reloaded maximum.
	id, err := s2.AddEntry(RoleUser, "more")
	if err != nil {
		t.Fatalf("AddEntry after reload error: %v", err)
	}
	if id != 3 {
		t.Fatalf("expected next id 3, got %d", id)
	}
}

func TestCorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")
	if err := os.WriteFile(path, []byte(`{"entries": [{"id": 1,`), 0644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open corrupt file error: %v", err)
	}
	if s.Len() != 0 {
		t.Fatalf("expected empty store from corrupt file, got %d entries", s.Len())
	}
}

func TestUnreadableRecordsDiscarded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")
	doc := `{
		"entries": [
			{"id": 1, "timestamp": "2026-02-01T12:00:00Z", "role": "user", "content": "good"},
			{"id": "not-a-number", "content": "bad"},
			{"id": 2, "timestamp": "2026-02-01T12:00:01Z", "role": "user", "content": "also good"}
		],
		"preferences": {}
	}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if s.Len() != 2 {
		t.Fatalf("expected 2 recovered entries, got %d", s.Len())
	}

	id, err := s.AddEntry(RoleUser, "new")
	if err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}
	if id != 3 {
		t.Fatalf("expected id 3 after recovery, got %d", id)
	}
}

func TestCrashLeftoverTempIgnored(t *testing.T) {
	s, path := newTestStore(t)
	if _, err := s.AddEntry(RoleUser, "durable"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}

	// Simulate a crash mid-write: a stray, truncated temp file next to an
	// intact store.
	if err := os.WriteFile(path+".tmp", []byte(`{"entries": [{"id`), 0644); err != nil {
		t.Fatalf("seed temp file: %v", err)
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if s2.Len() != 1 {
		t.Fatalf("expected pre-write state intact, got %d entries", s2.Len())
	}
	if got := s2.Recent(1)[0].Content; got != "durable" {
		t.Fatalf("expected %q, got %q", "durable", got)
	}
}

func TestAddEntryRollsBackOnStorageError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "memories.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if _, err := s.AddEntry(RoleUser, "kept"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}

	// Removing the directory makes the next persist fail.
	if err := os.RemoveAll(filepath.Dir(path)); err != nil {
		t.Fatalf("remove store dir: %v", err)
	}

	_, err = s.AddEntry(RoleUser, "lost")
	if err == nil {
		t.Fatal("expected StorageError when backing dir is gone")
	}
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected *StorageError, got %T: %v", err, err)
	}
	if s.Len() != 1 {
		t.Fatalf("expected rollback to 1 entry, got %d", s.Len())
	}

	if err := s.SetPreference("k", "v"); err == nil {
		t.Fatal("expected StorageError from SetPreference")
	}
	if _, err := s.GetPreference("k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected preference rollback, got %v", err)
	}
}

func TestPrune(t *testing.T) {
	s, _ := newTestStore(t)

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return old }
	if _, err := s.AddEntry(RoleUser, "ancient"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}

	recent := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return recent }
	if _, err := s.AddEntry(RoleUser, "fresh"); err != nil {
		t.Fatalf("AddEntry error: %v", err)
	}

	removed, err := s.Prune(7 * 24 * time.Hour)
	if err != nil {
		t.Fatalf("Prune error: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 pruned entry, got %d", removed)
	}
	if s.Len() != 1 || s.Recent(1)[0].Content != "fresh" {
		t.Fatalf("unexpected survivors: %+v", s.Recent(10))
	}

	// Nothing left to prune.
	removed, err = s.Prune(7 * 24 * time.Hour)
	if err != nil || removed != 0 {
		t.Fatalf("second Prune: removed=%d err=%v", removed, err)
	}
}

func TestEntriesByRole(t *testing.T) {
	s, _ := newTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := s.AddEntry(RoleUser, "question"); err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
		if _, err := s.AddEntry(RoleAssistant, "answer"); err != nil {
			t.Fatalf("AddEntry error: %v", err)
		}
	}

	users := s.EntriesByRole(RoleUser, 2)
	if len(users) != 2 {
		t.Fatalf("expected 2 user entries, got %d", len(users))
	}
	for _, e := range users {
		if e.Role != RoleUser {
			t.Fatalf("expected only user entries, got %q", e.Role)
		}
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memories.json")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.AddEntry(RoleUser, "concurrent turn")
			_ = s.SetPreference("k", "v")
		}()
		go func() {
			defer wg.Done()
			_ = s.Search("concurrent", 5)
			_ = s.Summarize(5)
			_, _ = s.GetPreference("k")
		}()
	}
	wg.Wait()

	if s.Len() != 10 {
		t.Fatalf("expected 10 entries, got %d", s.Len())
	}

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("Open reload error: %v", err)
	}
	if s2.Len() != 10 {
		t.Fatalf("expected 10 persisted entries, got %d", s2.Len())
	}
}
