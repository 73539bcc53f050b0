package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestOpenCreatesEmptyDocument(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(dir, "grampa", "followed")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("expected empty ledger, got %d entries", l.Len())
	}

	data, err := os.ReadFile(filepath.Join(dir, "grampa", "followed.json"))
	if err != nil {
		t.Fatalf("ledger file not created: %v", err)
	}
	var entries map[string]int64
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("ledger file is not valid JSON: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected {} on disk, got %v", entries)
	}
}

func TestPutIsUpsert(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "grampa", "followed")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	if err := l.Put("alice", 1000); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := l.Put("alice", 2000); err != nil {
		t.Fatalf("second Put failed: %v", err)
	}

	if l.Len() != 1 {
		t.Errorf("upsert should keep exactly one entry, got %d", l.Len())
	}
	ts, ok := l.Get("alice")
	if !ok || ts != 2000 {
		t.Errorf("expected latest value 2000, got %d (ok=%v)", ts, ok)
	}
}

func TestAllAfterDistinctWrites(t *testing.T) {
	dir := t.TempDir()
	l, err := Open(dir, "grampa", "unfollowed")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	ids := []string{"a", "b", "c", "d", "e"}
	for i, id := range ids {
		if err := l.Put(id, int64(i)); err != nil {
			t.Fatalf("Put %s failed: %v", id, err)
		}
	}

	all := l.All()
	if len(all) != len(ids) {
		t.Errorf("expected %d entries, got %d", len(ids), len(all))
	}
	for i, id := range ids {
		if all[id] != int64(i) {
			t.Errorf("entry %s = %d, want %d", id, all[id], i)
		}
	}
}

func TestPersistenceAcrossOpens(t *testing.T) {
	dir := t.TempDir()

	l, err := Open(dir, "grampa", "followed")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := l.Put("bob", 42); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reopened, err := Open(dir, "grampa", "followed")
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	ts, ok := reopened.Get("bob")
	if !ok || ts != 42 {
		t.Errorf("entry lost across opens: got %d (ok=%v)", ts, ok)
	}
}

func TestCorruptDocumentIsFatal(t *testing.T) {
	dir := t.TempDir()
	profileDir := filepath.Join(dir, "grampa")
	if err := os.MkdirAll(profileDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(profileDir, "followed.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Open(dir, "grampa", "followed"); err == nil {
		t.Error("corrupt ledger document must surface an error")
	}
}

func TestFollowedNotUnfollowedProjection(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(dir, "grampa")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	// followed and never unfollowed
	s.Followed.Put("keep", 100)
	// unfollowed after following: excluded
	s.Followed.Put("gone", 100)
	s.Unfollowed.Put("gone", 200)
	// re-followed after unfollowing: included
	s.Followed.Put("back", 300)
	s.Unfollowed.Put("back", 250)

	got := s.FollowedNotUnfollowed()
	sort.Strings(got)
	want := []string{"back", "keep"}
	if len(got) != len(want) {
		t.Fatalf("projection = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("projection = %v, want %v", got, want)
			break
		}
	}
}

func TestSeen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenStore(dir, "grampa")
	if err != nil {
		t.Fatalf("OpenStore failed: %v", err)
	}

	s.Followed.Put("f", 1)
	s.Unfollowed.Put("u", 1)

	if !s.Seen("f") || !s.Seen("u") {
		t.Error("accounts in either ledger must be seen")
	}
	if s.Seen("stranger") {
		t.Error("unknown account must not be seen")
	}
}
