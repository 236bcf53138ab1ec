package watcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// collect returns a handler that forwards processed paths to a channel.
func collect() (Handler, chan string) {
	ch := make(chan string, 16)
	return func(path string) { ch <- path }, ch
}

func waitFor(t *testing.T, ch chan string) string {
	t.Helper()
	select {
	case p := <-ch:
		return p
	case <-time.After(3 * time.Second):
		t.Fatal("handler was not called")
		return ""
	}
}

func TestWatcher_ProcessesExistingFiles(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "jan.csv")
	if err := os.WriteFile(existing, []byte("query\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	// Non-CSV files are ignored.
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, ch := collect()
	w, err := New(dir, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck

	if got := waitFor(t, ch); got != existing {
		t.Errorf("processed %q, want %q", got, existing)
	}
	select {
	case p := <-ch:
		t.Errorf("unexpected extra call for %q", p)
	case <-time.After(700 * time.Millisecond):
	}
}

func TestWatcher_PicksUpNewFile(t *testing.T) {
	dir := t.TempDir()
	h, ch := collect()
	w, err := New(dir, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck

	// Give the fsnotify watch a moment to attach.
	time.Sleep(100 * time.Millisecond)

	newFile := filepath.Join(dir, "feb.csv")
	if err := os.WriteFile(newFile, []byte("query,clicks\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if got := waitFor(t, ch); got != newFile {
		t.Errorf("processed %q, want %q", got, newFile)
	}
}

func TestWatcher_DebouncesChunkedWrites(t *testing.T) {
	dir := t.TempDir()
	h, ch := collect()
	w, err := New(dir, h)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx) //nolint:errcheck
	time.Sleep(100 * time.Millisecond)

	// Simulate a chunked export: several writes in quick succession.
	path := filepath.Join(dir, "mar.csv")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		if _, err := f.WriteString("row\n"); err != nil {
			t.Fatal(err)
		}
		f.Sync() //nolint:errcheck
		time.Sleep(20 * time.Millisecond)
	}
	f.Close()

	waitFor(t, ch)
	select {
	case p := <-ch:
		t.Errorf("debounce failed: extra call for %q", p)
	case <-time.After(time.Second):
	}
}

func TestWatcher_CreatesMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "in")
	h, _ := collect()
	if _, err := New(dir, h); err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := os.Stat(dir); err != nil {
		t.Errorf("input dir was not created: %v", err)
	}
}

func TestIsCSV(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.csv", true},
		{"A.CSV", true},
		{"dir/b.Csv", true},
		{"a.txt", false},
		{"csv", false},
		{"a.csv.bak", false},
	}
	for _, tt := range tests {
		if got := isCSV(tt.path); got != tt.want {
			t.Errorf("isCSV(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
