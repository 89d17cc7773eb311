package localstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStore_PutGetDelete(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, ok, err := store.Get(KeyCart); err != nil || ok {
		t.Fatalf("Get on empty store = ok=%v err=%v, want absent", ok, err)
	}

	if err := store.Put(KeyCart, []byte(`[{"productId":"1"}]`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, ok, err := store.Get(KeyCart)
	if err != nil || !ok {
		t.Fatalf("Get after Put = ok=%v err=%v", ok, err)
	}
	if string(data) != `[{"productId":"1"}]` {
		t.Fatalf("Get = %q", data)
	}

	if err := store.Delete(KeyCart); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(KeyCart); ok {
		t.Fatal("key still present after Delete")
	}

	// Deleting again is a no-op.
	if err := store.Delete(KeyCart); err != nil {
		t.Fatalf("Delete absent key: %v", err)
	}
}

func TestStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(KeyToken, []byte("tok-123")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reopened, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	data, ok, err := reopened.Get(KeyToken)
	if err != nil || !ok {
		t.Fatalf("Get after reopen = ok=%v err=%v", ok, err)
	}
	if string(data) != "tok-123" {
		t.Fatalf("Get = %q, want tok-123", data)
	}
}

func TestStore_PrivateFileMode(t *testing.T) {
	store, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Put(KeyToken, []byte("secret")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	info, err := os.Stat(store.Path(KeyToken))
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if got := info.Mode().Perm(); got != 0600 {
		t.Fatalf("mode = %o, want 0600", got)
	}
}

func TestWatcher_ReportsExternalWrite(t *testing.T) {
	dir := t.TempDir()
	store, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	w, err := store.Watch()
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer w.Close()

	// Simulate another process updating the cart snapshot.
	if err := os.WriteFile(filepath.Join(dir, KeyCart), []byte("[]"), 0600); err != nil {
		t.Fatalf("external write: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case key := <-w.Events:
			if key == KeyCart {
				return
			}
		case <-deadline:
			t.Fatal("no watcher event for external cart write")
		}
	}
}
