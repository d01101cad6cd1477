package testsupport

import (
	"path/filepath"
	"testing"

	"lectern/internal/queue"
)

// MustOpenStore opens a queue store backed by a per-test temp database.
func MustOpenStore(t testing.TB) *queue.Store {
	t.Helper()

	store, err := queue.OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open queue store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
