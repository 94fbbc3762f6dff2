package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// TempDir creates a temporary directory for testing
func TempDir(t *testing.T) string {
	dir, err := os.MkdirTemp("", "bptree-test-*")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		os.RemoveAll(dir)
	})
	return dir
}

// TempIndexPath returns a path for an index file inside a fresh
// temporary directory. The file itself is not created.
func TempIndexPath(t *testing.T) string {
	return filepath.Join(TempDir(t), "index.db")
}
