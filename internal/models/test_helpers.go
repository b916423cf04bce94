package models

import (
	"os"
	"path/filepath"
	"testing"
)

// GetFixturePath returns the absolute path of a file under the repository's
// testdata directory, for tests in packages two levels below the root. The
// test fails if the fixture does not exist.
func GetFixturePath(t testing.TB, elem ...string) string {
	t.Helper()

	parts := append([]string{"..", "..", "testdata"}, elem...)
	absPath, err := filepath.Abs(filepath.Join(parts...))
	if err != nil {
		t.Fatalf("resolving fixture %v: %v", elem, err)
	}
	if _, err := os.Stat(absPath); err != nil {
		t.Fatalf("fixture %s: %v", absPath, err)
	}
	return absPath
}
