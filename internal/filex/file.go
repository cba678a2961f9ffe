// Package filex contains filesystem helpers for the client's local state.
package filex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnsureParentDir makes sure the directory that will hold path exists,
// creating it with owner-only permissions when needed. It returns the
// absolute form of path.
//
// In-memory SQLite DSNs (":memory:" or "file:...mode=memory...") are returned
// unchanged.
func EnsureParentDir(path string) (string, error) {
	if IsMemoryDSN(path) {
		return path, nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}

// IsMemoryDSN reports whether dsn points at an in-memory SQLite database.
func IsMemoryDSN(dsn string) bool {
	if dsn == ":memory:" {
		return true
	}
	return strings.HasPrefix(dsn, "file:") && strings.Contains(dsn, "mode=memory")
}
