// Package testutil provides testing utilities for perfbible
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/perfbible/internal/benchdata"
)

// TestLogger creates a test logger that writes to the test output.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext returns a context with a 30-second timeout that is cancelled
// when the test completes.
func TestContext(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// WriteFile writes content to path, creating parent directories, and
// returns path. It fails the test immediately on error.
func WriteFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil { //nolint:gosec // test data
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// LogFile writes lines of generated mixed log data to a temporary file and
// returns its path.
func LogFile(t *testing.T, lines int) string {
	t.Helper()
	return WriteFile(t, filepath.Join(t.TempDir(), "app.log"), benchdata.Logs(lines))
}
