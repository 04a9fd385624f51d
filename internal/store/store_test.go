package store

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestStore creates a Store backed by a temp directory.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(t.TempDir(), logger)
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})

	return s
}
