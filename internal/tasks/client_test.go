package tasks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "librarian.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	require.NotNil(t, client)

	// The queue lives in a sibling database next to the main one
	_, err = os.Stat(filepath.Join(tmpDir, "librarian-tasks.db"))
	assert.NoError(t, err)

	assert.NoError(t, client.Close())
}

func TestClientStartStop(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "librarian.db")

	cfg := DefaultConfig()
	cfg.Workers = 1

	client, err := NewClient(dbPath, cfg)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.Start(ctx)
	time.Sleep(50 * time.Millisecond)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer stopCancel()
	assert.True(t, client.Stop(stopCtx))
}

// fakeCleaner records the retention it was asked to apply.
type fakeCleaner struct {
	retention time.Duration
	deleted   int64
	err       error
}

func (f *fakeCleaner) DeleteOldEntries(retention time.Duration) (int64, error) {
	f.retention = retention
	return f.deleted, f.err
}

func TestCleanupAuditLogsProcessor(t *testing.T) {
	t.Run("deletes entries older than the retention", func(t *testing.T) {
		cleaner := &fakeCleaner{deleted: 7}
		processor := CleanupAuditLogsProcessor(cleaner)

		err := processor(context.Background(), CleanupAuditLogsTask{RetentionDays: 30})
		require.NoError(t, err)
		assert.Equal(t, 30*24*time.Hour, cleaner.retention)
	})

	t.Run("defaults the retention to a year", func(t *testing.T) {
		cleaner := &fakeCleaner{}
		processor := CleanupAuditLogsProcessor(cleaner)

		err := processor(context.Background(), CleanupAuditLogsTask{})
		require.NoError(t, err)
		assert.Equal(t, 365*24*time.Hour, cleaner.retention)
	})

	t.Run("propagates cleaner errors for retry", func(t *testing.T) {
		cleaner := &fakeCleaner{err: errors.New("disk full")}
		processor := CleanupAuditLogsProcessor(cleaner)

		err := processor(context.Background(), CleanupAuditLogsTask{})
		assert.Error(t, err)
	})

	t.Run("fails without a cleaner", func(t *testing.T) {
		processor := CleanupAuditLogsProcessor(nil)

		err := processor(context.Background(), CleanupAuditLogsTask{})
		assert.Error(t, err)
	})
}
