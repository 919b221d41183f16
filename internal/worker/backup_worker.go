// Package worker holds the backup worker: a consumer of document save
// notifications that snapshots each saved revision of the encrypted
// document to a local file. The payload stays encrypted; backups are
// opaque without the PIN.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"moneylog/internal/amqp"
	"moneylog/internal/docstore"
)

const backupFilePrefix = "budget-"

// BackupWorker copies each saved document revision from the store into a
// timestamped file under the backup directory.
type BackupWorker struct {
	store      docstore.Store
	backupDir  string
	keepLatest int

	clock func() time.Time
}

func NewBackupWorker(store docstore.Store, backupDir string, keepLatest int) *BackupWorker {
	return &BackupWorker{
		store:      store,
		backupDir:  backupDir,
		keepLatest: keepLatest,
		clock:      time.Now,
	}
}

// HandleSaveMessage processes a single save notification from AMQP.
func (w *BackupWorker) HandleSaveMessage(ctx context.Context, msg *amqp.DocumentSavedMessage) error {
	slog.InfoContext(ctx, "Processing save notification", "revision", msg.Revision)

	data, ok, err := w.store.Get(ctx)
	if err != nil {
		return fmt.Errorf("read document from store: %w", err)
	}
	if !ok {
		// Notification outran the write or the document was removed.
		slog.WarnContext(ctx, "Save notification for an absent document", "revision", msg.Revision)
		return nil
	}

	if err := os.MkdirAll(w.backupDir, 0755); err != nil {
		return fmt.Errorf("create backup directory: %w", err)
	}

	name := fmt.Sprintf("%s%s-r%d.json", backupFilePrefix, w.clock().UTC().Format("20060102T150405"), msg.Revision)
	path := filepath.Join(w.backupDir, name)

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}

	slog.InfoContext(ctx, "Wrote backup", "path", path, "bytes", len(data))

	if err := w.pruneOld(); err != nil {
		slog.WarnContext(ctx, "Failed to prune old backups", "error", err)
	}
	return nil
}

// pruneOld removes the oldest backup files beyond the retention count.
// File names sort chronologically, so lexicographic order is enough.
func (w *BackupWorker) pruneOld() error {
	if w.keepLatest <= 0 {
		return nil
	}

	entries, err := os.ReadDir(w.backupDir)
	if err != nil {
		return err
	}

	var backups []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), backupFilePrefix) {
			backups = append(backups, e.Name())
		}
	}
	if len(backups) <= w.keepLatest {
		return nil
	}

	sort.Strings(backups)
	for _, name := range backups[:len(backups)-w.keepLatest] {
		if err := os.Remove(filepath.Join(w.backupDir, name)); err != nil {
			return err
		}
	}
	return nil
}
