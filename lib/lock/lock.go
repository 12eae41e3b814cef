// Package lock serializes background jobs with a file-based lock so that a
// manually triggered run cannot overlap a scheduled one.
package lock

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// A lock file older than this is presumed left behind by a dead process.
// It must comfortably exceed the longest plausible job run; a live job's
// lock is never refreshed, so a shorter horizon would let a second trigger
// steal the lock mid-run.
const defaultStaleAfter = time.Hour

type FileLock struct {
	logger     *slog.Logger
	staleAfter time.Duration
}

func NewFileLock(logger *slog.Logger) *FileLock {
	return &FileLock{logger: logger, staleAfter: defaultStaleAfter}
}

// TryLock attempts to acquire the lock for key, retrying until timeout.
// Returns false without error when the timeout elapses.
func (fl *FileLock) TryLock(ctx context.Context, key string, timeout time.Duration) (bool, error) {
	lockFile := fl.lockFilePath(key)

	if err := os.MkdirAll(filepath.Dir(lockFile), 0750); err != nil {
		return false, fmt.Errorf("failed to create lock directory: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		file, err := os.OpenFile(lockFile, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
		if err != nil {
			if os.IsExist(err) {
				if fl.isStale(lockFile, fl.staleAfter) {
					fl.logger.Warn("Removing stale lock file", slog.String("file", lockFile))
					if err := os.Remove(lockFile); err != nil {
						fl.logger.Error("Failed to remove stale lock file", slog.String("file", lockFile), slog.Any("error", err))
					}
					continue
				}

				select {
				case <-ctx.Done():
					return false, ctx.Err()
				case <-time.After(100 * time.Millisecond):
					continue
				}
			}
			return false, fmt.Errorf("failed to create lock file: %w", err)
		}

		if _, err := fmt.Fprintf(file, "%d\n%d\n", time.Now().Unix(), os.Getpid()); err != nil {
			_ = file.Close()
			return false, fmt.Errorf("failed to write to lock file: %w", err)
		}
		if err := file.Close(); err != nil {
			return false, fmt.Errorf("failed to close lock file: %w", err)
		}

		fl.logger.Debug("Acquired lock", slog.String("key", key))
		return true, nil
	}

	return false, nil
}

// Unlock releases the lock for key.
func (fl *FileLock) Unlock(ctx context.Context, key string) error {
	lockFile := fl.lockFilePath(key)
	if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove lock file: %w", err)
	}
	fl.logger.Debug("Released lock", slog.String("key", key))
	return nil
}

func (fl *FileLock) lockFilePath(key string) string {
	lockDir := filepath.Join(os.TempDir(), "gojipedia-locks")
	return filepath.Clean(filepath.Join(lockDir, key+".lock"))
}

func (fl *FileLock) isStale(lockFile string, staleDuration time.Duration) bool {
	info, err := os.Stat(lockFile)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > staleDuration
}
