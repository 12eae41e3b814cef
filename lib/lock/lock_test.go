package lock

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"
)

func testLock(t *testing.T) (*FileLock, string) {
	t.Helper()
	fl := NewFileLock(slog.New(slog.NewTextHandler(io.Discard, nil)))
	key := fmt.Sprintf("%s-%d", t.Name(), time.Now().UnixNano())
	t.Cleanup(func() {
		_ = os.Remove(fl.lockFilePath(key))
	})
	return fl, key
}

func TestTryLockAndUnlock(t *testing.T) {
	fl, key := testLock(t)
	ctx := context.Background()

	acquired, err := fl.TryLock(ctx, key, time.Second)
	if err != nil {
		t.Fatalf("TryLock: %v", err)
	}
	if !acquired {
		t.Fatal("expected to acquire a free lock")
	}

	if err := fl.Unlock(ctx, key); err != nil {
		t.Fatalf("Unlock: %v", err)
	}

	acquired, err = fl.TryLock(ctx, key, time.Second)
	if err != nil {
		t.Fatalf("TryLock after Unlock: %v", err)
	}
	if !acquired {
		t.Fatal("expected to reacquire after unlock")
	}
}

func TestTryLockRefusedWhileHeld(t *testing.T) {
	fl, key := testLock(t)
	ctx := context.Background()

	acquired, err := fl.TryLock(ctx, key, time.Second)
	if err != nil || !acquired {
		t.Fatalf("first TryLock: acquired=%v err=%v", acquired, err)
	}

	acquired, err = fl.TryLock(ctx, key, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if acquired {
		t.Fatal("second TryLock acquired a held lock")
	}
}

// A job several seconds into its run still holds the lock; its file's age
// must not count against it until the stale horizon, which is far longer
// than any acquisition timeout.
func TestHeldLockSurvivesLongRunningJob(t *testing.T) {
	fl, key := testLock(t)
	ctx := context.Background()

	acquired, err := fl.TryLock(ctx, key, 2*time.Second)
	if err != nil || !acquired {
		t.Fatalf("first TryLock: acquired=%v err=%v", acquired, err)
	}

	aged := time.Now().Add(-5 * time.Second)
	if err := os.Chtimes(fl.lockFilePath(key), aged, aged); err != nil {
		t.Fatalf("failed to age lock file: %v", err)
	}

	acquired, err = fl.TryLock(ctx, key, 200*time.Millisecond)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if acquired {
		t.Fatal("lock stolen from a job still running")
	}
}

func TestStaleLockReclaimed(t *testing.T) {
	fl, key := testLock(t)
	fl.staleAfter = time.Minute
	ctx := context.Background()

	acquired, err := fl.TryLock(ctx, key, time.Second)
	if err != nil || !acquired {
		t.Fatalf("first TryLock: acquired=%v err=%v", acquired, err)
	}

	// A file older than the horizon belongs to a dead process.
	aged := time.Now().Add(-2 * time.Minute)
	if err := os.Chtimes(fl.lockFilePath(key), aged, aged); err != nil {
		t.Fatalf("failed to age lock file: %v", err)
	}

	acquired, err = fl.TryLock(ctx, key, time.Second)
	if err != nil {
		t.Fatalf("second TryLock: %v", err)
	}
	if !acquired {
		t.Fatal("expected to reclaim an abandoned lock")
	}
}
