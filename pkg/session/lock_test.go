package session

import (
	"context"
	"fmt"
	"testing"
)

func TestManager_LockLifecycle(t *testing.T) {
	mgr := NewManager(NewFactory(nil))
	ctx := context.Background()
	count := 1000

	for i := 0; i < count; i++ {
		sid := fmt.Sprintf("session-%d", i)
		if _, err := mgr.Get(ctx, sid); err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if err := mgr.Close(ctx, sid); err != nil {
			t.Fatalf("Close failed: %v", err)
		}
	}

	lockCount := len(mgr.locks)
	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after Close", lockCount)
	}
	if len(mgr.sessions) != 0 {
		t.Errorf("Expected no live sessions, got %d", len(mgr.sessions))
	}
}
