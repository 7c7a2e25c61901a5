package engine

import (
	"sync"
	"testing"
)

func TestKeyedLockSerializesPerKey(t *testing.T) {
	locks := newKeyedLocks()
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock("sess1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()
	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.entries) != 0 {
		t.Fatalf("entries leaked: %d", len(locks.entries))
	}
}

func TestLockAllCollapsesDuplicates(t *testing.T) {
	locks := newKeyedLocks()
	done := make(chan struct{})
	go func() {
		unlock := locks.lockAll("a", "a", "b")
		unlock()
		close(done)
	}()
	<-done

	locks.mu.Lock()
	defer locks.mu.Unlock()
	if len(locks.entries) != 0 {
		t.Fatalf("entries leaked: %d", len(locks.entries))
	}
}
