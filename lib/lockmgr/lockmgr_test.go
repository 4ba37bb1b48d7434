package lockmgr

import (
	"sync"
	"testing"

	"github.com/fauxsoup/neural/lib/table/engines/neural"
)

func newTestManager() ILockManager {
	return NewLockManager(neural.New(1, &neural.TableOptions{NumShards: 4}))
}

func TestAcquireRelease(t *testing.T) {
	mgr := newTestManager()

	ok, ownerID, err := mgr.AcquireLock(1)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if !ok || len(ownerID) == 0 {
		t.Fatalf("Expected lock to be acquired with an owner ID")
	}

	// a second acquire on the same key must fail
	ok, _, err = mgr.AcquireLock(1)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if ok {
		t.Errorf("Expected second acquire to fail while lock is held")
	}

	// releasing with the wrong owner must fail
	ok, err = mgr.ReleaseLock(1, []byte("not-the-owner"))
	if err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if ok {
		t.Errorf("Expected release with wrong owner ID to fail")
	}

	// releasing with the right owner must succeed
	ok, err = mgr.ReleaseLock(1, ownerID)
	if err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected release with correct owner ID to succeed")
	}

	// the key is free again
	ok, _, err = mgr.AcquireLock(1)
	if err != nil {
		t.Fatalf("AcquireLock failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected lock to be acquirable after release")
	}
}

func TestReleaseNonexistent(t *testing.T) {
	mgr := newTestManager()

	// releasing a lock that was never acquired reports success
	ok, err := mgr.ReleaseLock(42, []byte("whoever"))
	if err != nil {
		t.Fatalf("ReleaseLock failed: %v", err)
	}
	if !ok {
		t.Errorf("Expected release of nonexistent lock to report ok")
	}
}

func TestMutualExclusion(t *testing.T) {
	mgr := newTestManager()

	const numWorkers = 16
	const rounds = 100

	var held int32
	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				ok, ownerID, err := mgr.AcquireLock(7)
				if err != nil {
					t.Errorf("AcquireLock failed: %v", err)
					return
				}
				if !ok {
					continue
				}

				// critical section: only one holder at a time
				held++
				if held != 1 {
					t.Errorf("Mutual exclusion violated, %d holders", held)
				}
				held--

				if _, err := mgr.ReleaseLock(7, ownerID); err != nil {
					t.Errorf("ReleaseLock failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Wait()
}
