package neural

import (
	"testing"
	"time"

	"github.com/fauxsoup/neural/lib/table/value"
)

func TestInfo(t *testing.T) {
	tbl := New(1, &TableOptions{NumShards: 8})
	defer tbl.Close()

	const n = 500
	for i := uint64(0); i < n; i++ {
		if _, _, err := tbl.Insert(i, value.Tuple(value.Int(int64(i)), value.Bytes(make([]byte, 64)))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	info, err := tbl.Info()
	if err != nil {
		t.Fatalf("Info failed: %v", err)
	}

	if info.Entries != n {
		t.Errorf("Expected %d entries, got %d", n, info.Entries)
	}
	if info.Shards != 8 {
		t.Errorf("Expected 8 shards, got %d", info.Shards)
	}
	if info.KeyPosition != 1 {
		t.Errorf("Expected key position 1, got %d", info.KeyPosition)
	}
	if info.MemoryBytes == 0 {
		t.Errorf("Expected non-zero memory accounting")
	}

	// sequential keys mod 8 spread perfectly across shards
	if info.Distribution.DistributionQuality < 0.9 {
		t.Errorf("Expected near-perfect shard distribution, got %v", info.Distribution.DistributionQuality)
	}
}

func TestThresholdTriggeredGC(t *testing.T) {
	// tiny threshold and fast scanner so overwrites trigger a collection
	// cycle without an explicit GarbageCollect call
	tbl := New(1, &TableOptions{
		NumShards:        4,
		ReclaimThreshold: 1024,
		ReclaimInterval:  5 * time.Millisecond,
		ReclaimBatch:     100,
	})
	defer tbl.Close()

	for i := 0; i < 50; i++ {
		if _, _, err := tbl.Insert(1, value.Tuple(value.Int(1), value.Bytes(make([]byte, 512)))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	// the scanner pushes the shard over threshold, the collector compacts.
	// a compaction cycle bumps the arena generation of every shard.
	impl := tbl.(*neuralImpl)
	deadline := time.Now().Add(5 * time.Second)
	for {
		compacted := false
		for _, shard := range impl.shards {
			shard.Mu.RLock()
			if shard.Arena.Generation() > 0 {
				compacted = true
			}
			shard.Mu.RUnlock()
		}
		if compacted {
			break
		}
		if time.Now().After(deadline) {
			size, _ := tbl.GarbageSize()
			t.Fatalf("Timeout waiting for threshold-triggered collection (garbage size %d)", size)
		}
		time.Sleep(time.Millisecond)
	}

	// the live value must survive
	val, found, err := tbl.Get(1)
	if err != nil || !found {
		t.Fatalf("Get failed after collection: found=%v err=%v", found, err)
	}
	if val.Arity() != 2 {
		t.Errorf("Live value corrupted by collection: %s", val)
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.NumShards != 64 {
		t.Errorf("Expected 64 shards by default, got %d", opts.NumShards)
	}
	if opts.ReclaimInterval != 50*time.Millisecond {
		t.Errorf("Expected 50ms reclaim interval, got %v", opts.ReclaimInterval)
	}
	if opts.ReclaimBatch != 5 {
		t.Errorf("Expected reclaim batch 5, got %d", opts.ReclaimBatch)
	}
	if opts.ReclaimThreshold != 1024*1024 {
		t.Errorf("Expected 1 MiB reclaim threshold, got %d", opts.ReclaimThreshold)
	}
}
