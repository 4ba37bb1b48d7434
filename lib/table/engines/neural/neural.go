package neural

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/engines/neural/internal"
	"github.com/fauxsoup/neural/lib/table/util"
	"github.com/fauxsoup/neural/lib/table/value"
)

// --------------------------------------------------------------------------
// Constants
// --------------------------------------------------------------------------

// Constants for engine behavior and structure
const (
	defaultNumShards        = 64                    // Number of shards
	defaultReclaimThreshold = 1024 * 1024           // Garbage bytes per shard before GC is signaled
	defaultReclaimInterval  = 50 * time.Millisecond // Interval between reclamation scans
	defaultReclaimBatch     = 5                     // Pending terms scanned per shard per interval
)

// --------------------------------------------------------------------------
// Core neural table structure
// --------------------------------------------------------------------------

// neuralImpl implements a concurrent table with sharded data and
// deferred memory reclamation
type neuralImpl struct {
	keyPos uint32            // 1-based tuple position holding the key
	shards []*internal.Shard // Array of shards
	opts   TableOptions

	closed atomic.Bool

	// garbage collection
	gcMu     sync.Mutex
	gcCond   *sync.Cond
	gcForced bool
	gcQuit   bool

	// reclamation scanner
	scannerQuit chan struct{}

	// batch worker
	jobs *util.LockFreeMPSC[batchJob]

	workers sync.WaitGroup
}

// TableOptions configures the neuralImpl behavior during initialization
type TableOptions struct {
	NumShards        int           // Number of shards (0 = default: 64)
	ReclaimThreshold uint64        // Garbage bytes per shard that trigger GC (0 = default: 1 MiB)
	ReclaimInterval  time.Duration // Time between reclamation scans (0 = default: 50ms)
	ReclaimBatch     int           // Pending terms scanned per shard per scan (0 = default: 5)
}

// DefaultOptions returns the default neuralImpl options
func DefaultOptions() *TableOptions {
	return &TableOptions{
		NumShards:        defaultNumShards,
		ReclaimThreshold: defaultReclaimThreshold,
		ReclaimInterval:  defaultReclaimInterval,
		ReclaimBatch:     defaultReclaimBatch,
	}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// New creates a new neural table instance with the specified options
// (optional). The key of every stored tuple lives at the 1-based tuple
// position keyPos.
//
// Thread-safety: This function is not thread-safe and should only be called
// once during initialization.
func New(keyPos uint32, opts *TableOptions) table.ITable {

	// Generate default options if not provided
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.NumShards <= 0 {
		opts.NumShards = defaultNumShards
	}
	if opts.ReclaimThreshold == 0 {
		opts.ReclaimThreshold = defaultReclaimThreshold
	}
	if opts.ReclaimInterval <= 0 {
		opts.ReclaimInterval = defaultReclaimInterval
	}
	if opts.ReclaimBatch <= 0 {
		opts.ReclaimBatch = defaultReclaimBatch
	}
	if keyPos == 0 {
		keyPos = 1
	}

	// Create shards
	shards := make([]*internal.Shard, opts.NumShards)
	for i := 0; i < opts.NumShards; i++ {
		shards[i] = internal.NewShard()
	}

	t := &neuralImpl{
		keyPos:      keyPos,
		shards:      shards,
		opts:        *opts,
		scannerQuit: make(chan struct{}),
		jobs:        util.NewLockFreeMPSC[batchJob](),
	}
	t.gcCond = sync.NewCond(&t.gcMu)

	// start background workers
	t.workers.Add(3)
	go t.reclamationScanner()
	go t.garbageCollector()
	go t.batchWorker()

	return t
}

// requireOpen fails with RetCTableClosed once Close was called.
func (t *neuralImpl) requireOpen() error {
	if t.closed.Load() {
		return table.NewError(table.RetCTableClosed, "table is closed")
	}
	return nil
}

// --------------------------------------------------------------------------
// Core ITable Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Insert stores val under key, replacing any previous value.
// The stored value is a deep copy charged to the owning shard's arena,
// so the caller's term stays private. A superseded previous value is
// queued for reclamation after the write has committed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Insert(key uint64, val value.Term) (value.Term, bool, error) {
	if err := t.requireOpen(); err != nil {
		return value.Term{}, false, err
	}

	shard := internal.GetShard(key, t.shards)
	shard.Mu.Lock()
	defer shard.Mu.Unlock()

	prev, existed := shard.Entries[key]
	shard.Entries[key] = shard.Arena.Copy(val)
	if existed {
		shard.Retire(prev)
	}

	return prev, existed, nil
}

// InsertNew stores val under key only if the key is absent.
// Returns false without error if the key already exists.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) InsertNew(key uint64, val value.Term) (bool, error) {
	if err := t.requireOpen(); err != nil {
		return false, err
	}

	shard := internal.GetShard(key, t.shards)
	shard.Mu.Lock()
	defer shard.Mu.Unlock()

	if _, existed := shard.Entries[key]; existed {
		return false, nil
	}
	shard.Entries[key] = shard.Arena.Copy(val)

	return true, nil
}

// Delete removes the entry for key.
// A previous value is queued for reclamation and returned.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Delete(key uint64) (value.Term, bool, error) {
	if err := t.requireOpen(); err != nil {
		return value.Term{}, false, err
	}

	shard := internal.GetShard(key, t.shards)
	shard.Mu.Lock()
	defer shard.Mu.Unlock()

	prev, existed := shard.Entries[key]
	if !existed {
		return value.Term{}, false, nil
	}
	delete(shard.Entries, key)
	shard.Retire(prev)

	return prev, true, nil
}

// Empty removes all entries from the table. All shards are locked
// exclusively in ascending index order, so the clear is atomic with
// respect to every other operation.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Empty() error {
	if err := t.requireOpen(); err != nil {
		return err
	}

	for _, shard := range t.shards {
		shard.Mu.Lock()
	}
	for _, shard := range t.shards {
		shard.Clear()
	}
	for i := len(t.shards) - 1; i >= 0; i-- {
		t.shards[i].Mu.Unlock()
	}

	return nil
}

// --------------------------------------------------------------------------
// Core ITable Interface Methods - Compound Updates
// --------------------------------------------------------------------------

// updateTuple is a helper method for shared implementation between
// Increment, Unshift, Shift, and Swap. It loads the tuple stored under
// key, hands a private copy of its fields to fn, and commits the
// returned fields as the new value in one step. If fn returns an error
// nothing is committed and the stored value stays untouched. The
// superseded tuple is queued for reclamation after the commit.
//
// Thread-safety: The shard lock is held exclusively for the whole
// load-validate-commit cycle.
func (t *neuralImpl) updateTuple(key uint64, fn func(fields []value.Term) ([]value.Term, error)) error {
	if err := t.requireOpen(); err != nil {
		return err
	}

	shard := internal.GetShard(key, t.shards)
	shard.Mu.Lock()
	defer shard.Mu.Unlock()

	stored, existed := shard.Entries[key]
	if !existed {
		return table.NewError(table.RetCKeyAbsent, fmt.Sprintf("no value stored under key %d", key))
	}
	if !stored.IsTuple() {
		return table.NewError(table.RetCBadValue, fmt.Sprintf("value under key %d is not a tuple", key))
	}

	// Items returns a copy, so fn works on a private view
	fields, err := fn(stored.Items())
	if err != nil {
		return err
	}

	// single commit
	updated := value.Tuple(fields...)
	shard.Entries[key] = updated
	shard.Arena.Charge(updated)
	shard.Retire(stored)

	return nil
}

// Increment atomically adds deltas to integer fields of the stored tuple.
// Returns the post-increment value of each field, in op order. If any op
// names an invalid position or a non-integer field, no field is modified.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Increment(key uint64, ops []table.IncrOp) ([]int64, error) {
	results := make([]int64, len(ops))

	err := t.updateTuple(key, func(fields []value.Term) ([]value.Term, error) {
		for i, op := range ops {
			if op.Pos < 1 || op.Pos > len(fields) {
				return nil, table.NewError(table.RetCInvalidFieldPosition,
					fmt.Sprintf("increment op %d: position %d outside [1, %d]", i, op.Pos, len(fields)))
			}

			field := fields[op.Pos-1]
			if !field.IsNumber() {
				return nil, table.NewError(table.RetCFieldTypeMismatch,
					fmt.Sprintf("increment op %d: field %d is %s, not an integer", i, op.Pos, field.Kind()))
			}

			results[i] = field.Int() + op.Delta
			fields[op.Pos-1] = value.Int(results[i])
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Unshift atomically prepends values to list fields of the stored tuple.
// Values are prepended one at a time, so unshifting [a,b,c] onto [] yields
// [c,b,a]. Returns the new length of each list, in op order. If any op
// names an invalid position or a non-list field, no field is modified.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Unshift(key uint64, ops []table.UnshiftOp) ([]int, error) {
	results := make([]int, len(ops))

	err := t.updateTuple(key, func(fields []value.Term) ([]value.Term, error) {
		for i, op := range ops {
			if op.Pos < 1 || op.Pos > len(fields) {
				return nil, table.NewError(table.RetCInvalidFieldPosition,
					fmt.Sprintf("unshift op %d: position %d outside [1, %d]", i, op.Pos, len(fields)))
			}

			field := fields[op.Pos-1]
			if !field.IsList() {
				return nil, table.NewError(table.RetCFieldTypeMismatch,
					fmt.Sprintf("unshift op %d: field %d is %s, not a list", i, op.Pos, field.Kind()))
			}

			old := field.Items()
			items := make([]value.Term, 0, len(op.Values)+len(old))
			// prepend one at a time: last pushed value ends up at the head
			for j := len(op.Values) - 1; j >= 0; j-- {
				items = append(items, op.Values[j])
			}
			items = append(items, old...)

			fields[op.Pos-1] = value.List(items...)
			results[i] = len(items)
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Shift atomically removes elements from the head of list fields of the
// stored tuple. A negative count removes all elements. Returns the removed
// elements per op, most recently removed first. If any op names an invalid
// position or a non-list field, no field is modified.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Shift(key uint64, ops []table.ShiftOp) ([][]value.Term, error) {
	results := make([][]value.Term, len(ops))

	err := t.updateTuple(key, func(fields []value.Term) ([]value.Term, error) {
		for i, op := range ops {
			if op.Pos < 1 || op.Pos > len(fields) {
				return nil, table.NewError(table.RetCInvalidFieldPosition,
					fmt.Sprintf("shift op %d: position %d outside [1, %d]", i, op.Pos, len(fields)))
			}

			field := fields[op.Pos-1]
			if !field.IsList() {
				return nil, table.NewError(table.RetCFieldTypeMismatch,
					fmt.Sprintf("shift op %d: field %d is %s, not a list", i, op.Pos, field.Kind()))
			}

			items := field.Items()
			count := op.Count
			if count < 0 || count > len(items) {
				count = len(items)
			}

			// elements are removed head-first, reported most recent first
			removed := make([]value.Term, count)
			for j := 0; j < count; j++ {
				removed[count-1-j] = items[j]
			}

			fields[op.Pos-1] = value.List(items[count:]...)
			results[i] = removed
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Swap atomically replaces fields of the stored tuple. Returns the previous
// value of each field, in op order. The key position may be swapped like
// any other field; the entry stays addressed by the key argument, since the
// table keys by the caller-supplied uint64 and never re-reads the tuple.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Swap(key uint64, ops []table.SwapOp) ([]value.Term, error) {
	results := make([]value.Term, len(ops))

	err := t.updateTuple(key, func(fields []value.Term) ([]value.Term, error) {
		for i, op := range ops {
			if op.Pos < 1 || op.Pos > len(fields) {
				return nil, table.NewError(table.RetCInvalidFieldPosition,
					fmt.Sprintf("swap op %d: position %d outside [1, %d]", i, op.Pos, len(fields)))
			}

			results[i] = fields[op.Pos-1]
			fields[op.Pos-1] = op.Value
		}
		return fields, nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// --------------------------------------------------------------------------
// Core ITable Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get retrieves the value for key.
// The boolean indicates whether a value for the key was found. Terms are
// immutable, so the returned value is safe to use without further copying.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Get(key uint64) (value.Term, bool, error) {
	if err := t.requireOpen(); err != nil {
		return value.Term{}, false, err
	}

	shard := internal.GetShard(key, t.shards)
	shard.Mu.RLock()
	defer shard.Mu.RUnlock()

	val, found := shard.Entries[key]
	return val, found, nil
}

// --------------------------------------------------------------------------
// Introspection
// --------------------------------------------------------------------------

// KeyPosition returns the 1-based tuple position holding the key.
func (t *neuralImpl) KeyPosition() uint32 {
	return t.keyPos
}

// Info returns statistics about the table
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (t *neuralImpl) Info() (table.TableInfo, error) {
	if err := t.requireOpen(); err != nil {
		return table.TableInfo{}, err
	}

	// create a size histogram for the info
	histogram := util.NewSizeHistogram()
	samplesPerShard := 100
	wg := sync.WaitGroup{}
	wg.Add(len(t.shards))

	// more stats
	mu := sync.Mutex{}
	var entries uint64
	var memoryBytes uint64
	var garbageBytes uint64
	shardSizes := make([]float64, len(t.shards))

	// concurrently collect samples from all shards
	for shardIndex, shard := range t.shards {
		go func(i int, s *internal.Shard) {
			defer wg.Done()

			s.Mu.RLock()
			count := 0
			for _, val := range s.Entries {
				// only sample a few entries per shard
				if count >= samplesPerShard {
					break
				}
				histogram.AddSample(int(val.EstimateSize()))
				count++
			}
			size := len(s.Entries)
			arenaSize := s.Arena.Size()
			s.Mu.RUnlock()

			mu.Lock()
			defer mu.Unlock()

			entries += uint64(size)
			if arenaSize > 0 {
				memoryBytes += uint64(arenaSize)
			}
			garbageBytes += s.GarbageBytes.Load()
			shardSizes[i] = float64(size)
		}(shardIndex, shard)
	}

	// wait for all shards to finish
	wg.Wait()

	return table.TableInfo{
		KeyPosition:    t.keyPos,
		Entries:        entries,
		MemoryBytes:    memoryBytes,
		GarbageBytes:   garbageBytes,
		Shards:         len(t.shards),
		AvgTermSize:    histogram.AverageSize(),
		MedianTermSize: histogram.MedianEstimate(),
		Distribution:   util.NewDistributionStats(shardSizes),
	}, nil
}

// --------------------------------------------------------------------------
// Teardown
// --------------------------------------------------------------------------

// Close stops the background workers and releases the table's memory.
// Close is idempotent. Callers must quiesce in-flight operations first;
// operations started after Close fail with RetCTableClosed.
func (t *neuralImpl) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	// stop the reclamation scanner
	close(t.scannerQuit)

	// stop the garbage collector
	t.gcMu.Lock()
	t.gcQuit = true
	t.gcCond.Signal()
	t.gcMu.Unlock()

	// stop the batch worker, queued jobs are still served
	t.jobs.Close()

	t.workers.Wait()

	// release all shard memory
	for _, shard := range t.shards {
		shard.Mu.Lock()
		shard.Clear()
		shard.Mu.Unlock()
	}

	return nil
}
