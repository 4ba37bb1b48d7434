package testing

import (
	"sync"
	"testing"
	"time"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
)

// TableFactory is a function that creates a new instance of an ITable
// implementation with key position 1.
type TableFactory func() table.ITable

// RunTableTests runs a comprehensive test suite for an ITable implementation.
func RunTableTests(t *testing.T, name string, factory TableFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Insert&Get", func(t *testing.T) {
			testInsertGet(t, factory())
		})

		t.Run("InsertNew", func(t *testing.T) {
			testInsertNew(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Increment", func(t *testing.T) {
			testIncrement(t, factory())
		})

		t.Run("Unshift", func(t *testing.T) {
			testUnshift(t, factory())
		})

		t.Run("Shift", func(t *testing.T) {
			testShift(t, factory())
		})

		t.Run("Swap", func(t *testing.T) {
			testSwap(t, factory())
		})

		t.Run("CompoundAtomicity", func(t *testing.T) {
			testCompoundAtomicity(t, factory())
		})

		t.Run("Empty", func(t *testing.T) {
			testEmpty(t, factory())
		})

		t.Run("Dump", func(t *testing.T) {
			testDump(t, factory())
		})

		t.Run("Drain", func(t *testing.T) {
			testDrain(t, factory())
		})

		t.Run("GarbageCollection", func(t *testing.T) {
			testGarbageCollection(t, factory())
		})

		t.Run("ConcurrentIncrements", func(t *testing.T) {
			testConcurrentIncrements(t, factory())
		})

		t.Run("ConcurrentMixedUsage", func(t *testing.T) {
			testConcurrentMixedUsage(t, factory())
		})

		t.Run("Close", func(t *testing.T) {
			testClose(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// row builds a tuple value with the key at position 1.
func row(key uint64, rest ...value.Term) value.Term {
	items := append([]value.Term{value.Int(int64(key))}, rest...)
	return value.Tuple(items...)
}

// mustGet fails the test if the key is absent or the lookup errors.
func mustGet(t testing.TB, tbl table.ITable, key uint64) value.Term {
	t.Helper()
	val, found, err := tbl.Get(key)
	if err != nil {
		t.Fatalf("Get(%d) failed: %v", key, err)
	}
	if !found {
		t.Fatalf("Expected key %d to exist", key)
	}
	return val
}

// awaitBatch waits for an asynchronous batch result with a deadline.
func awaitBatch(t testing.TB, r *table.ChanRequester) table.BatchResult {
	t.Helper()
	select {
	case res := <-r.Recv():
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for batch result")
		return table.BatchResult{}
	}
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testInsertGet(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	val1 := row(1, value.String("first"))
	val2 := row(1, value.String("second"))

	_, existed, err := tbl.Insert(1, val1)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if existed {
		t.Errorf("Expected no previous value on first insert")
	}

	if got := mustGet(t, tbl, 1); !got.Equal(val1) {
		t.Errorf("Expected %s, got %s", val1, got)
	}

	prev, existed, err := tbl.Insert(1, val2)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if !existed {
		t.Errorf("Expected previous value on overwrite")
	}
	if !prev.Equal(val1) {
		t.Errorf("Expected previous value %s, got %s", val1, prev)
	}

	if got := mustGet(t, tbl, 1); !got.Equal(val2) {
		t.Errorf("Expected %s after overwrite, got %s", val2, got)
	}

	_, found, err := tbl.Get(42)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if found {
		t.Errorf("Expected nonexistent key to return found=false")
	}
}

func testInsertNew(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	val1 := row(7, value.String("original"))
	val2 := row(7, value.String("usurper"))

	inserted, err := tbl.InsertNew(7, val1)
	if err != nil {
		t.Fatalf("InsertNew failed: %v", err)
	}
	if !inserted {
		t.Errorf("Expected InsertNew to insert on absent key")
	}

	inserted, err = tbl.InsertNew(7, val2)
	if err != nil {
		t.Fatalf("InsertNew failed: %v", err)
	}
	if inserted {
		t.Errorf("Expected InsertNew to refuse on existing key")
	}

	if got := mustGet(t, tbl, 7); !got.Equal(val1) {
		t.Errorf("InsertNew must not overwrite, expected %s, got %s", val1, got)
	}
}

func testDelete(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	val := row(3, value.String("doomed"))
	if _, _, err := tbl.Insert(3, val); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	prev, existed, err := tbl.Delete(3)
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if !existed {
		t.Errorf("Expected Delete to report an existing value")
	}
	if !prev.Equal(val) {
		t.Errorf("Expected deleted value %s, got %s", val, prev)
	}

	_, found, _ := tbl.Get(3)
	if found {
		t.Errorf("Expected key to be gone after Delete")
	}

	_, existed, err = tbl.Delete(3)
	if err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
	if existed {
		t.Errorf("Expected Delete of absent key to report existed=false")
	}
}

func testIncrement(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	// {1, 10, 20, "name"}
	if _, _, err := tbl.Insert(1, row(1, value.Int(10), value.Int(20), value.String("name"))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	vals, err := tbl.Increment(1, []table.IncrOp{
		{Pos: 2, Delta: 5},
		{Pos: 3, Delta: -20},
		{Pos: 2, Delta: 1},
	})
	if err != nil {
		t.Fatalf("Increment failed: %v", err)
	}
	if len(vals) != 3 || vals[0] != 15 || vals[1] != 0 || vals[2] != 16 {
		t.Errorf("Expected post-increment values [15 0 16], got %v", vals)
	}

	if got := mustGet(t, tbl, 1); !got.Equal(row(1, value.Int(16), value.Int(0), value.String("name"))) {
		t.Errorf("Unexpected stored value after increment: %s", got)
	}

	// absent key
	_, err = tbl.Increment(99, []table.IncrOp{{Pos: 2, Delta: 1}})
	if !table.IsCode(err, table.RetCKeyAbsent) {
		t.Errorf("Expected KeyAbsent, got %v", err)
	}

	// non-integer field
	_, err = tbl.Increment(1, []table.IncrOp{{Pos: 4, Delta: 1}})
	if !table.IsCode(err, table.RetCFieldTypeMismatch) {
		t.Errorf("Expected FieldTypeMismatch, got %v", err)
	}

	// out-of-range position
	_, err = tbl.Increment(1, []table.IncrOp{{Pos: 5, Delta: 1}})
	if !table.IsCode(err, table.RetCInvalidFieldPosition) {
		t.Errorf("Expected InvalidFieldPosition, got %v", err)
	}
}

func testUnshift(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	// {2, [], "name"}
	if _, _, err := tbl.Insert(2, row(2, value.List(), value.String("name"))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	a, b, c, d := value.String("a"), value.String("b"), value.String("c"), value.String("d")

	lengths, err := tbl.Unshift(2, []table.UnshiftOp{
		{Pos: 2, Values: []value.Term{a, b, c, d}},
	})
	if err != nil {
		t.Fatalf("Unshift failed: %v", err)
	}
	if len(lengths) != 1 || lengths[0] != 4 {
		t.Errorf("Expected lengths [4], got %v", lengths)
	}

	// values are prepended one at a time: last one ends up at the head
	want := row(2, value.List(d, c, b, a), value.String("name"))
	if got := mustGet(t, tbl, 2); !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}

	// unshift onto a non-list field must fail without modifying anything
	_, err = tbl.Unshift(2, []table.UnshiftOp{
		{Pos: 2, Values: []value.Term{a}},
		{Pos: 3, Values: []value.Term{b}},
	})
	if !table.IsCode(err, table.RetCFieldTypeMismatch) {
		t.Errorf("Expected FieldTypeMismatch, got %v", err)
	}
	if got := mustGet(t, tbl, 2); !got.Equal(want) {
		t.Errorf("Failed unshift must not commit, expected %s, got %s", want, got)
	}
}

func testShift(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	a, b, c := value.String("a"), value.String("b"), value.String("c")

	// {4, [a,b,c]}
	if _, _, err := tbl.Insert(4, row(4, value.List(a, b, c))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	removed, err := tbl.Shift(4, []table.ShiftOp{{Pos: 2, Count: 2}})
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}

	// a is removed first, then b; reported most recently removed first
	if len(removed) != 1 || len(removed[0]) != 2 || !removed[0][0].Equal(b) || !removed[0][1].Equal(a) {
		t.Errorf("Expected removed [[b a]], got %v", removed)
	}
	if got := mustGet(t, tbl, 4); !got.Equal(row(4, value.List(c))) {
		t.Errorf("Expected remaining list [c], got %s", got)
	}

	// count larger than the list removes everything
	removed, err = tbl.Shift(4, []table.ShiftOp{{Pos: 2, Count: 10}})
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	if len(removed[0]) != 1 || !removed[0][0].Equal(c) {
		t.Errorf("Expected removed [[c]], got %v", removed)
	}

	// negative count removes all, zero removes none
	if _, _, err := tbl.Insert(4, row(4, value.List(a, b, c))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	removed, err = tbl.Shift(4, []table.ShiftOp{{Pos: 2, Count: 0}, {Pos: 2, Count: -1}})
	if err != nil {
		t.Fatalf("Shift failed: %v", err)
	}
	if len(removed[0]) != 0 {
		t.Errorf("Expected zero count to remove nothing, got %v", removed[0])
	}
	if len(removed[1]) != 3 {
		t.Errorf("Expected negative count to remove all, got %v", removed[1])
	}
	if got := mustGet(t, tbl, 4); !got.Equal(row(4, value.List())) {
		t.Errorf("Expected empty list, got %s", got)
	}
}

func testSwap(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	// {5, "old", 1}
	if _, _, err := tbl.Insert(5, row(5, value.String("old"), value.Int(1))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	prev, err := tbl.Swap(5, []table.SwapOp{
		{Pos: 2, Value: value.String("new")},
		{Pos: 3, Value: value.List(value.Int(9))},
	})
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}
	if len(prev) != 2 || !prev[0].Equal(value.String("old")) || !prev[1].Equal(value.Int(1)) {
		t.Errorf("Expected previous values [old 1], got %v", prev)
	}

	want := row(5, value.String("new"), value.List(value.Int(9)))
	if got := mustGet(t, tbl, 5); !got.Equal(want) {
		t.Errorf("Expected %s, got %s", want, got)
	}

	// swapping the key position is an ordinary field swap: the entry stays
	// addressed by the key argument, only the stored tuple changes
	prev, err = tbl.Swap(5, []table.SwapOp{{Pos: int(tbl.KeyPosition()), Value: value.Int(6)}})
	if err != nil {
		t.Fatalf("Swap on key position failed: %v", err)
	}
	if len(prev) != 1 || !prev[0].Equal(value.Int(5)) {
		t.Errorf("Expected previous key field [5], got %v", prev)
	}
	want = row(6, value.String("new"), value.List(value.Int(9)))
	if got := mustGet(t, tbl, 5); !got.Equal(want) {
		t.Errorf("Expected %s under the original key, got %s", want, got)
	}
	if _, found, err := tbl.Get(6); err != nil || found {
		t.Errorf("Swapped key field must not re-key the entry (found=%v, err=%v)", found, err)
	}
}

func testCompoundAtomicity(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	// {6, 100, [x]}
	x := value.String("x")
	initial := row(6, value.Int(100), value.List(x))
	if _, _, err := tbl.Insert(6, initial); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// first op is valid, second fails: nothing may be committed
	_, err := tbl.Increment(6, []table.IncrOp{
		{Pos: 2, Delta: 50},
		{Pos: 3, Delta: 1},
	})
	if !table.IsCode(err, table.RetCFieldTypeMismatch) {
		t.Errorf("Expected FieldTypeMismatch, got %v", err)
	}
	if got := mustGet(t, tbl, 6); !got.Equal(initial) {
		t.Errorf("Partial commit detected: %s", got)
	}

	_, err = tbl.Shift(6, []table.ShiftOp{
		{Pos: 3, Count: 1},
		{Pos: 2, Count: 1},
	})
	if !table.IsCode(err, table.RetCFieldTypeMismatch) {
		t.Errorf("Expected FieldTypeMismatch, got %v", err)
	}
	if got := mustGet(t, tbl, 6); !got.Equal(initial) {
		t.Errorf("Partial commit detected: %s", got)
	}
}

func testEmpty(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	for i := uint64(0); i < 100; i++ {
		if _, _, err := tbl.Insert(i, row(i)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	if err := tbl.Empty(); err != nil {
		t.Fatalf("Empty failed: %v", err)
	}

	for i := uint64(0); i < 100; i++ {
		if _, found, _ := tbl.Get(i); found {
			t.Fatalf("Expected key %d to be gone after Empty", i)
		}
	}
}

func testDump(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	const n = 200
	for i := uint64(0); i < n; i++ {
		if _, _, err := tbl.Insert(i, row(i, value.Int(int64(i)*2))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	r := table.NewChanRequester()
	pending, err := tbl.Dump(r)
	if err != nil {
		t.Fatalf("Dump failed: %v", err)
	}
	if pending.Kind != table.BatchDump {
		t.Errorf("Expected pending kind Dump, got %s", pending.Kind)
	}

	res := awaitBatch(t, r)
	if res.Kind != table.BatchDump {
		t.Errorf("Expected result kind Dump, got %s", res.Kind)
	}
	if len(res.Values) != n {
		t.Errorf("Expected %d dumped values, got %d", n, len(res.Values))
	}

	// dump must not modify the table
	for i := uint64(0); i < n; i++ {
		mustGet(t, tbl, i)
	}
}

func testDrain(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	const n = 200
	seen := make(map[uint64]bool)
	for i := uint64(0); i < n; i++ {
		if _, _, err := tbl.Insert(i, row(i)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	r := table.NewChanRequester()
	if _, err := tbl.Drain(r); err != nil {
		t.Fatalf("Drain failed: %v", err)
	}

	res := awaitBatch(t, r)
	if res.Kind != table.BatchDrain {
		t.Errorf("Expected result kind Drain, got %s", res.Kind)
	}
	if len(res.Values) != n {
		t.Errorf("Expected %d drained values, got %d", n, len(res.Values))
	}

	// every value must arrive exactly once
	for _, val := range res.Values {
		keyField, ok := val.Field(1)
		if !ok || !keyField.IsNumber() {
			t.Fatalf("Drained value without key field: %s", val)
		}
		key := uint64(keyField.Int())
		if seen[key] {
			t.Errorf("Key %d drained twice", key)
		}
		seen[key] = true
	}

	// the table must be empty afterwards
	for i := uint64(0); i < n; i++ {
		if _, found, _ := tbl.Get(i); found {
			t.Fatalf("Expected key %d to be gone after Drain", i)
		}
	}
}

func testGarbageCollection(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	// overwriting the same key retires the superseded values
	for i := 0; i < 20; i++ {
		if _, _, err := tbl.Insert(1, row(1, value.Bytes(make([]byte, 1024)))); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	// wait for the reclamation scanner to account the garbage
	deadline := time.Now().Add(5 * time.Second)
	for {
		size, err := tbl.GarbageSize()
		if err != nil {
			t.Fatalf("GarbageSize failed: %v", err)
		}
		if size > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for garbage to be accounted")
		}
		time.Sleep(10 * time.Millisecond)
	}

	if err := tbl.GarbageCollect(); err != nil {
		t.Fatalf("GarbageCollect failed: %v", err)
	}

	// wait for the forced collection cycle to reset the accounting
	for {
		size, err := tbl.GarbageSize()
		if err != nil {
			t.Fatalf("GarbageSize failed: %v", err)
		}
		if size == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for garbage collection, %d bytes left", size)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// the live value must survive collection
	if got := mustGet(t, tbl, 1); !got.Equal(row(1, value.Bytes(make([]byte, 1024)))) {
		t.Errorf("Live value corrupted by garbage collection")
	}
}

func testConcurrentIncrements(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	if _, _, err := tbl.Insert(1, row(1, value.Int(0))); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	const numWorkers = 8
	const incrementsPerWorker = 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < incrementsPerWorker; i++ {
				if _, err := tbl.Increment(1, []table.IncrOp{{Pos: 2, Delta: 1}}); err != nil {
					t.Errorf("Increment failed: %v", err)
					return
				}
			}
		}()
	}

	wg.Wait()

	counter, _ := mustGet(t, tbl, 1).Field(2)
	if counter.Int() != numWorkers*incrementsPerWorker {
		t.Errorf("Expected counter %d, got %d", numWorkers*incrementsPerWorker, counter.Int())
	}
}

func testConcurrentMixedUsage(t *testing.T, tbl table.ITable) {
	defer tbl.Close()

	const numWorkers = 8
	const opsPerWorker = 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)

	for w := 0; w < numWorkers; w++ {
		go func(workerID int) {
			defer wg.Done()

			base := uint64(workerID * opsPerWorker)
			for i := uint64(0); i < opsPerWorker; i++ {
				key := base + i
				val := row(key, value.List(), value.Int(0))

				if _, _, err := tbl.Insert(key, val); err != nil {
					t.Errorf("Insert failed: %v", err)
					return
				}
				got, found, err := tbl.Get(key)
				if err != nil || !found {
					t.Errorf("Get(%d) failed: found=%v err=%v", key, found, err)
					return
				}
				if !got.Equal(val) {
					t.Errorf("Get(%d) returned wrong value: %s", key, got)
					return
				}
				if _, err := tbl.Unshift(key, []table.UnshiftOp{{Pos: 2, Values: []value.Term{value.Int(int64(i))}}}); err != nil {
					t.Errorf("Unshift failed: %v", err)
					return
				}
				if i%3 == 0 {
					if _, _, err := tbl.Delete(key); err != nil {
						t.Errorf("Delete failed: %v", err)
						return
					}
				}
			}
		}(w)
	}

	wg.Wait()
}

func testClose(t *testing.T, tbl table.ITable) {
	if err := tbl.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// Close must be idempotent
	if err := tbl.Close(); err != nil {
		t.Fatalf("Second Close failed: %v", err)
	}

	if _, _, err := tbl.Insert(1, row(1)); !table.IsCode(err, table.RetCTableClosed) {
		t.Errorf("Expected TableClosed on Insert after Close, got %v", err)
	}
	if _, _, err := tbl.Get(1); !table.IsCode(err, table.RetCTableClosed) {
		t.Errorf("Expected TableClosed on Get after Close, got %v", err)
	}
	if _, err := tbl.Dump(table.NewChanRequester()); !table.IsCode(err, table.RetCTableClosed) {
		t.Errorf("Expected TableClosed on Dump after Close, got %v", err)
	}
}
