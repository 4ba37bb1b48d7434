package testing

import (
	"sync/atomic"
	"testing"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/value"
)

// RunTableBenchmarks runs all benchmarks for an ITable implementation
func RunTableBenchmarks(b *testing.B, name string, factory TableFactory) {

	b.Run("Insert", func(b *testing.B) {
		benchmarkInsert(b, factory())
	})

	b.Run("InsertExisting", func(b *testing.B) {
		benchmarkInsertExisting(b, factory())
	})

	b.Run("Get", func(b *testing.B) {
		benchmarkGet(b, factory())
	})

	b.Run("Increment", func(b *testing.B) {
		benchmarkIncrement(b, factory())
	})

	b.Run("UnshiftShift", func(b *testing.B) {
		benchmarkUnshiftShift(b, factory())
	})

	b.Run("Delete", func(b *testing.B) {
		benchmarkDelete(b, factory())
	})

	b.Run("MixedUsage", func(b *testing.B) {
		benchmarkMixedUsage(b, factory())
	})
}

// --------------------------------------------------------------------------
// Benchmark functions
// --------------------------------------------------------------------------

// Benchmark for Insert operation on fresh keys
func benchmarkInsert(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := counter.Add(1)
			if _, _, err := tbl.Insert(key, row(key, value.Int(0))); err != nil {
				b.Fatalf("Insert failed: %v", err)
			}
		}
	})
}

// Benchmark for Insert operation overwriting one key
func benchmarkInsertExisting(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	if _, _, err := tbl.Insert(1, row(1, value.Int(0))); err != nil {
		b.Fatalf("Insert failed: %v", err)
	}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, _, err := tbl.Insert(1, row(1, value.Int(1))); err != nil {
				b.Fatalf("Insert failed: %v", err)
			}
		}
	})
}

// Benchmark for Get operation
func benchmarkGet(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	const numKeys = 1024
	for i := uint64(0); i < numKeys; i++ {
		if _, _, err := tbl.Insert(i, row(i, value.Int(int64(i)))); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			key := counter.Add(1) % numKeys
			if _, _, err := tbl.Get(key); err != nil {
				b.Fatalf("Get failed: %v", err)
			}
		}
	})
}

// Benchmark for Increment operation on one contended key
func benchmarkIncrement(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	if _, _, err := tbl.Insert(1, row(1, value.Int(0))); err != nil {
		b.Fatalf("Insert failed: %v", err)
	}

	ops := []table.IncrOp{{Pos: 2, Delta: 1}}

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := tbl.Increment(1, ops); err != nil {
				b.Fatalf("Increment failed: %v", err)
			}
		}
	})
}

// Benchmark for Unshift and Shift operating as a queue
func benchmarkUnshiftShift(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	if _, _, err := tbl.Insert(1, row(1, value.List())); err != nil {
		b.Fatalf("Insert failed: %v", err)
	}

	payload := value.String("job")

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			if _, err := tbl.Unshift(1, []table.UnshiftOp{{Pos: 2, Values: []value.Term{payload}}}); err != nil {
				b.Fatalf("Unshift failed: %v", err)
			}
			if _, err := tbl.Shift(1, []table.ShiftOp{{Pos: 2, Count: 1}}); err != nil {
				b.Fatalf("Shift failed: %v", err)
			}
		}
	})
}

// Benchmark for Delete operation
func benchmarkDelete(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	for i := 0; i < b.N; i++ {
		if _, _, err := tbl.Insert(uint64(i), row(uint64(i))); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := tbl.Delete(uint64(i)); err != nil {
			b.Fatalf("Delete failed: %v", err)
		}
	}
}

// Benchmark for mixed realistic usage
func benchmarkMixedUsage(b *testing.B, tbl table.ITable) {
	b.Cleanup(func() {
		tbl.Close()
	})

	const numKeys = 1024
	for i := uint64(0); i < numKeys; i++ {
		if _, _, err := tbl.Insert(i, row(i, value.Int(0), value.List())); err != nil {
			b.Fatalf("Insert failed: %v", err)
		}
	}

	var counter atomic.Uint64

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			n := counter.Add(1)
			key := n % numKeys

			switch n % 4 {
			case 0:
				if _, _, err := tbl.Get(key); err != nil {
					b.Fatalf("Get failed: %v", err)
				}
			case 1:
				if _, err := tbl.Increment(key, []table.IncrOp{{Pos: 2, Delta: 1}}); err != nil {
					b.Fatalf("Increment failed: %v", err)
				}
			case 2:
				if _, err := tbl.Unshift(key, []table.UnshiftOp{{Pos: 3, Values: []value.Term{value.Int(int64(n))}}}); err != nil {
					b.Fatalf("Unshift failed: %v", err)
				}
			case 3:
				if _, err := tbl.Shift(key, []table.ShiftOp{{Pos: 3, Count: 1}}); err != nil {
					b.Fatalf("Shift failed: %v", err)
				}
			}
		}
	})
}
