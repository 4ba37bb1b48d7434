package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/engines/neural"
	"github.com/fauxsoup/neural/lib/table/value"
)

func newTestRegistry() *Registry {
	return New(func(keyPos uint32) table.ITable {
		return neural.New(keyPos, &neural.TableOptions{NumShards: 4})
	})
}

func TestCreateLookupDestroy(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	tbl, err := r.Create("users", 1)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if tbl.KeyPosition() != 1 {
		t.Errorf("Expected key position 1, got %d", tbl.KeyPosition())
	}

	// duplicate creation must fail and keep the original
	if _, err := r.Create("users", 2); !table.IsCode(err, table.RetCTableExists) {
		t.Errorf("Expected TableExists, got %v", err)
	}

	got, err := r.Lookup("users")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != tbl {
		t.Errorf("Lookup returned a different table instance")
	}

	if _, err := r.Lookup("sessions"); !table.IsCode(err, table.RetCTableNotFound) {
		t.Errorf("Expected TableNotFound, got %v", err)
	}

	if err := r.Destroy("users"); err != nil {
		t.Fatalf("Destroy failed: %v", err)
	}

	// the destroyed table is closed
	if _, _, err := tbl.Insert(1, value.Tuple(value.Int(1))); !table.IsCode(err, table.RetCTableClosed) {
		t.Errorf("Expected TableClosed after Destroy, got %v", err)
	}

	if err := r.Destroy("users"); !table.IsCode(err, table.RetCTableNotFound) {
		t.Errorf("Expected TableNotFound on second Destroy, got %v", err)
	}
}

func TestConcurrentCreate(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	const numWorkers = 16
	results := make([]table.ITable, numWorkers)
	errs := make([]error, numWorkers)

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Create("contested", 1)
		}(w)
	}
	wg.Wait()

	// exactly one creation succeeds, everyone else sees TableExists
	var winner table.ITable
	winners := 0
	for i := 0; i < numWorkers; i++ {
		if errs[i] == nil {
			winner = results[i]
			winners++
		} else if !table.IsCode(errs[i], table.RetCTableExists) {
			t.Errorf("Worker %d got unexpected error: %v", i, errs[i])
		}
	}
	if winners != 1 {
		t.Fatalf("Expected exactly one successful Create, got %d", winners)
	}

	got, err := r.Lookup("contested")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got != winner {
		t.Errorf("Registered table is not the creation winner")
	}
}

func TestRange(t *testing.T) {
	r := newTestRegistry()
	defer r.Close()

	for i := 0; i < 5; i++ {
		if _, err := r.Create(fmt.Sprintf("table-%d", i), 1); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	count := 0
	r.Range(func(name string, tbl table.ITable) bool {
		count++
		return true
	})
	if count != 5 {
		t.Errorf("Expected 5 registered tables, got %d", count)
	}
}
