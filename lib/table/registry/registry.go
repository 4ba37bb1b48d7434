// Package registry provides a process-wide name registry for tables.
//
// A Registry maps table names to live table.ITable instances. Tables are
// created exactly once per name via a Factory, looked up by readers
// without any locking overhead, and destroyed explicitly. A package-wide
// default registry backed by the neural engine mirrors the common case
// of one table namespace per process.
package registry

import (
	"fmt"

	"github.com/fauxsoup/neural/lib/table"
	"github.com/fauxsoup/neural/lib/table/engines/neural"
	"github.com/puzpuzpuz/xsync/v3"
)

// Factory is a function type that creates a new table for the registry.
// This is used to abstract the creation of tables from the registry
// implementation.
type Factory func(keyPos uint32) table.ITable

// Registry is a concurrent name-to-table mapping.
//
// Thread-safety: All methods are safe for concurrent use.
type Registry struct {
	factory Factory
	tables  *xsync.MapOf[string, table.ITable]
}

// New creates a registry whose tables are built by factory.
func New(factory Factory) *Registry {
	return &Registry{
		factory: factory,
		tables:  xsync.NewMapOf[string, table.ITable](),
	}
}

// Create creates and registers a table under name with the given key
// position. Fails with RetCTableExists if the name is already taken; the
// existing table is left untouched.
func (r *Registry) Create(name string, keyPos uint32) (table.ITable, error) {
	tbl, loaded := r.tables.LoadOrCompute(name, func() table.ITable {
		return r.factory(keyPos)
	})
	if loaded {
		return nil, table.NewError(table.RetCTableExists, fmt.Sprintf("table %q already exists", name))
	}
	return tbl, nil
}

// Lookup returns the table registered under name. It never creates a
// table; an unknown name fails with RetCTableNotFound.
func (r *Registry) Lookup(name string) (table.ITable, error) {
	tbl, ok := r.tables.Load(name)
	if !ok {
		return nil, table.NewError(table.RetCTableNotFound, fmt.Sprintf("no table %q", name))
	}
	return tbl, nil
}

// Destroy removes the table registered under name and closes it.
// Fails with RetCTableNotFound if no such table exists.
func (r *Registry) Destroy(name string) error {
	tbl, ok := r.tables.LoadAndDelete(name)
	if !ok {
		return table.NewError(table.RetCTableNotFound, fmt.Sprintf("no table %q", name))
	}
	return tbl.Close()
}

// Range calls fn for every registered table until fn returns false.
func (r *Registry) Range(fn func(name string, tbl table.ITable) bool) {
	r.tables.Range(fn)
}

// Close destroys all registered tables. The first close error is
// returned, but all tables are closed regardless.
func (r *Registry) Close() error {
	var firstErr error
	r.tables.Range(func(name string, tbl table.ITable) bool {
		r.tables.Delete(name)
		if err := tbl.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}

// --------------------------------------------------------------------------
// Default Registry
// --------------------------------------------------------------------------

// defaultRegistry is the process-wide table set, backed by the neural
// engine with default options.
var defaultRegistry = New(func(keyPos uint32) table.ITable {
	return neural.New(keyPos, nil)
})

// Create registers a table in the process-wide default registry.
func Create(name string, keyPos uint32) (table.ITable, error) {
	return defaultRegistry.Create(name, keyPos)
}

// Lookup returns a table from the process-wide default registry.
func Lookup(name string) (table.ITable, error) {
	return defaultRegistry.Lookup(name)
}

// Destroy removes and closes a table in the process-wide default registry.
func Destroy(name string) error {
	return defaultRegistry.Destroy(name)
}
