package table

import (
	"fmt"

	"github.com/fauxsoup/neural/lib/table/util"
	"github.com/fauxsoup/neural/lib/table/value"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// IncrOp adds Delta to the integer field at the 1-based tuple position Pos.
type IncrOp struct {
	Pos   int   `json:"pos"`
	Delta int64 `json:"delta"`
}

// UnshiftOp prepends Values to the list field at the 1-based tuple
// position Pos. Values are prepended in slice order, so the last element
// of Values ends up at the head of the stored list.
type UnshiftOp struct {
	Pos    int          `json:"pos"`
	Values []value.Term `json:"values"`
}

// ShiftOp removes up to Count elements from the head of the list field
// at the 1-based tuple position Pos. A negative Count removes all
// elements.
type ShiftOp struct {
	Pos   int `json:"pos"`
	Count int `json:"count"`
}

// SwapOp replaces the field at the 1-based tuple position Pos with Value.
type SwapOp struct {
	Pos   int        `json:"pos"`
	Value value.Term `json:"value"`
}

// BatchKind identifies the kind of an asynchronous batch job.
type BatchKind uint8

const (
	BatchDump  BatchKind = iota // read-only snapshot of all stored values
	BatchDrain                  // snapshot that also empties the table
)

func (k BatchKind) String() string {
	switch k {
	case BatchDump:
		return "Dump"
	case BatchDrain:
		return "Drain"
	default:
		return "Unknown"
	}
}

// BatchResult carries the outcome of an asynchronous batch job.
type BatchResult struct {
	Kind   BatchKind    // the job that produced this result
	Values []value.Term // all values stored in the table at snapshot time
}

// Requester receives the result of an asynchronous batch job.
// Send is called exactly once per accepted job, from the engine's batch
// worker goroutine. Implementations must not block indefinitely.
type Requester interface {
	Send(res BatchResult)
}

// ChanRequester is a Requester that delivers results on a buffered
// channel. The channel has capacity one so the batch worker never
// blocks on delivery.
type ChanRequester struct {
	ch chan BatchResult
}

// NewChanRequester creates a ChanRequester ready to receive one result.
func NewChanRequester() *ChanRequester {
	return &ChanRequester{ch: make(chan BatchResult, 1)}
}

// Send implements the Requester interface.
// A second result for the same requester is dropped.
func (r *ChanRequester) Send(res BatchResult) {
	select {
	case r.ch <- res:
	default:
	}
}

// Recv returns the channel the batch result will be delivered on.
func (r *ChanRequester) Recv() <-chan BatchResult {
	return r.ch
}

// Pending acknowledges that a batch job was accepted and queued.
// The result itself arrives later via the Requester.
type Pending struct {
	Kind BatchKind `json:"kind"`
}

// TableInfo describes the current state of a table.
// It is a point-in-time estimate, not a consistent snapshot.
type TableInfo struct {
	KeyPosition    uint32                 `json:"key_position"`
	Entries        uint64                 `json:"entries"`
	MemoryBytes    uint64                 `json:"memory_bytes"`
	GarbageBytes   uint64                 `json:"garbage_bytes"`
	Shards         int                    `json:"shards"`
	AvgTermSize    int                    `json:"avg_term_size"`
	MedianTermSize int                    `json:"median_term_size"`
	Distribution   util.DistributionStats `json:"distribution"`
}

// --------------------------------------------------------------------------
// Table Interface
// --------------------------------------------------------------------------

// ITable is the generic interface for a concurrent key-value table
// storing tuple-shaped terms.
//
// Keys are unsigned integers taken from a fixed tuple position (the key
// position, see KeyPosition). Compound updates validate all operations
// against a private copy of the stored value and either commit every
// operation or none of them.
//
// All methods return a *Error (possibly wrapped) on failure, nil on
// success.
type ITable interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Insert stores val under key, replacing any previous value.
	// The previous value (if any) is returned together with a flag
	// indicating whether it existed.
	Insert(key uint64, val value.Term) (prev value.Term, existed bool, err error)

	// InsertNew stores val under key only if the key is absent.
	// Returns false without error if the key already exists.
	InsertNew(key uint64, val value.Term) (inserted bool, err error)

	// Delete removes the entry for key. The previous value (if any) is
	// returned together with a flag indicating whether it existed.
	Delete(key uint64) (prev value.Term, existed bool, err error)

	// Empty removes all entries from the table.
	Empty() (err error)

	// --------------------------------------------------------------------------
	// Compound Updates
	// --------------------------------------------------------------------------

	// Increment atomically adds deltas to integer fields of the stored
	// tuple. Returns the post-increment value of each field, in op order.
	// If any op names an invalid position or a non-integer field, no
	// field is modified.
	Increment(key uint64, ops []IncrOp) (values []int64, err error)

	// Unshift atomically prepends values to list fields of the stored
	// tuple. Returns the new length of each list, in op order.
	// If any op names an invalid position or a non-list field, no field
	// is modified.
	Unshift(key uint64, ops []UnshiftOp) (lengths []int, err error)

	// Shift atomically removes elements from the head of list fields of
	// the stored tuple. Returns the removed elements per op, most
	// recently removed first. If any op names an invalid position or a
	// non-list field, no field is modified.
	Shift(key uint64, ops []ShiftOp) (removed [][]value.Term, err error)

	// Swap atomically replaces fields of the stored tuple. Returns the
	// previous value of each field, in op order. Swapping the key position
	// does not re-key the entry; the table keys by the uint64 argument.
	Swap(key uint64, ops []SwapOp) (previous []value.Term, err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for key.
	// The boolean return value indicates whether the key was found.
	Get(key uint64) (val value.Term, loaded bool, err error)

	// --------------------------------------------------------------------------
	// Batch Operations
	// --------------------------------------------------------------------------

	// Dump asynchronously snapshots all stored values and delivers them
	// to r. The returned Pending acknowledges that the job was queued.
	Dump(r Requester) (Pending, error)

	// Drain behaves like Dump but also atomically empties the table.
	Drain(r Requester) (Pending, error)

	// --------------------------------------------------------------------------
	// Maintenance Operations
	// --------------------------------------------------------------------------

	// GarbageSize returns the number of bytes awaiting reclamation.
	GarbageSize() (size uint64, err error)

	// GarbageCollect requests an immediate garbage collection cycle and
	// returns without waiting for it to complete.
	GarbageCollect() (err error)

	// --------------------------------------------------------------------------
	// Introspection
	// --------------------------------------------------------------------------

	// KeyPosition returns the 1-based tuple position holding the key.
	KeyPosition() uint32

	// Info returns information about the table.
	// It is not guaranteed that all fields are up-to-date!
	Info() (info TableInfo, err error)

	// Close stops the table's background workers and releases its
	// memory. All subsequent operations fail with RetCTableClosed.
	Close() (err error)
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("TableError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new table Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// IsCode reports whether err is a table Error with the given code.
func IsCode(err error, code RetCode) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess              RetCode = iota // 0: Command executed successfully.
	RetCInternalError                       // 1: Command failed due to an internal error.
	RetCTableNotFound                       // 2: No table registered under the given name.
	RetCTableExists                         // 3: A table is already registered under the given name.
	RetCKeyAbsent                           // 4: Compound update on a key that is not stored.
	RetCInvalidFieldPosition                // 5: Operation names a tuple position outside [1, arity].
	RetCFieldTypeMismatch                   // 6: Field type does not match the operation (integer/list expected).
	RetCBadValue                            // 7: Stored value or operand has the wrong shape.
	RetCTableClosed                         // 8: Operation on a closed table.
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCTableNotFound:
		return "TableNotFound"
	case RetCTableExists:
		return "TableExists"
	case RetCKeyAbsent:
		return "KeyAbsent"
	case RetCInvalidFieldPosition:
		return "InvalidFieldPosition"
	case RetCFieldTypeMismatch:
		return "FieldTypeMismatch"
	case RetCBadValue:
		return "BadValue"
	case RetCTableClosed:
		return "TableClosed"
	default:
		return "Unknown"
	}
}
