package value

import (
	"bytes"
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// Term Kinds
// --------------------------------------------------------------------------

// Kind identifies the shape of a Term.
type Kind uint8

const (
	KindInt   Kind = iota // signed 64-bit integer
	KindBytes             // opaque binary
	KindList              // ordered sequence of terms
	KindTuple             // fixed-arity record of terms
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindTuple:
		return "tuple"
	default:
		return "unknown"
	}
}

// --------------------------------------------------------------------------
// Term Type
// --------------------------------------------------------------------------

// Term is an immutable, opaque datum. The zero value is Int(0).
//
// Terms are structurally shared only through explicit deep copies
// (see CopyInto), so a Term handed out by the engine is always safe to
// retain and read concurrently.
type Term struct {
	kind  Kind
	num   int64
	bin   []byte
	items []Term
}

// Int creates an integer term.
func Int(v int64) Term {
	return Term{kind: KindInt, num: v}
}

// Bytes creates a binary term. The input slice is copied.
func Bytes(b []byte) Term {
	c := make([]byte, len(b))
	copy(c, b)
	return Term{kind: KindBytes, bin: c}
}

// String creates a binary term from a string.
func String(s string) Term {
	return Term{kind: KindBytes, bin: []byte(s)}
}

// List creates a list term. The input slice is copied.
func List(items ...Term) Term {
	c := make([]Term, len(items))
	copy(c, items)
	return Term{kind: KindList, items: c}
}

// Tuple creates a tuple term. The input slice is copied.
func Tuple(fields ...Term) Term {
	c := make([]Term, len(fields))
	copy(c, fields)
	return Term{kind: KindTuple, items: c}
}

// --------------------------------------------------------------------------
// Accessors
// --------------------------------------------------------------------------

// Kind returns the term's kind.
func (t Term) Kind() Kind { return t.kind }

// IsNumber reports whether the term is numeric.
func (t Term) IsNumber() bool { return t.kind == KindInt }

// IsList reports whether the term is a list.
func (t Term) IsList() bool { return t.kind == KindList }

// IsTuple reports whether the term is a tuple.
func (t Term) IsTuple() bool { return t.kind == KindTuple }

// Int returns the numeric payload (0 for non-numeric terms).
func (t Term) Int() int64 { return t.num }

// Bytes returns a copy of the binary payload (nil for non-binary terms).
func (t Term) Bytes() []byte {
	if t.bin == nil {
		return nil
	}
	c := make([]byte, len(t.bin))
	copy(c, t.bin)
	return c
}

// Items returns a copy of the element slice of a list or tuple
// (nil for scalar terms).
func (t Term) Items() []Term {
	if t.items == nil {
		return nil
	}
	c := make([]Term, len(t.items))
	copy(c, t.items)
	return c
}

// Arity returns the number of fields of a tuple, or -1 for any other kind.
func (t Term) Arity() int {
	if t.kind != KindTuple {
		return -1
	}
	return len(t.items)
}

// Len returns the number of elements of a list, or -1 for any other kind.
func (t Term) Len() int {
	if t.kind != KindList {
		return -1
	}
	return len(t.items)
}

// Field returns the tuple field at the given 1-based position.
// The boolean is false if the term is not a tuple or the position is
// outside [1, arity].
func (t Term) Field(pos int) (Term, bool) {
	if t.kind != KindTuple || pos < 1 || pos > len(t.items) {
		return Term{}, false
	}
	return t.items[pos-1], true
}

// --------------------------------------------------------------------------
// Structural Operations
// --------------------------------------------------------------------------

// Equal reports deep structural equality.
func (t Term) Equal(o Term) bool {
	if t.kind != o.kind {
		return false
	}
	switch t.kind {
	case KindInt:
		return t.num == o.num
	case KindBytes:
		return bytes.Equal(t.bin, o.bin)
	default:
		if len(t.items) != len(o.items) {
			return false
		}
		for i := range t.items {
			if !t.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	}
}

// EstimateSize returns the estimated memory footprint of the term in bytes.
// The estimate is used for garbage accounting, not as an exact measurement.
func (t Term) EstimateSize() int {
	// per-node overhead: struct header plus allocator slack
	const nodeOverhead = 48

	size := nodeOverhead
	switch t.kind {
	case KindBytes:
		size += len(t.bin)
	case KindList, KindTuple:
		for _, item := range t.items {
			size += item.EstimateSize()
		}
	}
	return size
}

// deepCopy duplicates the term including all backing storage.
func (t Term) deepCopy() Term {
	c := Term{kind: t.kind, num: t.num}
	if t.bin != nil {
		c.bin = make([]byte, len(t.bin))
		copy(c.bin, t.bin)
	}
	if t.items != nil {
		c.items = make([]Term, len(t.items))
		for i := range t.items {
			c.items[i] = t.items[i].deepCopy()
		}
	}
	return c
}

// CopyInto deep-copies the term into the given arena and returns the copy.
// This is the copy-into-environment primitive used whenever a term crosses
// an arena boundary (storage commit, batch reply, host hand-off).
func (t Term) CopyInto(a *Arena) Term {
	return a.Copy(t)
}

// String renders the term for logs and diagnostics.
func (t Term) String() string {
	switch t.kind {
	case KindInt:
		return fmt.Sprintf("%d", t.num)
	case KindBytes:
		return fmt.Sprintf("%q", t.bin)
	case KindList, KindTuple:
		var sb strings.Builder
		open, closing := "[", "]"
		if t.kind == KindTuple {
			open, closing = "{", "}"
		}
		sb.WriteString(open)
		for i, item := range t.items {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(item.String())
		}
		sb.WriteString(closing)
		return sb.String()
	default:
		return "?"
	}
}
