package value

import (
	"testing"
)

func TestTermConstructorsCopyInput(t *testing.T) {
	raw := []byte("payload")
	b := Bytes(raw)
	raw[0] = 'X'
	if string(b.Bytes()) != "payload" {
		t.Errorf("Bytes should copy its input, got %q", b.Bytes())
	}

	items := []Term{Int(1), Int(2)}
	l := List(items...)
	items[0] = Int(99)
	if got := l.Items()[0].Int(); got != 1 {
		t.Errorf("List should copy its input, got %d", got)
	}
}

func TestTermFieldAccess(t *testing.T) {
	v := Tuple(String("id"), Int(10), List(Int(1), Int(2)))

	if v.Arity() != 3 {
		t.Errorf("expected arity 3, got %d", v.Arity())
	}

	f, ok := v.Field(2)
	if !ok || f.Int() != 10 {
		t.Errorf("expected field 2 = 10, got %v (ok=%v)", f, ok)
	}

	if _, ok := v.Field(0); ok {
		t.Errorf("field position 0 must be out of range")
	}
	if _, ok := v.Field(4); ok {
		t.Errorf("field position past arity must be out of range")
	}
	if _, ok := Int(1).Field(1); ok {
		t.Errorf("scalar terms have no fields")
	}
}

func TestTermEqual(t *testing.T) {
	a := Tuple(String("k"), Int(1), List(String("a")))
	b := Tuple(String("k"), Int(1), List(String("a")))
	c := Tuple(String("k"), Int(2), List(String("a")))

	if !a.Equal(b) {
		t.Errorf("structurally equal terms compared unequal")
	}
	if a.Equal(c) {
		t.Errorf("different terms compared equal")
	}
	if a.Equal(List(String("k"))) {
		t.Errorf("terms of different kind compared equal")
	}
}

func TestArenaAccounting(t *testing.T) {
	a := NewArena(1)

	v := Tuple(String("key"), Int(42))
	c := v.CopyInto(a)

	if !c.Equal(v) {
		t.Errorf("arena copy changed the term: %v != %v", c, v)
	}
	if a.Size() != int64(c.EstimateSize()) {
		t.Errorf("arena accounted %d bytes, expected %d", a.Size(), c.EstimateSize())
	}

	a.Release()
	if !a.Released() || a.Size() != 0 {
		t.Errorf("released arena should report zero size")
	}

	// the copy must stay valid after the arena is gone
	if got, _ := c.Field(2); got.Int() != 42 {
		t.Errorf("term invalidated by arena release")
	}
}

func TestArenaCopyIsDeep(t *testing.T) {
	a := NewArena(1)
	orig := Tuple(Bytes([]byte("abc")), List(Int(1)))
	c := orig.CopyInto(a)

	// mutating the copy's extracted bytes must not leak back
	extracted := c.Bytes()
	if extracted != nil {
		t.Errorf("tuple has no binary payload")
	}
	f, _ := c.Field(1)
	buf := f.Bytes()
	buf[0] = 'Z'
	f2, _ := c.Field(1)
	if string(f2.Bytes()) != "abc" {
		t.Errorf("term payload mutated through accessor copy")
	}
}
