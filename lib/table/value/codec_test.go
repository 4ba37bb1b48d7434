package value

import (
	"testing"
)

func TestBinaryCodecRoundTrip(t *testing.T) {
	terms := []Term{
		Int(0),
		Int(-12345),
		Bytes(nil),
		String("hello world"),
		List(),
		List(Int(1), String("two"), List(Int(3))),
		Tuple(String("counter"), Int(99), List(String("a"), String("b"))),
	}

	for _, orig := range terms {
		decoded, err := Decode(Encode(orig))
		if err != nil {
			t.Errorf("decode failed for %v: %v", orig, err)
			continue
		}
		if !decoded.Equal(orig) {
			t.Errorf("round trip mismatch: %v != %v", decoded, orig)
		}
	}
}

func TestBinaryCodecRejectsGarbage(t *testing.T) {
	if _, err := Decode(nil); err == nil {
		t.Errorf("empty input should fail")
	}
	if _, err := Decode([]byte{0xff, 0x00}); err == nil {
		t.Errorf("unknown tag should fail")
	}
	if _, err := Decode(Encode(Int(1))[:3]); err == nil {
		t.Errorf("truncated input should fail")
	}

	// trailing bytes after a complete term
	b := append(Encode(Int(1)), 0x00)
	if _, err := Decode(b); err == nil {
		t.Errorf("trailing bytes should fail")
	}
}

func TestBinaryCodecRejectsOversizedCounts(t *testing.T) {
	// container counts larger than the remaining input must fail before
	// any allocation happens, no matter how large the count claims to be
	cases := [][]byte{
		{tagList, 0xff, 0xff, 0xff, 0xff},
		{tagTuple, 0xff, 0xff, 0xff, 0xff},
		{tagList, 0x00, 0x00, 0x00, 0x02, tagInt, 0, 0, 0, 0, 0, 0, 0, 1},
	}
	for _, input := range cases {
		if _, err := Decode(input); err == nil {
			t.Errorf("oversized container count should fail for % x", input)
		}
	}

	// a nested hostile count must fail the same way
	nested := Encode(List(List()))
	nested[len(nested)-1] = 0xff // corrupt the inner count's low byte
	if _, err := Decode(nested); err == nil {
		t.Errorf("corrupted nested count should fail")
	}
}

func TestJSONMapping(t *testing.T) {
	orig := Tuple(String("user"), Int(7), List(String("x"), Int(2)))

	data, err := orig.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	parsed, err := ParseJSON(string(data))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if !parsed.Equal(orig) {
		t.Errorf("json round trip mismatch: %v != %v", parsed, orig)
	}
}

func TestJSONParseErrors(t *testing.T) {
	for _, input := range []string{
		`1.5`,                 // non-integer number
		`{"x": []}`,           // wrong object key
		`{"t": [], "u": []}`,  // extra key
		`{"t": "not-a-list"}`, // tuple fields must be an array
		`true`,                // unsupported value
	} {
		if _, err := ParseJSON(input); err == nil {
			t.Errorf("expected parse error for %s", input)
		}
	}
}
