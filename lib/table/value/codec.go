package value

import (
	"encoding/binary"
	"fmt"
)

// --------------------------------------------------------------------------
// Binary Term Codec
// --------------------------------------------------------------------------

// Wire format, big endian throughout:
//
//	int:   tag(1) | value(8)
//	bytes: tag(1) | length(4) | data
//	list:  tag(1) | count(4)  | element terms
//	tuple: tag(1) | count(4)  | field terms

const (
	tagInt byte = iota + 1
	tagBytes
	tagList
	tagTuple
)

// Encode serializes a term into its binary wire form.
func Encode(t Term) []byte {
	return appendTerm(make([]byte, 0, t.EstimateSize()), t)
}

func appendTerm(b []byte, t Term) []byte {
	switch t.kind {
	case KindInt:
		b = append(b, tagInt)
		b = binary.BigEndian.AppendUint64(b, uint64(t.num))
	case KindBytes:
		b = append(b, tagBytes)
		b = binary.BigEndian.AppendUint32(b, uint32(len(t.bin)))
		b = append(b, t.bin...)
	case KindList, KindTuple:
		if t.kind == KindList {
			b = append(b, tagList)
		} else {
			b = append(b, tagTuple)
		}
		b = binary.BigEndian.AppendUint32(b, uint32(len(t.items)))
		for _, item := range t.items {
			b = appendTerm(b, item)
		}
	}
	return b
}

// Decode deserializes a term from its binary wire form.
// Trailing bytes after the term are treated as an error.
func Decode(b []byte) (Term, error) {
	t, rest, err := decodeTerm(b)
	if err != nil {
		return Term{}, err
	}
	if len(rest) != 0 {
		return Term{}, fmt.Errorf("term codec: %d trailing bytes", len(rest))
	}
	return t, nil
}

func decodeTerm(b []byte) (Term, []byte, error) {
	if len(b) < 1 {
		return Term{}, nil, fmt.Errorf("term codec: truncated input")
	}
	tag := b[0]
	b = b[1:]

	switch tag {
	case tagInt:
		if len(b) < 8 {
			return Term{}, nil, fmt.Errorf("term codec: truncated int")
		}
		return Term{kind: KindInt, num: int64(binary.BigEndian.Uint64(b[:8]))}, b[8:], nil

	case tagBytes:
		if len(b) < 4 {
			return Term{}, nil, fmt.Errorf("term codec: truncated bytes header")
		}
		n := int(binary.BigEndian.Uint32(b[:4]))
		b = b[4:]
		if len(b) < n {
			return Term{}, nil, fmt.Errorf("term codec: truncated bytes payload (want %d, have %d)", n, len(b))
		}
		bin := make([]byte, n)
		copy(bin, b[:n])
		return Term{kind: KindBytes, bin: bin}, b[n:], nil

	case tagList, tagTuple:
		if len(b) < 4 {
			return Term{}, nil, fmt.Errorf("term codec: truncated container header")
		}
		n := int(binary.BigEndian.Uint32(b[:4]))
		b = b[4:]
		// Every element occupies at least its tag byte, so a count beyond
		// the remaining input is malformed. Checked before allocating to
		// keep hostile counts from requesting huge slices.
		if n > len(b) {
			return Term{}, nil, fmt.Errorf("term codec: container count %d exceeds remaining input (%d bytes)", n, len(b))
		}
		items := make([]Term, n)
		var err error
		for i := 0; i < n; i++ {
			items[i], b, err = decodeTerm(b)
			if err != nil {
				return Term{}, nil, err
			}
		}
		kind := KindList
		if tag == tagTuple {
			kind = KindTuple
		}
		return Term{kind: kind, items: items}, b, nil

	default:
		return Term{}, nil, fmt.Errorf("term codec: unknown tag 0x%02x", tag)
	}
}
