package value

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// JSON Mapping (used by the CLI tools)
// --------------------------------------------------------------------------

// The mapping is lossless for the term model but assumes binary payloads
// are valid UTF-8 when rendered:
//
//	int   <-> JSON number
//	bytes <-> JSON string
//	list  <-> JSON array
//	tuple <-> JSON object {"t": [...]}

// MarshalJSON implements json.Marshaler.
func (t Term) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case KindInt:
		return json.Marshal(t.num)
	case KindBytes:
		return json.Marshal(string(t.bin))
	case KindList:
		items := t.items
		if items == nil {
			items = []Term{}
		}
		return json.Marshal(items)
	case KindTuple:
		fields := t.items
		if fields == nil {
			fields = []Term{}
		}
		return json.Marshal(map[string][]Term{"t": fields})
	default:
		return nil, fmt.Errorf("term json: unknown kind %d", t.kind)
	}
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Term) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	parsed, err := fromJSONValue(raw)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseJSON parses a JSON term literal.
func ParseJSON(s string) (Term, error) {
	var t Term
	if err := json.Unmarshal([]byte(s), &t); err != nil {
		return Term{}, fmt.Errorf("invalid term literal %q: %v", s, err)
	}
	return t, nil
}

func fromJSONValue(raw interface{}) (Term, error) {
	switch v := raw.(type) {
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Term{}, fmt.Errorf("term json: non-integer number %s", v)
		}
		return Int(n), nil

	case string:
		return String(v), nil

	case []interface{}:
		items := make([]Term, len(v))
		for i, item := range v {
			parsed, err := fromJSONValue(item)
			if err != nil {
				return Term{}, err
			}
			items[i] = parsed
		}
		return Term{kind: KindList, items: items}, nil

	case map[string]interface{}:
		fieldsRaw, ok := v["t"]
		if !ok || len(v) != 1 {
			return Term{}, fmt.Errorf("term json: object must be {\"t\": [...]}")
		}
		arr, ok := fieldsRaw.([]interface{})
		if !ok {
			return Term{}, fmt.Errorf("term json: tuple fields must be an array")
		}
		fields := make([]Term, len(arr))
		for i, item := range arr {
			parsed, err := fromJSONValue(item)
			if err != nil {
				return Term{}, err
			}
			fields[i] = parsed
		}
		return Term{kind: KindTuple, items: fields}, nil

	default:
		return Term{}, fmt.Errorf("term json: unsupported value %T", raw)
	}
}
