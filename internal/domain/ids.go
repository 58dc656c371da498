package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseID coerces s into a positive integer id. Surrounding whitespace is
// ignored; anything else that is not a positive base-10 integer is rejected.
func ParseID(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

// NormalizeLabelIDs turns a raw multi-select value into label ids.
//
// raw may be nil, a scalar (string or number) or a collection of scalars, as
// produced by decoding a form or JSON body. Elements that cannot be coerced to
// a positive integer are dropped silently. Order is preserved and duplicates
// are kept; callers that persist the result must tolerate them.
func NormalizeLabelIDs(raw any) []int64 {
	ids := []int64{}
	switch v := raw.(type) {
	case nil:
	case []string:
		for _, s := range v {
			if id, ok := ParseID(s); ok {
				ids = append(ids, id)
			}
		}
	case []any:
		for _, elem := range v {
			if id, ok := scalarID(elem); ok {
				ids = append(ids, id)
			}
		}
	case []int64:
		for _, id := range v {
			if id > 0 {
				ids = append(ids, id)
			}
		}
	default:
		if id, ok := scalarID(v); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func scalarID(v any) (int64, bool) {
	switch n := v.(type) {
	case string:
		return ParseID(n)
	case json.Number:
		return ParseID(n.String())
	case float64:
		if n != math.Trunc(n) || n <= 0 || n >= math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case int:
		return int64(n), n > 0
	case int64:
		return n, n > 0
	default:
		return 0, false
	}
}

// LabelSelection is the label multi-select of a task request. Present records
// whether the field was supplied at all, so partial updates can leave the
// label set untouched.
type LabelSelection struct {
	IDs     []int64
	Present bool
}

// UnmarshalJSON accepts null, a scalar or an array of scalars.
func (s *LabelSelection) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("labels: %w", err)
	}

	s.Present = true
	s.IDs = NormalizeLabelIDs(raw)
	return nil
}

// OptionalID is an id field that may be absent, explicitly empty (null or ""),
// or set. Values that cannot be coerced are kept in Raw so the caller can
// report them instead of failing the whole decode.
type OptionalID struct {
	Present bool
	Value   *int64
	Raw     string
}

// NewOptionalID parses a form value for an id field.
func NewOptionalID(present bool, s string) OptionalID {
	o := OptionalID{Present: present}
	if !present || strings.TrimSpace(s) == "" {
		return o
	}
	if id, ok := ParseID(s); ok {
		o.Value = &id
		return o
	}
	o.Raw = s
	return o
}

// UnmarshalJSON accepts null, "", a number or a numeric string.
func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Present = true
	o.Value = nil
	o.Raw = ""

	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	var s string
	if len(trimmed) > 0 && trimmed[0] == '"' {
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
	} else {
		s = string(trimmed)
	}

	*o = NewOptionalID(true, s)
	return nil
}

// MarshalJSON writes the value, or null when unset.
func (o OptionalID) MarshalJSON() ([]byte, error) {
	if o.Value != nil {
		return json.Marshal(*o.Value)
	}
	if o.Raw != "" {
		return json.Marshal(o.Raw)
	}
	return []byte("null"), nil
}

// Malformed reports whether a value was supplied that is not a valid id.
func (o OptionalID) Malformed() bool {
	return o.Present && o.Value == nil && o.Raw != ""
}
