package api

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// numberInput accepts a JSON number or a numeric string. null and "" mean
// no value. Anything else is recorded as invalid so the handler can name the
// field in its 400 response instead of silently dropping it.
type numberInput struct {
	Present bool
	Value   *float64
	Invalid bool
}

func (n *numberInput) UnmarshalJSON(data []byte) error {
	n.Present = true
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var f float64
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			n.Invalid = true
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			n.Invalid = true
			return nil
		}
		f = parsed
	} else if err := json.Unmarshal(data, &f); err != nil {
		n.Invalid = true
		return nil
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		n.Invalid = true
		return nil
	}
	n.Value = &f
	return nil
}

// Int returns the value as an int, or nil when it is absent or not a whole
// number
func (n numberInput) Int() (*int, bool) {
	if n.Value == nil {
		return nil, true
	}
	v := *n.Value
	if v != math.Trunc(v) || v > math.MaxInt32 || v < math.MinInt32 {
		return nil, false
	}
	i := int(v)
	return &i, true
}

// boolInput accepts true/false, "true"/"false" and 0/1
type boolInput struct {
	Value   bool
	Invalid bool
}

func (b *boolInput) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "1":
		b.Value = true
	case "false", "0", "", "null":
		b.Value = false
	default:
		b.Invalid = true
	}
	return nil
}

// documentsInput accepts a list of strings or a string holding a
// JSON-encoded list of strings
type documentsInput struct {
	Value   []string
	Invalid bool
}

func (d *documentsInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			d.Invalid = true
			return nil
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		data = []byte(s)
	}

	if err := json.Unmarshal(data, &d.Value); err != nil {
		d.Invalid = true
		d.Value = nil
	}
	return nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// optionalText returns nil for absent or blank strings
func optionalText(s *string) *string {
	v := trimmed(s)
	if v == "" {
		return nil
	}
	return &v
}
