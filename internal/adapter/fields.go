package adapter

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// looseString accepts a JSON string or any other scalar (ids arrive as
// numbers from some providers) and keeps its textual form.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = looseString(v)
		return nil
	}
	*s = looseString(data)
	return nil
}

func (s *looseString) ptr() *string {
	if s == nil {
		return nil
	}
	v := string(*s)
	return &v
}

// textField accepts either a string or an array. Array entries are joined
// with commas and null entries become empty strings, so a list renders the
// same way a JavaScript client would stringify it.
type textField string

func (t *textField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = textField(v)
	case '[':
		var items []any
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*t = textField(joinArray(items))
	}
	return nil
}

func joinArray(items []any) string {
	parts := make([]string, len(items))
	for i, it := range items {
		switch v := it.(type) {
		case string:
			parts[i] = v
		case float64:
			parts[i] = strconv.FormatFloat(v, 'f', -1, 64)
		case bool:
			parts[i] = strconv.FormatBool(v)
		case []any:
			parts[i] = joinArray(v)
		case map[string]any:
			parts[i] = "[object Object]"
		}
	}
	return strings.Join(parts, ",")
}

// joinSections joins non-empty description sections with a blank line.
func joinSections(sections ...string) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		if s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
