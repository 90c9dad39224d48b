package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Encode turns a record into the map written to the store. The id lives in
// the document key, not in the data.
func Encode(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	delete(m, "id")
	return m, nil
}

// Decode fills out from the document data plus its id.
func Decode(doc Document, out any) error {
	m := make(map[string]any, len(doc.Data)+1)
	for k, v := range doc.Data {
		m[k] = v
	}
	m["id"] = doc.ID

	b, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode document %s: %w", doc.ID, err)
	}
	return nil
}

func DecodeAll[T any](docs []Document) ([]T, error) {
	out := make([]T, 0, len(docs))
	for _, doc := range docs {
		var v T
		if err := Decode(doc, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// normalize deep-copies data through JSON so every backend hands back the
// same shapes: float64 numbers, string instants, []any and map[string]any.
func normalize(data map[string]any) (map[string]any, error) {
	if data == nil {
		return map[string]any{}, nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// applyFields writes fields into data, following dotted paths and resolving
// Increment against the current value.
func applyFields(data map[string]any, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		target := data
		for _, part := range parts[:len(parts)-1] {
			next, ok := target[part].(map[string]any)
			if !ok {
				next = map[string]any{}
				target[part] = next
			}
			target = next
		}

		leaf := parts[len(parts)-1]
		if inc, ok := fields[key].(Increment); ok {
			target[leaf] = toFloat(target[leaf]) + float64(inc.By)
			continue
		}
		target[leaf] = fields[key]
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case int32:
		return float64(n)
	}
	return 0
}
