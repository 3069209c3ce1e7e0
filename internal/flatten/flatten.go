// Package flatten turns nested checklist objects into ordered rows for
// tabular export.
package flatten

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/dgallion1/intelsheet/internal/cleanjson"
	"github.com/iancoleman/orderedmap"
)

// Separator joins the path segments of a flattened field.
const Separator = " — "

// Row is one flattened field.
type Row struct {
	Field string
	Value any
}

// Text renders the row's value as cell text.
func (r Row) Text() string {
	return Render(r.Value)
}

// Flatten walks obj in key order. Nested objects extend the field path
// with sep; every other value is a leaf. A path produced twice keeps its
// first position and the last value.
func Flatten(obj *orderedmap.OrderedMap, sep string) []Row {
	if obj == nil {
		return nil
	}
	if sep == "" {
		sep = Separator
	}
	var rows []Row
	index := make(map[string]int)
	walk(obj, "", sep, &rows, index)
	return rows
}

func walk(obj *orderedmap.OrderedMap, parent, sep string, rows *[]Row, index map[string]int) {
	for _, k := range obj.Keys() {
		v, _ := obj.Get(k)
		key := k
		if parent != "" {
			key = parent + sep + k
		}
		if inner, ok := cleanjson.AsObject(v); ok {
			walk(inner, key, sep, rows, index)
			continue
		}
		if i, seen := index[key]; seen {
			(*rows)[i].Value = v
			continue
		}
		index[key] = len(*rows)
		*rows = append(*rows, Row{Field: key, Value: v})
	}
}

// Map returns the rows as a plain map, for lookups.
func Map(rows []Row) map[string]any {
	m := make(map[string]any, len(rows))
	for _, r := range rows {
		m[r.Field] = r.Value
	}
	return m
}

// Render converts a decoded JSON value to cell text. Arrays are joined
// with "; ", objects inside arrays become "k: v" pairs.
func Render(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return formatNumber(val)
	case json.Number:
		return val.String()
	case int:
		return strconv.Itoa(val)
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			if s := Render(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
	if obj, ok := cleanjson.AsObject(v); ok {
		rows := Flatten(obj, ".")
		parts := make([]string, 0, len(rows))
		for _, r := range rows {
			parts = append(parts, r.Field+": "+r.Text())
		}
		return strings.Join(parts, ", ")
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

func formatNumber(f float64) string {
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatInt(int64(f), 10)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
