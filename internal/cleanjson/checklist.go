package cleanjson

import (
	"strings"

	"github.com/iancoleman/orderedmap"
)

// AsObject reports whether v is a decoded JSON object. Nested objects come
// back from orderedmap as values, top-level ones as pointers.
func AsObject(v any) (*orderedmap.OrderedMap, bool) {
	switch o := v.(type) {
	case *orderedmap.OrderedMap:
		return o, o != nil
	case orderedmap.OrderedMap:
		return &o, true
	}
	return nil, false
}

// FindChecklist locates the intel.checklist object, either at the top
// level or under one wrapper key such as "Competitive". The first shape
// found wins.
func FindChecklist(doc *orderedmap.OrderedMap) (*orderedmap.OrderedMap, error) {
	if doc == nil {
		return nil, ErrChecklistNotFound
	}
	if cl, ok := intelChecklist(doc); ok {
		return cl, nil
	}
	for _, k := range doc.Keys() {
		v, _ := doc.Get(k)
		inner, ok := AsObject(v)
		if !ok {
			continue
		}
		if cl, ok := intelChecklist(inner); ok {
			return cl, nil
		}
	}
	return nil, ErrChecklistNotFound
}

func intelChecklist(o *orderedmap.OrderedMap) (*orderedmap.OrderedMap, bool) {
	intel, ok := objectKey(o, "intel")
	if !ok {
		return nil, false
	}
	return objectKey(intel, "checklist")
}

// objectKey returns the object under key, preferring an exact match over a
// case-insensitive one.
func objectKey(o *orderedmap.OrderedMap, key string) (*orderedmap.OrderedMap, bool) {
	if v, ok := o.Get(key); ok {
		return AsObject(v)
	}
	for _, k := range o.Keys() {
		if strings.EqualFold(strings.TrimSpace(k), key) {
			v, _ := o.Get(k)
			return AsObject(v)
		}
	}
	return nil, false
}

// Unwrap returns the inner object when doc has exactly one key whose value
// is an object; otherwise doc itself.
func Unwrap(doc *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	if doc == nil {
		return nil
	}
	keys := doc.Keys()
	if len(keys) != 1 {
		return doc
	}
	v, _ := doc.Get(keys[0])
	if inner, ok := AsObject(v); ok {
		return inner
	}
	return doc
}

// Checklist returns the intel.checklist object when present, else the
// unwrapped document.
func Checklist(doc *orderedmap.OrderedMap) *orderedmap.OrderedMap {
	if cl, err := FindChecklist(doc); err == nil {
		return cl
	}
	return Unwrap(doc)
}
