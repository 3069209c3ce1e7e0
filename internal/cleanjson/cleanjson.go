// Package cleanjson recovers a JSON object from free-text model output.
//
// Clean applies, in order: code fence stripping, balanced object
// extraction, key-chain repair and trailing comma removal. Parse then
// decodes the result into an insertion-ordered object.
package cleanjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/iancoleman/orderedmap"
)

var (
	// ErrNoObject means the text contains no '{' at all.
	ErrNoObject = errors.New("no JSON object in model response")
	// ErrChecklistNotFound means neither known intel.checklist shape is present.
	ErrChecklistNotFound = errors.New("could not find intel.checklist in response")
)

// Clean runs the recovery chain and returns text ready for decoding.
func Clean(raw string) (string, error) {
	s := StripFence(raw)
	s, err := ExtractObject(s)
	if err != nil {
		return "", err
	}
	s = FixKeyChains(s)
	s = RemoveTrailingCommas(s)
	return s, nil
}

// Parse cleans raw and decodes it into an ordered object.
func Parse(raw string) (*orderedmap.OrderedMap, error) {
	cleaned, err := Clean(raw)
	if err != nil {
		return nil, err
	}
	doc := orderedmap.New()
	doc.SetEscapeHTML(false)
	if err := json.Unmarshal([]byte(cleaned), doc); err != nil {
		return nil, fmt.Errorf("parse recovered json: %w (cleaned: %s)", err, truncate(cleaned, 200))
	}
	return doc, nil
}

// StripFence removes an enclosing markdown code fence. The opening fence
// line, with any info string, is dropped along with a closing fence.
func StripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl < 0 {
		return strings.TrimSpace(strings.Trim(s, "`"))
	}
	body := strings.TrimSpace(s[nl+1:])
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}

// ExtractObject returns the first '{' through its matching '}'. Braces
// inside strings do not count. A closer that does not match the innermost
// opener first closes the openers above its partner; a closer with no
// partner at all is dropped. When the object never closes, the tail is
// repaired and the missing closers are appended in nesting order.
func ExtractObject(s string) (string, error) {
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return "", ErrNoObject
	}

	var out strings.Builder
	var stack []byte
	inString, escaped := false, false
	lastString := -1
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out.WriteByte(c)
			continue
		}
		switch c {
		case '"':
			inString = true
			lastString = out.Len()
		case '{', '[':
			stack = append(stack, c)
		case '}', ']':
			open := opener(c)
			if bytes.LastIndexByte(stack, open) < 0 {
				continue
			}
			for stack[len(stack)-1] != open {
				out.WriteByte(closer(stack[len(stack)-1]))
				stack = stack[:len(stack)-1]
			}
			stack = stack[:len(stack)-1]
			out.WriteByte(c)
			if len(stack) == 0 {
				return out.String(), nil
			}
			continue
		}
		out.WriteByte(c)
	}
	return closeTruncated(out.String(), stack, inString, escaped, lastString), nil
}

// closeTruncated finishes an object cut off mid-stream. An open string is
// closed, a dangling key or partial literal is dropped, a trailing comma
// is removed and a value-less colon gets null.
func closeTruncated(tail string, stack []byte, inString, escaped bool, lastString int) string {
	if inString {
		if escaped {
			tail = tail[:len(tail)-1]
		}
		tail += `"`
	}
	tail = strings.TrimRight(tail, " \t\r\n")

	if !inString {
		tail = trimPartialValue(tail)
	}
	if strings.HasSuffix(tail, `"`) && lastString >= 0 && len(stack) > 0 && stack[len(stack)-1] == '{' {
		before := strings.TrimRight(tail[:lastString], " \t\r\n")
		if strings.HasSuffix(before, "{") || strings.HasSuffix(before, ",") {
			tail = before
		}
	}
	tail = strings.TrimRight(strings.TrimSuffix(tail, ","), " \t\r\n")

	var b strings.Builder
	b.WriteString(tail)
	if strings.HasSuffix(tail, ":") {
		b.WriteString("null")
	}
	for i := len(stack) - 1; i >= 0; i-- {
		b.WriteByte(closer(stack[i]))
	}
	return b.String()
}

// trimPartialValue drops a bare literal or number at the end of s that
// is not valid JSON on its own, such as "tru" or "1.".
func trimPartialValue(s string) string {
	i := len(s)
	for i > 0 && isBareByte(s[i-1]) {
		i--
	}
	if i == len(s) || json.Valid([]byte(s[i:])) {
		return s
	}
	return strings.TrimRight(s[:i], " \t\r\n")
}

func isBareByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '.', c == '-', c == '+':
		return true
	}
	return false
}

func opener(c byte) byte {
	if c == ']' {
		return '['
	}
	return '{'
}

func closer(c byte) byte {
	if c == '[' {
		return ']'
	}
	return '}'
}

// FixKeyChains rewrites `"key": "key2": value` into `"key key2": value`
// until no chain is left.
func FixKeyChains(s string) string {
	for {
		out, changed := fixKeyChainsOnce(s)
		if !changed {
			return out
		}
		s = out
	}
}

func fixKeyChainsOnce(s string) (string, bool) {
	var out strings.Builder
	out.Grow(len(s))
	changed := false

	i := 0
	for i < len(s) {
		if s[i] != '"' {
			out.WriteByte(s[i])
			i++
			continue
		}
		end := stringEnd(s, i)
		if end < 0 {
			out.WriteString(s[i:])
			break
		}
		if next, ok := chainedKey(s, end); ok {
			// next is the second key's span; s[next.end:] starts at its colon.
			out.WriteByte('"')
			out.WriteString(s[i+1 : end-1])
			out.WriteByte(' ')
			out.WriteString(s[next.start+1 : next.end-1])
			out.WriteByte('"')
			i = skipSpace(s, next.end)
			changed = true
			continue
		}
		out.WriteString(s[i:end])
		i = end
	}
	return out.String(), changed
}

type span struct{ start, end int }

// chainedKey reports whether the string ending at end is followed by
// `: "other":`, returning the span of "other".
func chainedKey(s string, end int) (span, bool) {
	j := skipSpace(s, end)
	if j >= len(s) || s[j] != ':' {
		return span{}, false
	}
	k := skipSpace(s, j+1)
	if k >= len(s) || s[k] != '"' {
		return span{}, false
	}
	end2 := stringEnd(s, k)
	if end2 < 0 {
		return span{}, false
	}
	m := skipSpace(s, end2)
	if m >= len(s) || s[m] != ':' {
		return span{}, false
	}
	return span{start: k, end: end2}, true
}

// RemoveTrailingCommas drops commas that directly precede '}' or ']'.
func RemoveTrailingCommas(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			out.WriteByte(c)
			continue
		}
		if c == '"' {
			inString = true
		}
		if c == ',' {
			if j := skipSpace(s, i+1); j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		out.WriteByte(c)
	}
	return out.String()
}

// stringEnd returns the index just past the closing quote of the string
// opening at i, or -1 if it never closes.
func stringEnd(s string, i int) int {
	for j := i + 1; j < len(s); j++ {
		switch s[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return -1
}

func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			i++
		default:
			return i
		}
	}
	return i
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
