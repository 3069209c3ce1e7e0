// Package schema turns a checklist document into the ordered list of fields
// the model is asked to fill, and reads and writes that list as JSON.
package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/dgallion1/intelsheet/internal/parser"
)

// DefaultType is the type recorded for scraped fields.
const DefaultType = "string"

// Field is one checklist entry.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Schema is the on-disk form: {"fields": [{"name": ..., "type": ...}]}.
type Schema struct {
	Fields []Field `json:"fields"`
}

// ErrEmpty is returned when a schema has no usable field names.
var ErrEmpty = errors.New("schema has no fields")

// Names returns the field names in order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s.Fields))
	for _, f := range s.Fields {
		if n := strings.TrimSpace(f.Name); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// fieldLine matches an optional bullet, the title, and an optional trailing colon.
var fieldLine = regexp.MustCompile(`^(?:[●•▪◦\-*]\s*)?(.+?)(?:\s*:\s*)?$`)

// ExtractFields scrapes field titles from checklist lines. Duplicate titles
// keep their first position.
func ExtractFields(lines []string) []string {
	seen := make(map[string]bool, len(lines))
	var fields []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m := fieldLine.FindStringSubmatch(line)
		if len(m) < 2 {
			continue
		}
		name := strings.TrimSpace(m[1])
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		fields = append(fields, name)
	}
	return fields
}

// FromDocument builds a schema with one string field per scraped title.
func FromDocument(doc *parser.Document) Schema {
	names := ExtractFields(doc.Lines())
	s := Schema{Fields: make([]Field, 0, len(names))}
	for _, n := range names {
		s.Fields = append(s.Fields, Field{Name: n, Type: DefaultType})
	}
	return s
}

// Build parses the checklist at srcPath and writes its schema to outPath.
func Build(srcPath, outPath string, opts parser.Options) (Schema, error) {
	doc, err := parser.ParseFile(srcPath, opts)
	if err != nil {
		return Schema{}, err
	}
	s := FromDocument(doc)
	if len(s.Fields) == 0 {
		return s, fmt.Errorf("%s: %w", srcPath, ErrEmpty)
	}
	if err := Save(outPath, s); err != nil {
		return s, err
	}
	return s, nil
}

// Load reads a schema file. Besides the {"fields": [...]} form, a bare
// array of fields is accepted.
func Load(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("read schema: %w", err)
	}
	return Decode(data)
}

// Decode parses schema JSON.
func Decode(data []byte) (Schema, error) {
	var s Schema
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		if err := json.Unmarshal(trimmed, &s.Fields); err != nil {
			return Schema{}, fmt.Errorf("decode schema: %w", err)
		}
	} else if err := json.Unmarshal(trimmed, &s); err != nil {
		return Schema{}, fmt.Errorf("decode schema: %w", err)
	}
	if len(s.Names()) == 0 {
		return Schema{}, ErrEmpty
	}
	for i := range s.Fields {
		if s.Fields[i].Type == "" {
			s.Fields[i].Type = DefaultType
		}
	}
	return s, nil
}

// Save writes the schema as indented JSON.
func Save(path string, s Schema) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	return nil
}
