package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser handles checklists kept as spreadsheets. The first non-empty
// cell of each row is the line; a leading "field" or "name" header row is
// skipped.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	doc := &Document{Title: trimExt(filename, ".csv")}
	for i, row := range records {
		cell := firstCell(row)
		if i == 0 && isHeaderCell(cell) {
			continue
		}
		doc.addLine(cell)
	}
	return doc, nil
}

func firstCell(row []string) string {
	for _, c := range row {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}

func isHeaderCell(cell string) bool {
	switch strings.ToLower(cell) {
	case "field", "fields", "name":
		return true
	}
	return false
}
