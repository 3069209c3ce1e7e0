package parser

import (
	"bufio"
	"io"
)

// TextParser handles plain text checklists; blank lines separate sections.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := &Document{Title: trimExt(filename, ".txt")}
	blank := true
	for scanner.Scan() {
		line := scanner.Text()
		if isBlank(line) {
			blank = true
			continue
		}
		if blank {
			doc.Sections = append(doc.Sections, &Section{})
			blank = false
		}
		doc.addLine(line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return doc, nil
}

func isBlank(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\r' {
			return false
		}
	}
	return true
}
