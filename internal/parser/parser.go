package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Document is a checklist source reduced to ordered lines of text.
type Document struct {
	Title    string
	Sections []*Section
}

// Section groups the lines found under one heading (or page, for PDFs).
type Section struct {
	Heading string // empty for text before the first heading
	Lines   []string
}

// Lines returns every heading and line in document order, blanks dropped.
func (d *Document) Lines() []string {
	var out []string
	for _, s := range d.Sections {
		if h := strings.TrimSpace(s.Heading); h != "" {
			out = append(out, h)
		}
		for _, l := range s.Lines {
			if l = strings.TrimSpace(l); l != "" {
				out = append(out, l)
			}
		}
	}
	return out
}

// section returns the last section, creating an untitled one if needed.
func (d *Document) section() *Section {
	if len(d.Sections) == 0 {
		d.Sections = append(d.Sections, &Section{})
	}
	return d.Sections[len(d.Sections)-1]
}

func (d *Document) addLine(text string) {
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			s := d.section()
			s.Lines = append(s.Lines, l)
		}
	}
}

func (d *Document) addHeading(title string) {
	d.Sections = append(d.Sections, &Section{Heading: strings.TrimSpace(title)})
}

// Parser converts raw checklist bytes into a Document.
type Parser interface {
	Parse(r io.Reader, filename string) (*Document, error)
}

// Options tunes parsers that have fallbacks.
type Options struct {
	PDFFallbackPdftotext bool
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension %q (want .txt, .md, .markdown, .csv, .html, .htm, .pdf or .docx)", ext)
	}
}

// ParseFile opens path and parses it with the parser for its extension.
func ParseFile(path string, opts Options) (*Document, error) {
	p, err := ForFile(path, opts)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open checklist: %w", err)
	}
	defer f.Close()

	doc, err := p.Parse(f, filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

func trimExt(filename string, exts ...string) string {
	for _, ext := range exts {
		if strings.HasSuffix(strings.ToLower(filename), ext) {
			return filename[:len(filename)-len(ext)]
		}
	}
	return filename
}
