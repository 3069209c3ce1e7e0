package export

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/dgallion1/intelsheet/internal/flatten"
	"github.com/fumiama/go-docx"
	"github.com/iancoleman/orderedmap"
)

// Side is one company in a comparison.
type Side struct {
	Name      string
	Checklist *orderedmap.OrderedMap
}

// CompareContext builds the template variables: company1_name,
// company2_name and company{1,2}_<field key> for every checklist entry.
func CompareContext(a, b Side) map[string]string {
	ctx := map[string]string{
		"company1_name": a.Name,
		"company2_name": b.Name,
	}
	for i, side := range []Side{a, b} {
		if side.Checklist == nil {
			continue
		}
		prefix := fmt.Sprintf("company%d_", i+1)
		for _, k := range side.Checklist.Keys() {
			v, _ := side.Checklist.Get(k)
			ctx[prefix+ContextKey(k)] = PlainText(flatten.Render(v))
		}
	}
	return ctx
}

var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

// RenderTemplateFile fills the {{ key }} placeholders of the Word template
// at path and writes the result to w. Unknown keys render empty.
func RenderTemplateFile(w io.Writer, path string, ctx map[string]string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open template: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat template: %w", err)
	}
	return RenderTemplate(w, f, info.Size(), ctx)
}

// RenderTemplate is RenderTemplateFile over an already open document.
func RenderTemplate(w io.Writer, r io.ReaderAt, size int64, ctx map[string]string) error {
	d, err := docx.Parse(r, size)
	if err != nil {
		return fmt.Errorf("parse template: %w", err)
	}
	for _, item := range d.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			fillParagraph(it, ctx)
		case *docx.Table:
			for _, row := range it.TableRows {
				for _, cell := range row.TableCells {
					for _, para := range cell.Paragraphs {
						fillParagraph(para, ctx)
					}
				}
			}
		}
	}
	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

// fillParagraph substitutes across runs, since Word often splits a
// placeholder over several of them. The result lands in the first text
// node and the others are emptied.
func fillParagraph(p *docx.Paragraph, ctx map[string]string) {
	var texts []*docx.Text
	var full strings.Builder
	for _, child := range p.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				texts = append(texts, t)
				full.WriteString(t.Text)
			}
		}
	}
	if len(texts) == 0 || !strings.Contains(full.String(), "{{") {
		return
	}
	texts[0].Text = placeholder.ReplaceAllStringFunc(full.String(), func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		return ctx[key]
	})
	texts[0].XMLSpace = "preserve"
	for _, t := range texts[1:] {
		t.Text = ""
	}
}

// WriteComparison fills the Word template at tmplPath when it exists and
// falls back to BuildComparison otherwise.
func WriteComparison(w io.Writer, tmplPath string, a, b Side) error {
	if tmplPath != "" {
		if _, err := os.Stat(tmplPath); err == nil {
			return RenderTemplateFile(w, tmplPath, CompareContext(a, b))
		}
	}
	return BuildComparison(w, a, b)
}

// BuildComparison writes a generated document: a title and a three column
// table of every flattened field, first company's order first.
func BuildComparison(w io.Writer, a, b Side) error {
	rowsA := flatten.Flatten(a.Checklist, flatten.Separator)
	rowsB := flatten.Flatten(b.Checklist, flatten.Separator)
	valuesA, valuesB := flatten.Map(rowsA), flatten.Map(rowsB)

	var fields []string
	seen := make(map[string]bool)
	for _, rows := range [][]flatten.Row{rowsA, rowsB} {
		for _, r := range rows {
			if !seen[r.Field] {
				seen[r.Field] = true
				fields = append(fields, r.Field)
			}
		}
	}

	d := docx.New().WithDefaultTheme()
	d.AddParagraph().AddText(fmt.Sprintf("%s vs %s", a.Name, b.Name)).Bold().Size("32")
	d.AddParagraph().AddText("Competitive intelligence comparison").Italic()

	tbl := d.AddTable(len(fields)+1, 3, 0, nil)
	header := []string{"Field", a.Name, b.Name}
	for c, h := range header {
		tbl.TableRows[0].TableCells[c].AddParagraph().AddText(h).Bold()
	}
	for i, field := range fields {
		cells := tbl.TableRows[i+1].TableCells
		cells[0].AddParagraph().AddText(field)
		cells[1].AddParagraph().AddText(cellText(valuesA, field))
		cells[2].AddParagraph().AddText(cellText(valuesB, field))
	}

	if _, err := d.WriteTo(w); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	return nil
}

func cellText(values map[string]any, field string) string {
	v, ok := values[field]
	if !ok {
		return "—"
	}
	return PlainText(flatten.Render(v))
}
