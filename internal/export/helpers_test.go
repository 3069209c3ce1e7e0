package export

import (
	"bytes"
	"strings"

	"github.com/dgallion1/intelsheet/internal/parser"
	"github.com/fumiama/go-docx"
)

func newDocx() *docx.Docx {
	return docx.New().WithDefaultTheme()
}

// docxParse flattens a document to text: one line per paragraph, table
// rows as cells joined by " | ".
func docxParse(data []byte) (string, error) {
	d, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var lines []string
	for _, item := range d.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			lines = append(lines, parser.ParagraphText(it))
		case *docx.Table:
			for _, row := range it.TableRows {
				var cells []string
				for _, cell := range row.TableCells {
					var parts []string
					for _, p := range cell.Paragraphs {
						parts = append(parts, parser.ParagraphText(p))
					}
					cells = append(cells, strings.Join(parts, " "))
				}
				lines = append(lines, strings.Join(cells, " | "))
			}
		}
	}
	return strings.Join(lines, "\n"), nil
}
