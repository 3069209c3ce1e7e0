package parser

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMarkdownParser_ListItemsBecomeLines(t *testing.T) {
	input := `# Competitive Checklist

## Company

- Company Overview:
- **Headquarters**
  - City

## Market

Target Customers
Pricing Model:
`
	p := &MarkdownParser{}
	doc, err := p.Parse(strings.NewReader(input), "checklist.md")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "checklist" {
		t.Errorf("expected title %q, got %q", "checklist", doc.Title)
	}

	want := []string{
		"Competitive Checklist",
		"Company",
		"Company Overview:",
		"Headquarters",
		"City",
		"Market",
		"Target Customers",
		"Pricing Model:",
	}
	if diff := cmp.Diff(want, doc.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}

	if len(doc.Sections) != 3 {
		t.Fatalf("expected 3 sections, got %d", len(doc.Sections))
	}
	if doc.Sections[2].Heading != "Market" {
		t.Errorf("expected third heading %q, got %q", "Market", doc.Sections[2].Heading)
	}
}

func TestHTMLParser_HeadingsAndItems(t *testing.T) {
	input := `<html><head><title>Intel Checklist</title><style>p{}</style></head>
<body>
<h2>Basics</h2>
<ul><li>Founded<ul><li>Founders</li></ul></li><li>Revenue:</li></ul>
<table><tr><td>Employees</td></tr></table>
<script>var x = "ignored";</script>
</body></html>`
	p := &HTMLParser{}
	doc, err := p.Parse(strings.NewReader(input), "list.html")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Title != "Intel Checklist" {
		t.Errorf("expected title from <title>, got %q", doc.Title)
	}
	want := []string{"Basics", "Founded", "Founders", "Revenue:", "Employees"}
	if diff := cmp.Diff(want, doc.Lines()); diff != "" {
		t.Errorf("lines mismatch (-want +got):\n%s", diff)
	}
}
