package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/intelsheet/internal/flatten"
	"github.com/google/go-cmp/cmp"
	"github.com/iancoleman/orderedmap"
	"github.com/xuri/excelize/v2"
)

func mustParse(t *testing.T, s string) *orderedmap.OrderedMap {
	t.Helper()
	o := orderedmap.New()
	if err := json.Unmarshal([]byte(s), o); err != nil {
		t.Fatalf("parse %s: %v", s, err)
	}
	return o
}

func TestNaming(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{JSONName("Acme Corp"), "output_Acme Corp.json"},
		{CSVName("Acme/Corp"), "output_Acme_Corp.csv"},
		{XLSXName("Acme"), "output_Acme.xlsx"},
		{StyledXLSXName("Acme"), "output_Acme_styled.xlsx"},
		{ComparisonName("Acme", "Globex"), "final_Acme_vs_Globex.docx"},
		{SafeName("../../etc"), "_etc"},
		{SafeName("   "), "unnamed"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("expected %q, got %q", tt.want, tt.got)
		}
	}
}

func TestContextKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Target Customers", "target_customers"},
		{"Company Overview — Founded", "company_overview_founded"},
		{"  Revenue (USD, 2023)  ", "revenue_usd_2023"},
		{"R&D", "r_d"},
	}
	for _, tt := range tests {
		if got := ContextKey(tt.in); got != tt.want {
			t.Errorf("ContextKey(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestPlainText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain answer", "Plain answer"},
		{"**Bold** claim", "Bold claim"},
		{"__Bold__ and _italic_", "Bold and italic"},
		{"***both***", "both"},
		{"- one\n- **two**", "- one\n- two"},
		{"See [site](https://acme.example)", "See [site](https://acme.example)"},
		{"snake_case stays", "snake_case stays"},
		{"5 * 3 * 2", "5 * 3 * 2"},
		{"Website: <https://acme.com>", "Website: <https://acme.com>"},
		{"Contact <sales@acme.com>", "Contact <sales@acme.com>"},
		{"> 50% of the **US** market", "> 50% of the US market"},
		{"2019. Founded in *Austin*", "2019. Founded in Austin"},
		{"# of employees: 500", "# of employees: 500"},
		{"# of **full-time** employees", "# of full-time employees"},
		{"Uses <Kafka> and **Go**", "Uses <Kafka> and Go"},
		{"`**literal**` code", "`**literal**` code"},
	}
	for _, tt := range tests {
		if got := PlainText(tt.in); got != tt.want {
			t.Errorf("PlainText(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestWriteCSV(t *testing.T) {
	rows := flatten.Flatten(mustParse(t, `{"Overview":{"Founded":1999,"HQ":"Berlin, DE"},"Products":["A","B"]}`), flatten.Separator)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"Field", "Value"},
		{"Overview — Founded", "1999"},
		{"Overview — HQ", "Berlin, DE"},
		{"Products", "A; B"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteCSV_MatchesSpreadsheetText(t *testing.T) {
	rows := flatten.Flatten(mustParse(t, `{"Market":"> 50% of the **US** market","Site":"<https://acme.com>"}`), flatten.Separator)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want := [][]string{
		{"Field", "Value"},
		{"Market", "> 50% of the US market"},
		{"Site", "<https://acme.com>"},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
	for _, r := range rows {
		if got := cellValue(r.Value); got != PlainText(r.Text()) {
			t.Errorf("%s: xlsx cell %v differs from csv value %q", r.Field, got, PlainText(r.Text()))
		}
	}
}

func TestWriteJSONKeepsKeyOrder(t *testing.T) {
	doc := mustParse(t, `{"zeta":1,"alpha":{"b":"<x>","a":2}}`)
	var buf bytes.Buffer
	if err := WriteJSON(&buf, doc); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "{\n  \"zeta\": 1,\n  \"alpha\": {\n    \"b\": \"<x>\",\n    \"a\": 2\n  }\n}\n"
	if buf.String() != want {
		t.Errorf("expected:\n%s\ngot:\n%s", want, buf.String())
	}

	path := filepath.Join(t.TempDir(), "doc.json")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
	back, err := ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON: %v", err)
	}
	if diff := cmp.Diff([]string{"zeta", "alpha"}, back.Keys()); diff != "" {
		t.Errorf("keys mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteXLSX(t *testing.T) {
	rows := flatten.Flatten(mustParse(t, `{"Name":"Acme","Employees":1200,"Public":true}`), flatten.Separator)

	for _, styled := range []bool{false, true} {
		var buf bytes.Buffer
		if err := WriteXLSX(&buf, rows, styled); err != nil {
			t.Fatalf("styled=%v: unexpected error: %v", styled, err)
		}
		f, err := excelize.OpenReader(&buf)
		if err != nil {
			t.Fatalf("styled=%v: open workbook: %v", styled, err)
		}
		sheet := "Sheet1"
		if styled {
			sheet = SheetName
		}
		got, err := f.GetRows(sheet)
		if err != nil {
			t.Fatalf("styled=%v: read rows: %v", styled, err)
		}
		want := [][]string{
			{"Field", "Value"},
			{"Name", "Acme"},
			{"Employees", "1200"},
			{"Public", "TRUE"},
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("styled=%v: rows mismatch (-want +got):\n%s", styled, diff)
		}

		if styled {
			panes, err := f.GetPanes(sheet)
			if err != nil {
				t.Fatalf("get panes: %v", err)
			}
			if !panes.Freeze || panes.TopLeftCell != "A2" {
				t.Errorf("expected frozen header at A2, got %+v", panes)
			}
			width, err := f.GetColWidth(sheet, "B")
			if err != nil {
				t.Fatalf("get width: %v", err)
			}
			if width != 80 {
				t.Errorf("expected column B width 80, got %v", width)
			}
		}
		f.Close()
	}
}

func TestCompareContext(t *testing.T) {
	a := Side{Name: "Acme", Checklist: mustParse(t, `{"Target Customers":["SMB","Enterprise"],"Overview":{"Founded":1999}}`)}
	b := Side{Name: "Globex", Checklist: mustParse(t, `{"Target Customers":"**Consumers**"}`)}

	got := CompareContext(a, b)
	want := map[string]string{
		"company1_name":             "Acme",
		"company2_name":             "Globex",
		"company1_target_customers": "SMB; Enterprise",
		"company1_overview":         "Founded: 1999",
		"company2_target_customers": "Consumers",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("context mismatch (-want +got):\n%s", diff)
	}
}

func documentText(t *testing.T, data []byte) string {
	t.Helper()
	d, err := docxParse(data)
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	return d
}

func TestRenderTemplate(t *testing.T) {
	tmpl := newDocx()
	tmpl.AddParagraph().AddText("{{ company1_name }} vs {{company2_name}}")
	p := tmpl.AddParagraph()
	p.AddText("Customers: {{ company1_")
	p.AddText("target_customers }}")
	p = tmpl.AddParagraph()
	p.AddText("Missing: [{{ company1_unknown }}]")
	tbl := tmpl.AddTable(1, 2, 0, nil)
	tbl.TableRows[0].TableCells[0].AddParagraph().AddText("{{ company2_target_customers }}")
	tbl.TableRows[0].TableCells[1].AddParagraph().AddText("static")

	var src bytes.Buffer
	if _, err := tmpl.WriteTo(&src); err != nil {
		t.Fatalf("write template: %v", err)
	}

	ctx := map[string]string{
		"company1_name":             "Acme",
		"company2_name":             "Globex",
		"company1_target_customers": "SMB",
		"company2_target_customers": "Consumers",
	}
	var out bytes.Buffer
	if err := RenderTemplate(&out, bytes.NewReader(src.Bytes()), int64(src.Len()), ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	text := documentText(t, out.Bytes())
	for _, want := range []string{"Acme vs Globex", "Customers: SMB", "Missing: []", "Consumers", "static"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, text)
		}
	}
	if strings.Contains(text, "{{") {
		t.Errorf("unfilled placeholder left in output:\n%s", text)
	}
}

func TestRenderTemplateFileMissing(t *testing.T) {
	err := RenderTemplateFile(&bytes.Buffer{}, filepath.Join(t.TempDir(), "none.docx"), nil)
	if err == nil {
		t.Fatal("expected error for missing template")
	}
}

func TestBuildComparison(t *testing.T) {
	a := Side{Name: "Acme", Checklist: mustParse(t, `{"Overview":{"Founded":1999},"Pricing":"Per seat"}`)}
	b := Side{Name: "Globex", Checklist: mustParse(t, `{"Pricing":"Usage based","Funding":"Series B"}`)}

	var out bytes.Buffer
	if err := BuildComparison(&out, a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	text := documentText(t, out.Bytes())
	want := []string{
		"Acme vs Globex",
		"Field | Acme | Globex",
		"Overview — Founded | 1999 | —",
		"Pricing | Per seat | Usage based",
		"Funding | — | Series B",
	}
	for _, line := range want {
		if !strings.Contains(text, line) {
			t.Errorf("expected output to contain %q, got:\n%s", line, text)
		}
	}
}

func TestWriteComparisonFallsBackWithoutTemplate(t *testing.T) {
	a := Side{Name: "Acme", Checklist: mustParse(t, `{"Pricing":"Per seat"}`)}
	b := Side{Name: "Globex", Checklist: mustParse(t, `{"Pricing":"Usage"}`)}

	var out bytes.Buffer
	if err := WriteComparison(&out, filepath.Join(t.TempDir(), "missing.docx"), a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text := documentText(t, out.Bytes()); !strings.Contains(text, "Pricing | Per seat | Usage") {
		t.Errorf("expected generated table, got:\n%s", text)
	}
}

func TestSaveFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")
	path, err := SaveFile(dir, "output_Acme.csv", []byte("Field,Value\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != filepath.Join(dir, "output_Acme.csv") {
		t.Errorf("unexpected path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "Field,Value\n" {
		t.Errorf("unexpected content %q", data)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("expected only the saved file, got %d entries", len(entries))
	}
}
