package export

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// Content types for downloads.
const (
	ContentTypeJSON = "application/json"
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var unsafeChars = regexp.MustCompile(`[/\\:*?"<>|\x00-\x1f]+`)

// SafeName makes a company name usable inside a file name.
func SafeName(name string) string {
	name = strings.TrimSpace(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.ReplaceAll(name, "..", "_")
	name = strings.Trim(name, ". ")
	if name == "" {
		name = "unnamed"
	}
	return filepath.Base(name)
}

func JSONName(company string) string {
	return fmt.Sprintf("output_%s.json", SafeName(company))
}

func CSVName(company string) string {
	return fmt.Sprintf("output_%s.csv", SafeName(company))
}

func XLSXName(company string) string {
	return fmt.Sprintf("output_%s.xlsx", SafeName(company))
}

func StyledXLSXName(company string) string {
	return fmt.Sprintf("output_%s_styled.xlsx", SafeName(company))
}

func ComparisonName(company1, company2 string) string {
	return fmt.Sprintf("final_%s_vs_%s.docx", SafeName(company1), SafeName(company2))
}

var (
	nonAlnum   = regexp.MustCompile(`[^a-z0-9]`)
	underscore = regexp.MustCompile(`_+`)
)

// ContextKey turns a field name into a template variable name:
// "Target Customers" -> "target_customers".
func ContextKey(field string) string {
	s := strings.ToLower(field)
	s = nonAlnum.ReplaceAllString(s, "_")
	s = underscore.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}
