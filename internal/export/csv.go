package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/intelsheet/internal/flatten"
)

// WriteCSV writes a Field,Value header and one line per row. Values go
// through PlainText like the spreadsheet and Word exports.
func WriteCSV(w io.Writer, rows []flatten.Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Field", "Value"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Field, PlainText(r.Text())}); err != nil {
			return fmt.Errorf("write csv row %q: %w", r.Field, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
