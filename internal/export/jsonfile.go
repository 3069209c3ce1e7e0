package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/iancoleman/orderedmap"
)

// WriteJSON writes doc indented by two spaces, keys in document order.
func WriteJSON(w io.Writer, doc *orderedmap.OrderedMap) error {
	doc.SetEscapeHTML(false)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// ReadJSON loads a saved company document.
func ReadJSON(path string) (*orderedmap.OrderedMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := orderedmap.New()
	doc.SetEscapeHTML(false)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return doc, nil
}
