package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/ginjaninja78/torg12/internal/torg12"
)

// WriteJSON writes the invoice as indented JSON.
func WriteJSON(w io.Writer, inv *torg12.Invoice) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewView(inv)); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
