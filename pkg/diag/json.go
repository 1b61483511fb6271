package diag

import (
	"fmt"
	"io"

	"github.com/goccy/go-json"
)

type jsonDiagnostic struct {
	Class   string `json:"class"`
	Message string `json:"message"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonDiagnostic{
		Class:   d.Class.String(),
		Message: d.Message,
		Line:    d.Pos.Line,
		Column:  d.Pos.Column,
	})
}

// WriteJSON writes diags as one JSON array for editor and CI tooling.
func WriteJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	if err := json.NewEncoder(w).Encode(diags); err != nil {
		return fmt.Errorf("error encoding diagnostics: %w", err)
	}
	return nil
}
