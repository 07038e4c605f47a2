package report

import (
	"encoding/csv"
	"io"

	"github.com/ibmresilient/finfo/pkg/fields"
)

var csvHeader = []string{"name", "required", "input_type", "text", "tooltip", "placeholder"}

// RenderListCSV writes one row per field, sorted by qualified name. Absent attributes are
// empty cells. Records end in CRLF like the spreadsheet dialect.
func RenderListCSV(w io.Writer, fs []fields.FieldDefinition) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true

	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, f := range fields.SortByQualifiedName(fs) {
		row := []string{
			fields.QualifiedName(f),
			requiredCell(f),
			f.InputType.OrZero(),
			f.Text.OrZero(),
			f.Tooltip.OrZero(),
			f.Placeholder.OrZero(),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
