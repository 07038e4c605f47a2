package report

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/ibmresilient/finfo/pkg/fields"
)

// RenderListTable writes the field list as an aligned table, sorted by qualified name.
func RenderListTable(w io.Writer, fs []fields.FieldDefinition) error {
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"name", "required", "input type", "label"})
	for _, f := range fields.SortByQualifiedName(fs) {
		t.AppendRow(table.Row{
			fields.QualifiedName(f),
			requiredCell(f),
			f.InputType.OrZero(),
			f.Text.OrZero(),
		})
	}

	_, err := io.WriteString(w, t.Render()+"\n")
	return err
}
