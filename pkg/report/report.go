package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/ibmresilient/finfo/pkg/fields"
)

// Format selects how a field or a field list is rendered.
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatCSV
	FormatTable
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatTable:
		return "table"
	default:
		return "text"
	}
}

// RenderField writes a single field definition. Only text and JSON apply to a single
// field, any other format falls back to text.
func RenderField(w io.Writer, f fields.FieldDefinition, format Format) error {
	if format == FormatJSON {
		return RenderFieldJSON(w, f)
	}
	return RenderFieldText(w, f)
}

// RenderList writes all fields of an object type. JSON does not apply to lists and falls
// back to text.
func RenderList(w io.Writer, fs []fields.FieldDefinition, format Format) error {
	switch format {
	case FormatCSV:
		return RenderListCSV(w, fs)
	case FormatTable:
		return RenderListTable(w, fs)
	default:
		return RenderListText(w, fs)
	}
}

// RenderFieldText writes the readable description of one field.
func RenderFieldText(w io.Writer, f fields.FieldDefinition) error {
	var sb strings.Builder

	line := func(label, value string) {
		if value != "" {
			fmt.Fprintf(&sb, "%-13s%s\n", label, value)
		}
	}

	line("Name:", fields.QualifiedName(f))
	line("Label:", f.Text.OrZero())
	line("Type:", f.InputType.OrZero())
	line("Tooltip:", f.Tooltip.OrZero())
	line("Placeholder:", f.Placeholder.OrZero())
	if r, ok := f.Required.Get(); ok {
		line("Required:", r.String())
	}

	if len(f.Values) > 0 {
		sb.WriteString("Values:\n")
		for _, v := range fields.SortedValues(f) {
			fmt.Fprintf(&sb, "%s %s=%s\n", valueFlag(v), v.Value, v.Label)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// valueFlag marks the default choice with "*" and a disabled choice with "x". The enabled
// check runs last, so a disabled default shows "x".
func valueFlag(v fields.ValueDefinition) string {
	flag := " "
	if v.Default {
		flag = "*"
	}
	if !v.Enabled {
		flag = "x"
	}
	return flag
}

// RenderListText writes "Fields:" and one flagged line per field, sorted by qualified name.
func RenderListText(w io.Writer, fs []fields.FieldDefinition) error {
	var sb strings.Builder

	sb.WriteString("Fields:\n")
	for _, f := range fields.SortByQualifiedName(fs) {
		fmt.Fprintf(&sb, "%s %s\n", requiredFlag(f), fields.QualifiedName(f))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// requiredFlag is "*" for always, "c" for close-only, otherwise blank. "always" is tested
// first.
func requiredFlag(f fields.FieldDefinition) string {
	r, ok := f.Required.Get()
	if !ok {
		return " "
	}
	if r == fields.RequiredAlways {
		return "*"
	}
	if r == fields.RequiredClose {
		return "c"
	}
	return " "
}

func requiredCell(f fields.FieldDefinition) string {
	if r, ok := f.Required.Get(); ok {
		return r.String()
	}
	return ""
}
