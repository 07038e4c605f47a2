package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/ibmresilient/finfo/pkg/fields"
)

const jsonIndent = "    "

// RenderFieldJSON writes the field definition as received from the source, keys in their
// original order, indented.
func RenderFieldJSON(w io.Writer, f fields.FieldDefinition) error {
	b, err := f.MarshalJSON()
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, b, "", jsonIndent); err != nil {
		return err
	}
	buf.WriteByte('\n')

	_, err = w.Write(buf.Bytes())
	return err
}
