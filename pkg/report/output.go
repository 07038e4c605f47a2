package report

import (
	"errors"
	"fmt"
	"io"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// ErrEncoding is returned when output is not valid UTF-8.
var ErrEncoding = errors.New("output is not valid UTF-8")

// Output is the UTF-8 enforcing destination of every report. It is created once by the
// caller around the real stream (or an in-memory buffer) and must be closed to flush a
// trailing partial rune.
type Output struct {
	w *transform.Writer
}

func NewOutput(w io.Writer) *Output {
	return &Output{
		w: transform.NewWriter(w, encoding.UTF8Validator),
	}
}

func (o *Output) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	return n, wrapEncodingErr(err)
}

func (o *Output) Close() error {
	return wrapEncodingErr(o.w.Close())
}

func wrapEncodingErr(err error) error {
	if errors.Is(err, encoding.ErrInvalidUTF8) {
		return fmt.Errorf("%w: %v", ErrEncoding, err)
	}
	return err
}
