package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputPassesUTF8(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	_, err := out.Write([]byte("Label:       Gravité 重要\n"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	assert.Equal(t, "Label:       Gravité 重要\n", buf.String())
}

func TestOutputSplitRune(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	b := []byte("é")
	_, err := out.Write(b[:1])
	require.NoError(t, err)
	_, err = out.Write(b[1:])
	require.NoError(t, err)
	require.NoError(t, out.Close())

	assert.Equal(t, "é", buf.String())
}

func TestOutputRejectsInvalidUTF8(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	_, err := out.Write([]byte("ok \xff\xfe"))
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestOutputRejectsTruncatedRune(t *testing.T) {
	var buf bytes.Buffer
	out := NewOutput(&buf)

	_, err := out.Write([]byte("abc\xc3"))
	require.NoError(t, err)
	assert.ErrorIs(t, out.Close(), ErrEncoding)
}
