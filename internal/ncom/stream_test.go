package ncom_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ncomconv/internal/ncom"
	"ncomconv/internal/ncom/ncomtest"
)

func readAll(t *testing.T, r *ncom.Reader) []ncom.Record {
	t.Helper()
	var out []ncom.Record
	for {
		rec, err := r.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, rec)
	}
}

func TestReader_ReadsRecordsInOrder(t *testing.T) {
	a := ncomtest.Record(1, 0.1, 0.2)
	b := ncomtest.Record(2, 0.3, 0.4)
	r := ncom.NewReader(bytes.NewReader(ncomtest.Concat(nil, a, b)))

	got := readAll(t, r)
	assert.Equal(t, []ncom.Record{a, b}, got)
	assert.Empty(t, r.Trailing())
}

func TestReader_PartialFinalChunkEndsStream(t *testing.T) {
	a := ncomtest.Record(1, 0.1, 0.2)
	tail := bytes.Repeat([]byte{0xAA}, 40)
	r := ncom.NewReader(bytes.NewReader(ncomtest.Concat(tail, a)))

	got := readAll(t, r)
	assert.Equal(t, []ncom.Record{a}, got)
	assert.Equal(t, tail, r.Trailing())

	// Further calls keep reporting EOF.
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_EmptyStream(t *testing.T) {
	r := ncom.NewReader(bytes.NewReader(nil))
	_, err := r.Next()
	assert.ErrorIs(t, err, io.EOF)
	assert.Empty(t, r.Trailing())
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) { return 0, f.err }

func TestReader_PropagatesReadErrors(t *testing.T) {
	boom := errors.New("disk on fire")
	r := ncom.NewReader(failingReader{err: boom})
	_, err := r.Next()
	assert.ErrorIs(t, err, boom)
}

func TestWriter_WritesRecordsAndRaw(t *testing.T) {
	a := ncomtest.Record(1, 0.1, 0.2)
	var buf bytes.Buffer
	w := ncom.NewWriter(&buf)
	require.NoError(t, w.Write(a))
	require.NoError(t, w.WriteRaw([]byte{0x01, 0x02}))
	assert.Zero(t, buf.Len(), "writes are buffered until Flush")
	require.NoError(t, w.Flush())
	assert.Equal(t, ncomtest.Concat([]byte{0x01, 0x02}, a), buf.Bytes())
}
