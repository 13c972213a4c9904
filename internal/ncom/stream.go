package ncom

import (
	"bufio"
	"errors"
	"io"
)

// Reader reads consecutive records from an NCOM stream.
//
// A short final chunk ends the stream: Next returns io.EOF and the partial
// bytes are available from Trailing.
type Reader struct {
	r        *bufio.Reader
	trailing []byte
	done     bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, 64*1024)}
}

// Next returns the next full record, or io.EOF at end of stream.
func (rr *Reader) Next() (Record, error) {
	var rec Record
	if rr.done {
		return rec, io.EOF
	}
	n, err := io.ReadFull(rr.r, rec[:])
	switch {
	case err == nil:
		return rec, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		rr.trailing = append([]byte(nil), rec[:n]...)
		rr.done = true
		return Record{}, io.EOF
	case errors.Is(err, io.EOF):
		rr.done = true
		return Record{}, io.EOF
	default:
		return Record{}, err
	}
}

// Trailing returns the bytes of a short final chunk, if the stream ended
// with one. It is only meaningful after Next has returned io.EOF.
func (rr *Reader) Trailing() []byte {
	return rr.trailing
}

// Writer writes records to an NCOM stream through a 64 KiB buffer.
// Callers must Flush before closing the underlying writer.
type Writer struct {
	w *bufio.Writer
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriterSize(w, 64*1024)}
}

func (ww *Writer) Write(rec Record) error {
	_, err := ww.w.Write(rec[:])
	return err
}

// WriteRaw writes b unchanged. It is used to carry a trailing partial chunk
// through to the output.
func (ww *Writer) WriteRaw(b []byte) error {
	_, err := ww.w.Write(b)
	return err
}

func (ww *Writer) Flush() error {
	return ww.w.Flush()
}
