package protocol

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

const maxLineBytes = 1 << 20

// Writer frames envelopes onto the channel, one JSON object per line.
// Not safe for concurrent use; callers serialize writes.
type Writer struct {
	enc *json.Encoder
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

func (w *Writer) Write(e Envelope) error {
	if err := w.enc.Encode(e); err != nil {
		return errors.Wrap(err, "encode envelope")
	}
	return nil
}

// Reader decodes envelopes from the channel. Lines that do not parse as
// an envelope of a known kind are counted and skipped.
type Reader struct {
	sc      *bufio.Scanner
	skipped int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return &Reader{sc: sc}
}

// Next returns the next well-formed envelope. io.EOF signals a clean end
// of stream; any other error is a transport failure.
func (r *Reader) Next() (Envelope, error) {
	for r.sc.Scan() {
		line := bytes.TrimSpace(r.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var e Envelope
		if err := json.Unmarshal(line, &e); err != nil || !e.Kind.Known() {
			r.skipped++
			continue
		}
		return e, nil
	}
	if err := r.sc.Err(); err != nil {
		return Envelope{}, errors.Wrap(err, "read channel")
	}
	return Envelope{}, io.EOF
}

// Skipped reports how many inbound lines were dropped as malformed.
func (r *Reader) Skipped() int { return r.skipped }
