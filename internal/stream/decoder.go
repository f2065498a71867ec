// Package stream decodes newline-delimited JSON bodies one line at a time.
package stream

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

// MalformedFunc is called for every non-empty line that fails to decode.
type MalformedFunc func(line int, raw []byte, err error)

// Decoder yields one value per non-empty line of r as soon as the line is
// complete. Lines that do not decode are reported and skipped; they never end
// the stream.
type Decoder[T any] struct {
	r           *bufio.Reader
	line        int
	done        bool
	onMalformed MalformedFunc
}

type Option func(*options)

type options struct {
	onMalformed MalformedFunc
	bufferSize  int
}

// WithMalformedHandler replaces the default handler, which logs a warning.
func WithMalformedHandler(fn MalformedFunc) Option {
	return func(o *options) {
		o.onMalformed = fn
	}
}

// WithBufferSize sets the initial read buffer size. Lines longer than the
// buffer are still read in full.
func WithBufferSize(n int) Option {
	return func(o *options) {
		o.bufferSize = n
	}
}

func NewDecoder[T any](r io.Reader, opts ...Option) *Decoder[T] {
	o := options{
		onMalformed: logMalformed,
		bufferSize:  16 * 1024,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Decoder[T]{
		r:           bufio.NewReaderSize(r, o.bufferSize),
		onMalformed: o.onMalformed,
	}
}

// Next returns the next decoded value. It returns io.EOF once the reader is
// exhausted, or the underlying read error if the transport fails.
func (d *Decoder[T]) Next() (T, error) {
	var zero T
	for !d.done {
		raw, err := d.r.ReadBytes('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return zero, err
			}
			// A final line without a trailing newline is still a line.
			d.done = true
		}
		if len(raw) == 0 {
			continue
		}
		d.line++
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 {
			continue
		}
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			d.onMalformed(d.line, raw, err)
			continue
		}
		return v, nil
	}
	return zero, io.EOF
}

// Line reports how many lines have been read so far.
func (d *Decoder[T]) Line() int {
	return d.line
}

func logMalformed(line int, raw []byte, err error) {
	const maxLogged = 200
	if len(raw) > maxLogged {
		raw = raw[:maxLogged]
	}
	slog.Warn("Skipping malformed stream line", "line", line, "raw", string(raw), "error", err)
}
