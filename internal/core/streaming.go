package core

// streaming.go provides the readers every load passes through before the
// tokenizer sees a byte:
//
//   - BOMSkippingReader: drops a leading UTF-8 BOM (0xEF 0xBB 0xBF)
//   - StreamingUTF8Sanitizer: replaces invalid UTF-8 with U+FFFD
//   - StreamingCountingReader: counts bytes and enforces an optional cap
//
// Use WrapForStreaming to apply all three in the correct order.

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"unicode/utf8"
)

// ErrFileTooLarge is returned once a counting reader passes its byte cap.
var ErrFileTooLarge = errors.New("file too large")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// BOMSkippingReader wraps an io.Reader and skips the UTF-8 BOM if present.
type BOMSkippingReader struct {
	br      *bufio.Reader
	checked bool
}

// NewBOMSkippingReader creates a new BOM-skipping reader.
func NewBOMSkippingReader(r io.Reader) *BOMSkippingReader {
	return &BOMSkippingReader{br: bufio.NewReader(r)}
}

// Read implements io.Reader. The first call peeks three bytes and discards
// them if they are a BOM.
func (r *BOMSkippingReader) Read(p []byte) (int, error) {
	if !r.checked {
		r.checked = true
		head, err := r.br.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			_, _ = r.br.Discard(len(utf8BOM))
		}
	}
	return r.br.Read(p)
}

// sanitizeChunk is how much is pulled from the source per refill.
const sanitizeChunk = 32 * 1024

// StreamingUTF8Sanitizer wraps an io.Reader and replaces invalid UTF-8
// sequences with the Unicode replacement character on the fly. A multi-byte
// rune split across two source reads is carried over, not replaced.
type StreamingUTF8Sanitizer struct {
	src   io.Reader
	chunk []byte
	in    []byte // undecoded bytes carried between reads
	out   []byte // decoded bytes not yet handed to the caller
	err   error
}

// NewStreamingUTF8Sanitizer creates a new streaming UTF-8 sanitizer.
func NewStreamingUTF8Sanitizer(r io.Reader) *StreamingUTF8Sanitizer {
	return &StreamingUTF8Sanitizer{
		src:   r,
		chunk: make([]byte, sanitizeChunk),
	}
}

// Read implements io.Reader.
func (s *StreamingUTF8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	for len(s.out) == 0 {
		if s.err != nil {
			return 0, s.err
		}
		n, err := s.src.Read(s.chunk)
		s.in = append(s.in, s.chunk[:n]...)
		s.err = err
		s.drain(err != nil)
	}

	n := copy(p, s.out)
	s.out = s.out[n:]
	return n, nil
}

// drain decodes s.in into s.out. Unless final, an incomplete rune at the
// tail stays in s.in for the next refill.
func (s *StreamingUTF8Sanitizer) drain(final bool) {
	i := 0
	for i < len(s.in) {
		b := s.in[i]
		if b < utf8.RuneSelf {
			s.out = append(s.out, b)
			i++
			continue
		}
		if !final && !utf8.FullRune(s.in[i:]) {
			break
		}
		r, size := utf8.DecodeRune(s.in[i:])
		if r == utf8.RuneError && size == 1 {
			s.out = utf8.AppendRune(s.out, utf8.RuneError)
		} else {
			s.out = append(s.out, s.in[i:i+size]...)
		}
		i += size
	}

	s.in = append(s.in[:0], s.in[i:]...)
}

// StreamingCountingReader wraps an io.Reader to track bytes read. When Limit
// is positive, reading past it fails with ErrFileTooLarge.
type StreamingCountingReader struct {
	reader    io.Reader
	BytesRead int64
	Limit     int64
}

// NewStreamingCountingReader creates a counting reader with an optional cap.
func NewStreamingCountingReader(r io.Reader, limit int64) *StreamingCountingReader {
	return &StreamingCountingReader{
		reader: r,
		Limit:  limit,
	}
}

// Read implements io.Reader.
func (r *StreamingCountingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	if r.Limit > 0 && r.BytesRead > r.Limit {
		return 0, ErrFileTooLarge
	}
	return n, err
}

// WrapForStreaming wraps a reader with byte counting, BOM skipping and UTF-8
// sanitization. The cap applies to raw input bytes, so counting sits closest
// to the source. A limit of 0 disables the cap.
func WrapForStreaming(r io.Reader, limit int64) io.Reader {
	counted := NewStreamingCountingReader(r, limit)
	return NewStreamingUTF8Sanitizer(NewBOMSkippingReader(counted))
}
