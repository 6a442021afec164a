// Package trace reads address traces, one decimal logical address per line.
package trace

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// A Reference is one address read from a trace.
type Reference struct {
	Line    int
	Address uint32
}

// A ParseError reports a trace line that does not hold an address.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d: invalid address %q: %v",
		e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MaxLineLength is the longest trace line a Reader parses. Longer lines are
// reported with ErrLineTooLong.
const MaxLineLength = 4096

// ErrLineTooLong is wrapped by the ParseError of a line longer than
// MaxLineLength.
var ErrLineTooLong = errors.New("line too long")

const maxQuotedText = 32

// A Reader reads references from a trace. Blank lines are skipped.
type Reader struct {
	r    *bufio.Reader
	line int
}

// NewReader creates a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReaderSize(r, MaxLineLength)}
}

// Next returns the next reference. It returns io.EOF at the end of the trace
// and a *ParseError for a malformed line, after which reading may continue.
func (r *Reader) Next() (Reference, error) {
	for {
		text, tooLong, err := r.readLine()
		if err != nil {
			return Reference{}, err
		}

		r.line++

		if tooLong {
			return Reference{}, &ParseError{
				Line: r.line,
				Text: text[:maxQuotedText] + "...",
				Err:  ErrLineTooLong,
			}
		}

		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}

		addr, err := strconv.ParseUint(text, 10, 32)
		if err != nil {
			return Reference{}, &ParseError{Line: r.line, Text: text, Err: err}
		}

		return Reference{Line: r.line, Address: uint32(addr)}, nil
	}
}

// readLine returns the next line without its line ending. A line that does
// not fit in the buffer is consumed to its end and only its beginning is
// returned.
func (r *Reader) readLine() (string, bool, error) {
	line, isPrefix, err := r.r.ReadLine()
	if err != nil {
		return "", false, err
	}

	text := string(line)

	tooLong := isPrefix
	for isPrefix {
		_, isPrefix, err = r.r.ReadLine()
		if err == io.EOF {
			break
		}

		if err != nil {
			return "", false, err
		}
	}

	return text, tooLong, nil
}

// ReadAll reads the remaining references. It stops at the first error other
// than io.EOF.
func (r *Reader) ReadAll() ([]Reference, error) {
	var refs []Reference

	for {
		ref, err := r.Next()
		if err == io.EOF {
			return refs, nil
		}

		if err != nil {
			return refs, err
		}

		refs = append(refs, ref)
	}
}
