package source

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
)

const maxLineBytes = 4 << 20

// Line is one line of a line-oriented source.
type Line struct {
	Num int64 // 1-based
	// Field is the leading comma-separated field. Empty when TooLong.
	Field string
	// TooLong is set for lines over the line size limit. Their content is
	// discarded and reading continues with the next line.
	TooLong bool
}

// CountLines returns the number of lines in path, counting a final line
// without a trailing newline.
func CountLines(path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, eris.Wrap(err, "lines: open file")
	}
	defer f.Close()

	var n int64
	err = eachLine(f, func(string, bool) error {
		n++
		return nil
	})
	if err != nil {
		return n, eris.Wrap(err, "lines: count")
	}
	return n, nil
}

// ScanLines calls fn with every line of path. An error from fn stops the
// scan and is returned as is.
func ScanLines(ctx context.Context, path string, fn func(Line) error) error {
	f, err := os.Open(path)
	if err != nil {
		return eris.Wrap(err, "lines: open file")
	}
	defer f.Close()

	var n int64
	return eachLine(decodeUTF8(f), func(text string, tooLong bool) error {
		if ctx.Err() != nil {
			return eris.Wrap(ctx.Err(), "lines: context cancelled")
		}
		n++
		ln := Line{Num: n, TooLong: tooLong}
		if !tooLong {
			ln.Field = LeadingField(text)
		}
		return fn(ln)
	})
}

// LeadingField returns the text before the first comma.
func LeadingField(line string) string {
	if i := strings.IndexByte(line, ','); i >= 0 {
		return line[:i]
	}
	return line
}

// eachLine calls fn with every line of r, without its line ending. A line
// over maxLineBytes is passed as tooLong with empty text.
func eachLine(r io.Reader, fn func(text string, tooLong bool) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		buf     []byte
		tooLong bool
		n       int64
	)
	for {
		frag, err := br.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !tooLong {
				buf = append(buf, frag...)
				if len(buf) > maxLineBytes {
					buf, tooLong = buf[:0], true
				}
			}
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return eris.Wrapf(err, "lines: read line %d", n+1)
		}
		if len(frag) == 0 && len(buf) == 0 && !tooLong {
			return nil
		}

		var text string
		if !tooLong {
			buf = append(buf, frag...)
			line := bytes.TrimSuffix(bytes.TrimSuffix(buf, []byte("\n")), []byte("\r"))
			if len(line) > maxLineBytes {
				tooLong = true
			} else {
				text = string(line)
			}
		}
		n++
		if fnErr := fn(text, tooLong); fnErr != nil {
			return fnErr
		}
		if err != nil {
			return nil
		}
		buf, tooLong = buf[:0], false
	}
}
