package source

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// DefaultDelimiter separates fields in suppression and sales text exports.
const DefaultDelimiter = ';'

// decodeUTF8 strips a leading byte order mark and replaces invalid UTF-8.
func decodeUTF8(r io.Reader) io.Reader {
	return transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
}

// ReadDelimited loads a delimited text file into memory. Lines the parser
// rejects are skipped, counted in Table.Rejected and logged.
func ReadDelimited(ctx context.Context, path string, delim rune) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrap(err, "csv: open file")
	}
	defer f.Close()

	return parseDelimited(ctx, decodeUTF8(f), delim, filepath.Base(path))
}

func parseDelimited(ctx context.Context, r io.Reader, delim rune, name string) (*Table, error) {
	log := zap.L().With(zap.String("component", "source.csv"), zap.String("file", name))

	if delim == 0 {
		delim = DefaultDelimiter
	}
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // allow variable fields

	var header []string
	var rows [][]string
	rejected := 0

	for {
		if ctx.Err() != nil {
			return nil, eris.Wrap(ctx.Err(), "csv: context cancelled")
		}

		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				rejected++
				log.Warn("skipping unreadable line", zap.Int("line", perr.Line), zap.Error(err))
				continue
			}
			return nil, eris.Wrap(err, "csv: read row")
		}

		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
	}

	if header == nil {
		return nil, eris.Wrapf(ErrEmpty, "%s", name)
	}

	t := NewTable(header, rows)
	t.Rejected = rejected
	return t, nil
}
