package encoding

import (
	"encoding/csv"
	"strings"

	"github.com/cockroachdb/errors"
)

// delimitedEncoder renders TSV or CSV with a header row.
type delimitedEncoder struct {
	comma rune
}

func (e *delimitedEncoder) Encode(records []Record, fields []string) (string, error) {
	fields = resolveFields(records, fields)

	var sb strings.Builder
	w := csv.NewWriter(&sb)
	w.Comma = e.comma

	if err := w.Write(fields); err != nil {
		return "", errors.Wrap(err, "failed to write header")
	}
	row := make([]string, len(fields))
	for _, rec := range records {
		for i, f := range fields {
			row[i] = fieldValue(rec, f)
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, "failed to write row")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, "failed to flush")
	}
	return sb.String(), nil
}
