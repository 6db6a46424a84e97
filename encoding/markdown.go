package encoding

import (
	"strings"
)

// markdownEncoder renders records as a GitHub-style Markdown table.
type markdownEncoder struct{}

func (e *markdownEncoder) Encode(records []Record, fields []string) (string, error) {
	fields = resolveFields(records, fields)

	var sb strings.Builder
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for _, c := range cells {
			sb.WriteString(" ")
			sb.WriteString(mdEscape(c))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
	}

	writeRow(fields)
	sb.WriteString("|")
	sb.WriteString(strings.Repeat(" --- |", len(fields)))
	sb.WriteString("\n")

	row := make([]string, len(fields))
	for _, rec := range records {
		for i, f := range fields {
			row[i] = fieldValue(rec, f)
		}
		writeRow(row)
	}
	return sb.String(), nil
}

var mdEscaper = strings.NewReplacer("|", "\\|", "\n", " ")

func mdEscape(s string) string {
	return mdEscaper.Replace(s)
}
