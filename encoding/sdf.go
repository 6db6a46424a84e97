package encoding

import (
	"strings"
)

// sdfEncoder renders records as SDF data items, one molecule block per
// record terminated by `$$$$`. Only the associated-data section is emitted;
// connection tables are not available from the upstream field projection.
type sdfEncoder struct{}

func (e *sdfEncoder) Encode(records []Record, fields []string) (string, error) {
	fields = resolveFields(records, fields)

	var sb strings.Builder
	for _, rec := range records {
		for _, f := range fields {
			sb.WriteString("> <")
			sb.WriteString(tagName(f))
			sb.WriteString(">\n")
			sb.WriteString(fieldValue(rec, f))
			sb.WriteString("\n\n")
		}
		sb.WriteString("$$$$\n")
	}
	return sb.String(), nil
}
