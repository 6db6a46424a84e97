// Package encoding renders result records into the supported export
// formats: delimited text (TSV, CSV), structured text (JSON, YAML), SDF
// chemical-structure files and Markdown tables.
package encoding

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// ErrUnsupportedFormat is returned for format names outside the supported
// set. It is raised before any network call is made.
var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format is an output encoding requested by the caller.
type Format string

const (
	FormatTSV      Format = "tsv"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatYAML     Format = "yaml"
	FormatSDF      Format = "sdf"
	FormatMarkdown Format = "markdown"
)

// Record is one raw result object from the upstream API.
type Record = json.RawMessage

// Encoder renders records, projected onto the given dotted field paths,
// into one output document.
type Encoder interface {
	Encode(records []Record, fields []string) (string, error)
}

// New returns the encoder for the format.
func New(format Format) (Encoder, error) {
	switch format {
	case FormatTSV:
		return &delimitedEncoder{comma: '\t'}, nil
	case FormatCSV:
		return &delimitedEncoder{comma: ','}, nil
	case FormatJSON:
		return &jsonEncoder{}, nil
	case FormatYAML:
		return &yamlEncoder{}, nil
	case FormatSDF:
		return &sdfEncoder{}, nil
	case FormatMarkdown:
		return &markdownEncoder{}, nil
	default:
		return nil, errors.WithMessagef(ErrUnsupportedFormat, "%q", format)
	}
}

// Supported lists the supported formats.
func Supported() []Format {
	return []Format{FormatTSV, FormatCSV, FormatJSON, FormatYAML, FormatSDF, FormatMarkdown}
}

// fieldValue extracts a dotted-path field from a record as a flat string.
// Missing fields render empty; nested objects and arrays render as raw JSON.
func fieldValue(rec Record, field string) string {
	res := gjson.GetBytes(rec, field)
	if !res.Exists() {
		return ""
	}
	return res.String()
}

// resolveFields returns the fields to project: the caller's selection, or
// the sorted top-level keys of the first record.
func resolveFields(records []Record, fields []string) []string {
	if len(fields) > 0 || len(records) == 0 {
		return fields
	}
	var keys []string
	gjson.ParseBytes(records[0]).ForEach(func(key, _ gjson.Result) bool {
		keys = append(keys, key.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// tagName converts a dotted field path into an SDF data-item tag.
func tagName(field string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", " ", "_").Replace(field))
}
