package encoding

import (
	"encoding/json"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

// jsonEncoder renders the records as an indented JSON array. The upstream
// API already projected the records onto the requested fields, so the field
// selection is not re-applied.
type jsonEncoder struct{}

func (e *jsonEncoder) Encode(records []Record, _ []string) (string, error) {
	if records == nil {
		records = []Record{}
	}
	bs, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal records")
	}
	return string(bs), nil
}

type yamlEncoder struct{}

func (e *yamlEncoder) Encode(records []Record, _ []string) (string, error) {
	docs := make([]any, 0, len(records))
	for _, rec := range records {
		var doc any
		if err := json.Unmarshal(rec, &doc); err != nil {
			return "", errors.Wrap(err, "failed to decode record")
		}
		docs = append(docs, doc)
	}

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return "", errors.Wrap(err, "failed to encode records")
	}
	if err := enc.Close(); err != nil {
		return "", errors.Wrap(err, "failed to encode records")
	}
	return sb.String(), nil
}
