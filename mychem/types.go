package mychem

import (
	"context"
	"encoding/json"

	"github.com/cockroachdb/errors"
)

// QueryResponse is the shape of GET /query results.
type QueryResponse struct {
	Took     int               `json:"took"`
	Total    int               `json:"total"`
	ScrollID string            `json:"_scroll_id,omitempty"`
	Hits     []json.RawMessage `json:"hits"`
	Facets   map[string]Facet  `json:"facets,omitempty"`
}

// Facet aggregates term counts for one facet field.
type Facet struct {
	Total   int         `json:"total"`
	Other   int         `json:"other"`
	Missing int         `json:"missing"`
	Terms   []FacetTerm `json:"terms"`
}

// FacetTerm is a single facet bucket.
type FacetTerm struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Query runs GET /query with the given parameters.
func (c *Client) Query(ctx context.Context, params map[string]string) (*QueryResponse, error) {
	raw, err := c.Get(ctx, "query", params)
	if err != nil {
		return nil, err
	}
	var res QueryResponse
	if err := json.Unmarshal(raw, &res); err != nil {
		return nil, errors.WithMessagef(ErrUpstream, "query: unexpected response: %s", err.Error())
	}
	return &res, nil
}

// GetChem fetches the annotation object for a single chemical ID
// via GET /chem/{id}.
func (c *Client) GetChem(ctx context.Context, id string, params map[string]string) (json.RawMessage, error) {
	if id == "" {
		return nil, errors.WithMessage(ErrInvalidArgument, "empty chemical ID")
	}
	return c.Get(ctx, "chem/"+escapePath(id), params)
}

// Metadata fetches GET /metadata.
func (c *Client) Metadata(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "metadata", nil)
}

// MetadataFields fetches GET /metadata/fields.
func (c *Client) MetadataFields(ctx context.Context) (json.RawMessage, error) {
	return c.Get(ctx, "metadata/fields", nil)
}
