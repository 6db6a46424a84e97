// Package batch implements the batch query and annotation tools.
// Identifier lists of any length are accepted; the client splits them into
// upstream-sized chunks.
package batch

import (
	"context"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/tidwall/gjson"
)

// DefaultScopes is the default set of fields matched against the IDs.
const DefaultScopes = "inchikey,chembl.molecule_chembl_id,drugbank.id,pubchem.cid"

// QueryRequest is the input of batch_query_chemicals.
type QueryRequest struct {
	ChemicalIDs []string `json:"chemical_ids" jsonschema:"description=List of chemical IDs to query" validate:"required"`
	Scopes      string   `json:"scopes,omitempty" jsonschema:"description=Comma-separated fields to search"`
	Fields      string   `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	DotField    *bool    `json:"dotfield,omitempty" jsonschema:"description=Control dotfield notation,default=true"`
	ReturnAll   *bool    `json:"returnall,omitempty" jsonschema:"description=Return all results including no matches,default=true"`
}

// QueryResult is the output of batch_query_chemicals.
type QueryResult struct {
	Success    bool              `json:"success"`
	Total      int               `json:"total"`
	Found      int               `json:"found"`
	Missing    int               `json:"missing"`
	Results    []encoding.Record `json:"results"`
	MissingIDs []string          `json:"missing_ids"`
}

// NewQueryChemicals creates the batch_query_chemicals tool.
func NewQueryChemicals(c *mychem.Client) (*tools.Func[QueryRequest, QueryResult], error) {
	return tools.NewFunc("batch_query_chemicals",
		"Query multiple chemicals in a single request (lists over 1000 IDs are chunked)",
		func(ctx context.Context, req *QueryRequest) (*QueryResult, error) {
			opts := map[string]any{
				"scopes": valueOr(req.Scopes, DefaultScopes),
				"fields": valueOr(req.Fields, "inchikey,pubchem,chembl,drugbank,name"),
			}
			if req.DotField != nil && !*req.DotField {
				opts["dotfield"] = false
			}
			returnAll := true
			if req.ReturnAll != nil {
				returnAll = *req.ReturnAll
			}
			opts["returnall"] = returnAll

			records, err := c.PostQuery(ctx, req.ChemicalIDs, opts)
			if err != nil {
				return nil, err
			}

			res := &QueryResult{
				Success:    true,
				Total:      len(records),
				Results:    records,
				MissingIDs: []string{},
			}
			if res.Results == nil {
				res.Results = []encoding.Record{}
			}
			for _, rec := range records {
				if gjson.GetBytes(rec, "found").Bool() {
					res.Found++
				} else {
					res.Missing++
					res.MissingIDs = append(res.MissingIDs, gjson.GetBytes(rec, "query").String())
				}
			}
			return res, nil
		})
}

// GetRequest is the input of batch_get_chemicals.
type GetRequest struct {
	ChemicalIDs []string `json:"chemical_ids" jsonschema:"description=List of chemical IDs" validate:"required"`
	Fields      string   `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return"`
	DotField    *bool    `json:"dotfield,omitempty" jsonschema:"description=Control dotfield notation,default=true"`
	Email       string   `json:"email,omitempty" jsonschema:"description=Contact email for large requests" validate:"omitempty,email"`
}

// GetResult is the output of batch_get_chemicals.
type GetResult struct {
	Success   bool              `json:"success"`
	Total     int               `json:"total"`
	Chemicals []encoding.Record `json:"chemicals"`
}

// NewGetChemicals creates the batch_get_chemicals tool.
func NewGetChemicals(c *mychem.Client) (*tools.Func[GetRequest, GetResult], error) {
	return tools.NewFunc("batch_get_chemicals",
		"Get full annotations for multiple chemicals (lists over 1000 IDs are chunked)",
		func(ctx context.Context, req *GetRequest) (*GetResult, error) {
			opts := map[string]any{}
			if req.Fields != "" {
				opts["fields"] = req.Fields
			}
			if req.DotField != nil && !*req.DotField {
				opts["dotfield"] = false
			}
			if req.Email != "" {
				opts["email"] = req.Email
			}

			records, err := c.PostChem(ctx, req.ChemicalIDs, opts)
			if err != nil {
				return nil, err
			}
			if records == nil {
				records = []encoding.Record{}
			}
			return &GetResult{
				Success:   true,
				Total:     len(records),
				Chemicals: records,
			}, nil
		})
}

// New returns the batch tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	queryChemicals, err := NewQueryChemicals(c)
	if err != nil {
		return nil, err
	}
	getChemicals, err := NewGetChemicals(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{queryChemicals, getChemicals}, nil
}

func valueOr(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
