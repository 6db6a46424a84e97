// Package annotation implements the chemical annotation tool.
package annotation

import (
	"context"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
)

// GetRequest is the input of get_chemical_by_id.
type GetRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical ID such as an InChIKey or ChEMBL ID" validate:"required"`
	Fields     string `json:"fields,omitempty" jsonschema:"description=Comma-separated fields to return (default all)"`
	DotField   *bool  `json:"dotfield,omitempty" jsonschema:"description=Control dotfield notation in the response,default=true"`
}

// GetResult is the output of get_chemical_by_id.
type GetResult struct {
	Success  bool            `json:"success"`
	Chemical encoding.Record `json:"chemical"`
}

// NewGetByID creates the get_chemical_by_id tool.
func NewGetByID(c *mychem.Client) (*tools.Func[GetRequest, GetResult], error) {
	return tools.NewFunc("get_chemical_by_id",
		"Get detailed information about a chemical by ID (InChIKey, ChEMBL ID, etc.)",
		func(ctx context.Context, req *GetRequest) (*GetResult, error) {
			params := map[string]string{}
			if req.Fields != "" {
				params["fields"] = req.Fields
			}
			if req.DotField != nil && !*req.DotField {
				params["dotfield"] = "false"
			}
			raw, err := c.GetChem(ctx, req.ChemicalID, params)
			if err != nil {
				return nil, err
			}
			return &GetResult{Success: true, Chemical: raw}, nil
		})
}

// New returns the annotation tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	getByID, err := NewGetByID(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{getByID}, nil
}
