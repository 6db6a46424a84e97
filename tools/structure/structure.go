// Package structure implements the chemical structure tools: retrieving
// structure representations, structure search and format conversion.
package structure

import (
	"context"
	"strconv"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// fieldsByFormat maps a structure format to the upstream fields holding it.
var fieldsByFormat = map[string]string{
	"smiles":   "pubchem.smiles.canonical,chembl.smiles,drugbank.smiles",
	"inchi":    "pubchem.inchi,chembl.inchi,drugbank.inchi",
	"inchikey": "pubchem.inchikey,chembl.inchikey,drugbank.inchikey",
	"mol":      "pubchem.sdf,chembl.molecule_structures",
	"all":      "pubchem.smiles,pubchem.inchi,pubchem.inchikey,chembl.smiles,chembl.inchi,chembl.inchikey,drugbank.smiles,drugbank.inchi,drugbank.inchikey",
}

// queryByType maps a structure input type to the fielded search query.
func structureQuery(structureType, structure string) string {
	switch structureType {
	case "inchi":
		return "pubchem.inchi:" + structure + " OR chembl.inchi:" + structure
	case "inchikey":
		return "pubchem.inchikey:" + structure + " OR chembl.inchikey:" + structure
	default:
		return "pubchem.smiles.canonical:" + structure + " OR chembl.smiles:" + structure
	}
}

// GetRequest is the input of get_chemical_structure.
type GetRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
	Format     string `json:"format,omitempty" jsonschema:"description=Structure format to retrieve,enum=smiles,enum=inchi,enum=inchikey,enum=mol,enum=all,default=all" validate:"omitempty,oneof=smiles inchi inchikey mol all"`
}

// GetResult is the output of get_chemical_structure.
type GetResult struct {
	Success    bool            `json:"success"`
	ChemicalID string          `json:"chemical_id"`
	Structures encoding.Record `json:"structures"`
}

// NewGetStructure creates the get_chemical_structure tool.
func NewGetStructure(c *mychem.Client) (*tools.Func[GetRequest, GetResult], error) {
	return tools.NewFunc("get_chemical_structure",
		"Get chemical structure representations (SMILES, InChI, InChIKey)",
		func(ctx context.Context, req *GetRequest) (*GetResult, error) {
			return getStructure(ctx, c, req.ChemicalID, req.Format)
		})
}

func getStructure(ctx context.Context, c *mychem.Client, id, format string) (*GetResult, error) {
	fields, ok := fieldsByFormat[format]
	if !ok {
		fields = fieldsByFormat["all"]
	}
	raw, err := c.GetChem(ctx, id, map[string]string{"fields": fields})
	if err != nil {
		return nil, err
	}
	return &GetResult{
		Success:    true,
		ChemicalID: id,
		Structures: raw,
	}, nil
}

// SearchRequest is the input of search_by_structure.
type SearchRequest struct {
	Structure     string  `json:"structure" jsonschema:"description=Chemical structure string" validate:"required"`
	StructureType string  `json:"structure_type,omitempty" jsonschema:"description=Type of structure input,enum=smiles,enum=inchi,enum=inchikey,default=smiles" validate:"omitempty,oneof=smiles inchi inchikey"`
	Similarity    float64 `json:"similarity,omitempty" jsonschema:"description=Similarity threshold (0-1),default=0.8" validate:"omitempty,min=0,max=1"`
	Size          int     `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=1,max=1000"`
}

// SearchResult is the output of search_by_structure.
type SearchResult struct {
	Success        bool              `json:"success"`
	QueryStructure string            `json:"query_structure"`
	StructureType  string            `json:"structure_type"`
	Total          int               `json:"total"`
	Hits           []encoding.Record `json:"hits"`
}

// NewSearchByStructure creates the search_by_structure tool.
func NewSearchByStructure(c *mychem.Client) (*tools.Func[SearchRequest, SearchResult], error) {
	return tools.NewFunc("search_by_structure",
		"Search for similar chemicals by structure",
		func(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
			return searchByStructure(ctx, c, req)
		})
}

func searchByStructure(ctx context.Context, c *mychem.Client, req *SearchRequest) (*SearchResult, error) {
	structureType := req.StructureType
	if structureType == "" {
		structureType = "smiles"
	}
	size := req.Size
	if size == 0 {
		size = 10
	}
	res, err := c.Query(ctx, map[string]string{
		"q":    structureQuery(structureType, req.Structure),
		"size": strconv.Itoa(size),
	})
	if err != nil {
		return nil, err
	}
	hits := res.Hits
	if hits == nil {
		hits = []encoding.Record{}
	}
	return &SearchResult{
		Success:        true,
		QueryStructure: req.Structure,
		StructureType:  structureType,
		Total:          res.Total,
		Hits:           hits,
	}, nil
}

// ConvertRequest is the input of convert_structure.
type ConvertRequest struct {
	Structure  string `json:"structure" jsonschema:"description=Input structure" validate:"required"`
	FromFormat string `json:"from_format" jsonschema:"description=Input format,enum=smiles,enum=inchi,enum=inchikey" validate:"required,oneof=smiles inchi inchikey"`
	ToFormat   string `json:"to_format" jsonschema:"description=Output format,enum=smiles,enum=inchi,enum=inchikey" validate:"required,oneof=smiles inchi inchikey"`
}

// ConvertResult is the output of convert_structure.
type ConvertResult struct {
	Success            bool            `json:"success"`
	InputStructure     string          `json:"input_structure"`
	FromFormat         string          `json:"from_format"`
	ToFormat           string          `json:"to_format"`
	ConvertedStructure encoding.Record `json:"converted_structure,omitempty"`
	Error              string          `json:"error,omitempty"`
}

// NewConvertStructure creates the convert_structure tool. Conversion finds
// the chemical by the input representation, then reads the target one.
func NewConvertStructure(c *mychem.Client) (*tools.Func[ConvertRequest, ConvertResult], error) {
	return tools.NewFunc("convert_structure",
		"Convert between chemical structure formats",
		func(ctx context.Context, req *ConvertRequest) (*ConvertResult, error) {
			search, err := searchByStructure(ctx, c, &SearchRequest{
				Structure:     req.Structure,
				StructureType: req.FromFormat,
				Size:          1,
			})
			if err != nil {
				return nil, err
			}
			if search.Total == 0 || len(search.Hits) == 0 {
				return &ConvertResult{
					Success:        false,
					InputStructure: req.Structure,
					FromFormat:     req.FromFormat,
					ToFormat:       req.ToFormat,
					Error:          "chemical not found with the provided structure",
				}, nil
			}

			id := gjson.GetBytes(search.Hits[0], "_id").String()
			if id == "" {
				return nil, errors.WithMessage(mychem.ErrUpstream, "hit without _id")
			}
			target, err := getStructure(ctx, c, id, req.ToFormat)
			if err != nil {
				return nil, err
			}
			return &ConvertResult{
				Success:            true,
				InputStructure:     req.Structure,
				FromFormat:         req.FromFormat,
				ToFormat:           req.ToFormat,
				ConvertedStructure: target.Structures,
			}, nil
		})
}

// New returns the structure tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	getStructure, err := NewGetStructure(c)
	if err != nil {
		return nil, err
	}
	searchStructure, err := NewSearchByStructure(c)
	if err != nil {
		return nil, err
	}
	convert, err := NewConvertStructure(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{getStructure, searchStructure, convert}, nil
}
