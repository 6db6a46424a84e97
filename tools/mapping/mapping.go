// Package mapping implements chemical identifier translation tools.
// Every identifier type maps to a set of upstream fields; the lookup is a
// batched scoped query and the answers are read back per type.
package mapping

import (
	"context"
	"sort"
	"strings"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/cockroachdb/errors"
	"github.com/tidwall/gjson"
)

// fieldMap binds each identifier type to the upstream fields carrying it.
var fieldMap = map[string]string{
	"inchikey": "pubchem.inchikey,chembl.inchikey,drugbank.inchikey",
	"pubchem":  "pubchem.cid",
	"chembl":   "chembl.molecule_chembl_id",
	"drugbank": "drugbank.id",
	"unii":     "unii.unii",
	"cas":      "drugbank.cas_number,pubchem.cas",
	"smiles":   "pubchem.smiles.canonical,chembl.smiles",
	"inchi":    "pubchem.inchi,chembl.inchi",
	"name":     "chembl.pref_name,drugbank.name,pubchem.synonyms",
}

// extractValue reads the identifier of the given type from a query result.
func extractValue(rec []byte, idType string) string {
	switch idType {
	case "inchikey":
		return gjson.GetBytes(rec, "_id").String()
	case "pubchem":
		return gjson.GetBytes(rec, "pubchem.cid").String()
	case "chembl":
		return gjson.GetBytes(rec, "chembl.molecule_chembl_id").String()
	case "drugbank":
		return gjson.GetBytes(rec, "drugbank.id").String()
	case "unii":
		return gjson.GetBytes(rec, "unii.unii").String()
	case "cas":
		return chemjson.FirstString(rec, "drugbank.cas_number", "pubchem.cas")
	case "smiles":
		return chemjson.FirstString(rec, "pubchem.smiles.canonical", "chembl.smiles")
	case "inchi":
		return chemjson.FirstString(rec, "pubchem.inchi", "chembl.inchi")
	case "name":
		return chemjson.FirstString(rec, "chembl.pref_name", "drugbank.name", "pubchem.synonyms")
	default:
		return ""
	}
}

// Mapping is the resolved identifiers for one input.
type Mapping struct {
	Input    string            `json:"input"`
	FromType string            `json:"from_type"`
	Mappings map[string]string `json:"mappings"`
}

// MapResult is the output of map_identifiers.
type MapResult struct {
	Success     bool      `json:"success"`
	TotalInput  int       `json:"total_input"`
	Mapped      int       `json:"mapped"`
	Unmapped    int       `json:"unmapped"`
	Mappings    []Mapping `json:"mappings"`
	UnmappedIDs []string  `json:"unmapped_ids"`
}

// MapRequest is the input of map_identifiers.
type MapRequest struct {
	InputIDs  []string `json:"input_ids" jsonschema:"description=List of input identifiers" validate:"required,min=1"`
	FromType  string   `json:"from_type" jsonschema:"description=Type of the input identifiers,enum=inchikey,enum=pubchem,enum=chembl,enum=drugbank,enum=unii,enum=cas,enum=smiles,enum=inchi,enum=name" validate:"required,oneof=inchikey pubchem chembl drugbank unii cas smiles inchi name"`
	ToTypes   []string `json:"to_types" jsonschema:"description=Identifier types to map to" validate:"required,min=1,dive,oneof=inchikey pubchem chembl drugbank unii cas smiles inchi name"`
	MissingOK *bool    `json:"missing_ok,omitempty" jsonschema:"description=Include unmapped IDs in the response,default=true"`
}

func mapIdentifiers(ctx context.Context, c *mychem.Client, inputIDs []string, fromType string, toTypes []string) (*MapResult, error) {
	scope, ok := fieldMap[fromType]
	if !ok {
		return nil, errors.WithMessagef(mychem.ErrInvalidArgument, "unsupported from_type: %s", fromType)
	}

	returnFields := []string{"_id"}
	for _, toType := range toTypes {
		if fields, ok := fieldMap[toType]; ok {
			returnFields = append(returnFields, fields)
		}
	}

	records, err := c.PostQuery(ctx, inputIDs, map[string]any{
		"scopes": scope,
		"fields": strings.Join(returnFields, ","),
	})
	if err != nil {
		return nil, err
	}

	res := &MapResult{
		Success:     true,
		TotalInput:  len(inputIDs),
		Mappings:    []Mapping{},
		UnmappedIDs: []string{},
	}
	for _, rec := range records {
		query := gjson.GetBytes(rec, "query").String()
		if !gjson.GetBytes(rec, "found").Bool() {
			res.UnmappedIDs = append(res.UnmappedIDs, query)
			continue
		}
		mapping := Mapping{
			Input:    query,
			FromType: fromType,
			Mappings: map[string]string{},
		}
		for _, toType := range toTypes {
			if value := extractValue(rec, toType); value != "" {
				mapping.Mappings[toType] = value
			}
		}
		res.Mappings = append(res.Mappings, mapping)
	}
	res.Mapped = len(res.Mappings)
	res.Unmapped = len(res.UnmappedIDs)
	return res, nil
}

// NewMapIdentifiers creates the map_identifiers tool.
func NewMapIdentifiers(c *mychem.Client) (*tools.Func[MapRequest, MapResult], error) {
	return tools.NewFunc("map_identifiers",
		"Map chemical identifiers from one type to others (InChIKey / PubChem CID / ChEMBL ID / DrugBank ID / UNII / CAS / SMILES / InChI / name)",
		func(ctx context.Context, req *MapRequest) (*MapResult, error) {
			return mapIdentifiers(ctx, c, req.InputIDs, req.FromType, req.ToTypes)
		})
}

// ValidRequest is the input of validate_identifiers.
type ValidRequest struct {
	Identifiers    []string `json:"identifiers" jsonschema:"description=List of identifiers to validate" validate:"required,min=1"`
	IdentifierType string   `json:"identifier_type" jsonschema:"description=Type of the identifiers,enum=inchikey,enum=pubchem,enum=chembl,enum=drugbank,enum=unii,enum=cas,enum=smiles,enum=inchi" validate:"required,oneof=inchikey pubchem chembl drugbank unii cas smiles inchi"`
}

// ValidIdentifier is one identifier confirmed to exist upstream.
type ValidIdentifier struct {
	Identifier string `json:"identifier"`
	InChIKey   string `json:"inchikey,omitempty"`
}

// ValidResult is the output of validate_identifiers.
type ValidResult struct {
	Success            bool              `json:"success"`
	IdentifierType     string            `json:"identifier_type"`
	Total              int               `json:"total"`
	ValidCount         int               `json:"valid_count"`
	InvalidCount       int               `json:"invalid_count"`
	ValidIdentifiers   []ValidIdentifier `json:"valid_identifiers"`
	InvalidIdentifiers []string          `json:"invalid_identifiers"`
}

// NewValidateIdentifiers creates the validate_identifiers tool. Validity
// means the identifier resolves to a record upstream.
func NewValidateIdentifiers(c *mychem.Client) (*tools.Func[ValidRequest, ValidResult], error) {
	return tools.NewFunc("validate_identifiers",
		"Validate a list of chemical identifiers",
		func(ctx context.Context, req *ValidRequest) (*ValidResult, error) {
			mapped, err := mapIdentifiers(ctx, c, req.Identifiers, req.IdentifierType, []string{"inchikey"})
			if err != nil {
				return nil, err
			}

			valid := make([]ValidIdentifier, 0, len(mapped.Mappings))
			for _, mapping := range mapped.Mappings {
				valid = append(valid, ValidIdentifier{
					Identifier: mapping.Input,
					InChIKey:   mapping.Mappings["inchikey"],
				})
			}
			return &ValidResult{
				Success:            true,
				IdentifierType:     req.IdentifierType,
				Total:              len(req.Identifiers),
				ValidCount:         len(valid),
				InvalidCount:       len(mapped.UnmappedIDs),
				ValidIdentifiers:   valid,
				InvalidIdentifiers: mapped.UnmappedIDs,
			}, nil
		})
}

// CommonRequest is the input of find_common_identifiers. Keys name the
// lists and imply the identifier type (drugbank_ids, chembl_ids, ...).
type CommonRequest struct {
	IdentifierLists map[string][]string `json:"identifier_lists" jsonschema:"description=Named identifier lists keyed by type such as drugbank_ids or chembl_ids" validate:"required,min=1"`
}

// FoundIn records which input list an identifier came from.
type FoundIn struct {
	List       string `json:"list"`
	Identifier string `json:"identifier"`
}

// CommonChemical is one chemical present in every input list.
type CommonChemical struct {
	InChIKey    string    `json:"inchikey"`
	Name        string    `json:"name,omitempty"`
	Identifiers []FoundIn `json:"identifiers"`
}

// CommonResult is the output of find_common_identifiers.
type CommonResult struct {
	Success              bool             `json:"success"`
	InputLists           []string         `json:"input_lists"`
	TotalUniqueChemicals int              `json:"total_unique_chemicals"`
	CommonChemicalsCount int              `json:"common_chemicals_count"`
	CommonChemicals      []CommonChemical `json:"common_chemicals"`
}

// listType guesses the identifier type from a list name.
func listType(name string) (string, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "drugbank"):
		return "drugbank", nil
	case strings.Contains(lower, "chembl"):
		return "chembl", nil
	case strings.Contains(lower, "pubchem"), strings.Contains(lower, "cid"):
		return "pubchem", nil
	case strings.Contains(lower, "cas"):
		return "cas", nil
	case strings.Contains(lower, "inchikey"):
		return "inchikey", nil
	}
	return "", errors.WithMessagef(mychem.ErrInvalidArgument, "cannot determine identifier type from: %s", name)
}

// NewFindCommonIdentifiers creates the find_common_identifiers tool.
func NewFindCommonIdentifiers(c *mychem.Client) (*tools.Func[CommonRequest, CommonResult], error) {
	return tools.NewFunc("find_common_identifiers",
		"Find chemicals common across multiple identifier lists",
		func(ctx context.Context, req *CommonRequest) (*CommonResult, error) {
			listNames := make([]string, 0, len(req.IdentifierLists))
			for name := range req.IdentifierLists {
				listNames = append(listNames, name)
			}
			sort.Strings(listNames)

			type chemInfo struct {
				name    string
				foundIn []FoundIn
			}
			byInChIKey := map[string]*chemInfo{}
			var order []string

			for _, name := range listNames {
				fromType, err := listType(name)
				if err != nil {
					return nil, err
				}
				mapped, err := mapIdentifiers(ctx, c, req.IdentifierLists[name], fromType, []string{"inchikey", "name"})
				if err != nil {
					return nil, err
				}
				for _, mapping := range mapped.Mappings {
					inchikey := mapping.Mappings["inchikey"]
					if inchikey == "" {
						continue
					}
					info, ok := byInChIKey[inchikey]
					if !ok {
						info = &chemInfo{name: mapping.Mappings["name"]}
						byInChIKey[inchikey] = info
						order = append(order, inchikey)
					}
					info.foundIn = append(info.foundIn, FoundIn{
						List:       name,
						Identifier: mapping.Input,
					})
				}
			}

			common := []CommonChemical{}
			for _, inchikey := range order {
				info := byInChIKey[inchikey]
				lists := map[string]bool{}
				for _, f := range info.foundIn {
					lists[f.List] = true
				}
				if len(lists) < len(listNames) {
					continue
				}
				common = append(common, CommonChemical{
					InChIKey:    inchikey,
					Name:        info.name,
					Identifiers: info.foundIn,
				})
			}
			return &CommonResult{
				Success:              true,
				InputLists:           listNames,
				TotalUniqueChemicals: len(byInChIKey),
				CommonChemicalsCount: len(common),
				CommonChemicals:      common,
			}, nil
		})
}

// New returns the mapping tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	mapIDs, err := NewMapIdentifiers(c)
	if err != nil {
		return nil, err
	}
	validate, err := NewValidateIdentifiers(c)
	if err != nil {
		return nil, err
	}
	common, err := NewFindCommonIdentifiers(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{mapIDs, validate, common}, nil
}
