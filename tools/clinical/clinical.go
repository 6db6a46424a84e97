// Package clinical implements clinical trial and FDA approval tools.
package clinical

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// IDRequest addresses one drug by identifier.
type IDRequest struct {
	ChemicalID string `json:"chemical_id" jsonschema:"description=Chemical or drug identifier" validate:"required"`
}

// TrialsData is the per-drug clinical trial collection.
type TrialsData struct {
	ChemicalID     string            `json:"chemical_id"`
	ClinicalTrials []encoding.Record `json:"clinical_trials"`
}

// TrialsResult is the output of get_clinical_trials.
type TrialsResult struct {
	Success     bool       `json:"success"`
	TotalTrials int        `json:"total_trials"`
	Trials      TrialsData `json:"trials"`
}

// NewClinicalTrials creates the get_clinical_trials tool. Each trial record
// is annotated with the source it came from.
func NewClinicalTrials(c *mychem.Client) (*tools.Func[IDRequest, TrialsResult], error) {
	return tools.NewFunc("get_clinical_trials",
		"Get clinical trials data for a drug",
		func(ctx context.Context, req *IDRequest) (*TrialsResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "drugbank.clinical_trials,chembl.clinical_trials,pharmgkb.clinical_annotations",
			})
			if err != nil {
				return nil, err
			}

			trials := []encoding.Record{}
			for _, source := range []string{"drugbank", "chembl"} {
				chemjson.ForEachItem(gjson.GetBytes(raw, source+".clinical_trials"), func(item gjson.Result) {
					tagged, err := sjson.Set(item.Raw, "source", source)
					if err != nil {
						tagged = item.Raw
					}
					trials = append(trials, encoding.Record(tagged))
				})
			}
			return &TrialsResult{
				Success:     true,
				TotalTrials: len(trials),
				Trials: TrialsData{
					ChemicalID:     req.ChemicalID,
					ClinicalTrials: trials,
				},
			}, nil
		})
}

// FDAData is the approval status and supporting details.
type FDAData struct {
	ChemicalID      string                     `json:"chemical_id"`
	ApprovalStatus  string                     `json:"approval_status"`
	ApprovalDetails map[string]json.RawMessage `json:"approval_details"`
}

// FDAResult is the output of get_fda_approval.
type FDAResult struct {
	Success bool    `json:"success"`
	FDAData FDAData `json:"fda_data"`
}

// NewFDAApproval creates the get_fda_approval tool.
func NewFDAApproval(c *mychem.Client) (*tools.Func[IDRequest, FDAResult], error) {
	return tools.NewFunc("get_fda_approval",
		"Get FDA approval status and label information",
		func(ctx context.Context, req *IDRequest) (*FDAResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "drugbank.fda_label,drugbank.fda_approval,pharmgkb.fda_approval,chembl.max_phase",
			})
			if err != nil {
				return nil, err
			}

			data := FDAData{
				ChemicalID:      req.ChemicalID,
				ApprovalStatus:  "Unknown",
				ApprovalDetails: map[string]json.RawMessage{},
			}
			if res := gjson.GetBytes(raw, "drugbank.fda_approval"); res.Exists() {
				data.ApprovalStatus = "Approved"
				data.ApprovalDetails["drugbank"] = json.RawMessage(res.Raw)
			}
			if res := gjson.GetBytes(raw, "drugbank.fda_label"); res.Exists() {
				data.ApprovalDetails["fda_label"] = json.RawMessage(res.Raw)
			}
			if res := gjson.GetBytes(raw, "pharmgkb.fda_approval"); res.Exists() {
				data.ApprovalStatus = "Approved"
				data.ApprovalDetails["pharmgkb"] = json.RawMessage(res.Raw)
			}
			if res := gjson.GetBytes(raw, "chembl.max_phase"); res.Exists() {
				data.ApprovalDetails["max_phase"] = json.RawMessage(res.Raw)
				if phase := res.Int(); phase == 4 {
					data.ApprovalStatus = "Approved"
				} else {
					data.ApprovalStatus = fmt.Sprintf("Phase %d", phase)
				}
			}
			return &FDAResult{Success: true, FDAData: data}, nil
		})
}

// New returns the clinical tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	trials, err := NewClinicalTrials(c)
	if err != nil {
		return nil, err
	}
	fda, err := NewFDAApproval(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{trials, fda}, nil
}
