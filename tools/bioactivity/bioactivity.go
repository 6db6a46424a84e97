// Package bioactivity implements assay and potency tools over the ChEMBL
// activities and PubChem bioassay annotations.
package bioactivity

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/chembridge/mychem-mcp/tools/internal/chemjson"
	"github.com/tidwall/gjson"
)

// Activity is one normalized assay result.
type Activity struct {
	Source          string `json:"source"`
	AssayID         string `json:"assay_id,omitempty"`
	AssayName       string `json:"assay_name,omitempty"`
	AssayType       string `json:"assay_type,omitempty"`
	TargetName      string `json:"target_name,omitempty"`
	TargetType      string `json:"target_type,omitempty"`
	ActivityType    string `json:"activity_type,omitempty"`
	ActivityOutcome string `json:"activity_outcome,omitempty"`
	Value           string `json:"value,omitempty"`
	Units           string `json:"units,omitempty"`
	Relation        string `json:"relation,omitempty"`
	ActivityComment string `json:"activity_comment,omitempty"`
}

// AssaySummary aggregates counts over the returned activities.
type AssaySummary struct {
	TotalAssays   int            `json:"total_assays"`
	ActiveAssays  int            `json:"active_assays"`
	TargetTypes   map[string]int `json:"target_types"`
	ActivityTypes map[string]int `json:"activity_types"`
}

// BioassayData is the per-chemical activity collection.
type BioassayData struct {
	ChemicalID   string       `json:"chemical_id"`
	Activities   []Activity   `json:"activities"`
	AssaySummary AssaySummary `json:"assay_summary"`
}

// AssayRequest is the input of get_bioassay_data.
type AssayRequest struct {
	ChemicalID   string  `json:"chemical_id" jsonschema:"description=Chemical identifier" validate:"required"`
	ActivityType string  `json:"activity_type,omitempty" jsonschema:"description=Filter by activity type such as IC50 or Ki"`
	TargetType   string  `json:"target_type,omitempty" jsonschema:"description=Filter by target type such as SINGLE PROTEIN"`
	MinPotency   float64 `json:"min_potency,omitempty" jsonschema:"description=Maximum activity value so only more potent compounds pass"`
}

// AssayResult is the output of get_bioassay_data.
type AssayResult struct {
	Success      bool         `json:"success"`
	BioassayData BioassayData `json:"bioassay_data"`
}

// NewBioassayData creates the get_bioassay_data tool.
func NewBioassayData(c *mychem.Client) (*tools.Func[AssayRequest, AssayResult], error) {
	return tools.NewFunc("get_bioassay_data",
		"Get bioactivity and assay results for a chemical",
		func(ctx context.Context, req *AssayRequest) (*AssayResult, error) {
			raw, err := c.GetChem(ctx, req.ChemicalID, map[string]string{
				"fields": "chembl.activities,pubchem.bioassays,drugbank.experimental_properties",
			})
			if err != nil {
				return nil, err
			}

			data := BioassayData{
				ChemicalID: req.ChemicalID,
				Activities: []Activity{},
				AssaySummary: AssaySummary{
					TargetTypes:   map[string]int{},
					ActivityTypes: map[string]int{},
				},
			}

			chemjson.ForEachItem(gjson.GetBytes(raw, "chembl.activities"), func(item gjson.Result) {
				if req.ActivityType != "" && item.Get("standard_type").String() != req.ActivityType {
					return
				}
				if req.TargetType != "" && item.Get("target_type").String() != req.TargetType {
					return
				}
				if req.MinPotency > 0 {
					value, err := strconv.ParseFloat(item.Get("standard_value").String(), 64)
					if err != nil || value > req.MinPotency {
						return
					}
				}

				data.Activities = append(data.Activities, Activity{
					Source:          "chembl",
					AssayID:         item.Get("assay_chembl_id").String(),
					TargetName:      item.Get("target_pref_name").String(),
					TargetType:      item.Get("target_type").String(),
					ActivityType:    item.Get("standard_type").String(),
					Value:           item.Get("standard_value").String(),
					Units:           item.Get("standard_units").String(),
					Relation:        item.Get("standard_relation").String(),
					ActivityComment: item.Get("activity_comment").String(),
				})

				data.AssaySummary.TotalAssays++
				if item.Get("standard_relation").String() == "=" {
					data.AssaySummary.ActiveAssays++
				}
				targetType := item.Get("target_type").String()
				if targetType == "" {
					targetType = "Unknown"
				}
				data.AssaySummary.TargetTypes[targetType]++
				activityType := item.Get("standard_type").String()
				if activityType == "" {
					activityType = "Unknown"
				}
				data.AssaySummary.ActivityTypes[activityType]++
			})

			chemjson.ForEachItem(gjson.GetBytes(raw, "pubchem.bioassays"), func(item gjson.Result) {
				data.Activities = append(data.Activities, Activity{
					Source:          "pubchem",
					AssayID:         "AID" + item.Get("aid").String(),
					AssayName:       item.Get("name").String(),
					ActivityOutcome: item.Get("activity_outcome").String(),
					AssayType:       item.Get("assay_type").String(),
				})
				data.AssaySummary.TotalAssays++
				if item.Get("activity_outcome").String() == "Active" {
					data.AssaySummary.ActiveAssays++
				}
			})

			return &AssayResult{Success: true, BioassayData: data}, nil
		})
}

// ActiveRequest is the input of search_active_compounds.
type ActiveRequest struct {
	TargetName   string  `json:"target_name" jsonschema:"description=Target protein name" validate:"required"`
	ActivityType string  `json:"activity_type,omitempty" jsonschema:"description=Activity measurement type,enum=IC50,enum=EC50,enum=Ki,enum=Kd,enum=pIC50,enum=pEC50,default=IC50" validate:"omitempty,oneof=IC50 EC50 Ki Kd pIC50 pEC50"`
	MaxValue     float64 `json:"max_value,omitempty" jsonschema:"description=Maximum activity value threshold,default=1000" validate:"omitempty,gt=0"`
	Units        string  `json:"units,omitempty" jsonschema:"description=Units for the activity value,enum=nM,enum=uM,enum=M,default=nM" validate:"omitempty,oneof=nM uM M"`
	Size         int     `json:"size,omitempty" jsonschema:"description=Number of results,default=10" validate:"omitempty,min=1,max=1000"`
}

// RelevantActivity is one measurement under the requested threshold.
type RelevantActivity struct {
	Value   float64 `json:"value"`
	Units   string  `json:"units"`
	AssayID string  `json:"assay_id,omitempty"`
}

// ActiveCompound is one compound passing the potency filter.
type ActiveCompound struct {
	InChIKey           string             `json:"inchikey"`
	ChemblID           string             `json:"chembl_id,omitempty"`
	Name               string             `json:"name,omitempty"`
	RelevantActivities []RelevantActivity `json:"relevant_activities"`
}

// ActiveQuery restates the search criteria in the response.
type ActiveQuery struct {
	Target       string `json:"target"`
	ActivityType string `json:"activity_type"`
	Threshold    string `json:"threshold"`
}

// ActiveResult is the output of search_active_compounds.
type ActiveResult struct {
	Success         bool             `json:"success"`
	Query           ActiveQuery      `json:"query"`
	TotalFound      int              `json:"total_found"`
	ActiveCompounds []ActiveCompound `json:"active_compounds"`
}

// NewActiveCompounds creates the search_active_compounds tool.
func NewActiveCompounds(c *mychem.Client) (*tools.Func[ActiveRequest, ActiveResult], error) {
	return tools.NewFunc("search_active_compounds",
		"Search for compounds active against a specific target",
		func(ctx context.Context, req *ActiveRequest) (*ActiveResult, error) {
			activityType := req.ActivityType
			if activityType == "" {
				activityType = "IC50"
			}
			maxValue := req.MaxValue
			if maxValue == 0 {
				maxValue = 1000
			}
			units := req.Units
			if units == "" {
				units = "nM"
			}
			size := req.Size
			if size == 0 {
				size = 10
			}

			q := fmt.Sprintf(`chembl.activities.target_pref_name:"%s" AND `+
				`chembl.activities.standard_type:%s AND `+
				`chembl.activities.standard_units:%s AND `+
				`chembl.activities.standard_value:[* TO %s]`,
				req.TargetName, activityType, units,
				strconv.FormatFloat(maxValue, 'f', -1, 64))

			res, err := c.Query(ctx, map[string]string{
				"q":      q,
				"fields": "inchikey,chembl,drugbank.name,chembl.activities",
				"size":   strconv.Itoa(size),
			})
			if err != nil {
				return nil, err
			}

			compounds := []ActiveCompound{}
			for _, hit := range res.Hits {
				compound := ActiveCompound{
					InChIKey:           gjson.GetBytes(hit, "_id").String(),
					ChemblID:           gjson.GetBytes(hit, "chembl.molecule_chembl_id").String(),
					Name:               gjson.GetBytes(hit, "drugbank.name").String(),
					RelevantActivities: []RelevantActivity{},
				}
				chemjson.ForEachItem(gjson.GetBytes(hit, "chembl.activities"), func(item gjson.Result) {
					if item.Get("target_pref_name").String() != req.TargetName ||
						item.Get("standard_type").String() != activityType ||
						item.Get("standard_units").String() != units {
						return
					}
					value, err := strconv.ParseFloat(item.Get("standard_value").String(), 64)
					if err != nil || value > maxValue {
						return
					}
					compound.RelevantActivities = append(compound.RelevantActivities, RelevantActivity{
						Value:   value,
						Units:   units,
						AssayID: item.Get("assay_chembl_id").String(),
					})
				})
				if len(compound.RelevantActivities) > 0 {
					compounds = append(compounds, compound)
				}
			}

			return &ActiveResult{
				Success: true,
				Query: ActiveQuery{
					Target:       req.TargetName,
					ActivityType: activityType,
					Threshold:    fmt.Sprintf("%s %s", strconv.FormatFloat(maxValue, 'f', -1, 64), units),
				},
				TotalFound:      len(compounds),
				ActiveCompounds: compounds,
			}, nil
		})
}

// CompareRequest is the input of compare_compound_activities.
type CompareRequest struct {
	ChemicalIDs   []string `json:"chemical_ids" jsonschema:"description=List of chemical identifiers to compare" validate:"required,min=1"`
	TargetName    string   `json:"target_name,omitempty" jsonschema:"description=Filter by specific target name"`
	ActivityTypes []string `json:"activity_types,omitempty" jsonschema:"description=Activity types to include (defaults to IC50 EC50 Ki Kd)"`
}

// Measurement is one activity value for a target and activity type.
type Measurement struct {
	Value   string `json:"value"`
	Units   string `json:"units,omitempty"`
	AssayID string `json:"assay_id,omitempty"`
}

// CompoundActivities holds one compound's activities grouped by target.
type CompoundActivities struct {
	ChemicalID         string                            `json:"chemical_id"`
	Name               string                            `json:"name,omitempty"`
	ActivitiesByTarget map[string]map[string]Measurement `json:"activities_by_target"`
}

// TargetSummary aggregates coverage of one target across compounds.
type TargetSummary struct {
	CompoundsTested int      `json:"compounds_tested"`
	ActivityTypes   []string `json:"activity_types"`
}

// Comparison is the output payload of compare_compound_activities.
type Comparison struct {
	Compounds     []CompoundActivities     `json:"compounds"`
	TargetSummary map[string]TargetSummary `json:"target_summary"`
}

// CompareResult is the output of compare_compound_activities.
type CompareResult struct {
	Success    bool       `json:"success"`
	Comparison Comparison `json:"comparison"`
}

// NewCompareActivities creates the compare_compound_activities tool.
func NewCompareActivities(c *mychem.Client) (*tools.Func[CompareRequest, CompareResult], error) {
	return tools.NewFunc("compare_compound_activities",
		"Compare bioactivities across multiple compounds",
		func(ctx context.Context, req *CompareRequest) (*CompareResult, error) {
			activityTypes := req.ActivityTypes
			if len(activityTypes) == 0 {
				activityTypes = []string{"IC50", "EC50", "Ki", "Kd"}
			}
			wantType := map[string]bool{}
			for _, t := range activityTypes {
				wantType[t] = true
			}

			comparison := Comparison{
				Compounds:     []CompoundActivities{},
				TargetSummary: map[string]TargetSummary{},
			}
			typesByTarget := map[string]map[string]bool{}

			for _, chemID := range req.ChemicalIDs {
				raw, err := c.GetChem(ctx, chemID, map[string]string{
					"fields": "chembl.activities,drugbank.name,chembl.pref_name",
				})
				if err != nil {
					return nil, err
				}

				compound := CompoundActivities{
					ChemicalID:         chemID,
					Name:               chemjson.FirstString(raw, "drugbank.name", "chembl.pref_name"),
					ActivitiesByTarget: map[string]map[string]Measurement{},
				}
				chemjson.ForEachItem(gjson.GetBytes(raw, "chembl.activities"), func(item gjson.Result) {
					target := item.Get("target_pref_name").String()
					if req.TargetName != "" && target != req.TargetName {
						return
					}
					actType := item.Get("standard_type").String()
					if !wantType[actType] {
						return
					}
					if target == "" {
						target = "Unknown"
					}
					if value := item.Get("standard_value").String(); actType != "" && value != "" {
						byType, ok := compound.ActivitiesByTarget[target]
						if !ok {
							byType = map[string]Measurement{}
							compound.ActivitiesByTarget[target] = byType
						}
						byType[actType] = Measurement{
							Value:   value,
							Units:   item.Get("standard_units").String(),
							AssayID: item.Get("assay_chembl_id").String(),
						}
					}
					if typesByTarget[target] == nil {
						typesByTarget[target] = map[string]bool{}
					}
					typesByTarget[target][actType] = true
				})
				comparison.Compounds = append(comparison.Compounds, compound)
			}

			for target, types := range typesByTarget {
				tested := 0
				for _, compound := range comparison.Compounds {
					if _, ok := compound.ActivitiesByTarget[target]; ok {
						tested++
					}
				}
				summary := TargetSummary{CompoundsTested: tested}
				for t := range types {
					summary.ActivityTypes = append(summary.ActivityTypes, t)
				}
				sort.Strings(summary.ActivityTypes)
				comparison.TargetSummary[target] = summary
			}

			return &CompareResult{Success: true, Comparison: comparison}, nil
		})
}

// New returns the bioactivity tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	assays, err := NewBioassayData(c)
	if err != nil {
		return nil, err
	}
	active, err := NewActiveCompounds(c)
	if err != nil {
		return nil, err
	}
	compare, err := NewCompareActivities(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{assays, active, compare}, nil
}
