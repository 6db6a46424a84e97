// Package metadata implements tools for inspecting the upstream service
// itself: build metadata, queryable fields and per-source statistics.
package metadata

import (
	"context"
	"encoding/json"

	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/tools"
	"github.com/tidwall/gjson"
)

// EmptyRequest is the input of tools without parameters.
type EmptyRequest struct{}

// MetadataResult is the output of get_mychem_metadata.
type MetadataResult struct {
	Success  bool            `json:"success"`
	Metadata json.RawMessage `json:"metadata"`
}

// NewMetadata creates the get_mychem_metadata tool.
func NewMetadata(c *mychem.Client) (*tools.Func[EmptyRequest, MetadataResult], error) {
	return tools.NewFunc("get_mychem_metadata",
		"Get metadata about the MyChem.info API including data sources and statistics",
		func(ctx context.Context, _ *EmptyRequest) (*MetadataResult, error) {
			raw, err := c.Metadata(ctx)
			if err != nil {
				return nil, err
			}
			return &MetadataResult{Success: true, Metadata: json.RawMessage(raw)}, nil
		})
}

// FieldsResult is the output of get_available_fields.
type FieldsResult struct {
	Success bool            `json:"success"`
	Fields  json.RawMessage `json:"fields"`
}

// NewAvailableFields creates the get_available_fields tool.
func NewAvailableFields(c *mychem.Client) (*tools.Func[EmptyRequest, FieldsResult], error) {
	return tools.NewFunc("get_available_fields",
		"Get a list of all queryable fields in MyChem.info",
		func(ctx context.Context, _ *EmptyRequest) (*FieldsResult, error) {
			raw, err := c.MetadataFields(ctx)
			if err != nil {
				return nil, err
			}
			return &FieldsResult{Success: true, Fields: json.RawMessage(raw)}, nil
		})
}

// SourceStats describes one upstream data source.
type SourceStats struct {
	Version string `json:"version,omitempty"`
	Total   int64  `json:"total"`
}

// Statistics summarizes the database build.
type Statistics struct {
	TotalChemicals int64                  `json:"total_chemicals"`
	LastUpdated    string                 `json:"last_updated,omitempty"`
	Version        string                 `json:"version,omitempty"`
	Sources        map[string]SourceStats `json:"sources"`
}

// StatisticsResult is the output of get_database_statistics.
type StatisticsResult struct {
	Success    bool       `json:"success"`
	Statistics Statistics `json:"statistics"`
}

// NewDatabaseStatistics creates the get_database_statistics tool.
func NewDatabaseStatistics(c *mychem.Client) (*tools.Func[EmptyRequest, StatisticsResult], error) {
	return tools.NewFunc("get_database_statistics",
		"Get statistics about the chemical database",
		func(ctx context.Context, _ *EmptyRequest) (*StatisticsResult, error) {
			raw, err := c.Metadata(ctx)
			if err != nil {
				return nil, err
			}

			stats := Statistics{
				TotalChemicals: gjson.GetBytes(raw, "stats.total").Int(),
				LastUpdated:    gjson.GetBytes(raw, "build_date").String(),
				Version:        gjson.GetBytes(raw, "build_version").String(),
				Sources:        map[string]SourceStats{},
			}
			gjson.GetBytes(raw, "src").ForEach(func(key, value gjson.Result) bool {
				stats.Sources[key.String()] = SourceStats{
					Version: value.Get("version").String(),
					Total:   value.Get("stats.total").Int(),
				}
				return true
			})
			return &StatisticsResult{Success: true, Statistics: stats}, nil
		})
}

// New returns the metadata tools bound to the client.
func New(c *mychem.Client) ([]tools.IMCPTool, error) {
	meta, err := NewMetadata(c)
	if err != nil {
		return nil, err
	}
	fields, err := NewAvailableFields(c)
	if err != nil {
		return nil, err
	}
	stats, err := NewDatabaseStatistics(c)
	if err != nil {
		return nil, err
	}
	return []tools.IMCPTool{meta, fields, stats}, nil
}
