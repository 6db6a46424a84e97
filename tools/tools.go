// Package tools defines the tool-call surface of the server: the interfaces
// every tool implements and a generic adapter that turns a typed handler
// function into a registrable MCP tool.
package tools

import (
	"context"

	mcp "github.com/metoro-io/mcp-golang"
)

// McpServerRegistrator is the subset of the MCP server used to register
// tools.
type McpServerRegistrator interface {
	RegisterTool(name string, description string, handler any) error
}

// ITool is a single callable operation.
type ITool interface {
	// Name returns the name of the tool.
	Name() string
	// Description returns the description of the tool, shown to the agent.
	Description() string
	// Parameters returns the JSON Schema of the tool input.
	Parameters() any

	// Call executes the tool with a raw JSON input and returns the
	// formatted result. A malformed input returns ErrFailedUnmarshalInput.
	Call(context.Context, string) (string, error)
}

// Tool is a typed tool.
type Tool[I any, O any] interface {
	ITool
	Run(context.Context, *I) (*O, error)
}

// IMCPTool extends ITool with registration on an MCP server.
type IMCPTool interface {
	ITool
	RegisterMCP(registrator McpServerRegistrator) error
}

// MCPTool is a typed tool exposed over MCP.
type MCPTool[I any] interface {
	IMCPTool
	RunMCP(context.Context, *I) (*mcp.ToolResponse, error)
}
