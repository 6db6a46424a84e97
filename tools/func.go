package tools

import (
	"context"
	"encoding/json"
	"reflect"

	"github.com/chembridge/mychem-mcp/encoding"
	"github.com/chembridge/mychem-mcp/mychem"
	"github.com/chembridge/mychem-mcp/schema"
	"github.com/cockroachdb/errors"
	"github.com/effective-security/xlog"
	"github.com/go-playground/validator/v10"
	mcp "github.com/metoro-io/mcp-golang"
)

var logger = xlog.NewPackageLogger("github.com/chembridge/mychem-mcp", "tools")

// ErrFailedUnmarshalInput is returned when the tool input is not valid JSON
// for the request type.
var ErrFailedUnmarshalInput = errors.New("failed to unmarshal tool input")

var validate = validator.New(validator.WithRequiredStructEnabled())

// HandlerFunc is the typed body of a tool.
type HandlerFunc[I any, O any] func(ctx context.Context, req *I) (*O, error)

// RenderFunc turns a typed result into the text returned to the caller.
type RenderFunc[O any] func(*O) (string, error)

// Func adapts a HandlerFunc into a registrable MCP tool: it derives the
// input schema from I, validates requests, and renders results. The default
// rendering is indented JSON; export tools install their own RenderFunc.
type Func[I any, O any] struct {
	name        string
	description string
	funcParams  any
	fn          HandlerFunc[I, O]
	render      RenderFunc[O]
}

var _ MCPTool[struct{}] = (*Func[struct{}, struct{}])(nil)

// NewFunc creates a tool from a typed handler.
func NewFunc[I any, O any](name, description string, fn HandlerFunc[I, O]) (*Func[I, O], error) {
	var def I
	sc, err := schema.New(reflect.TypeOf(def))
	if err != nil {
		return nil, errors.WithMessagef(err, "tool %q: failed to create schema", name)
	}
	return &Func[I, O]{
		name:        name,
		description: description,
		funcParams:  sc.Parameters,
		fn:          fn,
	}, nil
}

// WithRenderer replaces the default JSON rendering of results.
func (t *Func[I, O]) WithRenderer(render RenderFunc[O]) *Func[I, O] {
	t.render = render
	return t
}

func (t *Func[I, O]) Name() string {
	return t.name
}

func (t *Func[I, O]) Description() string {
	return t.description
}

func (t *Func[I, O]) Parameters() any {
	return t.funcParams
}

// Run validates the request and invokes the handler.
func (t *Func[I, O]) Run(ctx context.Context, req *I) (*O, error) {
	if err := validate.Struct(req); err != nil {
		return nil, errors.WithMessagef(mychem.ErrInvalidArgument, "%s", err.Error())
	}
	return t.fn(ctx, req)
}

// Call executes the tool with a raw JSON input.
func (t *Func[I, O]) Call(ctx context.Context, input string) (string, error) {
	var req I
	if input != "" {
		if err := json.Unmarshal([]byte(input), &req); err != nil {
			return "", errors.WithStack(ErrFailedUnmarshalInput)
		}
	}
	out, err := t.Run(ctx, &req)
	if err != nil {
		return "", err
	}
	return t.renderResult(out)
}

// RunMCP executes the tool for an MCP call. Failures are rendered as a JSON
// error object in the text content, a failed tool call is never fatal.
func (t *Func[I, O]) RunMCP(ctx context.Context, req *I) (*mcp.ToolResponse, error) {
	out, err := t.Run(ctx, req)
	if err == nil {
		var text string
		text, err = t.renderResult(out)
		if err == nil {
			return mcp.NewToolResponse(mcp.NewTextContent(text)), nil
		}
	}

	logger.ContextKV(ctx, xlog.ERROR, "tool", t.name, "err", err.Error())
	return mcp.NewToolResponse(mcp.NewTextContent(errorText(t.name, err))), nil
}

// RegisterMCP registers the tool on an MCP server.
func (t *Func[I, O]) RegisterMCP(registrator McpServerRegistrator) error {
	return registrator.RegisterTool(t.name, t.description, t.RunMCP)
}

func (t *Func[I, O]) renderResult(out *O) (string, error) {
	if t.render != nil {
		return t.render(out)
	}
	bs, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal output")
	}
	return string(bs), nil
}

// ErrorKind names the error class for the caller, per the supported kinds:
// InvalidArgument, FormatError, UpstreamUnavailable, UpstreamError.
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, mychem.ErrInvalidArgument) || errors.Is(err, ErrFailedUnmarshalInput):
		return "InvalidArgument"
	case errors.Is(err, encoding.ErrUnsupportedFormat):
		return "FormatError"
	case errors.Is(err, mychem.ErrUnavailable):
		return "UpstreamUnavailable"
	case errors.Is(err, mychem.ErrUpstream):
		return "UpstreamError"
	default:
		return "InternalError"
	}
}

func errorText(tool string, err error) string {
	bs, _ := json.MarshalIndent(map[string]string{
		"error":     ErrorKind(err),
		"message":   err.Error(),
		"tool_name": tool,
	}, "", "  ")
	return string(bs)
}

type toolDescription struct {
	Name        string `json:"Name"`
	Description string `json:"Description"`
}

// Descriptions returns a JSON catalog of the given tools.
func Descriptions(list ...ITool) string {
	catalog := make([]toolDescription, 0, len(list))
	for _, tool := range list {
		catalog = append(catalog, toolDescription{
			Name:        tool.Name(),
			Description: tool.Description(),
		})
	}
	bs, _ := json.MarshalIndent(catalog, "", "  ")
	return string(bs)
}
