// Package schema derives JSON Schema tool-parameter definitions from
// request struct types. Field metadata comes from `json` and `jsonschema`
// struct tags.
package schema

import (
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/invopop/jsonschema"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

var (
	cache   = make(map[reflect.Type]*Schema)
	cacheMu sync.RWMutex
)

// Schema holds the reflected schema of a request type and its flattened
// parameters definition, suitable for a tool inputSchema.
type Schema struct {
	*jsonschema.Schema
	// Parameters is the flattened top-level object schema.
	Parameters any
}

// New creates a schema from the given type. Results are cached per type.
func New(t reflect.Type) (*Schema, error) {
	cacheMu.RLock()
	s, ok := cache[t]
	cacheMu.RUnlock()
	if ok {
		return s, nil
	}

	s, err := buildSchema(t)
	if err != nil {
		return nil, err
	}

	cacheMu.Lock()
	cache[t] = s
	cacheMu.Unlock()
	return s, nil
}

func buildSchema(t reflect.Type) (*Schema, error) {
	refl := Reflect(t)

	root, err := toParameterSchema(refl)
	if err != nil {
		return nil, err
	}
	return &Schema{
		Schema:     refl,
		Parameters: root,
	}, nil
}

// toParameterSchema lifts the root definition out of $defs and resolves
// one level of $ref indirection so the result is a plain object schema.
func toParameterSchema(tSchema *jsonschema.Schema) (*jsonschema.Schema, error) {
	rootID := strings.TrimPrefix(tSchema.Ref, "#/$defs/")

	defs := make(map[string]*jsonschema.Schema)
	var root *jsonschema.Schema
	for name, def := range tSchema.Definitions {
		if name == rootID {
			root = def
		} else {
			defs[name] = def
		}
	}
	if root == nil {
		return nil, errors.Newf("root definition %q not found", rootID)
	}

	res := &jsonschema.Schema{
		Type:       root.Type,
		Properties: root.Properties,
		Required:   root.Required,
	}
	if err := resolveRefs(res.Properties, defs); err != nil {
		return nil, err
	}
	return res, nil
}

func resolveRefs(props *orderedmap.OrderedMap[string, *jsonschema.Schema], defs map[string]*jsonschema.Schema) error {
	if props == nil {
		return nil
	}
	for pair := props.Oldest(); pair != nil; pair = pair.Next() {
		child := pair.Value
		if child.Ref != "" {
			name := strings.TrimPrefix(child.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved $ref %q", child.Ref)
			}
			pair.Value = def
			child = def
		}
		if child.Properties != nil {
			if err := resolveRefs(child.Properties, defs); err != nil {
				return err
			}
		}
		if child.Items != nil && child.Items.Ref != "" {
			name := strings.TrimPrefix(child.Items.Ref, "#/$defs/")
			def, ok := defs[name]
			if !ok {
				return errors.Newf("unresolved $ref %q", child.Items.Ref)
			}
			child.Items = def
		}
	}
	return nil
}

// Reflect returns the raw JSON schema of the type. Struct names are
// disambiguated with a package-path hash, different packages may reuse
// the same request type names.
func Reflect(t reflect.Type) *jsonschema.Schema {
	r := new(jsonschema.Reflector)
	r.Namer = func(t reflect.Type) string {
		name := t.Name()
		if t.Kind() == reflect.Struct {
			fullname := t.PkgPath() + "/" + t.Name()
			name = t.Name() + "@" + strconv.FormatUint(xxhash.Sum64String(fullname), 10)
		}
		return name
	}
	return r.ReflectFromType(t)
}
