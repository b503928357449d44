package tools

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Definition is the provider-facing description of a registered tool.
type Definition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

// MissingParamsError reports required input properties absent from a tool
// call. The executor detects it to attach remediation guidance for the
// model.
type MissingParamsError struct {
	Tool     string
	Missing  []string
	Provided []string
}

func (e *MissingParamsError) Error() string {
	return fmt.Sprintf("tool %q called with missing parameters: %s (provided: %s)",
		e.Tool, strings.Join(e.Missing, ", "), strings.Join(e.Provided, ", "))
}

// Registry holds the tool set for one agent. It is an explicit object built
// at startup; nothing registers itself through package-level state. Each
// tool's input schema is compiled at registration and used to validate
// calls before dispatch.
type Registry struct {
	mu      sync.RWMutex
	tools   map[string]Tool
	schemas map[string]*jsonschema.Schema
	order   []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools:   make(map[string]Tool),
		schemas: make(map[string]*jsonschema.Schema),
	}
}

// Register adds a tool, compiling its input schema. Duplicate names are an
// error.
func (r *Registry) Register(tool Tool) error {
	name := tool.Name()
	if name == "" {
		return fmt.Errorf("tool has no name")
	}

	schemaJSON, err := json.Marshal(tool.InputSchema())
	if err != nil {
		return fmt.Errorf("encode schema for %q: %w", name, err)
	}
	schema, err := jsonschema.CompileString(name+".schema.json", string(schemaJSON))
	if err != nil {
		return fmt.Errorf("compile schema for %q: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("tool %q already registered", name)
	}
	r.tools[name] = tool
	r.schemas[name] = schema
	r.order = append(r.order, name)
	return nil
}

// MustRegister panics on registration failure. Used by the builders, where
// a failure is a programming error.
func (r *Registry) MustRegister(tool Tool) {
	if err := r.Register(tool); err != nil {
		panic(err)
	}
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Definitions returns the provider-facing definitions in registration
// order.
func (r *Registry) Definitions() []Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		tool := r.tools[name]
		defs = append(defs, Definition{
			Name:        name,
			Description: tool.Description(),
			InputSchema: tool.InputSchema(),
		})
	}
	return defs
}

// ValidateInput checks a tool call's input against the tool's schema.
// Missing required properties come back as *MissingParamsError; other
// schema violations as a plain error.
func (r *Registry) ValidateInput(name string, input map[string]any) error {
	r.mu.RLock()
	schema, ok := r.schemas[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown tool: %s", name)
	}

	// Round-trip through JSON so the validator sees canonical types.
	payload, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("encode input for %q: %w", name, err)
	}
	var decoded any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return fmt.Errorf("decode input for %q: %w", name, err)
	}

	err = schema.Validate(decoded)
	if err == nil {
		return nil
	}

	var validationErr *jsonschema.ValidationError
	if ok := asValidationError(err, &validationErr); ok {
		if missing := collectMissing(validationErr); len(missing) > 0 {
			provided := make([]string, 0, len(input))
			for key := range input {
				provided = append(provided, key)
			}
			sort.Strings(provided)
			sort.Strings(missing)
			return &MissingParamsError{Tool: name, Missing: missing, Provided: provided}
		}
	}
	return fmt.Errorf("invalid input for %q: %w", name, err)
}

func asValidationError(err error, target **jsonschema.ValidationError) bool {
	ve, ok := err.(*jsonschema.ValidationError)
	if ok {
		*target = ve
	}
	return ok
}

// collectMissing walks the validation error tree for required-property
// failures at the top level of the input object.
func collectMissing(err *jsonschema.ValidationError) []string {
	var missing []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if strings.HasSuffix(e.KeywordLocation, "/required") && e.InstanceLocation == "" {
			// Message shape: missing properties: 'a', 'b'
			for _, field := range strings.Split(e.Message, ",") {
				field = strings.Trim(strings.TrimSpace(strings.TrimPrefix(
					strings.TrimSpace(field), "missing properties:")), "' ")
				if field != "" {
					missing = append(missing, field)
				}
			}
		}
		for _, cause := range e.Causes {
			walk(cause)
		}
	}
	walk(err)
	return missing
}
