package dashboard

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const (
	layoutSchemaName  = "layout.json"
	widgetsSchemaName = "widgets.json"
)

var builtinSchemas = map[string]string{
	layoutSchemaName: `{
  "type": "object",
  "required": ["colSpan", "rowSpan"],
  "properties": {
    "colSpan": {"type": "integer", "minimum": 1, "maximum": 4},
    "rowSpan": {"type": "integer", "minimum": 1, "maximum": 10}
  }
}`,
	widgetsSchemaName: `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id"],
    "properties": {
      "id": {"type": "string", "minLength": 1},
      "title": {"type": "string"},
      "chartType": {"type": "string"},
      "sql": {"type": "string"},
      "data": {"type": ["array", "null"], "items": {"type": "object"}},
      "columns": {"type": ["array", "null"], "items": {"type": "string"}},
      "colSpan": {"type": "integer"},
      "rowSpan": {"type": "integer"}
    }
  }
}`,
}

// LayoutValidator checks layout settings before they reach the grid.
type LayoutValidator interface {
	ValidateLayout(span Span) error
}

// WidgetsValidator checks a persisted widget collection before it is trusted.
type WidgetsValidator interface {
	ValidateWidgets(raw []byte) error
}

// SchemaValidator compiles the built-in JSON schemas once and validates payloads.
type SchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewSchemaValidator builds a validator backed by jsonschema v5.
func NewSchemaValidator() *SchemaValidator {
	return &SchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// ValidateLayout ensures colSpan is within 1..4 and rowSpan within 1..10.
func (v *SchemaValidator) ValidateLayout(span Span) error {
	data, err := json.Marshal(span)
	if err != nil {
		return fmt.Errorf("dashboard: marshal layout: %w", err)
	}
	if err := v.validate(layoutSchemaName, data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLayout, err)
	}
	return nil
}

// ValidateWidgets ensures a serialized collection has the expected shape.
func (v *SchemaValidator) ValidateWidgets(raw []byte) error {
	return v.validate(widgetsSchemaName, raw)
}

func (v *SchemaValidator) validate(name string, raw []byte) error {
	schema, err := v.schemaFor(name)
	if err != nil {
		return err
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("dashboard: decode payload for %s: %w", name, err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("dashboard: payload failed %s: %w", name, err)
	}
	return nil
}

func (v *SchemaValidator) schemaFor(name string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[name]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	src, ok := builtinSchemas[name]
	if !ok {
		return nil, fmt.Errorf("dashboard: unknown schema %s", name)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
		return nil, fmt.Errorf("dashboard: load schema %s: %w", name, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("dashboard: compile schema %s: %w", name, err)
	}
	v.mu.Lock()
	v.compiled[name] = compiled
	v.mu.Unlock()
	return compiled, nil
}
