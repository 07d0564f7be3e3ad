package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a named JSON Schema that decoded oracle output is checked
// against. Name must be unique: compiled schemas are cached by it.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

var compiled sync.Map // Name -> *jsonschema.Schema

// ValidateJSON checks raw against s. Malformed JSON and schema mismatches are
// both *ErrInvalidResponse.
func ValidateJSON(s *Schema, raw json.RawMessage) error {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &ErrInvalidResponse{Text: string(raw), Err: fmt.Errorf("malformed JSON: %w", err)}
	}
	sch, err := s.compile()
	if err != nil {
		return err
	}
	if err := sch.Validate(doc); err != nil {
		return &ErrInvalidResponse{Text: string(raw), Err: fmt.Errorf("does not match %s: %w", s.Name, err)}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	if c, ok := compiled.Load(s.Name); ok {
		return c.(*jsonschema.Schema), nil
	}

	// Round-trip through JSON so Go ints in Definition become json.Number.
	b, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	def, err := jsonschema.UnmarshalJSON(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}

	url := "mem://schemas/" + s.Name + ".json"
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, def); err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", s.Name, err)
	}
	actual, _ := compiled.LoadOrStore(s.Name, sch)
	return actual.(*jsonschema.Schema), nil
}
