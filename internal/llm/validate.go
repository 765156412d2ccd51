package llm

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validate checks raw model output against the schema. A nil receiver
// accepts anything, matching a Request that asked for free text. On
// failure the returned error is an *InvalidOutputError carrying the
// offending output.
func (s *Schema) Validate(raw json.RawMessage) error {
	if s == nil {
		return nil
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &InvalidOutputError{Raw: raw, Err: fmt.Errorf("not JSON: %w", err)}
	}

	s.compileOnce.Do(func() { s.compiled, s.compileErr = s.compile() })
	if s.compileErr != nil {
		return &InvalidOutputError{
			Raw: raw,
			Err: fmt.Errorf("compile schema %q: %w", s.Name, s.compileErr),
		}
	}

	if err := s.compiled.Validate(doc); err != nil {
		return &InvalidOutputError{
			Raw: raw,
			Err: fmt.Errorf("schema %q: %w", s.Name, err),
		}
	}
	return nil
}

func (s *Schema) compile() (*jsonschema.Schema, error) {
	// The jsonschema library wants a parsed JSON value, not Go maps with
	// arbitrary element types. Round-trip the definition to normalize it.
	defBytes, err := json.Marshal(s.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal definition: %w", err)
	}
	var def any
	if err := json.Unmarshal(defBytes, &def); err != nil {
		return nil, fmt.Errorf("parse definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", s.Name)
	if err := c.AddResource(url, def); err != nil {
		return nil, err
	}
	return c.Compile(url)
}
