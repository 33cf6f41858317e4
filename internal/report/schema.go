package report

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Schema infers the JSON Schema of Document. Dashboard builds use it to check
// the shape of ticket_data.json.
func Schema() (*jsonschema.Schema, error) {
	s, err := jsonschema.For[Document](nil)
	if err != nil {
		return nil, fmt.Errorf("failed to infer report schema: %w", err)
	}
	s.Title = "ticket_data.json"
	return s, nil
}

// Validate checks an encoded report against Schema.
func Validate(data []byte) error {
	s, err := Schema()
	if err != nil {
		return err
	}
	resolved, err := s.Resolve(nil)
	if err != nil {
		return fmt.Errorf("failed to resolve report schema: %w", err)
	}

	var instance map[string]any
	if err := json.Unmarshal(data, &instance); err != nil {
		return fmt.Errorf("report is not a JSON object: %w", err)
	}
	return resolved.Validate(instance)
}
