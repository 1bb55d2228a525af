package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/mnystrom/inkomstregister/constants"
)

// BuildRecordsJSONSchema returns the JSON-Schema for the record export
// payload as a generic map. The bounds mirror the extraction invariants:
// whatever passed validation must also pass here.
func BuildRecordsJSONSchema() map[string]any {
	props := map[string]any{
		"name":        map[string]any{"type": "string", "minLength": 2},
		"address":     map[string]any{"type": "string", "minLength": 1},
		"postal_code": map[string]any{"type": "string", "pattern": `^\d{3} \d{2}$`},
		"area_name":   map[string]any{"type": "string"},
		"age": map[string]any{
			"type":    "integer",
			"minimum": constants.MinAge,
			"maximum": constants.MaxAge,
		},
		"income_year": map[string]any{"type": "integer", "minimum": 1950, "maximum": 2049},
		"salary_rank": map[string]any{"type": "integer", "minimum": 1},
		"payment_remarks": map[string]any{"type": "boolean"},
		"salary": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": constants.SalaryCap,
		},
		"capital": map[string]any{
			"type":    "integer",
			"minimum": -constants.CapitalCap,
			"maximum": constants.CapitalCap,
		},
	}
	required := []string{
		"name", "address", "age", "income_year",
		"salary_rank", "payment_remarks", "salary", "capital",
	}

	return map[string]any{
		"type": "array",
		"items": map[string]any{
			"type":                 "object",
			"additionalProperties": false,
			"properties":           props,
			"required":             required,
		},
	}
}

// ValidateRecordsJSON validates an export payload against the schema.
func ValidateRecordsJSON(data []byte) error {
	b, err := json.Marshal(BuildRecordsJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("records.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("records.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("export does not match schema: %w", err)
	}
	return nil
}
