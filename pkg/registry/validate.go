// pkg/registry/validate.go
package registry

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ValidateAgainstSchema checks job variables against an activity's registered
// input or output schema.
func ValidateAgainstSchema(schemaMap map[string]interface{}, data map[string]interface{}) error {
	if len(schemaMap) == 0 {
		return nil
	}

	schemaLoader := gojsonschema.NewGoLoader(schemaMap)
	documentLoader := gojsonschema.NewGoLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			msgs = append(msgs, desc.String())
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// ValidateInput validates job input variables for the given activity.
func (a *Activity) ValidateInput(vars map[string]interface{}) error {
	return ValidateAgainstSchema(a.InputSchema, vars)
}

// ValidateOutput validates produced variables for the given activity.
func (a *Activity) ValidateOutput(vars map[string]interface{}) error {
	return ValidateAgainstSchema(a.OutputSchema, vars)
}
