package review

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/review_result.json
var resultSchema string

var resultSchemaLoader = gojsonschema.NewStringLoader(resultSchema)

// SchemaError lists contract violations found in a ReviewResult document.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "review result does not match schema: " + strings.Join(e.Problems, "; ")
}

// ValidateResultJSON checks a JSON document against the ReviewResult contract.
func ValidateResultJSON(doc []byte) error {
	result, err := gojsonschema.Validate(resultSchemaLoader, gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return fmt.Errorf("validate review result: %w", err)
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		problems = append(problems, fmt.Sprintf("%s: %s", field, desc.Description()))
	}
	return &SchemaError{Problems: problems}
}

// ValidateResult encodes r and checks it against the contract.
func ValidateResult(r ReviewResult) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode review result: %w", err)
	}
	return ValidateResultJSON(doc)
}
