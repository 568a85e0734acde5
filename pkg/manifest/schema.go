package manifest

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ErrSchema indicates a manifest that does not match the schema.
var ErrSchema = errors.New("manifest does not match schema")

//go:embed schema.json
var schemaJSON []byte

// Schema returns the embedded JSON schema for manifests.
func Schema() []byte {
	return schemaJSON
}

func validateSchema(doc any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaJSON),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("validate manifest schema: %w", err)
	}

	if result.Valid() {
		return nil
	}

	details := make([]string, 0, len(result.Errors()))
	for _, verr := range result.Errors() {
		details = append(details, verr.Field()+": "+verr.Description())
	}

	return fmt.Errorf("%w: %s", ErrSchema, strings.Join(details, "; "))
}
