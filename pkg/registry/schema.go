package registry

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Schema describes the registry file. Document records allow additional
// properties because front-matter fields are passed through verbatim.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
		DoNotReference:            true,
	}
	return reflector.Reflect(&Registry{})
}

// SchemaJSON renders Schema as indented JSON
func SchemaJSON() (string, error) {
	data, err := json.MarshalIndent(Schema(), "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal registry schema")
	}
	return string(data), nil
}
