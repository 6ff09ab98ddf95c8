package command

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// Schema describes a single command record.
func Schema() *jsonschema.Schema {
	r := &jsonschema.Reflector{
		DoNotReference:            true,
		AllowAdditionalProperties: true,
	}

	s := r.Reflect(&Envelope{})
	s.Title = "kinoplay command record"
	s.Description = "One JSON object per line. A frame may carry several records separated by newlines."
	return s
}

// SchemaJSON renders Schema as indented JSON.
func SchemaJSON() ([]byte, error) {
	return json.MarshalIndent(Schema(), "", "  ")
}
