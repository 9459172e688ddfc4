package config

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates cfg against the JSON schema
// embedded at build time. Validation here is deliberately shallow (it
// checks that the config round-trips through the schema's declared shape
// plus a handful of required-field rules) rather than a full JSON Schema
// draft implementation — the schema exists to catch config drift between
// releases, not to replace validate().
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(embeddedSchema), &schema); err != nil {
		return fmt.Errorf("parse embedded schema: %w", err)
	}

	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]interface{}
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	props, _ := schema["properties"].(map[string]interface{})
	if props == nil {
		// invopop/jsonschema reflects named structs into $defs with a
		// top-level $ref, rather than inlining properties
		if defs, ok := schema["$defs"].(map[string]interface{}); ok {
			if cfgDef, ok := defs["Config"].(map[string]interface{}); ok {
				props, _ = cfgDef["properties"].(map[string]interface{})
			}
		}
	}
	for field := range props {
		if _, ok := configMap[field]; !ok {
			return fmt.Errorf("config missing field %q declared in schema", field)
		}
	}

	return nil
}

// GenerateSchema generates a JSON schema for the Config struct. Used by
// cmd/schema to regenerate schema.json when Config's shape changes.
func GenerateSchema() (*jsonschema.Schema, error) {
	return jsonschema.Reflect(&Config{}), nil
}
