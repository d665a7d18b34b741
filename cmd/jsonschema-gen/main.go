// Command jsonschema-gen writes the JSON Schema for replay fixture records.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/safedep/authgate/core/events"
	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/core/security"
	"github.com/safedep/authgate/replay"
)

const (
	schemaOutputPath = "schema/replay-record.schema.json"
	schemaID         = "https://github.com/safedep/authgate/schema/replay-record.schema.json"
)

type jsonSchema struct {
	Schema      string              `json:"$schema"`
	ID          string              `json:"$id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Type        string              `json:"type"`
	Properties  map[string]property `json:"properties"`
	Required    []string            `json:"required"`
}

type property struct {
	Type        string   `json:"type,omitempty"`
	Description string   `json:"description,omitempty"`
	Format      string   `json:"format,omitempty"`
	Enum        []string `json:"enum,omitempty"`
	Minimum     *int     `json:"minimum,omitempty"`
}

// descriptions documents record fields; a field without an entry is an error
// so new fields are never published undocumented.
var descriptions = map[string]string{
	"id":            "Event UUID. A fresh one is assigned when empty.",
	"type":          "Event type. Defaults to auth_open.",
	"actor":         "Path of the executable performing the operation.",
	"target":        "Target path buffer, possibly longer than target_length.",
	"target_length": "Declared target length. Lets a fixture model malformed events.",
	"inject":        "Acknowledgment the replay backend returns for the response.",
	"expired":       "Treat the event as past its deadline.",
	"expect":        "Expected decision.",
}

func main() {
	schema, err := generateRecordSchema()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to generate schema: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to marshal schema: %v\n", err)
		os.Exit(1)
	}

	data = append(data, '\n')

	if err := os.MkdirAll("schema", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create schema directory: %v\n", err)
		os.Exit(1)
	}

	if err := os.WriteFile(schemaOutputPath, data, 0644); err != nil {
		fmt.Fprintf(os.Stderr, "failed to write schema file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Schema written to %s\n", schemaOutputPath)
}

func generateRecordSchema() (jsonSchema, error) {
	schema := jsonSchema{
		Schema:      "https://json-schema.org/draft/2020-12/schema",
		ID:          schemaID,
		Title:       "authgate replay record",
		Description: "One line of a JSONL replay fixture describing an authorization event.",
		Type:        "object",
		Properties:  make(map[string]property),
	}

	recordType := reflect.TypeOf(replay.Record{})
	for i := range recordType.NumField() {
		field := recordType.Field(i)
		jsonTag := field.Tag.Get("json")
		if jsonTag == "" || jsonTag == "-" {
			continue
		}

		name, opts := parseJSONTag(jsonTag)
		desc, ok := descriptions[name]
		if !ok {
			return jsonSchema{}, fmt.Errorf("field %s has no description", name)
		}

		prop := fieldToProperty(field)
		prop.Description = desc
		schema.Properties[name] = prop

		if !strings.Contains(opts, "omitempty") {
			schema.Required = append(schema.Required, name)
		}
	}

	setEnum(schema.Properties, "type", eventTypeValues())
	setEnum(schema.Properties, "inject", outcomeValues())
	setEnum(schema.Properties, "expect", []string{security.DecisionAllow.String(), security.DecisionDeny.String()})

	if prop, ok := schema.Properties["id"]; ok {
		prop.Format = "uuid"
		schema.Properties["id"] = prop
	}

	if prop, ok := schema.Properties["target_length"]; ok {
		zero := 0
		prop.Minimum = &zero
		schema.Properties["target_length"] = prop
	}

	return schema, nil
}

func setEnum(props map[string]property, name string, values []string) {
	if prop, ok := props[name]; ok {
		prop.Enum = values
		props[name] = prop
	}
}

func parseJSONTag(tag string) (string, string) {
	parts := strings.SplitN(tag, ",", 2)
	name := parts[0]
	opts := ""
	if len(parts) > 1 {
		opts = parts[1]
	}
	return name, opts
}

func fieldToProperty(field reflect.StructField) property {
	prop := property{}

	t := field.Type
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		prop.Type = "string"
	case reflect.Int, reflect.Int64:
		prop.Type = "integer"
	case reflect.Bool:
		prop.Type = "boolean"
	}

	return prop
}

func eventTypeValues() []string {
	return []string{
		string(events.EventTypeAuthOpen),
		string(events.EventTypeAuthExec),
		string(events.EventTypeNotifyExec),
	}
}

func outcomeValues() []string {
	var values []string
	for o := response.OutcomeSuccess; o <= response.OutcomeUnknown; o++ {
		values = append(values, o.String())
	}
	return values
}
