package extract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const itemSchemaURL = "schema://quiz-item.json"

// itemSchemaDef is the shape every quiz item must have.
var itemSchemaDef = map[string]any{
	"type":     "object",
	"required": []any{"question", "options", "correct_index", "explanation"},
	"properties": map[string]any{
		"question": map[string]any{
			"type":      "string",
			"minLength": 1,
		},
		"options": map[string]any{
			"type":     "array",
			"minItems": 3,
			"maxItems": 3,
			"items":    map[string]any{"type": "string"},
		},
		"correct_index": map[string]any{
			"type":    "integer",
			"minimum": 0,
			"maximum": 2,
		},
		"explanation": map[string]any{
			"type": "string",
		},
	},
}

var (
	itemSchemaOnce sync.Once
	itemSchema     *jsonschema.Schema
	itemSchemaErr  error
)

func compiledItemSchema() (*jsonschema.Schema, error) {
	itemSchemaOnce.Do(func() {
		// The compiler expects decoded JSON values, not Go literals.
		raw, err := json.Marshal(itemSchemaDef)
		if err != nil {
			itemSchemaErr = fmt.Errorf("marshal schema definition: %w", err)
			return
		}
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
		if err != nil {
			itemSchemaErr = fmt.Errorf("parse schema definition: %w", err)
			return
		}

		c := jsonschema.NewCompiler()
		if err := c.AddResource(itemSchemaURL, doc); err != nil {
			itemSchemaErr = fmt.Errorf("add resource: %w", err)
			return
		}
		itemSchema, itemSchemaErr = c.Compile(itemSchemaURL)
	})
	return itemSchema, itemSchemaErr
}

func validateItem(elem []byte) error {
	sch, err := compiledItemSchema()
	if err != nil {
		return fmt.Errorf("compile quiz item schema: %w", err)
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(elem))
	if err != nil {
		return err
	}
	return sch.Validate(inst)
}
