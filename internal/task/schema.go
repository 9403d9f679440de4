package task

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Request payload schemas. Shape validation happens here, before the store
// sees the request; the store re-validates semantically.
var (
	createSchema = jsonschema.MustCompileString("create.json", `{
		"type": "object",
		"required": ["title"],
		"properties": {
			"title": {"type": "string"},
			"parent_id": {"type": ["string", "null"]},
			"position": {"type": ["integer", "null"]}
		},
		"additionalProperties": false
	}`)

	reorderSchema = jsonschema.MustCompileString("reorder.json", `{
		"type": "object",
		"required": ["order"],
		"properties": {
			"order": {"type": "array", "items": {"type": "string"}}
		},
		"additionalProperties": false
	}`)

	moveSchema = jsonschema.MustCompileString("move.json", `{
		"type": "object",
		"required": ["task_id", "position"],
		"properties": {
			"task_id": {"type": "string"},
			"parent_id": {"type": ["string", "null"]},
			"position": {"type": "integer"}
		},
		"additionalProperties": false
	}`)

	scheduleSchema = jsonschema.MustCompileString("schedule.json", `{
		"type": "object",
		"properties": {
			"when": {"type": "string"},
			"clear": {"type": "boolean"}
		},
		"additionalProperties": false
	}`)
)

// decodeValid reads a JSON body, checks it against the schema, and only
// then decodes it into out.
func decodeValid(r *http.Request, schema *jsonschema.Schema, out any) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("bad json: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("bad request body: %w", err)
	}
	return json.Unmarshal(body, out)
}
