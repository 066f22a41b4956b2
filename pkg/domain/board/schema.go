package board

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// rawSnapshotSchemaJSON validates snapshot files before decoding. A snapshot
// is either an error envelope or a full board payload.
const rawSnapshotSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "anyOf": [
    { "required": ["error"] },
    { "required": ["board_id", "cards", "lists", "members"] }
  ],
  "properties": {
    "error": { "type": "string" },
    "board_id": { "type": "string" },
    "timestamp": { "type": "number" },
    "status": { "type": "string" },
    "cards": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string" },
          "idList": { "type": "string" },
          "due": { "type": ["string", "null"] },
          "dueComplete": { "type": "boolean" },
          "labels": { "type": "array" },
          "idMembers": { "type": "array" },
          "actions": { "type": "array" }
        }
      }
    },
    "lists": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": { "type": "string" },
          "name": { "type": "string" },
          "pos": { "type": "number" },
          "closed": { "type": "boolean" }
        }
      }
    },
    "members": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": { "type": "string" },
          "fullName": { "type": ["string", "null"] },
          "username": { "type": "string" }
        }
      }
    }
  }
}`

var rawSnapshotSchemaLoader = gojsonschema.NewStringLoader(rawSnapshotSchemaJSON)

// ValidateRaw checks a raw snapshot document against the snapshot schema.
// It returns nil for valid documents and a single error joining every
// violation otherwise.
func ValidateRaw(data []byte) error {
	documentLoader := gojsonschema.NewBytesLoader(data)
	result, err := gojsonschema.Validate(rawSnapshotSchemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("snapshot schema validation: %w", err)
	}
	if result.Valid() {
		return nil
	}
	var sb strings.Builder
	for i, desc := range result.Errors() {
		if i > 0 {
			sb.WriteString("; ")
		}
		sb.WriteString(desc.String())
	}
	return fmt.Errorf("invalid snapshot: %s", sb.String())
}
