package script

import (
	"encoding/json"
	"fmt"

	"github.com/splitmesh/splitmesh/pkg/jsonschema"
)

// scriptSchema is the structural shape every script must satisfy before
// Validate's numeric checks even run: a config.phases array of objects,
// each matching exactly one of the four recognized phase shapes, plus an
// optional _split block with non-negative ceilings. jsonschema's oneOf
// catches ambiguous field combinations (e.g. a phase with both rampTo and
// arrivalCount set) earlier, and with a clearer message, than Kind()'s
// fallthrough to ShapeInvalid would on its own.
const scriptSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["config"],
  "properties": {
    "config": {
      "type": "object",
      "required": ["phases"],
      "properties": {
        "phases": {
          "type": "array",
          "minItems": 1,
          "items": { "$ref": "#/definitions/phase" }
        }
      }
    },
    "_split": {
      "type": "object",
      "properties": {
        "maxScriptDurationInSeconds": { "type": "number", "minimum": 0 },
        "maxScriptRequestsPerSecond": { "type": "number", "minimum": 0 },
        "maxChunkDurationInSeconds": { "type": "number", "minimum": 0 },
        "maxChunkRequestsPerSecond": { "type": "number", "minimum": 0 },
        "timeBufferInMilliseconds": { "type": "number", "minimum": 0 }
      }
    }
  },
  "definitions": {
    "phase": {
      "type": "object",
      "properties": {
        "arrivalRate": { "type": "number", "minimum": 0 },
        "rampTo": { "type": "number", "minimum": 0 },
        "duration": { "type": "number", "minimum": 0 },
        "arrivalCount": { "type": "number", "minimum": 0 },
        "pause": { "type": "number", "minimum": 0 },
        "name": { "type": "string" },
        "labels": { "type": "object" }
      },
      "oneOf": [
        { "required": ["pause"] },
        { "required": ["arrivalCount", "duration"], "not": { "anyOf": [{ "required": ["arrivalRate"] }, { "required": ["rampTo"] }] } },
        { "required": ["arrivalRate", "rampTo", "duration"], "not": { "required": ["arrivalCount"] } },
        { "required": ["arrivalRate", "duration"], "not": { "anyOf": [{ "required": ["rampTo"] }, { "required": ["arrivalCount"] }] } }
      ]
    }
  }
}`

// ValidateSchema checks raw (a JSON-encoded script) against scriptSchema.
// It is the structural pass that runs before Script.Validate's numeric
// checks; callers that already hold a decoded *Script should still run
// this against the original bytes so malformed input (e.g. a string where
// a number belongs) is reported with a JSON-pointer location rather than
// as a bare decode error from json.Unmarshal.
func ValidateSchema(raw []byte) error {
	ok, errs := jsonschema.ValidateWithErrors(string(raw), scriptSchema)
	if ok {
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("script: failed schema validation")
	}
	return fmt.Errorf("script: failed schema validation: %w", errs)
}

// MarshalAndValidate is a convenience used by the CLI's validate command:
// it marshals s back to JSON and schema-checks that. Since s is already
// decoded into typed fields, this catches shape problems the decoder let
// through (e.g. a phase with both rampTo and arrivalCount set), not type
// errors, which the decoder itself rejects.
func MarshalAndValidate(s *Script) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("script: marshal for schema check: %w", err)
	}
	return ValidateSchema(raw)
}
