package httpapi

import (
	"encoding/json"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const analyzeRequestSchema = `{
	"type": "object",
	"required": ["text"],
	"additionalProperties": false,
	"properties": {
		"text":   {"type": "string", "minLength": 1},
		"source": {"type": "string"},
		"sender": {"type": "string"}
	}
}`

var analyzeSchema = jsonschema.MustCompileString("analyze_request.json", analyzeRequestSchema)

func validateAnalyzeRequest(body []byte) (bool, []string) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return false, []string{err.Error()}
	}
	if err := analyzeSchema.Validate(data); err != nil {
		return false, []string{err.Error()}
	}
	return true, nil
}
