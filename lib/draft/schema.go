package draft

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// draftSchema is the JSON shape the model must return for a draft article.
var draftSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"excerpt": {"type": "string", "minLength": 1, "maxLength": 500},
		"body": {"type": "string", "minLength": 100},
		"tags": {
			"type": "array",
			"items": {"type": "string", "minLength": 1},
			"maxItems": 10
		}
	},
	"required": ["title", "excerpt", "body"],
	"additionalProperties": false
}`

type draftResponse struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Body    string   `json:"body"`
	Tags    []string `json:"tags"`
}

// parseDraftResponse validates the model output against the schema before
// unmarshaling it.
func parseDraftResponse(jsonData []byte) (*draftResponse, error) {
	schemaLoader := gojsonschema.NewStringLoader(draftSchema)
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("failed to validate JSON schema: %w", err)
	}
	if !result.Valid() {
		var errorMessages []string
		for _, desc := range result.Errors() {
			errorMessages = append(errorMessages, desc.String())
		}
		return nil, fmt.Errorf("JSON validation failed: %s", strings.Join(errorMessages, "; "))
	}

	var response draftResponse
	if err := json.Unmarshal(jsonData, &response); err != nil {
		return nil, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	response.Title = strings.TrimSpace(response.Title)
	response.Excerpt = strings.TrimSpace(response.Excerpt)
	return &response, nil
}
