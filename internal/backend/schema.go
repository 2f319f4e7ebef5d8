package backend

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Veraticus/lorekeeper/internal/common"
)

// wireCandidate is one entry of the ner-analyze response.
type wireCandidate struct {
	SuggestedType  *string  `json:"suggested_type,omitempty" jsonschema:"nullable"`
	Name           string   `json:"name" jsonschema:"required,minLength=1"`
	Snippet        string   `json:"snippet,omitempty" jsonschema:"nullable"`
	SpacyLabel     string   `json:"spacy_label,omitempty" jsonschema:"nullable"`
	Aliases        []string `json:"aliases,omitempty" jsonschema:"nullable"`
	ChapterIndices []int    `json:"chapter_indices,omitempty" jsonschema:"nullable"`
	Frequency      int      `json:"frequency,omitempty" jsonschema:"minimum=0"`
	ChapterCount   int      `json:"chapter_count,omitempty" jsonschema:"minimum=0"`
}

// analyzeResponse is the ner-analyze response body.
type analyzeResponse struct {
	Confident     []wireCandidate `json:"confident" jsonschema:"required"`
	LowConfidence []wireCandidate `json:"low_confidence" jsonschema:"required"`
}

var analyzeSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return compileSchema(&analyzeResponse{})
})

// compileSchema reflects v into a JSON schema and compiles it for
// validation. Extra properties are allowed so backend additions do not
// break older clients.
func compileSchema(v any) (*gojsonschema.Schema, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties:  true,
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Anonymous:                  true,
	}
	schema := reflector.Reflect(v)
	schema.Version = ""

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}
	return compiled, nil
}

// validateAnalyzeResponse checks a raw body against the response schema.
func validateAnalyzeResponse(data []byte) error {
	schema, err := analyzeSchema()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidResponse, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return fmt.Errorf("%w: %s", common.ErrInvalidResponse, strings.Join(msgs, "; "))
}
