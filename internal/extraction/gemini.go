package extraction

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultTemperature is used when no temperature is configured.
const DefaultTemperature float32 = 0.5

// GeminiGenerator calls the Gemini API with the activity response schema.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGeminiGenerator creates a generator backed by a new genai client.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float32) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	if temperature <= 0 {
		temperature = DefaultTemperature
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiGenerator{client: client, model: model, temperature: temperature}, nil
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// GenerateJSON sends the prompt and returns the raw response text.
func (g *GeminiGenerator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), GenerationConfig(g.temperature))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini returned an empty response")
	}
	return text, nil
}

// GenerationConfig constrains the model to JSON output matching ActivitySchema.
func GenerationConfig(temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   ActivitySchema(),
		Temperature:      genai.Ptr(temperature),
	}
}

// ActivitySchema describes an array of activity items. Enum values must match the
// constants in the domain package exactly.
func ActivitySchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"activity": enumField("The type of activity.", "feed", "pump", "diaper"),
				"source":   enumField("For 'feed' activity, the source of the milk.", "bottle", "breast"),
				"breast_side": enumField("For 'feed' or 'pump' activity, the breast side used.",
					"left", "right", "both"),
				"breast_duration": numberField("For 'feed' activity from the breast, duration in minutes (float)."),
				"bottle_contents": enumField("For 'feed' activity from a bottle, the contents.", "breast", "formula"),
				"bottle_volume":   numberField("For 'feed' activity from a bottle, the volume (float)."),
				"bottle_volume_unit": enumField("For 'feed' activity from a bottle, the unit of volume.",
					"oz", "mL"),
				"pump_volume":      numberField("For 'pump' activity, the volume of milk pumped (float)."),
				"pump_volume_unit": enumField("For 'pump' activity, the unit of volume.", "oz", "mL"),
				"diaper_type": enumField("For 'diaper' activity, the type of diaper content.",
					"pee", "poop", "mixed", "dry"),
				"diaper_color": {Type: genai.TypeString, Description: "For 'diaper' activity, a plain text indication of color."},
				"notes":        {Type: genai.TypeString, Description: "Any additional plaintext notes."},
			},
			Required: []string{"activity"},
		},
	}
}

func enumField(description string, values ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeString, Format: "enum", Enum: values, Description: description}
}

func numberField(description string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeNumber, Description: description}
}
