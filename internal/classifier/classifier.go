package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/mr1hm/go-emergency-assist/internal/llm"
	"github.com/mr1hm/go-emergency-assist/internal/models"
)

const systemInstruction = `You are a compassionate, empathetic, multilingual emergency response assistant for India that helps people in crisis.

CRITICAL INSTRUCTIONS:
1. ALWAYS detect the language of the user's message automatically.
2. ALWAYS respond in the SAME language the user is using.
3. Be empathetic, warm, calm and reassuring.
4. Provide accessible guidance for people with disabilities.

Analyze the message and categorize it into one of these types:
- medical: health emergencies, injuries, medical conditions
- police: security threats, crimes, safety concerns
- mental_health: mental health crises, emotional distress
- disaster: natural disasters, fires, large-scale emergencies
- finance: financial emergencies, fraud, debt crises, financial exploitation
- general: other emergencies

Also determine severity (low, medium, high, critical) and suggest an immediate action IN THE USER'S LANGUAGE.
The suggested action must acknowledge the situation, give clear and calm immediate steps, and reassure that help is nearby.

Respond with JSON matching this schema:
{
  "category": "medical | police | mental_health | disaster | finance | general",
  "severity": "low | medium | high | critical",
  "keywords": ["key terms from the message in its original language"],
  "suggestedAction": "immediate action in the user's language",
  "detectedLanguage": "ISO 639-1 code such as en, hi, es, fr, ar, zh",
  "translatedMessage": "English translation, only if the message is not English"
}`

// Classifier turns a free-text crisis description into a Categorization.
type Classifier struct {
	gen   llm.Generator
	model string
}

// New returns a Classifier. gen may be nil, in which case every message gets
// the default categorization.
func New(gen llm.Generator, model string) *Classifier {
	return &Classifier{gen: gen, model: model}
}

// Categorize never fails: any error is logged and replaced by the default.
func (c *Classifier) Categorize(ctx context.Context, message string) models.Categorization {
	result, err := c.categorize(ctx, message)
	if err != nil {
		slog.Warn("categorization failed, using default", "error", err)
		return models.DefaultCategorization()
	}
	return result
}

func (c *Classifier) categorize(ctx context.Context, message string) (models.Categorization, error) {
	if strings.TrimSpace(message) == "" {
		return models.Categorization{}, errors.New("empty message")
	}
	if c.gen == nil {
		return models.Categorization{}, llm.ErrNotConfigured
	}

	raw, err := c.gen.Generate(ctx, llm.Request{
		Model:       c.model,
		System:      systemInstruction,
		Prompt:      message,
		Schema:      responseSchema(),
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		return models.Categorization{}, err
	}
	slog.Debug("categorization raw response", "response", raw)

	return parseCategorization(raw)
}

type categorizationResponse struct {
	Category          string   `json:"category"`
	Severity          string   `json:"severity"`
	Keywords          []string `json:"keywords"`
	SuggestedAction   string   `json:"suggestedAction"`
	DetectedLanguage  string   `json:"detectedLanguage"`
	TranslatedMessage string   `json:"translatedMessage"`
}

func parseCategorization(raw string) (models.Categorization, error) {
	var resp categorizationResponse
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &resp); err != nil {
		return models.Categorization{}, fmt.Errorf("error decoding categorization: %w", err)
	}

	result := models.Categorization{
		Category:          models.ParseCategory(resp.Category),
		Severity:          models.ParseSeverity(resp.Severity),
		Keywords:          make([]string, 0, len(resp.Keywords)),
		SuggestedAction:   strings.TrimSpace(resp.SuggestedAction),
		DetectedLanguage:  strings.ToLower(strings.TrimSpace(resp.DetectedLanguage)),
		TranslatedMessage: strings.TrimSpace(resp.TranslatedMessage),
	}
	for _, k := range resp.Keywords {
		if k = strings.TrimSpace(k); k != "" {
			result.Keywords = append(result.Keywords, k)
		}
	}
	if result.SuggestedAction == "" {
		result.SuggestedAction = models.DefaultSuggestedAction
	}

	return result, nil
}

func responseSchema() *genai.Schema {
	categories := make([]string, 0, len(models.Categories))
	for _, c := range models.Categories {
		categories = append(categories, c.String())
	}
	severities := make([]string, 0, len(models.Severities))
	for _, s := range models.Severities {
		severities = append(severities, string(s))
	}

	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"category":          {Type: genai.TypeString, Enum: categories},
			"severity":          {Type: genai.TypeString, Enum: severities},
			"keywords":          {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
			"suggestedAction":   {Type: genai.TypeString},
			"detectedLanguage":  {Type: genai.TypeString},
			"translatedMessage": {Type: genai.TypeString},
		},
		Required: []string{"category", "severity", "keywords", "suggestedAction"},
	}
}
