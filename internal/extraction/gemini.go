package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured
const DefaultGeminiModel = "gemini-2.5-flash-image"

// safetySettings blocks medium-and-above content in every configurable category
var safetySettings = []*genai.SafetySetting{
	{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockMediumAndAbove},
	{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockMediumAndAbove},
}

// Gemini implements the Generator interface using Google Gemini
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Generator instance
func NewGemini(ctx context.Context, apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	configureModel(model)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// configureModel applies the fixed generation parameters and safety thresholds
func configureModel(model *genai.GenerativeModel) {
	model.SetTemperature(Temperature)
	model.SetTopP(TopP)
	model.SetTopK(TopK)
	model.SetMaxOutputTokens(MaxOutputTokens)
	model.SafetySettings = safetySettings
}

// promptParts orders the prompt as system text, document, user text
func promptParts(prompt Prompt) []genai.Part {
	return []genai.Part{
		genai.Text(prompt.System),
		genai.Blob{MIMEType: prompt.Payload.MIMEType, Data: prompt.Payload.Data},
		genai.Text(prompt.User),
	}
}

// Generate sends the prompt to Gemini and returns the text of the first candidate
func (g *Gemini) Generate(ctx context.Context, prompt Prompt) (string, error) {
	resp, err := g.model.GenerateContent(ctx, promptParts(prompt)...)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	return responseText(resp), nil
}

// responseText concatenates the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}

	var text strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			text.WriteString(string(t))
		}
	}
	return text.String()
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
