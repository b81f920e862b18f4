package gemini

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// GeminiClient is an implementation of the VisionClient interface using
// Google Gemini multimodal models
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxCandidates int
	logger        *zap.Logger
	promptFormat  string
}

// labelCandidateResponse represents one candidate in the structured
// response from the model
type labelCandidateResponse struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// NewGeminiClient creates a new Gemini vision client
func NewGeminiClient(
	client *genai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxCandidates int,
	logger *zap.Logger,
) *GeminiClient {
	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxCandidates: maxCandidates,
		logger:        logger,
		promptFormat: `You are an image labeling system for a waste-sorting app. Identify the dominant object in the image.
Respond with a JSON array of up to %d candidates ordered from most to least likely, each an object containing:
- label: string (short name of the object, e.g. "aluminum can")
- confidence: number between 0 and 1

Respond only with the JSON array and nothing else.`,
	}
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// ModelID identifies the model behind this client
func (c *GeminiClient) ModelID() string {
	return c.modelName
}

// LabelImage returns ranked candidate labels for a normalized JPEG image
func (c *GeminiClient) LabelImage(ctx context.Context, image []byte) ([]core.LabelCandidate, error) {
	prompt := fmt.Sprintf(c.promptFormat, c.maxCandidates)

	resp, err := c.model.GenerateContent(ctx, genai.ImageData("jpeg", image), genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	candidates, err := parseCandidates(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Labeled image with Gemini",
		zap.String("model", c.modelName),
		zap.Int("candidates", len(candidates)))

	return candidates, nil
}

// parseCandidates parses the model's JSON response, tolerating extra prose
// around the array
func parseCandidates(responseText string) ([]core.LabelCandidate, error) {
	var parsed []labelCandidateResponse
	if err := json.Unmarshal([]byte(responseText), &parsed); err != nil {
		// Try to extract the JSON array from the text response
		jsonStart := -1
		jsonEnd := -1
		for i := 0; i < len(responseText); i++ {
			if responseText[i] == '[' {
				jsonStart = i
				break
			}
		}
		for i := len(responseText) - 1; i >= 0; i-- {
			if responseText[i] == ']' {
				jsonEnd = i + 1
				break
			}
		}
		if jsonStart < 0 || jsonEnd <= jsonStart {
			return nil, fmt.Errorf("failed to extract JSON from model response: %w", err)
		}
		if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &parsed); err != nil {
			return nil, fmt.Errorf("failed to parse model response as JSON: %w", err)
		}
	}

	candidates := make([]core.LabelCandidate, 0, len(parsed))
	for _, p := range parsed {
		if p.Label == "" {
			continue
		}
		candidates = append(candidates, core.LabelCandidate{
			Label:      p.Label,
			Confidence: p.Confidence,
		})
	}
	return candidates, nil
}
