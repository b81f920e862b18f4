package openai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mikey/binsight/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the VisionClient interface using
// OpenAI vision-capable chat models
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewOpenAIClient creates a new OpenAI vision client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxCandidates int,
	logger *zap.Logger,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxCandidates: maxCandidates,
		logger:        logger,
		promptFormat: `You are an image labeling system for a waste-sorting app. Identify the dominant object in the image.
Respond with a JSON array of up to %d candidates ordered from most to least likely, each an object containing:
- label: string (short name of the object, e.g. "aluminum can")
- confidence: number between 0 and 1

Respond only with the JSON array and nothing else.`,
	}
}

// ModelID identifies the model behind this client
func (c *OpenAIClient) ModelID() string {
	return c.modelName
}

// LabelImage returns ranked candidate labels for a normalized JPEG image
func (c *OpenAIClient) LabelImage(ctx context.Context, image []byte) ([]core.LabelCandidate, error) {
	prompt := fmt.Sprintf(c.promptFormat, c.maxCandidates)
	imageURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an image labeling system. Respond only with JSON.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{
						Type: openai.ChatMessagePartTypeText,
						Text: prompt,
					},
					{
						Type: openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{
							URL:    imageURL,
							Detail: openai.ImageURLDetailLow,
						},
					},
				},
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	candidates, err := parseCandidates(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Labeled image with OpenAI",
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
