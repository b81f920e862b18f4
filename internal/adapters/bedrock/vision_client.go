package bedrock

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/binsight/internal/core"
	"go.uber.org/zap"
)

// BedrockClient is an implementation of the VisionClient interface using
// Anthropic Claude models on Amazon Bedrock
type BedrockClient struct {
	client        *bedrockruntime.Client
	modelID       string
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

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicContent struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string             `json:"role"`
	Content []anthropicContent `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature"`
	TopP             float32            `json:"top_p"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// NewBedrockClient creates a new Bedrock vision client
func NewBedrockClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxCandidates int,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:        client,
		modelID:       modelID,
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
func (c *BedrockClient) ModelID() string {
	return c.modelID
}

// LabelImage returns ranked candidate labels for a normalized JPEG image
func (c *BedrockClient) LabelImage(ctx context.Context, image []byte) ([]core.LabelCandidate, error) {
	prompt := fmt.Sprintf(c.promptFormat, c.maxCandidates)

	payload, err := json.Marshal(anthropicRequest{
		AnthropicVersion: "bedrock-2023-05-31",
		MaxTokens:        c.maxTokens,
		Temperature:      c.temperature,
		TopP:             c.topP,
		System:           "You are an image labeling system. Respond only with JSON.",
		Messages: []anthropicMessage{
			{
				Role: "user",
				Content: []anthropicContent{
					{
						Type: "image",
						Source: &anthropicImageSource{
							Type:      "base64",
							MediaType: "image/jpeg",
							Data:      base64.StdEncoding.EncodeToString(image),
						},
					},
					{
						Type: "text",
						Text: prompt,
					},
				},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	var parsed anthropicResponse
	if err := json.Unmarshal(resp.Body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal Bedrock response: %w", err)
	}

	responseText := ""
	for _, content := range parsed.Content {
		if content.Type == "text" {
			responseText = content.Text
			break
		}
	}
	if responseText == "" {
		return nil, fmt.Errorf("empty response from Bedrock model")
	}

	candidates, err := parseCandidates(responseText)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Labeled image with Bedrock",
		zap.String("model", c.modelID),
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
