package openai

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/tmc/langchaingo/llms"
)

// maxParseAttempts bounds how often a chat call is repeated when the model
// answers with JSON that does not parse.
const maxParseAttempts = 3

var errNoChoices = errors.New("no choices returned from model")

// generateJSON sends a system prompt and a JSON-encoded user payload in JSON
// mode and returns the first choice with code fences stripped.
func generateJSON(ctx context.Context, client llms.Model, system string, payload any) (string, error) {
	user, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(system),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(string(user)),
			},
		},
	}

	response, err := client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", errNoChoices
	}
	return stripCodeFences(response.Choices[0].Content), nil
}
