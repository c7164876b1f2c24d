package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// AvailableModels are the chat models users may pick for transaction
// categorization.
var AvailableModels = []string{
	"gpt-4o-mini",
	"gpt-4o",
	"gpt-4.1-mini",
	"gpt-3.5-turbo",
}

const DefaultModel = "gpt-4o-mini"

// IsKnownModel reports whether the model name is one we offer.
func IsKnownModel(model string) bool {
	for _, m := range AvailableModels {
		if m == model {
			return true
		}
	}
	return false
}

// Categorizer assigns finance categories to transaction descriptions via
// the OpenAI chat API. The API key is per user, so a client is built per
// call instead of being held on the struct.
type Categorizer struct{}

func NewCategorizer() *Categorizer { return &Categorizer{} }

// TestKey makes a minimal completion call to verify the key and model.
func (c *Categorizer) TestKey(ctx context.Context, apiKey, model string) error {
	if model == "" {
		model = DefaultModel
	}
	client := openai.NewClient(apiKey)
	_, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "Reply with OK."},
		},
	})
	if err != nil {
		return fmt.Errorf("openai key check failed: %w", err)
	}
	return nil
}

// Categorize maps each description to one of the given category names, or
// to an empty string when none fits. Descriptions the model omits are
// returned unassigned.
func (c *Categorizer) Categorize(ctx context.Context, apiKey, model string,
	descriptions, categories []string) (map[string]string, error) {

	if model == "" {
		model = DefaultModel
	}
	if len(descriptions) == 0 {
		return map[string]string{}, nil
	}

	prompt := fmt.Sprintf(
		"Assign each bank transaction description to exactly one of these categories: %s.\n"+
			"Respond with a single JSON object mapping each description to its category name. "+
			"Use an empty string when no category fits.\n\nDescriptions:\n%s",
		strings.Join(categories, ", "), strings.Join(descriptions, "\n"))

	client := openai.NewClient(apiKey)
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You categorize personal finance transactions."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai categorization failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai returned no choices")
	}

	assigned := make(map[string]string)
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &assigned); err != nil {
		return nil, fmt.Errorf("openai returned unparseable JSON: %w", err)
	}

	// Drop hallucinated category names.
	known := make(map[string]bool, len(categories))
	for _, cat := range categories {
		known[cat] = true
	}
	result := make(map[string]string, len(descriptions))
	for _, desc := range descriptions {
		if cat, ok := assigned[desc]; ok && known[cat] {
			result[desc] = cat
		} else {
			result[desc] = ""
		}
	}
	return result, nil
}
