package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Suggestion is the AI-generated help for a product draft.
type Suggestion struct {
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Keywords    []string `json:"keywords,omitempty"`
}

// DescriptionGenerator suggests a product description from its name. The
// feature is optional; construct only when an API key is configured.
type DescriptionGenerator struct {
	client *openai.Client
}

// NewDescriptionGenerator creates a generator with the given OpenAI API key.
func NewDescriptionGenerator(apiKey string) *DescriptionGenerator {
	return &DescriptionGenerator{client: openai.NewClient(apiKey)}
}

// Suggest generates a description and tags for the named product.
func (g *DescriptionGenerator) Suggest(ctx context.Context, productName string) (*Suggestion, error) {
	prompt := fmt.Sprintf(`You write product copy for a clothing store. For the product named %q, produce:

1. An attractive product description (2-3 short paragraphs)
2. 5-8 tags for search and categorization

Respond with ONLY a valid JSON object in this shape, no extra text:

{
  "description": "...",
  "tags": ["tag1", "tag2"],
  "keywords": ["word1", "word2"]
}`, productName)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   600,
		Temperature: 0.7,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)

	var result Suggestion
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		// Models sometimes wrap the JSON in prose; take the outermost object.
		start := strings.Index(content, "{")
		end := strings.LastIndex(content, "}") + 1
		if start < 0 || end <= start {
			return nil, fmt.Errorf("no valid JSON in AI response")
		}
		if err := json.Unmarshal([]byte(content[start:end]), &result); err != nil {
			return nil, fmt.Errorf("failed to parse AI response: %w", err)
		}
	}

	if result.Description == "" {
		return nil, fmt.Errorf("AI did not generate a description")
	}
	if len(result.Tags) == 0 {
		result.Tags = []string{productName}
	}
	return &result, nil
}
