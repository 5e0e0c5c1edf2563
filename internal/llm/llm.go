// Package llm wraps the Gemini API behind the narrow text-generation
// interface the pipeline consumes.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the default Gemini model used for article generation.
	DefaultModel = "gemini-flash-lite-latest"
	// DefaultMaxTokens bounds generated article length.
	DefaultMaxTokens = int32(4096)
	// DefaultTemperature keeps output grounded without being robotic.
	DefaultTemperature = float32(0.7)
)

// ErrEmptyResponse is returned when the model reports success but produces
// no text. Kept distinct from transport errors to aid diagnosis.
var ErrEmptyResponse = errors.New("empty response from model")

// Options configures a single generation call.
type Options struct {
	MaxTokens   int32   // Maximum number of tokens to generate
	Temperature float32 // Temperature for randomness (0.0 to 1.0)
	Model       string  // Model override (defaults to the client's model)
}

// Client is a text-generation client backed by the Gemini API.
type Client struct {
	modelName string
	gClient   *genai.Client
}

// NewClient creates a new LLM client. The API key is resolved in order of
// preference from GEMINI_API_KEY, GOOGLE_AI_API_KEY, then the
// gemini.api_key viper setting.
func NewClient(modelName string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		if apiKey = os.Getenv("GOOGLE_AI_API_KEY"); apiKey == "" {
			apiKey = viper.GetString("gemini.api_key")
		}
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required. Set GEMINI_API_KEY or gemini.api_key in the config file")
	}

	if modelName == "" {
		modelName = viper.GetString("gemini.model")
		if modelName == "" {
			modelName = DefaultModel
		}
	}

	ctx := context.Background()
	gClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		modelName: modelName,
		gClient:   gClient,
	}, nil
}

// Generate sends a prompt plus supporting context to the model and returns
// the generated text. Empty text on a successful call is ErrEmptyResponse.
// Generation is never retried here: repeated calls have cost and latency
// implications, so retry is a caller decision.
func (c *Client) Generate(ctx context.Context, prompt, contextText string, opts Options) (string, error) {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	model := opts.Model
	if model == "" {
		model = c.modelName
	}

	full := prompt
	if contextText != "" {
		full = prompt + "\n\nContext:\n" + contextText
	}

	contents := []*genai.Content{{
		Parts: []*genai.Part{{Text: full}},
		Role:  "user",
	}}

	temperature := opts.Temperature
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: opts.MaxTokens,
		Temperature:     &temperature,
	}

	resp, err := c.gClient.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// StripCodeFences removes a wrapping markdown code fence that models
// sometimes add around structured output.
func StripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop a language tag on the opening fence ("```json").
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
