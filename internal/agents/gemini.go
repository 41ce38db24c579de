package agents

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/jonathan/applyforge/internal/config"
)

// geminiBackend invokes the Google Gemini API directly. The client is built
// per call so a key rotated in the environment takes effect without restart.
type geminiBackend struct {
	cfg     config.AgentConfig
	timeout time.Duration
}

func newGeminiBackend(cfg config.AgentConfig, timeout time.Duration) *geminiBackend {
	return &geminiBackend{cfg: cfg, timeout: timeout}
}

func (b *geminiBackend) Generate(ctx context.Context, model, prompt string) (string, error) {
	apiKey := b.apiKey()
	if apiKey == "" {
		return "", fmt.Errorf("authentication failed: no API key present for provider %s", b.cfg.Provider)
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer func() { _ = client.Close() }()

	if model == "" {
		model = b.cfg.DefaultModel
	}

	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.1) // Low temperature for consistent output
	gm.ResponseMIMEType = "application/json"

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	return extractTextFromResponse(resp)
}

// apiKey returns the first set env var declared for this agent, falling back
// to GEMINI_API_KEY.
func (b *geminiBackend) apiKey() string {
	for _, name := range b.cfg.Auth.EnvVars {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return os.Getenv("GEMINI_API_KEY")
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}

	return strings.Join(parts, ""), nil
}
