package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/nestkeeper/nestkeeper/types"
)

const openAIChatCompletionsURL = "https://api.openai.com/v1/chat/completions"

// OpenAIProvider implements the Provider interface for OpenAI LLMs.
type OpenAIProvider struct {
	apiKey  string
	model   string
	timeout time.Duration
	debug   bool
}

// NewOpenAIProvider creates a new OpenAIProvider with options.
func NewOpenAIProvider(apiKey, model string, timeout time.Duration, debug bool) *OpenAIProvider {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIProvider{apiKey: apiKey, model: model, timeout: timeout, debug: debug}
}

// OpenAIRequestPayload defines the structure for the OpenAI API request.
type OpenAIRequestPayload struct {
	Model          string                `json:"model"`
	Messages       []OpenAIMessage       `json:"messages"`
	Temperature    float64               `json:"temperature,omitempty"`
	MaxTokens      int                   `json:"max_tokens,omitempty"`
	ResponseFormat *OpenAIResponseFormat `json:"response_format,omitempty"`
}

// OpenAIResponseFormat specifies the output format for OpenAI (e.g., JSON object).
type OpenAIResponseFormat struct {
	Type string `json:"type"` // e.g., "json_object"
}

// OpenAIMessage defines a message in the conversation for OpenAI.
type OpenAIMessage struct {
	Role    string `json:"role"` // "system", "user", or "assistant"
	Content string `json:"content"`
}

// OpenAIResponsePayload defines the structure for the OpenAI API response.
type OpenAIResponsePayload struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model"`
	Choices []OpenAIChoice `json:"choices"`
}

// OpenAIChoice defines a choice in the OpenAI response.
type OpenAIChoice struct {
	Index        int           `json:"index"`
	Message      OpenAIMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

// SuggestTemplates asks OpenAI for maintenance-task candidates for a
// catalog entry and returns the raw response text. Parsing and
// validation happen at the engine boundary, which treats the response
// as untrusted.
func (p *OpenAIProvider) SuggestTemplates(ctx context.Context, systemPrompt string, req types.EnrichmentRequest) (string, error) {
	if p.apiKey == "" {
		return "", fmt.Errorf("OpenAI API key is not set")
	}

	userMessage := fmt.Sprintf(
		"Propose maintenance tasks for this item and return a JSON response in the requested format:\nbrand: %s\nmodel: %s\ntype: %s\ncategory: %s\nnotes: %s",
		req.Brand, req.Model, req.Type, req.Category, req.Notes)

	payload := OpenAIRequestPayload{
		Model: p.model,
		Messages: []OpenAIMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userMessage},
		},
		Temperature:    0.2,
		ResponseFormat: &OpenAIResponseFormat{Type: "json_object"},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal OpenAI request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", openAIChatCompletionsURL, bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("build OpenAI request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	client := &http.Client{Timeout: p.timeout}
	resp, err := client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call OpenAI: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read OpenAI response: %w", err)
	}
	if p.debug {
		fmt.Fprintf(os.Stderr, "[llm] openai status=%d bytes=%d\n", resp.StatusCode, len(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", types.NewEngineError("llm_http_error",
			fmt.Sprintf("OpenAI returned status %d", resp.StatusCode),
			map[string]interface{}{"body": strings.TrimSpace(string(respBody))})
	}

	var parsed OpenAIResponsePayload
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse OpenAI response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("OpenAI response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
