package llm

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Anthropic messages API shapes.

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

type anthropicWire struct{}

func (anthropicWire) path() string           { return "/v1/messages" }
func (anthropicWire) defaultModel() string   { return defaultAnthropicModel }
func (anthropicWire) defaultBaseURL() string { return defaultAnthropicBaseURL }

func (anthropicWire) headers(req *http.Request, apiKey string) {
	req.Header.Set("X-API-Key", apiKey)
	req.Header.Set("Anthropic-Version", "2023-06-01")
}

func (anthropicWire) encode(model, system, user string, temperature float64, maxTokens int) (any, error) {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return anthropicRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		System:      system,
		Messages:    []anthropicMessage{{Role: "user", Content: user}},
	}, nil
}

func (anthropicWire) decode(body []byte) (string, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Content) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Content[0].Text, nil
}

// OpenAI chat completions API shapes.

type openAIRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens,omitempty"`
	Temperature float64         `json:"temperature"`
	Messages    []openAIMessage `json:"messages"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
}

type openAIWire struct{}

func (openAIWire) path() string           { return "/v1/chat/completions" }
func (openAIWire) defaultModel() string   { return defaultOpenAIModel }
func (openAIWire) defaultBaseURL() string { return defaultOpenAIBaseURL }

func (openAIWire) headers(req *http.Request, apiKey string) {
	req.Header.Set("Authorization", "Bearer "+apiKey)
}

func (openAIWire) encode(model, system, user string, temperature float64, maxTokens int) (any, error) {
	messages := make([]openAIMessage, 0, 2)
	if system != "" {
		messages = append(messages, openAIMessage{Role: "system", Content: system})
	}
	messages = append(messages, openAIMessage{Role: "user", Content: user})
	return openAIRequest{
		Model:       model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages:    messages,
	}, nil
}

func (openAIWire) decode(body []byte) (string, error) {
	var resp openAIResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}
