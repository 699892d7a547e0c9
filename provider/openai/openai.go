package openai_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/commercekit/shopchat/config"
	"github.com/commercekit/shopchat/models"
)

const classifySystemPrompt = `You are a content classifier for an e-commerce platform.
Your task is to judge a user's query given the recent conversation.

Determine three things:
1. "is_ecommerce": whether the query is related to e-commerce topics
   (products, specifications, pricing, discounts, orders, shipping, returns,
   refunds, reviews, account management, payment methods, store policies,
   shopping-related support).
2. "is_followup": whether the query only makes sense as a continuation of the
   previous conversation (pronouns, elliptical phrases like "and in blue?",
   references to something already discussed).
3. "language": the language the query is written in, as an English word
   (e.g. "English", "Spanish", "German").

Respond with ONLY a JSON object in this exact format:
{"language": "...", "is_followup": true/false, "is_ecommerce": true/false, "reason": "brief explanation"}`

// Client implements the provider interface using OpenAI's chat completions API
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	httpClient  *http.Client
}

// Message represents a message in a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

// request represents a request to the OpenAI API
type request struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

// response represents a response from the OpenAI API
type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// NewClient creates a new OpenAI client
func NewClient(cfg config.LLMConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &Client{
		apiKey:      cfg.APIKey,
		baseURL:     baseURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// Classify runs the combined domain/follow-up/language judgment for a query.
// The serialized recent history gives the model enough context to recognize
// follow-ups; it may be empty for fresh users.
func (c *Client) Classify(ctx context.Context, query string, history []models.Exchange) (models.ClassificationResult, error) {
	var sb strings.Builder
	if len(history) > 0 {
		sb.WriteString("Recent conversation:\n")
		for _, ex := range history {
			fmt.Fprintf(&sb, "Customer: %s\nAssistant: %s\n", ex.Message, ex.Response)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "Query: %s", query)

	messages := []Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: sb.String()},
	}

	responseStr, err := c.sendRequest(ctx, messages, true)
	if err != nil {
		return models.ClassificationResult{}, err
	}

	var result models.ClassificationResult
	if err := json.Unmarshal([]byte(responseStr), &result); err != nil {
		return models.ClassificationResult{}, fmt.Errorf("failed to parse classification: %w", err)
	}
	if result.Language == "" {
		return models.ClassificationResult{}, fmt.Errorf("classification missing language: %q", responseStr)
	}
	return result, nil
}

// Translate renders text into the target language. Used to normalize
// non-default-language queries for retrieval and to localize the rejection
// message.
func (c *Client) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	systemPrompt := fmt.Sprintf("You are a translator. Translate the user's text to %s. Respond with ONLY the translated text, no explanation.", targetLanguage)
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: text},
	}

	responseStr, err := c.sendRequest(ctx, messages, false)
	if err != nil {
		return "", err
	}
	translated := strings.TrimSpace(responseStr)
	if translated == "" {
		return "", fmt.Errorf("empty translation")
	}
	return translated, nil
}

// sendRequest sends a request to the OpenAI API
func (c *Client) sendRequest(ctx context.Context, messages []Message, jsonMode bool) (string, error) {
	requestBody := request{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}
	if jsonMode {
		requestBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var openaiResp response
	if err := json.NewDecoder(resp.Body).Decode(&openaiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(openaiResp.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}

	return openaiResp.Choices[0].Message.Content, nil
}
