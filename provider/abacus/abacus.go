package abacus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/commercekit/shopchat/config"
)

// Client talks to the Abacus chat deployment. The backend keeps conversation
// state server-side; the conversation id returned by one call is the
// continuation handle passed into the next.
type Client struct {
	apiKey       string
	baseURL      string
	deploymentID string
	httpClient   *http.Client
}

type converseRequest struct {
	DeploymentID   string `json:"deployment_id"`
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

type converseResponse struct {
	Success        bool   `json:"success"`
	Answer         string `json:"answer"`
	ConversationID string `json:"conversation_id"`
	Error          string `json:"error,omitempty"`
}

// NewClient creates a new generation backend client
func NewClient(cfg config.GenerationConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.abacus.ai/api/v0"
	}
	return &Client{
		apiKey:       cfg.APIKey,
		baseURL:      baseURL,
		deploymentID: cfg.DeploymentID,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// Converse sends a composed prompt to the deployment and returns the answer
// together with the conversation id to continue from. An empty conversationID
// starts a fresh server-side conversation. On success:false the answer is
// undefined and must not be used.
func (c *Client) Converse(ctx context.Context, prompt string, conversationID string) (string, string, error) {
	requestBody := converseRequest{
		DeploymentID:   c.deploymentID,
		Message:        prompt,
		ConversationID: conversationID,
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/getChatResponse", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apiKey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var out converseResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", "", fmt.Errorf("failed to parse response: %w", err)
	}
	if !out.Success {
		return "", "", fmt.Errorf("generation backend failure: %s", out.Error)
	}

	return out.Answer, out.ConversationID, nil
}
