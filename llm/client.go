package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/vominhhuy13101999/agent-test/framework"
)

// Client implements framework.LanguageModel against a JSON completion
// endpoint (POST /api/generate for single prompts, /api/chat for message
// lists). Retry policy deliberately lives with the remote service, not here.
type Client struct {
	Endpoint string
	Model    string
	APIKey   string
	Debug    bool
	client   *http.Client
}

type completionResponse struct {
	Text     string `json:"text"`
	Response string `json:"response"`
	Message  *struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	DoneReason string         `json:"done_reason"`
	Usage      map[string]int `json:"usage"`
}

// NewClient builds a completion client with a conservative overall timeout.
// Per-call deadlines are expected to arrive via context.
func NewClient(endpoint, model string) *Client {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &Client{
		Endpoint: endpoint,
		Model:    model,
		client:   &http.Client{Timeout: 3 * time.Minute},
	}
}

// Generate implements single prompt completion.
func (c *Client) Generate(ctx context.Context, prompt string, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	payload := map[string]interface{}{
		"model":  c.model(options),
		"prompt": prompt,
		"stream": false,
	}
	applyOptions(payload, options)
	return c.doRequest(ctx, "/api/generate", payload)
}

// Chat implements chat style conversation.
func (c *Client) Chat(ctx context.Context, messages []framework.Message, options *framework.LLMOptions) (*framework.LLMResponse, error) {
	converted := make([]map[string]string, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, map[string]string{"role": msg.Role, "content": msg.Content})
	}
	payload := map[string]interface{}{
		"model":    c.model(options),
		"messages": converted,
		"stream":   false,
	}
	applyOptions(payload, options)
	return c.doRequest(ctx, "/api/chat", payload)
}

func (c *Client) model(options *framework.LLMOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	return c.Model
}

func applyOptions(payload map[string]interface{}, options *framework.LLMOptions) {
	if options == nil {
		return
	}
	if options.Temperature != 0 {
		payload["temperature"] = options.Temperature
	}
	if options.MaxTokens != 0 {
		payload["max_tokens"] = options.MaxTokens
	}
	if options.Stop != nil {
		payload["stop"] = options.Stop
	}
}

func (c *Client) doRequest(ctx context.Context, path string, payload interface{}) (*framework.LLMResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	c.logf("request %s payload: %s", path, clip(string(body), 2048))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, classifyTransport(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, classifyStatus(resp.StatusCode, resp.Status, string(msg))
	}
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(err)
	}
	c.logf("response %s payload: %s", path, clip(string(responseBody), 2048))
	return decodeResponse(responseBody)
}

func decodeResponse(body []byte) (*framework.LLMResponse, error) {
	var raw completionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	resp := &framework.LLMResponse{
		Text:         firstNonEmpty(raw.Text, raw.Response),
		FinishReason: raw.DoneReason,
		Usage:        raw.Usage,
	}
	if resp.Text == "" && raw.Message != nil {
		resp.Text = raw.Message.Content
	}
	return resp, nil
}

func (c *Client) httpClient() *http.Client {
	if c.client == nil {
		c.client = &http.Client{Timeout: 60 * time.Second}
	}
	return c.client
}

func (c *Client) logf(format string, args ...interface{}) {
	if !c.Debug {
		return
	}
	log.Printf("[llm] "+format, args...)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
