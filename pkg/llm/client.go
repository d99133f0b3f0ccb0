package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
)

// Client is the provider boundary: given prompts, return completions with
// token counts; given texts, return embedding vectors.
type Client interface {
	Chat(ctx context.Context, model string, prompt Prompt, opts Options) (*Completion, error)
	Embed(ctx context.Context, model string, inputs []string) ([][]float64, int, error)
}

type httpClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates an OpenAI-compatible HTTP client from the configuration.
func NewClient(cfg *Config) Client {
	return &httpClient{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: cfg.RequestTimeoutDuration()},
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Seed        *int      `json:"seed,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content          string `json:"content"`
			ReasoningContent string `json:"reasoning_content"`
		} `json:"message"`
	} `json:"choices"`
	Usage Usage `json:"usage"`
}

type embedRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embedResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *httpClient) Chat(ctx context.Context, model string, prompt Prompt, opts Options) (*Completion, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    prompt,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
		Seed:        opts.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	data, err := c.post(ctx, c.baseURL+"/chat/completions", body)
	if err != nil {
		return nil, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat response contains no choices")
	}

	return &Completion{
		Content:   resp.Choices[0].Message.Content,
		Reasoning: resp.Choices[0].Message.ReasoningContent,
		Usage:     resp.Usage,
	}, nil
}

func (c *httpClient) Embed(ctx context.Context, model string, inputs []string) ([][]float64, int, error) {
	body, err := json.Marshal(embedRequest{Input: inputs, Model: model})
	if err != nil {
		return nil, 0, fmt.Errorf("marshal embed request: %w", err)
	}

	data, err := c.post(ctx, c.baseURL+"/embeddings", body)
	if err != nil {
		return nil, 0, err
	}

	var resp embedResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, 0, fmt.Errorf("decode embed response: %w", err)
	}
	if len(resp.Data) != len(inputs) {
		return nil, 0, fmt.Errorf("embed response has %d vectors for %d inputs", len(resp.Data), len(inputs))
	}

	// Provider data is indexed; reassemble by position rather than order.
	vectors := make([][]float64, len(inputs))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, 0, fmt.Errorf("embed response index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}

	return vectors, resp.Usage.TotalTokens, nil
}

// post sends the request with bounded retries and exponential backoff on
// transport errors, rate limits, and server errors.
func (c *httpClient) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	delay := initialDelay

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		data, retryable, err := c.attempt(ctx, url, body)
		if err == nil {
			return data, nil
		}

		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, lastErr)
}

func (c *httpClient) attempt(ctx context.Context, url string, body []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusOK {
		return data, false, nil
	}

	retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500

	var ae apiError
	if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
		return nil, retryable, fmt.Errorf("provider error (%d): %s", resp.StatusCode, ae.Error.Message)
	}
	return nil, retryable, fmt.Errorf("provider error (%d)", resp.StatusCode)
}
