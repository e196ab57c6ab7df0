package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

// OpenAICompatible streams chat completions from any OpenAI-compatible
// `/chat/completions` SSE endpoint (vendor-neutral on purpose — many
// providers speak this dialect). Line-scanning the response body follows
// the teacher's discovery.StdioWorker idiom of reading a child process's
// stdout line by line, applied here to an HTTP response body instead.
type OpenAICompatible struct {
	BaseURL     string
	HTTPClient  *http.Client
	TokenSource oauth2.TokenSource // nil for API-key auth
	APIKey      string
}

// Stream implements Provider.
func (o *OpenAICompatible) Stream(ctx context.Context, req ChatRequest) (<-chan Chunk, error) {
	body, err := json.Marshal(map[string]interface{}{
		"model":    req.Model,
		"messages": req.Messages,
		"stream":   true,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if err := o.authorize(ctx, httpReq); err != nil {
		return nil, err
	}

	client := o.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		return nil, fmt.Errorf("provider error: status %d", resp.StatusCode)
	}

	out := make(chan Chunk, 16)
	go func() {
		defer close(out)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "data:") {
				continue
			}
			payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if payload == "[DONE]" {
				out <- Chunk{Done: true, FinishReason: "stop"}
				return
			}

			var event ssePayload
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				out <- Chunk{Err: fmt.Errorf("malformed stream chunk: %w", err)}
				return
			}
			if len(event.Choices) == 0 {
				continue
			}
			choice := event.Choices[0]
			if choice.FinishReason != "" {
				out <- Chunk{Done: true, FinishReason: choice.FinishReason}
				return
			}
			out <- Chunk{Token: choice.Delta.Content}
		}
		if err := scanner.Err(); err != nil {
			out <- Chunk{Err: err}
		}
	}()

	return out, nil
}

func (o *OpenAICompatible) authorize(ctx context.Context, req *http.Request) error {
	if o.TokenSource != nil {
		tok, err := o.TokenSource.Token()
		if err != nil {
			return fmt.Errorf("oauth token: %w", err)
		}
		tok.SetAuthHeader(req)
		return nil
	}
	if o.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+o.APIKey)
	}
	return nil
}

type ssePayload struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
