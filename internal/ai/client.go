package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrEmptyResponse means the API answered 200 but returned no usable
	// candidate text (blocked prompt, empty parts).
	ErrEmptyResponse = errors.New("ai: response has no candidate text")
)

// StatusError reports a non-2xx answer from the generative API. It is a
// different failure kind from response parsing: callers surface it as an
// external-API error and abort without mutating state.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("ai: unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client calls the Gemini generateContent endpoint for text generation and
// image classification. Both calls are synchronous and bounded by the
// configured HTTP timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func NewClient(baseURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type safetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

type generateRequest struct {
	Contents       []content       `json:"contents"`
	SafetySettings []safetySetting `json:"safetySettings,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// blockNone disables all safety categories, matching the behavior the journey
// prompt was tuned against.
var blockNone = []safetySetting{
	{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_NONE"},
	{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_NONE"},
}

// GenerateText sends a plain text prompt and returns the first candidate's
// text.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	req := generateRequest{
		Contents:       []content{{Parts: []part{{Text: prompt}}}},
		SafetySettings: blockNone,
	}
	return c.generate(ctx, req)
}

// GenerateVision sends a prompt plus an inline image and returns the first
// candidate's text.
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{
			{Text: prompt},
			{InlineData: &inlineData{
				MimeType: mimeType,
				Data:     base64.StdEncoding.EncodeToString(image),
			}},
		}}},
	}
	return c.generate(ctx, req)
}

func (c *Client) generate(ctx context.Context, genReq generateRequest) (string, error) {
	body, err := json.Marshal(genReq)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	var genResp generateResponse
	err = json.Unmarshal(respBody, &genResp)
	if err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", ErrEmptyResponse
	}

	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
