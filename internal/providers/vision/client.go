// Package vision calls an Ollama-style chat endpoint with a single image and
// a JSON-only trait extraction prompt.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"morph-server/internal/infra"
)

// TraitPrompt instructs the model to answer with bare JSON across the fixed
// trait vocabulary. The embedded example anchors the expected shape; values
// are kept short to reduce prompt noise downstream.
const TraitPrompt = "Return ONLY valid JSON (no markdown) describing visible traits and attributes in the image.\n" +
	"Keys: primary_subject, color_palette, dominant_textures, scene_type, lighting, composition, notable_features, style.\n" +
	"Keep each value short (1-8 words). No opinions, avoid stylistic instructions.\n\n" +
	"Example response:\n" +
	`{"primary_subject": "cat", "color_palette": "warm browns and creams", "dominant_textures": "soft fur", "scene_type": "indoor close-up", ` +
	`"lighting": "soft window light", "composition": "centered, tight crop", "notable_features": "one ear slightly bent", "style": "photorealistic"}`

// Options configures the vision client.
type Options struct {
	BaseURL        string
	Model          string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the vision chat endpoint.
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Error string `json:"error"`
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 5 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("vision: model is required")
	}
	var logger *infra.Logger
	if opts.Logger != nil {
		logger = opts.Logger
	} else {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Client{
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

// DescribeImage sends one base64 image payload with the trait prompt and
// returns the model's free-form text reply. Callers are expected to run the
// reply through traits.Normalize; nothing here assumes the text is JSON.
func (c *Client) DescribeImage(ctx context.Context, imageB64 string) (string, error) {
	if strings.TrimSpace(imageB64) == "" {
		return "", errors.New("vision: image payload is required")
	}
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role:    "user",
			Content: TraitPrompt,
			Images:  []string{imageB64},
		}},
		Stream: false,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("vision: encode request: %w", err)
	}
	endpoint := c.baseURL + "/api/chat"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("vision: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("vision: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("vision: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("vision: status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var decoded chatResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("vision: decode response: %w", err)
	}
	if decoded.Error != "" {
		return "", fmt.Errorf("vision: %s", decoded.Error)
	}
	c.logger.Debug().
		Str("model", c.model).
		Int("reply_bytes", len(decoded.Message.Content)).
		Msg("vision: described image")
	return decoded.Message.Content, nil
}
