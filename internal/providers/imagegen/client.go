// Package imagegen calls an OpenAI-compatible images generation endpoint and
// normalizes its heterogeneous candidate shapes.
package imagegen

import (
	"bytes"
	"context"
	"encoding/base64"
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

// Raw response bodies are echoed back in diagnostics truncated to this size.
const rawDiagnosticLimit = 1200

// Options configures the generation client.
type Options struct {
	BaseURL        string
	Model          string
	Count          int
	Size           string
	ResponseFormat string
	HTTPClient     *http.Client
	Logger         *infra.Logger
	RequestTimeout time.Duration
}

// Client performs HTTP calls to the /v1/images/generations endpoint.
type Client struct {
	baseURL        string
	model          string
	count          int
	size           string
	responseFormat string
	httpClient     *http.Client
	logger         *infra.Logger
}

type generationRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type generationResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// Candidate is one generated image, resolved at ingestion into exactly one of
// two forms: an inline decoded payload or a remote URL.
type Candidate struct {
	data []byte
	url  string
}

// Inline builds a candidate carrying decoded image bytes.
func Inline(data []byte) Candidate {
	return Candidate{data: data}
}

// Remote builds a candidate referencing an already-hosted image.
func Remote(url string) Candidate {
	return Candidate{url: url}
}

// Bytes returns the inline payload; ok is false for remote candidates.
func (c Candidate) Bytes() ([]byte, bool) {
	return c.data, len(c.data) > 0
}

// URL returns the remote location; ok is false for inline candidates.
func (c Candidate) URL() (string, bool) {
	return c.url, c.url != ""
}

// Result is the normalized outcome of one generation call.
type Result struct {
	Model      string
	Size       string
	Received   int         // entries the service returned, usable or not
	Candidates []Candidate // usable entries, in service order
	RawBody    string      // truncated raw response for diagnostics
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.RequestTimeout
		if timeout <= 0 {
			timeout = 10 * time.Minute
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		return nil, errors.New("imagegen: model is required")
	}
	count := opts.Count
	if count <= 0 {
		count = 1
	}
	size := strings.TrimSpace(opts.Size)
	if size == "" {
		size = "1024x1024"
	}
	responseFormat := strings.TrimSpace(opts.ResponseFormat)
	if responseFormat == "" {
		responseFormat = "b64_json"
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
		baseURL:        baseURL,
		model:          model,
		count:          count,
		size:           size,
		responseFormat: responseFormat,
		httpClient:     httpClient,
		logger:         logger,
	}, nil
}

// Model returns the configured model identifier.
func (c *Client) Model() string { return c.model }

// Size returns the configured size descriptor.
func (c *Client) Size() string { return c.size }

// Count returns the configured candidate count.
func (c *Client) Count() int { return c.count }

// Generate requests the configured number of candidates for the prompt. The
// service may return fewer entries than requested; entries carrying neither a
// payload nor a URL (or an undecodable payload) are dropped here, so callers
// only ever see usable candidates. An empty Candidates slice is not an error
// by itself — callers distinguish "service returned nothing" from "nothing
// was usable" via Received.
func (c *Client) Generate(ctx context.Context, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errors.New("imagegen: prompt is required")
	}
	payload := generationRequest{
		Model:          c.model,
		Prompt:         prompt,
		N:              c.count,
		Size:           c.size,
		ResponseFormat: c.responseFormat,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("imagegen: encode request: %w", err)
	}
	endpoint := c.baseURL + "/v1/images/generations"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("imagegen: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("imagegen: http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("imagegen: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("imagegen: status %d: %s", resp.StatusCode, truncate(strings.TrimSpace(string(raw)), rawDiagnosticLimit))
	}

	var decoded generationResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("imagegen: decode response: %w", err)
	}

	result := &Result{
		Model:    c.model,
		Size:     c.size,
		Received: len(decoded.Data),
		RawBody:  truncate(string(raw), rawDiagnosticLimit),
	}
	for idx, item := range decoded.Data {
		switch {
		case item.B64JSON != "":
			data, err := decodeImagePayload(item.B64JSON)
			if err != nil {
				c.logger.Debug().Int("index", idx).Err(err).Msg("imagegen: dropping undecodable candidate")
				continue
			}
			result.Candidates = append(result.Candidates, Inline(data))
		case item.URL != "":
			result.Candidates = append(result.Candidates, Remote(item.URL))
		default:
			c.logger.Debug().Int("index", idx).Msg("imagegen: dropping candidate without payload or url")
		}
	}
	c.logger.Debug().
		Str("model", c.model).
		Int("received", result.Received).
		Int("usable", len(result.Candidates)).
		Msg("imagegen: generated candidates")
	return result, nil
}

// decodeImagePayload decodes a base64 chunk, tolerating embedded whitespace
// and newlines some servers insert into long payloads.
func decodeImagePayload(b64 string) ([]byte, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\n', '\r', '\t':
			return -1
		}
		return r
	}, b64)
	data, err := base64.StdEncoding.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("imagegen: decode payload: %w", err)
	}
	return data, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
