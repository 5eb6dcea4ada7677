package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"morph-server/internal/middleware"
	"morph-server/internal/pipeline"
)

// Two base64 images plus conversation framing; anything bigger is abuse.
const maxMorphBodyBytes = 64 << 20

type morphResponse struct {
	RequestID string             `json:"request_id"`
	Messages  []pipeline.Message `json:"messages"`
	Result    string             `json:"result,omitempty"`
}

// CreateMorph runs the pipeline for a conversation-shaped request body. With
// stream enabled (body field or query parameter) each pipeline message goes
// out as one SSE event; otherwise the full message list is buffered into a
// single JSON response. Pipeline failures are in-band terminal messages, not
// HTTP errors, so chat frontends can surface them as regular output.
func (a *App) CreateMorph(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxMorphBodyBytes))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "failed to read body")
		return
	}
	req, err := pipeline.ParseRequest(body)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	var opts struct {
		Stream bool `json:"stream"`
	}
	_ = json.Unmarshal(body, &opts)
	stream := opts.Stream || r.URL.Query().Get("stream") == "true"

	locale := middleware.LocaleFromContext(r.Context())
	messages := a.Runner.Run(r.Context(), req, locale)

	if stream {
		a.streamMorph(w, messages)
		return
	}

	resp := morphResponse{RequestID: middleware.RequestIDFromContext(r.Context())}
	for msg := range messages {
		resp.Messages = append(resp.Messages, msg)
		if msg.Kind == pipeline.KindFinal {
			resp.Result = msg.Text
		}
	}
	a.json(w, http.StatusOK, resp)
}

func (a *App) streamMorph(w http.ResponseWriter, messages <-chan pipeline.Message) {
	// Writers without flush support still get the event framing, just buffered.
	flusher, _ := w.(http.Flusher)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	for msg := range messages {
		payload, err := json.Marshal(msg)
		if err != nil {
			a.Logger.Error().Err(err).Msg("handlers: encoding stream message failed")
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		if flusher != nil {
			flusher.Flush()
		}
	}
}
