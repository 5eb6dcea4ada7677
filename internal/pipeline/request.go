package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is the distilled input of one morph run: a free-text instruction
// and the image references to blend, in conversation order.
type Request struct {
	Instruction string   `json:"instruction"`
	Images      []string `json:"images"`
}

// Conversation-shaped request body as chat frontends send it. Content is
// either a plain string or a list of typed parts.
type conversationBody struct {
	Messages []conversationTurn `json:"messages"`
}

type conversationTurn struct {
	Role    string          `json:"role"`
	Content json.RawMessage `json:"content"`
	Images  []string        `json:"images"`
}

type contentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text"`
	ImageURL struct {
		URL string `json:"url"`
	} `json:"image_url"`
}

// ParseRequest extracts the instruction and image references from the last
// conversation turn. Text comes from the turn content (string form or the
// concatenated text parts); images come from the turn's images list when one
// is present, otherwise from its image_url content parts. A body without
// messages yields an empty request, which the runner rejects as insufficient
// input rather than an HTTP error.
func ParseRequest(body []byte) (Request, error) {
	var conv conversationBody
	if err := json.Unmarshal(body, &conv); err != nil {
		return Request{}, fmt.Errorf("pipeline: decode request body: %w", err)
	}
	if len(conv.Messages) == 0 {
		return Request{}, nil
	}

	last := conv.Messages[len(conv.Messages)-1]

	var req Request
	parts, isList := decodeContentParts(last.Content)
	if isList {
		var text strings.Builder
		for _, part := range parts {
			if part.Type == "text" {
				text.WriteString(part.Text)
			}
		}
		req.Instruction = text.String()
	} else {
		_ = json.Unmarshal(last.Content, &req.Instruction)
	}
	req.Instruction = strings.TrimSpace(req.Instruction)

	// An explicit images list wins, even when empty.
	switch {
	case last.Images != nil:
		req.Images = last.Images
	case isList:
		for _, part := range parts {
			if part.Type == "image_url" && part.ImageURL.URL != "" {
				req.Images = append(req.Images, part.ImageURL.URL)
			}
		}
	}

	return req, nil
}

func decodeContentParts(content json.RawMessage) ([]contentPart, bool) {
	trimmed := strings.TrimSpace(string(content))
	if !strings.HasPrefix(trimmed, "[") {
		return nil, false
	}
	var parts []contentPart
	if err := json.Unmarshal(content, &parts); err != nil {
		return nil, false
	}
	return parts, true
}

// ImagePayload strips a data-URL prefix down to the bare base64 chunk, which
// is what the vision endpoint expects. Anything without a recognizable prefix
// passes through unchanged.
func ImagePayload(imageRef string) string {
	head := imageRef
	if len(head) > 60 {
		head = head[:60]
	}
	if strings.Contains(imageRef, ",") && strings.Contains(head, "base64") {
		_, payload, _ := strings.Cut(imageRef, ",")
		return payload
	}
	return imageRef
}
