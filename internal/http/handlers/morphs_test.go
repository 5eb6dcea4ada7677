package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"morph-server/internal/infra"
	"morph-server/internal/middleware"
	"morph-server/internal/pipeline"
)

type scriptedRunner struct {
	messages []pipeline.Message
	req      pipeline.Request
	locale   string
	calls    int
}

func (s *scriptedRunner) Run(ctx context.Context, req pipeline.Request, locale string) <-chan pipeline.Message {
	s.calls++
	s.req = req
	s.locale = locale
	out := make(chan pipeline.Message, len(s.messages))
	for _, m := range s.messages {
		out <- m
	}
	close(out)
	return out
}

func newTestApp(runner *scriptedRunner) *App {
	return NewApp(runner, nil, infra.Logger(zerolog.New(io.Discard)))
}

func TestCreateMorphBuffered(t *testing.T) {
	runner := &scriptedRunner{messages: []pipeline.Message{
		pipeline.Progress("STAGED: Analyzing image 1..."),
		{Kind: pipeline.KindFinal, Text: "### Morph Results"},
	}}
	app := newTestApp(runner)

	body := `{"messages":[{"role":"user","content":"blend","images":["AAA=","BBB="]}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/morphs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.CreateMorph(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	var resp morphResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(resp.Messages))
	}
	if resp.Result != "### Morph Results" {
		t.Fatalf("result = %q", resp.Result)
	}
	if runner.req.Instruction != "blend" || len(runner.req.Images) != 2 {
		t.Fatalf("parsed request = %+v", runner.req)
	}
}

func TestCreateMorphStream(t *testing.T) {
	runner := &scriptedRunner{messages: []pipeline.Message{
		pipeline.Progress("STAGED: Generating candidates..."),
		{Kind: pipeline.KindNoCandidates, Text: "Error: No images returned. Raw response: {}"},
	}}
	app := newTestApp(runner)

	body := `{"stream":true,"messages":[{"role":"user","content":"x","images":["A","B"]}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/morphs", strings.NewReader(body))
	rec := httptest.NewRecorder()
	app.CreateMorph(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	events := strings.Split(strings.TrimSpace(rec.Body.String()), "\n\n")
	if len(events) != 2 {
		t.Fatalf("events = %d, body: %q", len(events), rec.Body.String())
	}
	for _, event := range events {
		if !strings.HasPrefix(event, "data: ") {
			t.Fatalf("event missing data prefix: %q", event)
		}
		var msg pipeline.Message
		if err := json.Unmarshal([]byte(strings.TrimPrefix(event, "data: ")), &msg); err != nil {
			t.Fatalf("decode event: %v", err)
		}
	}
}

func TestCreateMorphStreamQueryParam(t *testing.T) {
	runner := &scriptedRunner{messages: []pipeline.Message{
		{Kind: pipeline.KindInsufficientInput, Text: "Please upload two images to morph."},
	}}
	app := newTestApp(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/morphs?stream=true", strings.NewReader(`{"messages":[]}`))
	rec := httptest.NewRecorder()
	app.CreateMorph(rec, req)

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestCreateMorphInvalidBody(t *testing.T) {
	runner := &scriptedRunner{}
	app := newTestApp(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/morphs", strings.NewReader(`{not json`))
	rec := httptest.NewRecorder()
	app.CreateMorph(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if runner.calls != 0 {
		t.Fatalf("runner must not be called for invalid bodies")
	}
}

func TestCreateMorphForwardsLocale(t *testing.T) {
	runner := &scriptedRunner{messages: []pipeline.Message{
		{Kind: pipeline.KindInsufficientInput, Text: "Bitte lade zwei Bilder zum Morphen hoch."},
	}}
	app := newTestApp(runner)

	req := httptest.NewRequest(http.MethodPost, "/v1/morphs", strings.NewReader(`{"messages":[]}`))
	req = req.WithContext(context.WithValue(req.Context(), middleware.LocaleKey, "de"))
	rec := httptest.NewRecorder()
	app.CreateMorph(rec, req)

	if runner.locale != "de" {
		t.Fatalf("locale = %q, want %q", runner.locale, "de")
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(&scriptedRunner{})
	rec := httptest.NewRecorder()
	app.Health(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %q", rec.Body.String())
	}
}

func TestRunsEndpointsWithoutJournal(t *testing.T) {
	app := newTestApp(&scriptedRunner{})

	rec := httptest.NewRecorder()
	app.ListRuns(rec, httptest.NewRequest(http.MethodGet, "/v1/runs", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("list status = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	app.GetRun(rec, httptest.NewRequest(http.MethodGet, "/v1/runs/x", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get status = %d", rec.Code)
	}
}
