package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"pricelens/internal/dataset"
	"pricelens/internal/logging"
)

// echoAsker returns the full prompt back, so contract tests can check what
// the handler dispatched.
type echoAsker struct{}

func (echoAsker) Ask(_ context.Context, _ string, user string) (string, error) {
	return user, nil
}

type failingAsker struct{ err error }

func (f failingAsker) Ask(context.Context, string, string) (string, error) {
	return "", f.err
}

func testSnapshot() *dataset.Snapshot {
	return &dataset.Snapshot{
		Records: []dataset.Record{
			{Location: "KL", Unit: "kg", Name: "Rice", Price: 6.00},
			{Location: "Penang", Unit: "kg", Name: "Sugar", Price: 3.50},
		},
		Locations: []string{"KL", "Penang"},
		Units:     []string{"kg"},
	}
}

func newTestServer(t *testing.T, asker Asker) *Server {
	t.Helper()
	s, err := New(testSnapshot(), asker, logging.New(false), 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func postChat(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var out struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response body %q: %v", w.Body.String(), err)
	}
	return out.Response
}

func TestChatRejectsMissingPrompt(t *testing.T) {
	s := newTestServer(t, echoAsker{})
	for _, body := range []string{"{}", `{"prompt": ""}`, `{"prompt": "   "}`, ""} {
		w := postChat(t, s, body)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, w.Code)
		}
		if msg := decodeResponse(t, w); !strings.Contains(msg, "No prompt provided") {
			t.Fatalf("body %q: unexpected message %q", body, msg)
		}
	}
}

func TestChatWithoutAskerReturns500(t *testing.T) {
	s := newTestServer(t, nil)
	w := postChat(t, s, `{"prompt": "how much is rice?"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeResponse(t, w); !strings.Contains(msg, "not configured") {
		t.Fatalf("unexpected message: %q", msg)
	}
}

func TestChatDispatchesPromptWithDataAndQuestion(t *testing.T) {
	s := newTestServer(t, echoAsker{})
	w := postChat(t, s, `{"prompt": "how much is rice in KL?"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	msg := decodeResponse(t, w)
	if !strings.Contains(msg, "how much is rice in KL?") {
		t.Fatalf("dispatched prompt missing user question: %q", msg)
	}
	if !strings.Contains(msg, `"name":"Rice"`) {
		t.Fatalf("dispatched prompt missing serialized records: %q", msg)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID header")
	}
}

func TestChatSurfacesRemoteFailure(t *testing.T) {
	s := newTestServer(t, failingAsker{err: errors.New("rate limited: too many requests")})
	w := postChat(t, s, `{"prompt": "hello"}`)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if msg := decodeResponse(t, w); !strings.Contains(msg, "rate limited") {
		t.Fatalf("expected remote error in message, got %q", msg)
	}
}

func TestChatMethodNotAllowed(t *testing.T) {
	s := newTestServer(t, echoAsker{})
	req := httptest.NewRequest(http.MethodGet, "/api/chat", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", w.Code)
	}
}

func TestIndexEmbedsSnapshot(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{`"name":"Rice"`, `"KL"`, `"Penang"`, `"kg"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("index page missing %s", want)
		}
	}
}

func TestChatbotPageRenders(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/chatbot", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "/api/chat") {
		t.Fatal("chat page should wire the chat API")
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Fatalf("unexpected health response: %d %q", w.Code, w.Body.String())
	}
}

func TestUnknownPath404(t *testing.T) {
	s := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
