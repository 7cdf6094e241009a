package server

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"pricelens/internal/dataset"
	"pricelens/internal/logging"
	"pricelens/internal/prompt"
)

//go:embed templates/*.html
var templateFS embed.FS

// Asker abstracts the reasoning service so handlers can be tested with a
// fake. A nil Asker means the assistant is disabled.
type Asker interface {
	Ask(ctx context.Context, system, user string) (string, error)
}

// Server holds the read-only startup snapshot and renders it into the widget
// page, the chat page, and the chat API.
type Server struct {
	snap             *dataset.Snapshot
	asker            Asker
	logger           *logging.Logger
	maxPromptRecords int

	tmpl *template.Template
	// pre-marshaled snapshot for embedding into the widget page
	itemData  template.JS
	locations template.JS
	units     template.JS
}

// New builds a Server over the given snapshot. asker may be nil, in which
// case /api/chat answers with a service-unavailable message.
func New(snap *dataset.Snapshot, asker Asker, logger *logging.Logger, maxPromptRecords int) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	s := &Server{
		snap:             snap,
		asker:            asker,
		logger:           logger,
		maxPromptRecords: maxPromptRecords,
		tmpl:             tmpl,
	}
	if s.itemData, err = marshalJS(snap.Records); err != nil {
		return nil, err
	}
	if s.locations, err = marshalJS(snap.Locations); err != nil {
		return nil, err
	}
	if s.units, err = marshalJS(snap.Units); err != nil {
		return nil, err
	}
	return s, nil
}

func marshalJS(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal snapshot: %w", err)
	}
	return template.JS(b), nil
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/chatbot", s.handleChatbotPage)
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := struct {
		ItemData  template.JS
		Locations template.JS
		Units     template.JS
		Count     int
	}{s.itemData, s.locations, s.units, len(s.snap.Records)}
	s.render(w, "index.html", data)
}

func (s *Server) handleChatbotPage(w http.ResponseWriter, r *http.Request) {
	s.render(w, "chatbot.html", nil)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("[server] render %s: %v", name, err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type chatRequest struct {
	Prompt string `json:"prompt"`
}

type chatResponse struct {
	Response string `json:"response"`
}

// handleChat walks one request through validate, prompt build, dispatch.
// Validation failures are 400s; a missing adapter or a remote failure is a
// 500 whose message is shown to the end user.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, chatResponse{Response: "Use POST."})
		return
	}
	reqID := uuid.NewString()
	w.Header().Set("X-Request-ID", reqID)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.logger.Warn("[chat] %s rejected: bad body: %v", reqID, err)
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "No prompt provided."})
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		s.logger.Warn("[chat] %s rejected: empty prompt", reqID)
		writeJSON(w, http.StatusBadRequest, chatResponse{Response: "No prompt provided."})
		return
	}
	if s.asker == nil {
		s.logger.Error("[chat] %s failed: assistant not configured", reqID)
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Response: "AI assistant is not configured. Set PRICELENS_API_KEY and restart the server.",
		})
		return
	}

	p, err := prompt.Build(s.snap.Records, req.Prompt, s.maxPromptRecords)
	if err != nil {
		s.logger.Error("[chat] %s failed: build prompt: %v", reqID, err)
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Response: "Sorry, there was an error preparing your request.",
		})
		return
	}
	s.logger.Debug("[chat] %s dispatching: %d records, ~%d tokens", reqID, p.Included, prompt.EstimateTokens(p.Full))

	text, err := s.asker.Ask(r.Context(), p.System, p.Full)
	if err != nil {
		s.logger.Error("[chat] %s failed: %v", reqID, err)
		writeJSON(w, http.StatusInternalServerError, chatResponse{
			Response: fmt.Sprintf("Sorry, there was an error processing your request: %v", err),
		})
		return
	}
	s.logger.Info("[chat] %s succeeded", reqID)
	writeJSON(w, http.StatusOK, chatResponse{Response: text})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
