package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/berningb/dream-speak-sub000/internal/auth"
	"github.com/berningb/dream-speak-sub000/internal/domain"
)

type sessionResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SavedDreamID string    `json:"saved_dream_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type messageResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// ─────────────────────────────────────────────
// Sessions / chat
// ─────────────────────────────────────────────

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title string `json:"title,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	session, err := s.assistant.StartSession(r.Context(), req.Title)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.assistant.ListSessions(r.Context(), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]sessionResponse, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": out})
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.assistant.GetTimeline(r.Context(), domain.SessionID(chi.URLParam(r, "id")), 0)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	writeJSON(w, http.StatusOK, map[string]any{"messages": out})
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		badRequest(w, "text is required")
		return
	}

	reply, err := s.assistant.SendMessage(r.Context(), domain.SessionID(chi.URLParam(r, "id")), req.Text)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toMessageResponse(reply))
}

// ─────────────────────────────────────────────
// One-shot AI actions
// ─────────────────────────────────────────────

func (s *Server) handleInterpretDream(w http.ResponseWriter, r *http.Request) {
	dream, err := s.assistant.Interpret(r.Context(), domain.DreamID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDreamResponse(dream))
}

func (s *Server) handleDescribeScene(w http.ResponseWriter, r *http.Request) {
	scene, err := s.assistant.DescribeScene(r.Context(), domain.DreamID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"scene": scene})
}

func (s *Server) handleGenerateImage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	dream, err := s.assistant.GenerateImage(r.Context(), domain.DreamID(chi.URLParam(r, "id")), req.Prompt)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toDreamResponse(dream))
}

// ─────────────────────────────────────────────
// Auth lifecycle
// ─────────────────────────────────────────────

// handleSignIn acknowledges a fresh sign-in from the identity provider.
// The interesting side effect is the notifier: cached state from any
// previous session is dropped.
func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := domain.UserFromCtx(r.Context())
	if !ok {
		writeError(w, domain.ErrNotAuthenticated)
		return
	}

	s.notifier.Fire(auth.EventSignIn)
	writeJSON(w, http.StatusOK, map[string]string{"user_id": string(userID)})
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	s.notifier.Fire(auth.EventSignOut)
	w.WriteHeader(http.StatusNoContent)
}

func toSessionResponse(sess *domain.Session) sessionResponse {
	return sessionResponse{
		ID:           string(sess.ID),
		Title:        sess.Title,
		SavedDreamID: string(sess.SavedDreamID),
		CreatedAt:    sess.CreatedAt,
		UpdatedAt:    sess.UpdatedAt,
	}
}

func toMessageResponse(m *domain.Message) messageResponse {
	return messageResponse{
		ID:        string(m.ID),
		SessionID: string(m.SessionID),
		Author:    string(m.Author),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
	}
}
