package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/conversation"
	"pkdindustries/codi/internal/core"
	"pkdindustries/codi/internal/session"
)

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type historyTurn struct {
	Role    core.Role `json:"role"`
	Content string    `json:"content"`
}

type historyResponse struct {
	Turns []historyTurn `json:"turns"`
}

type pageData struct {
	Title       string
	Logo        string
	Greeting    string
	Placeholder string
	Stream      bool
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	s.sessionFor(w, r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := s.page.Execute(w, pageData{
		Title:       "Codi",
		Logo:        "https://i.postimg.cc/VNDMshSr/codi.png",
		Greeting:    "How can I help you today?",
		Placeholder: "Message Codi....",
		Stream:      s.cfg.Bot.Stream,
	})
	if err != nil {
		zap.S().Errorw("Failed to render chat page", "error", err)
	}
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	resp := historyResponse{Turns: []historyTurn{}}
	if sess, ok := s.existingSession(r); ok {
		for _, t := range sess.Transcript() {
			resp.Turns = append(resp.Turns, historyTurn{Role: t.Role, Content: t.Content})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if sess, ok := s.existingSession(r); ok {
		s.store.Delete(sess.ID)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChat(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := s.sessionFor(w, r)
	if !sess.Acquire(r.Context()) {
		return
	}
	defer sess.Release()

	ctx, cancel := s.processing(r)
	defer cancel()

	reply, err := s.driver.HandleUserMessage(ctx, sess, req.Message, conversation.Hooks{})
	if err != nil {
		s.logFailure(r, sess, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply})
}

func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, err := decodeChat(w, r)
	if err != nil {
		writeError(w, err)
		return
	}

	sess := s.sessionFor(w, r)
	events, ok := newEventStream(w)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "streaming_unsupported", Message: core.UserMessage(errors.New("streaming unsupported"))})
		return
	}

	if !sess.Acquire(r.Context()) {
		return
	}
	defer sess.Release()

	ctx, cancel := s.processing(r)
	defer cancel()

	hooks := conversation.Hooks{
		Delta: func(text string) {
			events.send("delta", map[string]string{"text": text})
		},
		ToolStart: func(call core.ToolCallRequest) {
			events.send("tool", toolEvent{Name: call.Name, Status: "start", Arguments: call.Arguments})
		},
		ToolDone: func(call core.ToolCallRequest, err error) {
			status := "done"
			if err != nil {
				status = "failed"
			}
			events.send("tool", toolEvent{Name: call.Name, Status: status})
		},
	}

	reply, err := s.driver.HandleUserMessage(ctx, sess, req.Message, hooks)
	if err != nil {
		s.logFailure(r, sess, err)
		events.send("error", errorResponse{Error: errorCode(err), Message: core.UserMessage(err)})
		return
	}
	events.send("done", chatResponse{Reply: reply})
}

// processing detaches message handling from the client connection; only the
// configured API timeout bounds it.
func (s *Server) processing(r *http.Request) (context.Context, context.CancelFunc) {
	ctx := context.WithoutCancel(r.Context())
	if s.cfg.API.Timeout > 0 {
		return context.WithTimeout(ctx, s.cfg.API.Timeout)
	}
	return context.WithCancel(ctx)
}

func (s *Server) logFailure(r *http.Request, sess *session.Session, err error) {
	core.WithRequest(zap.S(), middleware.GetReqID(r.Context()), sess.ID).Warnw("Message failed", "error", err)
}

func decodeChat(w http.ResponseWriter, r *http.Request) (chatRequest, error) {
	var req chatRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return req, fmt.Errorf("%w: %v", core.ErrInvalidInput, err)
	}
	return req, nil
}

func errorCode(err error) string {
	var hse *core.HostedServiceError
	switch {
	case errors.Is(err, core.ErrInvalidInput):
		return "invalid_input"
	case errors.As(err, &hse) && hse.LimitReached:
		return "limit_reached"
	case errors.Is(err, core.ErrHostedService):
		return "hosted_service"
	case errors.Is(err, core.ErrSearchUnavailable):
		return "search_unavailable"
	case errors.Is(err, core.ErrMalformedArguments), errors.Is(err, core.ErrInvalidArgument), errors.Is(err, core.ErrUnknownTool):
		return "invalid_tool_call"
	default:
		return "internal"
	}
}

func statusCode(err error) int {
	switch errorCode(err) {
	case "invalid_input":
		return http.StatusBadRequest
	case "internal":
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusCode(err), errorResponse{Error: errorCode(err), Message: core.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Debugw("Failed to write response", "error", err)
	}
}
