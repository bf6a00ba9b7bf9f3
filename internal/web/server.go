// Package web serves the browser chat widget and its JSON/SSE endpoints.
package web

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pkdindustries/codi/internal/config"
	"pkdindustries/codi/internal/conversation"
	"pkdindustries/codi/internal/session"
)

const (
	sessionCookie  = "codi_session"
	maxRequestBody = 64 << 10
)

// Server wires the chat page to the conversation driver
type Server struct {
	cfg    *config.Configuration
	driver *conversation.Driver
	store  *session.Store
	page   *template.Template
}

func NewServer(cfg *config.Configuration, driver *conversation.Driver, store *session.Store) *Server {
	return &Server{
		cfg:    cfg,
		driver: driver,
		store:  store,
		page:   template.Must(template.ParseFS(templates, "templates/chat.html")),
	}
}

// Routes returns the http handler for the chat surface
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/history", s.handleHistory)
		r.Post("/chat", s.handleChat)
		r.Post("/chat/stream", s.handleChatStream)
		r.Post("/reset", s.handleReset)
	})
	return r
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Web.Listen,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          zap.NewStdLog(zap.L()),
	}

	errCh := make(chan error, 1)
	go func() {
		zap.S().Infow("Serving chat page", "listen", s.cfg.Web.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		zap.S().Info("Shutting down chat page")
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// sessionFor returns the caller's session, starting a new one (and setting
// the cookie) when the cookie is missing or its session has ended.
func (s *Server) sessionFor(w http.ResponseWriter, r *http.Request) *session.Session {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, perr := uuid.Parse(c.Value); perr == nil {
			if sess, ok := s.store.Get(c.Value); ok {
				return sess
			}
		}
	}

	sess := s.store.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess
}

// existingSession returns the caller's session without creating one.
func (s *Server) existingSession(r *http.Request) (*session.Session, bool) {
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		return nil, false
	}
	return s.store.Get(c.Value)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		zap.S().Infow("http",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
