package internal

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

//go:embed web/index.html
var widgetHTML []byte

const maxBodyBytes = 64 << 10

type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id,omitempty"`
}

type teachRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ServerDeps struct {
	Config        ServerConfig
	AdminSecret   string
	APIConfigured bool
	Ask           *AskUseCase
	Teach         *TeachUseCase
	Knowledge     *ListKnowledgeUseCase
	Logger        *zap.Logger
}

type Server struct {
	deps    ServerDeps
	handler http.Handler
	logger  *zap.Logger
}

func NewServer(deps ServerDeps) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	defaults := DefaultConfig().Server.Routes
	if deps.Config.Routes.Ask == "" {
		deps.Config.Routes.Ask = defaults.Ask
	}
	if deps.Config.Routes.Teach == "" {
		deps.Config.Routes.Teach = defaults.Teach
	}
	if deps.Config.Routes.Knowledge == "" {
		deps.Config.Routes.Knowledge = defaults.Knowledge
	}

	s := &Server{deps: deps, logger: deps.Logger}
	s.handler = s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()

	origins := s.deps.Config.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.accessLog)
	r.Use(middleware.Recoverer)

	routes := s.deps.Config.Routes

	r.Get("/", s.handleWidget)
	r.Post(routes.Ask, s.handleAsk)
	r.Get("/health", s.handleHealth)
	r.Get("/api/info", s.handleInfo)
	r.Get("/ping", s.handlePing)

	r.Group(func(r chi.Router) {
		if s.deps.AdminSecret != "" {
			r.Use(RequireAdmin([]byte(s.deps.AdminSecret), s.logger))
		}
		r.Post(routes.Teach, s.handleTeach)
		r.Get(routes.Knowledge, s.handleKnowledge)
	})

	return r
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) handleWidget(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(widgetHTML)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := s.deps.Ask.Execute(r.Context(), AskInput{Question: req.Question, UserID: req.UserID})
	if errors.Is(err, ErrEmptyQuestion) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.logger.Error("ask failed", zap.Error(err))
		writeJSON(w, http.StatusOK, AnswerResult{Answer: UnavailableMessage, Source: SourceError})
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTeach(w http.ResponseWriter, r *http.Request) {
	var req teachRequest
	if !decodeBody(w, r, &req) {
		return
	}

	out, err := s.deps.Teach.Execute(r.Context(), TeachInput{Question: req.Question, Answer: req.Answer})
	switch {
	case errors.Is(err, ErrInvalidKey):
		writeError(w, http.StatusBadRequest, "question is required")
		return
	case errors.Is(err, ErrStoreFull):
		writeJSON(w, http.StatusInsufficientStorage, TeachOutput{
			Success:        false,
			Message:        err.Error(),
			TotalKnowledge: s.deps.Teach.store.Len(),
		})
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleKnowledge(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.Knowledge.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"service":        CompanyName,
		"version":        Version,
		"environment":    s.deps.Config.Environment,
		"api_configured": s.deps.APIConfigured,
	})
}

func (s *Server) handleInfo(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":        CompanyName,
		"version":     Version,
		"description": "Network Engineering AI for Students",
		"features": []string{
			"Networking Q&A",
			"Student Learning",
			"24/7 Available",
			"Multi-language Support",
			"AI Powered",
		},
		"supported_topics": SupportedTopics,
	})
}

func (s *Server) handlePing(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "alive",
		"service":   "NetPath AI",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// decodeBody reads a JSON body of at most maxBodyBytes and writes the error response itself.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return false
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
