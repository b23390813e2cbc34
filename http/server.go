package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/docdex/docdex"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultShutdownTimeout bounds graceful server shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Server exposes the query API over HTTP.
type Server struct {
	server *http.Server
	router chi.Router

	asker    docdex.Asker
	embedder docdex.Embedder
	store    docdex.VectorStore
	topK     int
	logger   *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithServerTopK sets the default result count for /search.
func WithServerTopK(k int) ServerOption {
	return func(s *Server) {
		if k > 0 {
			s.topK = k
		}
	}
}

// WithServerLogger sets the logger.
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, asker docdex.Asker, embedder docdex.Embedder, store docdex.VectorStore, opts ...ServerOption) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		asker:    asker,
		embedder: embedder,
		store:    store,
		topK:     docdex.DefaultTopK,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.router.Use(middleware.Recoverer)
	s.router.Post("/ask", s.handleAsk)
	s.router.Post("/search", s.handleSearch)
	s.router.Get("/health", s.handleHealth)
	s.router.Get("/stats", s.handleStats)

	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
	return s
}

// ServeHTTP makes the server usable directly as a handler in tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the context is cancelled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.server.ListenAndServe()
	}()

	s.logger.Info("api server listening", "addr", s.server.Addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	}
}

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Question == "" {
		s.writeError(w, http.StatusBadRequest, "question is required")
		return
	}

	answer, err := s.asker.Ask(r.Context(), req.Question)
	if err != nil {
		s.logger.Error("ask failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, answer)
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []docdex.ScoredChunk `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Query == "" {
		s.writeError(w, http.StatusBadRequest, "query is required")
		return
	}
	topK := req.TopK
	if topK <= 0 {
		topK = s.topK
	}

	vector, err := s.embedder.EmbedQuery(r.Context(), req.Query)
	if err != nil {
		s.logger.Error("query embedding failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	matches, err := s.store.Search(r.Context(), vector, topK)
	if err != nil {
		s.logger.Error("search failed", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, searchResponse{Results: matches})
}

type healthResponse struct {
	Status      string `json:"status"`
	Store       string `json:"store"`
	PointsCount int    `json:"points_count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeJSON(w, http.StatusOK, healthResponse{
			Status: "degraded",
			Store:  err.Error(),
		})
		return
	}
	s.writeJSON(w, http.StatusOK, healthResponse{
		Status:      "ok",
		Store:       "connected",
		PointsCount: count,
	})
}

type statsResponse struct {
	PointsCount int `json:"points_count"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.Count(r.Context())
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, statsResponse{PointsCount: count})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}
