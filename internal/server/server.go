// Package server exposes the refinement engine over HTTP. Quality
// shortfalls are ordinary 200 responses carrying the best draft; only
// validation problems and provider outages map to error codes.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/seoforge/seoforge/internal/catalog"
	"github.com/seoforge/seoforge/internal/history"
	"github.com/seoforge/seoforge/internal/session"
)

// historyTimeout bounds the fire-and-forget archive write.
const historyTimeout = 5 * time.Second

// Handler wires the engine, the in-flight session store, and the
// optional history archive into HTTP endpoints.
type Handler struct {
	runner   *session.Runner
	sessions *session.Store
	archive  *history.Store
	logger   *slog.Logger

	mu    sync.Mutex
	tools map[string]string
}

// NewHandler builds a Handler. archive may be nil to disable history.
func NewHandler(runner *session.Runner, sessions *session.Store, archive *history.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		runner:   runner,
		sessions: sessions,
		archive:  archive,
		logger:   logger,
		tools:    make(map[string]string),
	}
}

// Router assembles the API routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/health"))

	r.Post("/api/generate", h.generate)
	r.Post("/api/sessions/{id}/continue", h.continueSession)
	r.Get("/api/sessions/{id}", h.getSession)
	return r
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// generateRequest is the inbound payload: the generation request plus
// the tool name used to key history entries.
type generateRequest struct {
	session.Request
	Tool string `json:"tool"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sess, res, err := h.runner.Run(r.Context(), req.Request)
	if err != nil {
		h.respondRunError(w, err)
		return
	}
	h.settle(sess, res, req.Tool)
	JSON(w, http.StatusOK, res)
}

func (h *Handler) continueSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := h.sessions.Get(id)
	if err != nil {
		Error(w, http.StatusNotFound, err.Error())
		return
	}

	h.mu.Lock()
	tool := h.tools[id]
	h.mu.Unlock()

	res, err := h.runner.Resume(r.Context(), sess)
	if err != nil {
		h.respondRunError(w, err)
		return
	}
	h.settle(sess, res, tool)
	JSON(w, http.StatusOK, res)
}

func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		Error(w, http.StatusNotFound, err.Error())
		return
	}
	JSON(w, http.StatusOK, sess)
}

func (h *Handler) respondRunError(w http.ResponseWriter, err error) {
	var verr *catalog.ValidationError
	switch {
	case errors.As(err, &verr):
		Error(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, session.ErrProviderUnavailable):
		Error(w, http.StatusBadGateway, err.Error())
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful to write.
	default:
		Error(w, http.StatusInternalServerError, err.Error())
	}
}

// settle parks sessions awaiting a retry decision and archives terminal
// results without blocking the response.
func (h *Handler) settle(sess *session.Session, res *session.Result, tool string) {
	if res.Status == session.StatusNeedsRetry {
		h.sessions.Put(sess)
		h.mu.Lock()
		h.tools[sess.ID] = tool
		h.mu.Unlock()
		return
	}
	h.sessions.Delete(sess.ID)
	h.mu.Lock()
	delete(h.tools, sess.ID)
	h.mu.Unlock()

	if h.archive == nil {
		return
	}
	rec := history.Record{
		Tool:        tool,
		ContentType: sess.Request.ContentType,
		Keyword:     sess.Request.Keyword,
		Status:      string(res.Status),
		Score:       res.Overall,
		Content:     res.Content,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
		defer cancel()
		if err := h.archive.Save(ctx, rec); err != nil {
			h.logger.Warn("history write failed", "session", sess.ID, "error", err)
		}
	}()
}
