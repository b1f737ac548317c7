// Package web exposes game sessions over HTTP: a websocket render surface
// that streams snapshots and accepts input, plus a summary endpoint.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/server"
	"github.com/tomz197/orbitclicker/internal/session"
)

//go:embed static
var staticFiles embed.FS

const (
	writeWait  = 5 * time.Second
	outboxSize = 16
)

// Handler serves the HTTP surface for a hub.
type Handler struct {
	hub      *server.Hub
	logger   *zap.Logger
	upgrader websocket.Upgrader
	interval time.Duration
}

// NewHandler builds a handler pushing snapshots at cfg.SnapshotRate.
func NewHandler(hub *server.Hub, cfg config.WebConfig, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	rate := cfg.SnapshotRate
	if rate <= 0 {
		rate = config.Default().Web.SnapshotRate
	}
	return &Handler{
		hub:    hub,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		interval: time.Second / time.Duration(rate),
	}
}

// Routes returns the mux with every endpoint registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	static, _ := fs.Sub(staticFiles, "static")
	mux.Handle("GET /", http.FileServerFS(static))
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /ws", h.ServeWS)
	mux.HandleFunc("GET /api/sessions/{id}/summary", h.ServeSummary)
	return mux
}

type summaryResponse struct {
	Summary session.Summary `json:"summary"`
	Hash    string          `json:"hash"`
	Valid   bool            `json:"valid"`
	Error   string          `json:"error,omitempty"`
}

// ServeSummary writes the summary of a running or retained session.
func (h *Handler) ServeSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.hub.Get(r.PathValue("id"))
	if !ok {
		httpError(w, "unknown session", http.StatusNotFound)
		return
	}
	sum := s.Summary()
	hash, err := sum.Hash()
	if err != nil {
		h.logger.Error("hashing summary", zap.String("session", s.ID()), zap.Error(err))
		httpError(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	resp := summaryResponse{Summary: sum, Hash: hash, Valid: true}
	if err := sum.Validate(); err != nil {
		resp.Valid = false
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		httpError(w, "failed to encode", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data)
}

func httpError(w http.ResponseWriter, msg string, status int) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errUnknownAction rejects client messages with an unrecognised type.
var errUnknownAction = errors.New("unknown action")
