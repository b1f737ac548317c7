// Package server hosts many concurrent game sessions, one per connected player.
package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/config"
	"github.com/tomz197/orbitclicker/internal/session"
)

// MaxRetained is how many ended sessions are kept so their summaries can
// still be fetched after the player disconnects.
const MaxRetained = 256

// ErrShuttingDown is returned by Open after Shutdown has begun.
var ErrShuttingDown = errors.New("server shutting down")

type entry struct {
	session *session.Session
	cancel  context.CancelFunc
	done    chan struct{}
	ended   bool // queued in Hub.ended
}

// Hub owns the running sessions. Each session steps on its own goroutine.
type Hub struct {
	game     config.GameConfig
	catalogs session.Catalogs
	logger   *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*entry
	ended    []string // FIFO of ended session ids still retained
	closing  bool
	wg       sync.WaitGroup
}

// NewHub creates a hub whose sessions share game and catalogs.
func NewHub(game config.GameConfig, catalogs session.Catalogs, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		game:     game,
		catalogs: catalogs,
		logger:   logger,
		sessions: make(map[string]*entry),
	}
}

// Open creates and starts a session for player.
func (h *Hub) Open(player string) (*session.Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closing {
		return nil, ErrShuttingDown
	}

	s, err := session.New(session.Options{
		Player:   player,
		Game:     h.game,
		Catalogs: h.catalogs,
		Logger:   h.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("opening session: %w", err)
	}
	s.Start()

	ctx, cancel := context.WithCancel(context.Background())
	e := &entry{session: s, cancel: cancel, done: make(chan struct{})}
	h.sessions[s.ID()] = e

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		defer close(e.done)
		_ = s.Run(ctx)
	}()

	h.logger.Info("session opened", zap.String("session", s.ID()), zap.String("player", player), zap.Int("sessions", len(h.sessions)))
	return s, nil
}

// Get returns a running or retained session.
func (h *Hub) Get(id string) (*session.Session, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	e, ok := h.sessions[id]
	if !ok {
		return nil, false
	}
	return e.session, true
}

// End stops a session but keeps it retrievable for its summary. The oldest
// ended sessions are dropped beyond MaxRetained. Ending a session twice
// does not move it in the retention queue.
func (h *Hub) End(id string) bool {
	h.mu.Lock()
	e, ok := h.sessions[id]
	if ok && !e.ended {
		e.ended = true
		h.ended = append(h.ended, id)
		for len(h.ended) > MaxRetained {
			delete(h.sessions, h.ended[0])
			h.ended = h.ended[1:]
		}
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	h.stop(e)
	return true
}

// Close stops a session and forgets it.
func (h *Hub) Close(id string) bool {
	h.mu.Lock()
	e, ok := h.sessions[id]
	delete(h.sessions, id)
	for i, eid := range h.ended {
		if eid == id {
			h.ended = append(h.ended[:i], h.ended[i+1:]...)
			break
		}
	}
	h.mu.Unlock()
	if !ok {
		return false
	}
	h.stop(e)
	h.logger.Info("session closed", zap.String("session", id))
	return true
}

func (h *Hub) stop(e *entry) {
	e.cancel()
	<-e.done
}

// Count returns the number of sessions still running.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, e := range h.sessions {
		if e.session.Phase() == session.PhaseRunning {
			n++
		}
	}
	return n
}

// Shutdown refuses new sessions, ends every running one and waits up to
// timeout for their loops to exit. It reports whether all exited in time.
func (h *Hub) Shutdown(timeout time.Duration) bool {
	h.mu.Lock()
	h.closing = true
	for _, e := range h.sessions {
		e.cancel()
	}
	h.mu.Unlock()

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		h.logger.Warn("shutdown timed out", zap.Duration("timeout", timeout))
		return false
	}
}
