package web

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tomz197/orbitclicker/internal/session"
)

// Client to server.
type clientMessage struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

// Server to client. Exactly one payload field is set, matching Type.
type serverMessage struct {
	Type     string            `json:"type"`
	Session  string            `json:"session,omitempty"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Event    *session.Event    `json:"event,omitempty"`
	Result   *actionResult     `json:"result,omitempty"`
}

type actionResult struct {
	Action string `json:"action"`
	ID     string `json:"id,omitempty"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
}

// ServeWS opens a session for the ?player= address and bridges it to the
// socket until either side closes.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	player := r.URL.Query().Get("player")
	if _, err := session.ParseAddress(player); err != nil {
		httpError(w, err.Error(), http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.String("player", player), zap.Error(err))
		return
	}
	defer conn.Close()

	s, err := h.hub.Open(player)
	if err != nil {
		msg := websocket.FormatCloseMessage(websocket.CloseTryAgainLater, err.Error())
		conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		return
	}
	log := h.logger.With(zap.String("session", s.ID()), zap.String("player", player))
	log.Info("websocket connected")

	outbox := make(chan serverMessage, outboxSize)
	done := make(chan struct{})
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(conn, s, outbox, done, log)
	}()

	outbox <- serverMessage{Type: "session", Session: s.ID()}
	h.readLoop(conn, s, outbox, log)

	close(done)
	<-writerDone
	h.hub.End(s.ID())
	log.Info("websocket disconnected")
}

func (h *Handler) readLoop(conn *websocket.Conn, s *session.Session, outbox chan<- serverMessage, log *zap.Logger) {
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg clientMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			log.Debug("discarding malformed message", zap.Error(err))
			continue
		}
		res := dispatch(s, msg)
		if msg.Type == "fire" && res.OK {
			// Fire is the hot path; only rejections are reported.
			continue
		}
		select {
		case outbox <- serverMessage{Type: "result", Result: &res}:
		default:
			log.Debug("outbox full, dropping result", zap.String("action", msg.Type))
		}
	}
}

func dispatch(s *session.Session, msg clientMessage) actionResult {
	res := actionResult{Action: msg.Type, ID: msg.ID}
	var err error
	switch msg.Type {
	case "fire":
		if !s.Fire() {
			err = session.ErrNotRunning
		}
	case "purchase":
		if err = s.CheckPurchase(msg.ID); err == nil && !s.Purchase(msg.ID) {
			err = session.ErrNotRunning
		}
	case "choose":
		if err = s.CheckChoice(msg.ID); err == nil && !s.Choose(msg.ID) {
			err = session.ErrNotRunning
		}
	default:
		err = errUnknownAction
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.OK = true
	return res
}

func (h *Handler) writeLoop(conn *websocket.Conn, s *session.Session, outbox <-chan serverMessage, done <-chan struct{}, log *zap.Logger) {
	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()
	events := s.Events()

	write := func(msg serverMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug("websocket write failed", zap.Error(err))
			// Unblocks the read loop.
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-done:
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		case msg := <-outbox:
			if !write(msg) {
				return
			}
		case ev, ok := <-events:
			if !ok {
				// The session ended; send its last frame and hang up.
				write(serverMessage{Type: "snapshot", Snapshot: s.Snapshot()})
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"),
					time.Now().Add(writeWait))
				conn.Close()
				return
			}
			if !write(serverMessage{Type: "event", Event: &ev}) {
				return
			}
		case <-ticker.C:
			if !write(serverMessage{Type: "snapshot", Snapshot: s.Snapshot()}) {
				return
			}
		}
	}
}
