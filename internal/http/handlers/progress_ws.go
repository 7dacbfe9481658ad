package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProgressEvent is one per-file upload progress update pushed to the form
// page while a submission is in flight.
type ProgressEvent struct {
	Type    string `json:"type"`
	Index   int    `json:"index"`
	Percent int    `json:"percent"`
}

// ProgressHub fans upload progress out to the connected form pages.
type ProgressHub struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]bool
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{conns: make(map[*websocket.Conn]bool)}
}

func (h *ProgressHub) add(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = true
}

func (h *ProgressHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
	conn.Close()
}

// BroadcastProgress pushes one progress update to every connected page,
// dropping connections that fail to accept the write.
func (h *ProgressHub) BroadcastProgress(index, percent int) {
	event := ProgressEvent{Type: "upload_progress", Index: index, Percent: percent}

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.conns {
		if err := conn.WriteJSON(event); err != nil {
			log.Debug().Err(err).Msg("dropping stale progress connection")
			delete(h.conns, conn)
			conn.Close()
		}
	}
}

var progressUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The console is same-origin and locally run.
		return true
	},
}

// Progress upgrades the connection and streams upload progress events until
// the page goes away.
func (h *Handler) Progress(c echo.Context) error {
	conn, err := progressUpgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h.hub.add(conn)
	defer h.hub.remove(conn)

	// Reads are discarded; the socket exists only for server pushes.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}
