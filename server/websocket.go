package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/tsawler/pdflayer/document"
)

func newUpgrader(allowed []string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowed),
	}
}

// originChecker accepts requests without an Origin header, same-origin
// requests and the listed origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		if strings.EqualFold(u.Host, r.Host) {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimSuffix(strings.TrimSpace(a), "/"), u.Scheme+"://"+u.Host) {
				return true
			}
		}
		return false
	}
}

// clientMessage is sent by the viewer. Type "resize" reports the container
// width and the pages currently visible; an empty list means every page.
type clientMessage struct {
	Type    string  `json:"type"`
	Width   float64 `json:"width"`
	Visible []int   `json:"visible,omitempty"`
}

// serverMessage is pushed to the viewer.
type serverMessage struct {
	Type     string            `json:"type"` // "document", "page" or "error"
	Document *documentResponse `json:"document,omitempty"`
	Page     *pageSummary      `json:"page,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// wsConn serializes writes to one connection.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(msg serverMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(msg)
}

// handleWebSocket streams page updates for one document. The current
// document state is sent on connect; resize messages are debounced and
// then the visible pages are rerendered and pushed one message per page.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	e, ok := s.lookup(w, r)
	if !ok {
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	c := &wsConn{conn: conn}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshot := describe(e.doc)
	if err := c.send(serverMessage{Type: "document", Document: &snapshot}); err != nil {
		return
	}

	var (
		visMu   sync.Mutex
		visible []int
	)
	trigger := document.NewResizeTrigger(s.resizeDelay, func(width float64) {
		visMu.Lock()
		pages := append([]int(nil), visible...)
		visMu.Unlock()
		s.rerender(ctx, c, e, width, pages)
	})
	defer trigger.Stop()

	for {
		var msg clientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Warn().Err(err).Msg("WebSocket closed unexpectedly")
			}
			return
		}

		switch msg.Type {
		case "resize":
			if msg.Width <= 0 {
				c.send(serverMessage{Type: "error", Error: "width must be positive"})
				continue
			}
			visMu.Lock()
			visible = msg.Visible
			visMu.Unlock()
			trigger.Observe(msg.Width)
		default:
			c.send(serverMessage{Type: "error", Error: "unknown message type " + msg.Type})
		}
	}
}

func (s *Server) rerender(ctx context.Context, c *wsConn, e *entry, width float64, visible []int) {
	layout, _ := e.view()
	e.setContainer(width)

	pages, err := e.doc.Rerender(ctx, layout, width, visible)
	if err != nil {
		s.logger.Warn().Err(err).Str("id", e.doc.ID.String()).Msg("Rerender failed")
		c.send(serverMessage{Type: "error", Error: err.Error()})
		return
	}
	s.logger.Debug().
		Str("id", e.doc.ID.String()).
		Int("pages", len(pages)).
		Str("width", strconv.FormatFloat(width, 'f', -1, 64)).
		Msg("Pages rerendered")

	for _, p := range pages {
		summary := summarize(p)
		if err := c.send(serverMessage{Type: "page", Page: &summary}); err != nil {
			return
		}
	}
}
