package v1

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vietanh2810/medal-board-api/internal/api/handler/v1/response"
	"github.com/vietanh2810/medal-board-api/internal/domain"
	"github.com/vietanh2810/medal-board-api/internal/eventbus"
)

const (
	liveSendBuffer = 16
	liveWriteWait  = 10 * time.Second
	livePongWait   = 60 * time.Second
	livePingPeriod = livePongWait * 9 / 10
)

type StandingsReader interface {
	Standings(ctx context.Context) ([]domain.Standing, error)
}

type liveClient struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// LiveHandler pushes standings to websocket subscribers: once on connect and
// again after every change signal. A client whose buffer is full is dropped.
type LiveHandler struct {
	svc      StandingsReader
	upgrader websocket.Upgrader

	clients    map[string]*liveClient
	register   chan *liveClient
	unregister chan *liveClient
	broadcast  chan []byte
	done       chan struct{}
}

func NewLiveHandler(svc StandingsReader, allowedOrigins []string) *LiveHandler {
	h := &LiveHandler{
		svc:        svc,
		clients:    make(map[string]*liveClient),
		register:   make(chan *liveClient),
		unregister: make(chan *liveClient),
		broadcast:  make(chan []byte),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || len(allowedOrigins) == 0 || slices.Contains(allowedOrigins, "*") || slices.Contains(allowedOrigins, origin)
		},
	}
	return h
}

// Run owns the client set until ctx is done, then closes every connection.
func (h *LiveHandler) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			return
		case c := <-h.register:
			h.clients[c.id] = c
		case c := <-h.unregister:
			if _, ok := h.clients[c.id]; ok {
				delete(h.clients, c.id)
				close(c.send)
			}
		case msg := <-h.broadcast:
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					zap.L().Warn("live scoreboard client too slow, dropping", zap.String("client_id", id))
					close(c.send)
					delete(h.clients, id)
				}
			}
		}
	}
}

func (h *LiveHandler) message(ctx context.Context, reason string) ([]byte, error) {
	standings, err := h.svc.Standings(ctx)
	if err != nil {
		return nil, fmt.Errorf("h.svc.Standings -> %w", err)
	}

	msg, err := json.Marshal(response.LiveMessage{
		Type:      "standings",
		Reason:    reason,
		Standings: standings,
		At:        time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal -> %w", err)
	}
	return msg, nil
}

// OnChange runs after the scoreboard cache has been invalidated.
func (h *LiveHandler) OnChange(ctx context.Context, change eventbus.Change) error {
	msg, err := h.message(ctx, change.Action)
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- msg:
	case <-h.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// HandleLive godoc
// @Summary      Live scoreboard over websocket
// @Description  Sends the standings on connect and after every ledger, roster or settings change.
// @Tags         scoreboard
// @Success      101  {string}  string  "Switching Protocols"
// @Failure      503  {object}  response.Err
// @Router       /scoreboard/live [get]
func (h *LiveHandler) HandleLive(ctx *gin.Context) {
	first, err := h.message(ctx.Request.Context(), "connected")
	if err != nil {
		renderServiceErr(ctx, "v1.HandleLive -> h.message", err)
		return
	}

	conn, err := h.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		zap.L().Debug("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &liveClient{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, liveSendBuffer),
	}
	c.send <- first

	select {
	case h.register <- c:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *liveClient) writePump() {
	ticker := time.NewTicker(livePingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(liveWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump only drains control frames; subscribers never send data.
func (c *liveClient) readPump(h *LiveHandler) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(livePongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				zap.L().Debug("live scoreboard client closed", zap.String("client_id", c.id), zap.Error(err))
			}
			return
		}
	}
}
