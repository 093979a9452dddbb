package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pleimann/marionette/internal/action"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allow all origins; the API token guards access
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClient executes one action per text message and replies with one
// ExecuteResponse per message, in order.
type wsClient struct {
	server *Server
	conn   *websocket.Conn
	send   chan []byte
	ip     string
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to upgrade WebSocket")
		return
	}

	c := &wsClient{
		server: s,
		conn:   conn,
		send:   make(chan []byte, 16),
		ip:     r.RemoteAddr,
	}
	s.log.Info().Str("remote", c.ip).Msg("WebSocket client connected")

	go c.writePump()
	go c.readPump()
}

// readPump reads action documents until the connection closes.
func (c *wsClient) readPump() {
	defer func() {
		close(c.send)
		c.server.log.Info().Str("remote", c.ip).Msg("WebSocket client disconnected")
	}()

	c.conn.SetReadLimit(maxBodyBytes)
	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.server.log.Warn().Err(err).Str("remote", c.ip).Msg("WebSocket read error")
			}
			return
		}

		reply, err := json.Marshal(c.handleMessage(message))
		if err != nil {
			c.server.log.Error().Err(err).Msg("Failed to marshal WebSocket reply")
			continue
		}
		c.send <- reply
	}
}

func (c *wsClient) handleMessage(data []byte) ExecuteResponse {
	a, err := action.Unmarshal(data)
	if err != nil {
		return ExecuteResponse{Status: "error", Error: err.Error()}
	}
	// a long action holds the socket; the next message waits for it
	c.conn.SetReadDeadline(time.Time{})
	defer c.conn.SetReadDeadline(time.Now().Add(wsPongWait))

	_, resp := c.server.execute(a)
	return resp
}

// writePump writes replies and keeps the connection alive with pings.
func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
