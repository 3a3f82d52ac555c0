package handler

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"smartlock-remote/internal/hub"
	"smartlock-remote/internal/session"
)

type WebSocketHandler struct {
	Hub     *hub.Hub
	Session *session.Session
	Logger  *zap.Logger
}

type clientMessage struct {
	Type string `json:"type"`
}

type serverMessage struct {
	Type string      `json:"type"`
	Body interface{} `json:"body,omitempty"`
}

// StateMessage encodes a snapshot the way /ws subscribers receive it.
func StateMessage(snap session.Snapshot) []byte {
	out, _ := json.Marshal(serverMessage{Type: "state", Body: snap})
	return out
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

type wsWriter struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (w *wsWriter) Write(message []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteMessage(websocket.TextMessage, message)
}

func (w *wsWriter) Close() error {
	return w.conn.Close()
}

func (h *WebSocketHandler) Serve(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	conn := hub.NewConnection(&wsWriter{conn: ws})
	h.Hub.Register(conn)
	defer func() {
		h.Hub.Unregister(conn)
		_ = ws.Close()
	}()
	h.logger().Debug("subscriber connected", zap.String("conn", conn.ID))

	if err := conn.Writer.Write(StateMessage(h.Session.Snapshot())); err != nil {
		return
	}

	ws.SetReadLimit(64 * 1024)
	const pongWait = 60 * time.Second
	const writeWait = 10 * time.Second
	pingPeriod := (pongWait * 9) / 10

	ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		ws.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	done := make(chan struct{})
	var closeOnce sync.Once
	closeDone := func() {
		closeOnce.Do(func() {
			close(done)
		})
	}
	defer closeDone()

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				deadline := time.Now().Add(writeWait)
				if err := ws.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					_ = ws.Close()
					return
				}
			}
		}
	}()

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			h.logger().Debug("subscriber disconnected", zap.String("conn", conn.ID))
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "ping":
			out, _ := json.Marshal(serverMessage{Type: "pong"})
			_ = conn.Writer.Write(out)
		case "snapshot":
			_ = conn.Writer.Write(StateMessage(h.Session.Snapshot()))
		case "refresh":
			// Failures are reported through the broadcast status message.
			_ = h.Session.RefreshStatus(c.Request.Context())
		}
	}
}

func (h *WebSocketHandler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}
