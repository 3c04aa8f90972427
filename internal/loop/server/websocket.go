package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/tomz197/asteroids-lan/internal/loop"
	"github.com/tomz197/asteroids-lan/internal/snapshot"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 16 * 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// FeedHandler streams every published snapshot of engine to a websocket
// client as a binary message. The feed is read-only; inbound messages
// are discarded.
func FeedHandler(engine *loop.Engine, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default().WithPrefix("feed")
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Debug("upgrade failed", "addr", r.RemoteAddr, "err", err)
			return
		}
		logger.Info("feed opened", "addr", r.RemoteAddr)

		closed := make(chan struct{})
		go readPump(conn, closed)
		writePump(conn, engine, closed, logger)
		logger.Info("feed closed", "addr", r.RemoteAddr)
	})
}

// readPump drains the connection so pongs and close frames are seen.
func readPump(conn *websocket.Conn, closed chan<- struct{}) {
	defer close(closed)
	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func writePump(conn *websocket.Conn, engine *loop.Engine, closed <-chan struct{}, logger *log.Logger) {
	updates, unsubscribe := engine.Subscribe()
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		unsubscribe()
		ticker.Stop()
		conn.Close()
	}()

	// First frame right away so clients do not wait for the next tick.
	if !sendSnapshot(conn, engine, logger) {
		return
	}

	for {
		select {
		case <-closed:
			return
		case <-engine.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "game stopped"))
			return
		case <-updates:
			if !sendSnapshot(conn, engine, logger) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func sendSnapshot(conn *websocket.Conn, engine *loop.Engine, logger *log.Logger) bool {
	b, err := snapshot.Encode(engine.View())
	if err != nil {
		logger.Error("snapshot not sent", "err", err)
		return true
	}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteMessage(websocket.BinaryMessage, b); err != nil {
		logger.Debug("write failed", "err", err)
		return false
	}
	return true
}
