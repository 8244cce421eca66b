package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
)

const (
	wsWriteWait  = 5 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = wsPongWait * 9 / 10
)

// wsConn serialises writes; gorilla allows one writer at a time.
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) send(m WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(m)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
}

func (c *wsConn) close(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	data := websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, data, time.Now().Add(wsWriteWait))
	c.conn.Close()
}

// handleSessionStream upgrades to a websocket that pushes the session view
// after every change. Timer games are stepped by the server at the
// configured tick until the game is over or the client leaves.
func (s *Server) handleSessionStream(w http.ResponseWriter, r *http.Request) {
	sess, err := s.launcher.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.errorHandler.HandleError(w, r, err)
		return
	}

	raw, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("ws_upgrade_failed session_id=%s err=%v", sess.ID(), err)
		return
	}
	conn := &wsConn{conn: raw}
	raw.SetReadLimit(maxBodyBytes)
	_ = raw.SetReadDeadline(time.Now().Add(wsPongWait))
	raw.SetPongHandler(func(string) error {
		return raw.SetReadDeadline(time.Now().Add(wsPongWait))
	})
	requestID := middleware.GetReqID(r.Context())
	s.logger.Printf("ws_connected session_id=%s game=%s request_id=%s", sess.ID(), sess.Spec().ID, requestID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	view := sess.View()
	if err := conn.send(WSMessage{Type: "snapshot", Session: &view}); err != nil {
		conn.close("write failed")
		return
	}

	var wg sync.WaitGroup
	if sess.Spec().Kind == games.KindTimer {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sess.Run(ctx, s.tick, func(v launcher.View) {
				if err := conn.send(WSMessage{Type: "frame", Session: &v}); err != nil {
					cancel()
				}
			})
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		t := time.NewTicker(wsPingPeriod)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				// Unblock a pending read.
				_ = raw.SetReadDeadline(time.Now())
				return
			case <-t.C:
				if err := conn.ping(); err != nil {
					cancel()
					return
				}
			}
		}
	}()

	reason := s.readLoop(ctx, conn, sess, requestID)
	cancel()
	wg.Wait()
	conn.close(reason)
	s.logger.Printf("ws_closed session_id=%s reason=%s", sess.ID(), reason)
}

// readLoop handles client messages until the connection drops or the
// session ends. It returns the close reason.
func (s *Server) readLoop(ctx context.Context, conn *wsConn, sess *launcher.Session, requestID string) string {
	raw := conn.conn
	for {
		var msg WSMessage
		if err := raw.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				s.logger.Printf("ws_read_failed session_id=%s err=%v", sess.ID(), err)
			}
			return "client gone"
		}
		if ctx.Err() != nil {
			return "stream stopped"
		}

		switch msg.Type {
		case "action":
			if msg.Action == nil {
				s.sendError(conn, NewError(ErrTypeValidation, "action is required").WithRequestID(requestID).Build())
				continue
			}
			view, err := sess.Apply(*msg.Action)
			if err != nil {
				errType, _ := classify(err)
				s.sendError(conn, NewError(errType, err.Error()).WithRequestID(requestID).Build())
			}
			if err := conn.send(WSMessage{Type: "snapshot", Session: &view}); err != nil {
				return "write failed"
			}
		case "finish", "abandon":
			end := s.launcher.Finish
			if msg.Type == "abandon" {
				end = s.launcher.Abandon
			}
			res, err := end(sess.ID())
			if err != nil {
				errType, _ := classify(err)
				s.sendError(conn, NewError(errType, err.Error()).WithRequestID(requestID).Build())
				continue
			}
			s.audit.LogSessionEvent(requestID, msg.Type, sess.ID(), res.Game, map[string]interface{}{"score": res.Score})
			_ = conn.send(WSMessage{Type: "ended", Result: &res})
			return "session ended"
		default:
			s.sendError(conn, NewError(ErrTypeValidation, "unknown message type").
				WithRequestID(requestID).
				WithContext("type", msg.Type).
				Build())
		}
	}
}

func (s *Server) sendError(conn *wsConn, e EngineError) {
	if err := conn.send(WSMessage{Type: "error", Error: &e}); err != nil {
		s.logger.Printf("ws_error_send_failed err=%v", err)
	}
}
