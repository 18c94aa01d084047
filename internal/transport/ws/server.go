package ws

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"prospector.ai/internal/protocol"
	"prospector.ai/internal/sim/world"
)

const (
	defaultQueue = 256
	maxQueue     = 4096
)

// SessionHooks observes connection lifecycle; metrics.Metrics satisfies it.
type SessionHooks interface {
	SessionOpened()
	SessionClosed()
}

type Server struct {
	world *world.World
	log   *log.Logger
	hooks SessionHooks

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	return &Server{
		world: w,
		log:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

func (s *Server) SetHooks(h SessionHooks) { s.hooks = h }

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		sessionID, playerID, out := s.handshake(conn)
		if playerID == "" {
			return
		}
		if s.hooks != nil {
			s.hooks.SessionOpened()
			defer s.hooks.SessionClosed()
		}
		s.logf("session %s: player %s joined from %s", sessionID, playerID, r.RemoteAddr)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		// Writer goroutine.
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case b, ok := <-out:
					if !ok {
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						cancel()
						return
					}
				}
			}
		}()

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			act, code := decodeAct(msg)
			if code != "" {
				sendNonBlocking(out, protocol.AckMsg{
					Type:            protocol.TypeAck,
					ProtocolVersion: protocol.Version,
					AckFor:          act.ID,
					Code:            code,
					Message:         "malformed ACT",
				})
				continue
			}
			select {
			case s.world.Inbox() <- world.ActionEnvelope{PlayerID: playerID, Act: act}:
			case <-ctx.Done():
			}
		}

		s.world.Leave() <- playerID
		s.logf("session %s: player %s left", sessionID, playerID)
	}
}

// decodeAct returns a protocol error code for anything that is not a
// well-formed ACT of the current version.
func decodeAct(msg []byte) (protocol.ActMsg, string) {
	var act protocol.ActMsg
	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeAct {
		return act, protocol.ErrProtoBadRequest
	}
	if err := json.Unmarshal(msg, &act); err != nil {
		return act, protocol.ErrProtoBadRequest
	}
	if act.ProtocolVersion != protocol.Version || strings.TrimSpace(act.Action) == "" {
		return act, protocol.ErrProtoBadRequest
	}
	return act, ""
}

func (s *Server) handshake(conn *websocket.Conn) (sessionID, playerID string, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return "", "", nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		closeWith(conn, "expected HELLO")
		return "", "", nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		closeWith(conn, "bad HELLO")
		return "", "", nil
	}
	if hello.ProtocolVersion != protocol.Version {
		closeWith(conn, "bad protocol_version")
		return "", "", nil
	}
	name := strings.TrimSpace(hello.PlayerName)
	if name == "" {
		name = "prospector"
	}

	maxQ := hello.Capabilities.MaxQueue
	if maxQ <= 0 {
		maxQ = defaultQueue
	}
	if maxQ > maxQueue {
		maxQ = maxQueue
	}
	out = make(chan []byte, maxQ)

	respCh := make(chan world.JoinResponse, 1)
	s.world.Join() <- world.JoinRequest{Name: name, Out: out, Resp: respCh}
	resp := <-respCh

	sessionID = uuid.NewString()
	resp.Welcome.SessionID = sessionID
	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- resp.Welcome.PlayerID
		return "", "", nil
	}
	if err := writeJSON(conn, resp.Inventory); err != nil {
		s.world.Leave() <- resp.Welcome.PlayerID
		return "", "", nil
	}
	return sessionID, resp.Welcome.PlayerID, out
}

func (s *Server) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Printf(format, args...)
	}
}

func closeWith(conn *websocket.Conn, reason string) {
	_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, reason), time.Now().Add(time.Second))
}

func sendNonBlocking(out chan []byte, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case out <- b:
	default:
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
