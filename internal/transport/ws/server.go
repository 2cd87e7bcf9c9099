package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"arrowcraft.ai/internal/protocol"
	"arrowcraft.ai/internal/sim/ecs"
	"arrowcraft.ai/internal/sim/world"
)

// World is the part of the world loop a client session talks to.
type World interface {
	Join() chan<- world.JoinRequest
	Inbox() chan<- world.IntentEnvelope
	Leave() chan<- ecs.Entity
}

type Server struct {
	world World
	log   *slog.Logger

	// OutQueue is the per-client frame buffer; the world drops the oldest
	// frame when it is full.
	OutQueue int

	upgrader websocket.Upgrader
}

func NewServer(w World, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		world:    w,
		log:      logger,
		OutQueue: 64,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  16 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		entity, out := s.handshake(r.Context(), conn)
		if entity == ecs.Nil {
			return
		}
		log := s.log.With("entity", entity, "remote", r.RemoteAddr)
		log.Info("client connected")

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
			intent, code, reason := decodeIntent(msg)
			if code != "" {
				log.Debug("intent rejected", "code", code, "reason", reason)
				trySend(out, errorFrame(code, reason))
				continue
			}
			select {
			case s.world.Inbox() <- world.IntentEnvelope{Entity: entity, Intent: intent}:
			case <-ctx.Done():
			}
		}

		// Cleanup.
		select {
		case s.world.Leave() <- entity:
		case <-time.After(5 * time.Second):
			log.Warn("leave not delivered, world busy")
		}
		log.Info("client disconnected")
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (ecs.Entity, chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return ecs.Nil, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return ecs.Nil, nil
	}

	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return ecs.Nil, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = writeJSON(conn, protocol.ErrorMsg{
			Type:            protocol.TypeError,
			ProtocolVersion: protocol.Version,
			Code:            protocol.ErrProtoVersion,
			Message:         "unsupported protocol_version " + hello.ProtocolVersion,
		})
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return ecs.Nil, nil
	}

	q := s.OutQueue
	if q <= 0 {
		q = 64
	}
	out := make(chan []byte, q)
	respCh := make(chan world.JoinResponse, 1)

	select {
	case s.world.Join() <- world.JoinRequest{Name: hello.Name, Out: out, Resp: respCh}:
	case <-ctx.Done():
		return ecs.Nil, nil
	case <-time.After(5 * time.Second):
		_ = writeJSON(conn, errorFrameMsg(protocol.ErrWorldBusy, "join queue full"))
		return ecs.Nil, nil
	}

	var resp world.JoinResponse
	select {
	case resp = <-respCh:
	case <-ctx.Done():
		return ecs.Nil, nil
	}

	// Send welcome immediately; the writer goroutine takes over after this.
	if err := writeJSON(conn, resp.Welcome); err != nil {
		return ecs.Nil, nil
	}
	return ecs.Entity(resp.Welcome.EntityID), out
}

// decodeIntent returns an error code and reason when msg is not a usable INTENT.
func decodeIntent(msg []byte) (protocol.IntentMsg, string, string) {
	var in protocol.IntentMsg
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return in, protocol.ErrProtoBadRequest, "invalid json"
	}
	if base.Type != protocol.TypeIntent {
		return in, protocol.ErrProtoBadRequest, "unexpected message type " + base.Type
	}
	if err := json.Unmarshal(msg, &in); err != nil {
		return in, protocol.ErrProtoBadRequest, "invalid intent"
	}
	if in.ProtocolVersion != protocol.Version {
		return in, protocol.ErrProtoVersion, "unsupported protocol_version " + in.ProtocolVersion
	}
	if !protocol.IsIntentKind(in.Kind) {
		return in, protocol.ErrBadRequest, "unknown intent kind " + in.Kind
	}
	return in, "", ""
}

func errorFrameMsg(code, message string) protocol.ErrorMsg {
	return protocol.ErrorMsg{Type: protocol.TypeError, ProtocolVersion: protocol.Version, Code: code, Message: message}
}

func errorFrame(code, message string) []byte {
	b, _ := json.Marshal(errorFrameMsg(code, message))
	return b
}

// trySend queues a frame without blocking; it is dropped if the client is
// already backed up.
func trySend(out chan []byte, b []byte) {
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
