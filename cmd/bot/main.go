package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"arrowcraft.ai/internal/protocol"
)

func main() {
	var (
		url     = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name    = flag.String("name", "archer", "player name")
		drawMS  = flag.Int("draw_ms", 1000, "how long to hold the bow before releasing")
		yawStep = flag.Float64("yaw_step", 15, "degrees to turn between shots")
		pitch   = flag.Float64("pitch", -5, "aim pitch in degrees (negative looks up)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("component", "bot", "name", *name)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, *url, nil)
	if err != nil {
		logger.Error("dial", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	welcome, err := hello(conn, *name)
	if err != nil {
		logger.Error("handshake", "err", err)
		os.Exit(1)
	}
	logger.Info("WELCOME", "entity", welcome.EntityID, "tick", welcome.Tick, "tick_rate_hz", welcome.TickRateHz)

	a := &archer{yawStep: *yawStep, pitch: *pitch}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return readLoop(conn, welcome.EntityID, logger) })
	g.Go(func() error {
		defer conn.Close()
		draw := time.Duration(*drawMS) * time.Millisecond
		for {
			for _, in := range a.next() {
				if err := conn.WriteJSON(in); err != nil {
					return err
				}
				if in.Kind == protocol.IntentStartUseItem {
					select {
					case <-gctx.Done():
						return nil
					case <-time.After(draw):
					}
				}
			}
			select {
			case <-gctx.Done():
				return nil
			case <-time.After(250 * time.Millisecond):
			}
		}
	})
	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.Warn("bot stopped", "err", err)
	}
}

func hello(conn *websocket.Conn, name string) (protocol.WelcomeMsg, error) {
	var w protocol.WelcomeMsg
	if err := conn.WriteJSON(protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		Name:            name,
	}); err != nil {
		return w, err
	}
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return w, err
	}
	base, err := protocol.DecodeBase(msg)
	if err != nil {
		return w, err
	}
	if base.Type == protocol.TypeError {
		var e protocol.ErrorMsg
		_ = json.Unmarshal(msg, &e)
		return w, &rejectedError{code: e.Code, msg: e.Message}
	}
	err = json.Unmarshal(msg, &w)
	return w, err
}

type rejectedError struct{ code, msg string }

func (e *rejectedError) Error() string { return e.code + ": " + e.msg }

func readLoop(conn *websocket.Conn, self uint64, logger *slog.Logger) error {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeEvents:
			var ev protocol.EventsMsg
			if err := json.Unmarshal(msg, &ev); err != nil {
				continue
			}
			logEvents(logger, self, ev)
		case protocol.TypeError:
			var e protocol.ErrorMsg
			if err := json.Unmarshal(msg, &e); err == nil {
				logger.Warn("server error", "code", e.Code, "message", e.Message)
			}
		}
	}
}

func logEvents(logger *slog.Logger, self uint64, ev protocol.EventsMsg) {
	for _, e := range ev.Events {
		switch e.Kind {
		case protocol.EventAttackEntity:
			switch {
			case e.Origin == self:
				logger.Info("hit", "tick", ev.Tick, "target", e.Target, "damage", e.Damage)
			case e.Target == self:
				logger.Info("struck", "tick", ev.Tick, "by", e.Origin, "damage", e.Damage)
			}
		case protocol.EventHealth:
			if e.Entity == self && e.HP != nil {
				logger.Info("health", "tick", ev.Tick, "hp", *e.HP, "max_hp", e.MaxHP)
			}
		default:
			logger.Debug("event", "tick", ev.Tick, "kind", e.Kind, "entity", e.Entity)
		}
	}
}

// archer turns a little and fires one arrow per cycle.
type archer struct {
	yaw     float64
	yawStep float64
	pitch   float64
}

func (a *archer) next() []protocol.IntentMsg {
	a.yaw += a.yawStep
	for a.yaw >= 360 {
		a.yaw -= 360
	}
	yaw, pitch := a.yaw, a.pitch
	return []protocol.IntentMsg{
		{Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: protocol.IntentMove, Yaw: &yaw, Pitch: &pitch},
		{Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: protocol.IntentStartUseItem, Item: "BOW"},
		{Type: protocol.TypeIntent, ProtocolVersion: protocol.Version, Kind: protocol.IntentReleaseUseItem, Item: "BOW"},
	}
}
