package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"prospector.ai/internal/protocol"
)

func main() {
	var (
		url      = flag.String("url", "ws://localhost:8080/v1/ws", "ws url")
		name     = flag.String("name", "bot", "player name")
		mode     = flag.Int("mode", 0, "tool mode (0 short, 1 medium, 2 long)")
		x        = flag.Int("x", 0, "column x to dig")
		z        = flag.Int("z", 0, "column z to dig")
		top      = flag.Int("top", 80, "first y to break")
		interval = flag.Duration("interval", 500*time.Millisecond, "delay between breaks")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)
	conn, _, err := websocket.DefaultDialer.Dial(*url, nil)
	if err != nil {
		logger.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	hello := protocol.HelloMsg{
		Type:            protocol.TypeHello,
		ProtocolVersion: protocol.Version,
		PlayerName:      *name,
		Capabilities:    protocol.HelloCapabilities{MaxQueue: 1024},
	}
	if err := conn.WriteJSON(hello); err != nil {
		logger.Fatalf("send HELLO: %v", err)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	go func() {
		<-stop
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		_ = conn.Close()
	}()

	p := &planner{mode: *mode, x: *x, z: *z, y: *top}
	send := func(act *protocol.ActMsg) {
		if act == nil {
			return
		}
		act.Type = protocol.TypeAct
		act.ProtocolVersion = protocol.Version
		if err := conn.WriteJSON(act); err != nil {
			logger.Printf("send %s: %v", act.Action, err)
		}
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		base, err := protocol.DecodeBase(msg)
		if err != nil {
			continue
		}
		switch base.Type {
		case protocol.TypeWelcome:
			var w protocol.WelcomeMsg
			if err := json.Unmarshal(msg, &w); err != nil {
				continue
			}
			logger.Printf("WELCOME player_id=%s session=%s seed=%d", w.PlayerID, w.SessionID, w.WorldParams.Seed)

		case protocol.TypeInventory:
			var inv protocol.InventoryMsg
			if err := json.Unmarshal(msg, &inv); err != nil {
				continue
			}
			send(p.onInventory(inv))

		case protocol.TypeAck:
			var ack protocol.AckMsg
			if err := json.Unmarshal(msg, &ack); err != nil {
				continue
			}
			if !ack.Accepted {
				logger.Printf("ACK %s rejected: %s %s", ack.AckFor, ack.Code, ack.Message)
			}
			next := p.onAck(ack)
			if next != nil && next.Action == protocol.ActionBreak {
				time.Sleep(*interval)
			}
			send(next)

		case protocol.TypeNotify:
			var n protocol.NotifyMsg
			if err := json.Unmarshal(msg, &n); err != nil {
				continue
			}
			logger.Printf("NOTIFY [%s] %s", n.Channel, n.Text)
		}
	}
}
