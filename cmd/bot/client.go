package main

import (
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/lox/headsup-holdem/internal/protocol"
)

// client is the companion bot's connection to the table: it reads
// frames, tracks just enough state to render status updates, and
// replies to every action_request with a uniformly random legal
// action.
type client struct {
	conn   *websocket.Conn
	name   string
	logger *log.Logger

	mu       sync.Mutex
	playerID string
	stack    int
	pot      int

	status chan<- string // optional, for the TUI; nil when running headless
}

func newClient(conn *websocket.Conn, name string, logger *log.Logger, status chan<- string) *client {
	return &client{conn: conn, name: name, logger: logger, status: status}
}

func (c *client) emit(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	c.logger.Info(msg)
	if c.status != nil {
		select {
		case c.status <- msg:
		default:
		}
	}
}

// run drives the read loop until the connection closes.
func (c *client) run() error {
	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return err
		}
		env, err := protocol.Decode(raw)
		if err != nil {
			c.logger.Warn("malformed frame", "error", err)
			continue
		}
		c.handle(env)
	}
}

func (c *client) handle(env protocol.Envelope) {
	switch env.Type {
	case protocol.TypeWelcome:
		var w protocol.Welcome
		_ = protocol.DecodePayload(env, &w)
		c.mu.Lock()
		c.playerID = w.PlayerID
		c.mu.Unlock()
		c.emit("connected as %s, joining table", w.PlayerID)
		c.send(protocol.TypeJoin, protocol.Join{Name: c.name})

	case protocol.TypeJoinAck:
		var ack protocol.JoinAck
		_ = protocol.DecodePayload(env, &ack)
		c.emit("seated at seat %d", ack.Seat)

	case protocol.TypeHandStarted:
		var hs protocol.HandStarted
		_ = protocol.DecodePayload(env, &hs)
		c.emit("hand %s started, dealer seat %d", hs.HandID, hs.DealerPosition)

	case protocol.TypeActionRequest:
		var req protocol.ActionRequest
		_ = protocol.DecodePayload(env, &req)
		c.act(req)

	case protocol.TypeActionApplied:
		var applied protocol.ActionApplied
		_ = protocol.DecodePayload(env, &applied)
		c.mu.Lock()
		c.pot = applied.Pot
		if applied.PlayerID == c.playerID {
			c.stack = applied.NewStack
		}
		c.mu.Unlock()
		c.emit("%s %s %d (pot %d)", applied.PlayerID, applied.Action, applied.Amount, applied.Pot)

	case protocol.TypeHandCompleted:
		var done protocol.HandCompleted
		_ = protocol.DecodePayload(env, &done)
		for _, w := range done.Winners {
			c.emit("%s wins %d with %s", w.PlayerID, w.AmountWon, w.HandRank)
		}

	case protocol.TypePlayerDisconnected:
		var pd protocol.PlayerDisconnected
		_ = protocol.DecodePayload(env, &pd)
		c.emit("%s disconnected, grace %dms", pd.PlayerID, pd.RemainingGraceTimeMs)

	case protocol.TypePlayerReconnected:
		var pr protocol.PlayerReconnected
		_ = protocol.DecodePayload(env, &pr)
		c.emit("%s reconnected", pr.PlayerID)

	case protocol.TypePlayerRemoved:
		var pr protocol.PlayerRemoved
		_ = protocol.DecodePayload(env, &pr)
		c.emit("%s removed from seat %d", pr.PlayerID, pr.Seat)

	case protocol.TypeError:
		var e protocol.Error
		_ = protocol.DecodePayload(env, &e)
		c.emit("error [%s]: %s", e.Code, e.Message)
	}
}

// act picks uniformly at random among the offered actions. A chosen
// raise is a uniformly random amount between the request's min and
// max raise, inclusive.
func (c *client) act(req protocol.ActionRequest) {
	if len(req.PossibleActions) == 0 {
		return
	}
	choice := req.PossibleActions[rand.IntN(len(req.PossibleActions))]

	amount := 0
	switch choice {
	case "call":
		amount = req.CallAmount
	case "raise":
		amount = raiseAmount(req)
	}

	c.send(protocol.TypeAction, protocol.Action{HandID: req.HandID, Action: choice, Amount: amount})
}

// raiseAmount picks a uniformly random raise size within the request's
// bounds, inclusive.
func raiseAmount(req protocol.ActionRequest) int {
	if req.MaxRaise > req.MinRaise {
		return req.MinRaise + rand.IntN(req.MaxRaise-req.MinRaise+1)
	}
	return req.MinRaise
}

func (c *client) send(msgType string, payload any) {
	frame, err := protocol.Encode(msgType, payload)
	if err != nil {
		c.logger.Error("encode frame", "type", msgType, "error", err)
		return
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		c.logger.Error("write frame", "type", msgType, "error", err)
	}
}
