package session

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/google/uuid"

	"github.com/lox/headsup-holdem/internal/bet"
	"github.com/lox/headsup-holdem/internal/handfsm"
	"github.com/lox/headsup-holdem/internal/protocol"
	"github.com/lox/headsup-holdem/internal/table"
	"github.com/lox/headsup-holdem/internal/timers"
)

// Config holds the session hub's timing and table policy, sourced
// from the process's command-line or config-file settings.
type Config struct {
	SmallBlind     int
	BigBlind       int
	StartingStack  int
	ActionTimeout  time.Duration
	GraceTimeout   time.Duration
	RemovalTimeout time.Duration
	PingInterval   time.Duration
	PongTimeout    time.Duration
}

func (c Config) pingInterval() time.Duration {
	if c.PingInterval <= 0 {
		return 30 * time.Second
	}
	return c.PingInterval
}

func (c Config) pongTimeout() time.Duration {
	if c.PongTimeout <= 0 {
		return 10 * time.Second
	}
	return c.PongTimeout
}

// Hub is the Game Session: the single point of serialization over one
// table, its timers, and its live connections.
type Hub struct {
	mu sync.Mutex

	cfg    Config
	table  *table.Table
	timers *timers.Registry
	clock  quartz.Clock
	logger *log.Logger

	conns map[string]*Connection // playerID -> live connection
}

// New builds a Hub around a fresh two-seat table.
func New(cfg Config, clock quartz.Clock, logger *log.Logger) *Hub {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Hub{
		cfg:    cfg,
		table:  table.New(cfg.SmallBlind, cfg.BigBlind),
		timers: timers.New(clock),
		clock:  clock,
		logger: logger,
		conns:  make(map[string]*Connection),
	}
}

// actionTimerKey namespaces per-turn action-clock timers away from
// the disconnect grace/removal timers, which share the bare player id.
func actionTimerKey(playerID string) string {
	return "action:" + playerID
}

// HandleConnection is invoked once per newly upgraded websocket. It
// wires the connection's message and disconnect callbacks and sends
// the initial welcome frame.
func (h *Hub) HandleConnection(conn *Connection) {
	conn.SetCallbacks(h.dispatch, h.handleDisconnect)
	conn.Start()
	h.sendWelcome(conn)
}

func (h *Hub) sendWelcome(conn *Connection) {
	playerID := uuid.NewString()
	conn.BindPlayer(playerID)

	h.mu.Lock()
	snap := h.tableSnapshotLocked()
	h.mu.Unlock()

	frame, err := protocol.Encode(protocol.TypeWelcome, protocol.Welcome{PlayerID: playerID, Table: snap})
	if err != nil {
		h.logger.Error("encode welcome", "error", err)
		return
	}
	_ = conn.Send(frame)
}

func (h *Hub) tableSnapshotLocked() protocol.TableSnapshot {
	seats := make([]*protocol.Seat, 2)
	for i, p := range h.table.Seats {
		if p == nil {
			continue
		}
		seats[i] = &protocol.Seat{PlayerID: p.ID, Name: p.Name, Stack: p.Stack}
	}

	pot := 0
	var board []string
	var currentHand *string
	if h.table.Hand != nil {
		hid := h.table.Hand.ID
		currentHand = &hid
		pot = h.table.Hand.Committed[0] + h.table.Hand.Committed[1]
		board = protocol.CardStrings(h.table.Hand.Board)
	}
	if board == nil {
		board = []string{}
	}

	return protocol.TableSnapshot{
		Seats:                seats,
		CurrentHand:          currentHand,
		Pot:                  pot,
		CommunityCards:       board,
		DealerButtonPosition: h.table.Dealer,
	}
}

func (h *Hub) dispatch(conn *Connection, frame []byte) {
	env, err := protocol.Decode(frame)
	if err != nil {
		h.sendError(conn, protocol.ErrCodeInvalidJSON, "malformed frame")
		return
	}

	switch env.Type {
	case protocol.TypeJoin:
		var payload protocol.Join
		if err := protocol.DecodePayload(env, &payload); err != nil {
			h.sendError(conn, protocol.ErrCodeInvalidJSON, "malformed join payload")
			return
		}
		h.handleJoin(conn, payload)
	case protocol.TypeAction:
		var payload protocol.Action
		if err := protocol.DecodePayload(env, &payload); err != nil {
			h.sendError(conn, protocol.ErrCodeInvalidJSON, "malformed action payload")
			return
		}
		h.handleAction(conn, payload)
	case protocol.TypePing:
		h.handlePing(conn)
	case protocol.TypeTopUp:
		h.handleTopUp(conn)
	default:
		h.sendError(conn, protocol.ErrCodeInvalidMessageType, "unknown message type: "+env.Type)
	}
}

func (h *Hub) sendError(conn *Connection, code, message string) {
	frame, err := protocol.Encode(protocol.TypeError, protocol.Error{Code: code, Message: message})
	if err != nil {
		h.logger.Error("encode error frame", "error", err)
		return
	}
	_ = conn.Send(frame)
}

func (h *Hub) handleJoin(conn *Connection, payload protocol.Join) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if payload.PlayerID != "" {
		if _, seated := h.seatOfLocked(payload.PlayerID); seated {
			if current, ok := h.conns[payload.PlayerID]; ok && current != conn {
				h.sendError(conn, protocol.ErrCodePlayerAlreadyConnected, "player already connected")
				return
			}
			h.reconnectLocked(conn, payload.PlayerID)
			return
		}
	}

	playerID := conn.PlayerID()
	seat, err := h.table.Seat(&table.Player{ID: playerID, Name: payload.Name, Stack: h.cfg.StartingStack})
	if err != nil {
		switch err {
		case table.ErrTableFull:
			h.sendError(conn, protocol.ErrCodeTableFull, err.Error())
		case table.ErrAlreadySeated:
			h.sendError(conn, protocol.ErrCodeSeatUnavailable, err.Error())
		default:
			h.sendError(conn, protocol.ErrCodeInvalidInput, err.Error())
		}
		return
	}

	h.conns[playerID] = conn
	h.sendJoinAck(conn, playerID, seat)

	if h.bothSeatedAndAbleLocked() && h.table.State == table.WaitingForPlayers {
		h.startHandLocked()
	}
}

// bothSeatedAndAbleLocked reports whether both seats are occupied and
// neither occupant is currently sitting out, i.e. a new hand can be dealt.
func (h *Hub) bothSeatedAndAbleLocked() bool {
	return h.table.Seats[0] != nil && h.table.Seats[1] != nil && !h.table.AnySittingOut()
}

func (h *Hub) seatOfLocked(playerID string) (int, bool) {
	for seat, p := range h.table.Seats {
		if p != nil && p.ID == playerID {
			return seat, true
		}
	}
	return 0, false
}

func (h *Hub) reconnectLocked(conn *Connection, playerID string) {
	h.timers.Cancel(playerID)
	h.timers.Cancel(actionTimerKey(playerID))
	conn.BindPlayer(playerID)
	h.conns[playerID] = conn
	if err := h.table.MarkReconnected(playerID); err != nil {
		h.logger.Error("mark reconnected", "error", err)
	}

	seat, _ := h.seatOfLocked(playerID)
	h.sendJoinAck(conn, playerID, seat)
	h.broadcastLocked(protocol.TypePlayerReconnected, protocol.PlayerReconnected{PlayerID: playerID})

	if h.table.Hand != nil && !h.table.Hand.IsComplete() && h.table.Hand.Actor == seat {
		h.sendActionRequestToActorLocked(h.table.Hand)
		return
	}

	// A hand may have been withheld while this player was sitting out;
	// now that they're back, deal it in.
	if h.table.State == table.WaitingForPlayers && h.bothSeatedAndAbleLocked() {
		h.startHandLocked()
	}
}

func (h *Hub) sendJoinAck(conn *Connection, playerID string, seat int) {
	frame, err := protocol.Encode(protocol.TypeJoinAck, protocol.JoinAck{PlayerID: playerID, Seat: seat})
	if err != nil {
		h.logger.Error("encode join_ack", "error", err)
		return
	}
	_ = conn.Send(frame)
}

func (h *Hub) startHandLocked() {
	hand, err := h.table.StartHand()
	if err != nil {
		h.logger.Error("start hand", "error", err)
		return
	}

	players := make([]protocol.HandStartedPlayer, 2)
	for seat := range players {
		id := h.table.Seats[seat].ID
		players[seat] = protocol.HandStartedPlayer{
			PlayerID:  id,
			Stack:     hand.Stacks[seat],
			HoleCards: protocol.CardStrings(hand.HoleCards[seat]),
		}
	}

	actorID := h.table.Seats[hand.Actor].ID
	for seat := range players {
		viewer := h.table.Seats[seat].ID
		msg := protocol.HandStarted{
			HandID:             hand.ID,
			Players:            protocol.RedactHoleCards(players, viewer),
			SmallBlind:         hand.SmallBlind,
			BigBlind:           hand.BigBlind,
			DealerPosition:     hand.Dealer,
			CurrentPlayerToAct: actorID,
			MinRaise:           hand.BetRound.MinRaise,
		}
		h.sendTo(seat, protocol.TypeHandStarted, msg)
	}

	h.sendActionRequestToActorLocked(hand)
}

func (h *Hub) sendTo(seat int, msgType string, payload any) {
	p := h.table.Seats[seat]
	if p == nil {
		return
	}
	conn, ok := h.conns[p.ID]
	if !ok {
		return
	}
	frame, err := protocol.Encode(msgType, payload)
	if err != nil {
		h.logger.Error("encode frame", "type", msgType, "error", err)
		return
	}
	_ = conn.Send(frame)
}

// sendActionRequestToActorLocked sends the current actor an
// action_request and starts their action clock. If the actor has no
// live connection (disconnected, possibly sitting out), there is
// nobody to ask and nobody to time out, so they are folded
// immediately rather than left to freeze play indefinitely.
func (h *Hub) sendActionRequestToActorLocked(hand *handfsm.Hand) {
	seat := hand.Actor
	playerID := h.table.Seats[seat].ID
	conn, ok := h.conns[playerID]
	if !ok {
		h.applyActionLocked(playerID, bet.Fold, 0)
		return
	}
	h.sendActionRequestLocked(conn, hand)
	h.startActionTimerLocked(playerID)
}

func (h *Hub) sendActionRequestLocked(conn *Connection, hand *handfsm.Hand) {
	seat := hand.Actor
	toCall := hand.BetRound.CurrentBet - hand.Contrib[seat]
	stack := hand.Stacks[seat]

	actions := make([]string, 0, 3)
	for _, a := range bet.LegalActions(toCall, stack) {
		actions = append(actions, a.String())
	}

	req := protocol.ActionRequest{
		HandID:          hand.ID,
		PossibleActions: actions,
		CallAmount:      toCall,
		MinRaise:        bet.MinRaiseAmount(toCall, hand.BetRound.MinRaise, stack),
		MaxRaise:        bet.MaxRaiseAmount(stack),
		TimeoutMs:       int(h.cfg.ActionTimeout / time.Millisecond),
	}
	frame, err := protocol.Encode(protocol.TypeActionRequest, req)
	if err != nil {
		h.logger.Error("encode action_request", "error", err)
		return
	}
	_ = conn.Send(frame)
}

func (h *Hub) startActionTimerLocked(playerID string) {
	h.timers.StartGrace(actionTimerKey(playerID), h.cfg.ActionTimeout, func() {
		h.onActionTimeout(playerID)
	})
}

func (h *Hub) onActionTimeout(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.table.Hand == nil || h.table.Hand.IsComplete() {
		return
	}
	seat, ok := h.seatOfLocked(playerID)
	if !ok || h.table.Hand.Actor != seat {
		return
	}
	h.applyActionLocked(playerID, bet.Fold, 0)
}

func (h *Hub) handleAction(conn *Connection, payload protocol.Action) {
	h.mu.Lock()
	defer h.mu.Unlock()

	playerID := conn.PlayerID()
	seat, ok := h.seatOfLocked(playerID)
	if !ok {
		h.sendError(conn, protocol.ErrCodeUnauthorized, "not seated at this table")
		return
	}

	var action bet.Action
	switch payload.Action {
	case "fold":
		action = bet.Fold
	case "call":
		action = bet.Call
	case "raise":
		action = bet.Raise
	default:
		h.sendError(conn, protocol.ErrCodeInvalidAction, "unknown action: "+payload.Action)
		return
	}

	if h.table.Hand == nil || h.table.Hand.Actor != seat {
		h.sendError(conn, protocol.ErrCodeInvalidAction, "not this player's turn")
		return
	}

	h.timers.Cancel(actionTimerKey(playerID))
	h.applyActionLocked(playerID, action, payload.Amount)
}

// applyActionLocked applies action on behalf of playerID, broadcasts
// the result, and either advances to the next actor or settles the
// hand. Callers must hold h.mu.
func (h *Hub) applyActionLocked(playerID string, action bet.Action, amount int) {
	if err := h.table.ProcessAction(playerID, action, amount); err != nil {
		if conn, ok := h.conns[playerID]; ok {
			code := protocol.ErrCodeInvalidAction
			if err == bet.ErrInvalidAmount {
				code = protocol.ErrCodeInvalidAmount
			}
			h.sendError(conn, code, err.Error())
		}
		return
	}

	hand := h.table.Hand
	seat, _ := h.seatOfLocked(playerID)
	nextPlayerToAct := ""
	if !hand.IsComplete() {
		nextPlayerToAct = h.table.Seats[hand.Actor].ID
	}

	h.broadcastLocked(protocol.TypeActionApplied, protocol.ActionApplied{
		HandID:          hand.ID,
		PlayerID:        playerID,
		Action:          action.String(),
		Amount:          amount,
		NewStack:        hand.Stacks[seat],
		Pot:             hand.Committed[0] + hand.Committed[1],
		NextPlayerToAct: nextPlayerToAct,
	})

	if hand.IsComplete() {
		h.settleHandLocked(hand)
		return
	}

	h.sendActionRequestToActorLocked(hand)
}

func (h *Hub) settleHandLocked(hand *handfsm.Hand) {
	winners := make([]protocol.HandCompletedWinner, len(hand.Winners))
	dist := make([]protocol.PotDistributionEntry, 0, len(hand.Winners))
	for i, w := range hand.Winners {
		id := h.table.Seats[w.Seat].ID
		winners[i] = protocol.HandCompletedWinner{PlayerID: id, AmountWon: w.Amount, HandRank: w.HandRank}
		dist = append(dist, protocol.PotDistributionEntry{PlayerID: id, PotIndex: 0, Amount: w.Amount})
	}

	stacks := map[string]int{
		h.table.Seats[0].ID: hand.Stacks[0],
		h.table.Seats[1].ID: hand.Stacks[1],
	}

	h.broadcastLocked(protocol.TypeHandCompleted, protocol.HandCompleted{
		HandID:          hand.ID,
		Winners:         winners,
		PotDistribution: dist,
		UpdatedStacks:   stacks,
	})
	h.logger.Info("hand complete",
		"hand_id", hand.ID,
		"pot", hand.Committed[0]+hand.Committed[1],
		"winners", winners,
		"board", protocol.CardStrings(hand.Board))

	if err := h.table.EndHand(); err != nil {
		h.logger.Error("end hand", "error", err)
		return
	}

	if h.bothSeatedAndAbleLocked() {
		h.startHandLocked()
	}
}

func (h *Hub) handlePing(conn *Connection) {
	frame, err := protocol.Encode(protocol.TypePong, struct{}{})
	if err != nil {
		return
	}
	_ = conn.Send(frame)
}

func (h *Hub) handleTopUp(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	playerID := conn.PlayerID()
	if err := h.table.RequestTopUp(playerID); err != nil {
		code := protocol.ErrCodeInvalidInput
		if err == table.ErrPlayerNotFound {
			code = protocol.ErrCodePlayerNotFound
		}
		h.sendError(conn, code, err.Error())
		return
	}

	seat, _ := h.seatOfLocked(playerID)
	newStack := h.table.Seats[seat].Stack
	frame, err := protocol.Encode(protocol.TypeTopUpAck, protocol.TopUpAck{PlayerID: playerID, NewStack: newStack})
	if err != nil {
		return
	}
	_ = conn.Send(frame)
}

// handleDisconnect is the Connection's onDisconnect callback: it
// drops the live connection and starts the grace timer that leads,
// eventually, to removal if the player never reconnects.
func (h *Hub) handleDisconnect(conn *Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()

	playerID := conn.PlayerID()
	if playerID == "" {
		return
	}
	if current, ok := h.conns[playerID]; !ok || current != conn {
		return // superseded by a reconnect already
	}
	delete(h.conns, playerID)
	if err := h.table.MarkDisconnected(playerID, h.clock.Now()); err != nil {
		h.logger.Error("mark disconnected", "error", err)
	}

	h.broadcastLocked(protocol.TypePlayerDisconnected, protocol.PlayerDisconnected{
		PlayerID:             playerID,
		RemainingGraceTimeMs: int(h.cfg.GraceTimeout / time.Millisecond),
	})

	h.timers.StartGrace(playerID, h.cfg.GraceTimeout, func() { h.onGraceExpired(playerID) })
}

// onGraceExpired marks a still-disconnected player sitting out and
// folds them out of any hand in progress, whether or not it is their
// turn, then starts the removal timer.
func (h *Hub) onGraceExpired(playerID string) {
	h.mu.Lock()
	if _, stillConnected := h.conns[playerID]; !stillConnected {
		if err := h.table.MarkSittingOut(playerID); err != nil {
			h.logger.Error("mark sitting out", "error", err)
		}
		if err := h.table.ForceFoldPlayer(playerID); err == nil {
			hand := h.table.Hand
			if hand != nil {
				if hand.IsComplete() {
					h.settleHandLocked(hand)
				} else {
					h.sendActionRequestToActorLocked(hand)
				}
			}
		}
	}
	h.timers.StartRemoval(playerID, h.cfg.RemovalTimeout, func() { h.onRemovalExpired(playerID) })
	h.mu.Unlock()
}

// onRemovalExpired drops the player from their seat if they never
// reconnected during the grace or removal windows.
func (h *Hub) onRemovalExpired(playerID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, reconnected := h.conns[playerID]; reconnected {
		return
	}
	seat, ok := h.seatOfLocked(playerID)
	if !ok {
		return
	}
	hadHandInProgress := h.table.Hand != nil && !h.table.Hand.IsComplete()
	if err := h.table.RemovePlayer(playerID); err != nil {
		h.logger.Error("remove player", "error", err)
		return
	}
	if hadHandInProgress && h.table.Hand != nil && h.table.Hand.IsComplete() {
		h.settleHandLocked(h.table.Hand)
	}
	h.broadcastLocked(protocol.TypePlayerRemoved, protocol.PlayerRemoved{PlayerID: playerID, Seat: seat})
}

// broadcastLocked sends msg to every currently connected player,
// swallowing individual send failures so one dead peer cannot block
// delivery to the other.
func (h *Hub) broadcastLocked(msgType string, payload any) {
	frame, err := protocol.Encode(msgType, payload)
	if err != nil {
		h.logger.Error("encode broadcast frame", "type", msgType, "error", err)
		return
	}
	for _, conn := range h.conns {
		_ = conn.Send(frame)
	}
}
