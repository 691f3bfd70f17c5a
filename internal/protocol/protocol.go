// Package protocol defines the JSON wire envelope and message
// catalogue exchanged between the game session hub and connections:
// a frame is always `{"type": ..., "payload": ...}`.
package protocol

import (
	"encoding/json"
	"fmt"
)

// Envelope is the outer shape of every frame.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Message types, client -> server.
const (
	TypeJoin   = "join"
	TypeAction = "action"
	TypePing   = "ping"
	TypeTopUp  = "top_up"
)

// Message types, server -> client.
const (
	TypeWelcome            = "welcome"
	TypeJoinAck            = "join_ack"
	TypeHandStarted        = "hand_started"
	TypeActionRequest      = "action_request"
	TypeActionApplied      = "action_applied"
	TypeHandCompleted      = "hand_completed"
	TypeTopUpAck           = "top_up_ack"
	TypePong               = "pong"
	TypePlayerDisconnected = "player_disconnected"
	TypePlayerReconnected  = "player_reconnected"
	TypePlayerRemoved      = "player_removed"
	TypeError              = "error"
)

// Error codes, values of an error frame's code field.
const (
	ErrCodeInvalidJSON           = "invalid_json"
	ErrCodeInvalidMessageType    = "invalid_message_type"
	ErrCodeInvalidInput          = "invalid_input"
	ErrCodeInvalidAction         = "invalid_action"
	ErrCodeInvalidAmount         = "invalid_amount"
	ErrCodeInvalidHand           = "invalid_hand"
	ErrCodeUnauthorized          = "unauthorized"
	ErrCodeTableFull             = "table_full"
	ErrCodeSeatUnavailable       = "seat_unavailable"
	ErrCodePlayerAlreadyConnected = "player_already_connected"
	ErrCodePlayerNotFound        = "player_not_found"
	ErrCodeInternalError         = "internal_error"
)

// Encode wraps a payload value into a framed JSON envelope.
func Encode(msgType string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("protocol: marshal %s payload: %w", msgType, err)
	}
	return json.Marshal(Envelope{Type: msgType, Payload: body})
}

// Decode parses a frame's envelope without decoding the payload.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	return env, nil
}

// DecodePayload decodes an already-parsed envelope's payload into v.
func DecodePayload(env Envelope, v any) error {
	if len(env.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Payload, v); err != nil {
		return fmt.Errorf("protocol: decode %s payload: %w", env.Type, err)
	}
	return nil
}

// Seat is a table-snapshot player summary used in welcome.
type Seat struct {
	PlayerID string `json:"player_id,omitempty"`
	Name     string `json:"name,omitempty"`
	Stack    int    `json:"stack,omitempty"`
}

// TableSnapshot is the welcome payload's embedded table state.
type TableSnapshot struct {
	Seats                []*Seat `json:"seats"`
	CurrentHand          *string `json:"current_hand"`
	Pot                  int     `json:"pot"`
	CommunityCards       []string `json:"community_cards"`
	DealerButtonPosition int     `json:"dealer_button_position"`
}

// Welcome is sent to a newly accepted connection.
type Welcome struct {
	PlayerID string        `json:"player_id"`
	Table    TableSnapshot `json:"table"`
}

// Join is the client's seat request, optionally a reconnect.
type Join struct {
	Name     string `json:"name"`
	PlayerID string `json:"player_id,omitempty"`
}

// JoinAck confirms a seat assignment.
type JoinAck struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

// HandStartedPlayer is one participant's public state at hand start.
type HandStartedPlayer struct {
	PlayerID  string   `json:"player_id"`
	Stack     int      `json:"stack"`
	HoleCards []string `json:"hole_cards"`
}

// HandStarted announces a new hand.
type HandStarted struct {
	HandID             string              `json:"hand_id"`
	Players            []HandStartedPlayer `json:"players"`
	SmallBlind         int                 `json:"small_blind"`
	BigBlind           int                 `json:"big_blind"`
	DealerPosition     int                 `json:"dealer_position"`
	CurrentPlayerToAct string              `json:"current_player_to_act"`
	MinRaise           int                 `json:"min_raise"`
}

// ActionRequest asks the current actor to decide.
type ActionRequest struct {
	HandID          string   `json:"hand_id"`
	PossibleActions []string `json:"possible_actions"`
	CallAmount      int      `json:"call_amount"`
	MinRaise        int      `json:"min_raise"`
	MaxRaise        int      `json:"max_raise"`
	TimeoutMs       int      `json:"timeout_ms"`
}

// Action is the client's response to an ActionRequest.
type Action struct {
	HandID string `json:"hand_id"`
	Action string `json:"action"`
	Amount int    `json:"amount"`
}

// ActionApplied is broadcast after an action is applied.
type ActionApplied struct {
	HandID          string `json:"hand_id"`
	PlayerID        string `json:"player_id"`
	Action          string `json:"action"`
	Amount          int    `json:"amount"`
	NewStack        int    `json:"new_stack"`
	Pot             int    `json:"pot"`
	NextPlayerToAct string `json:"next_player_to_act,omitempty"`
}

// HandCompletedWinner is one seat's showdown result.
type HandCompletedWinner struct {
	PlayerID  string `json:"player_id"`
	AmountWon int    `json:"amount_won"`
	HandRank  string `json:"hand_rank,omitempty"`
}

// PotDistributionEntry records chips awarded to one player. The
// session hub sends one entry per winner carrying that winner's total
// across all pots, with PotIndex 0; awards are not broken down by
// side pot.
type PotDistributionEntry struct {
	PlayerID string `json:"player_id"`
	PotIndex int    `json:"pot_index"`
	Amount   int    `json:"amount"`
}

// HandCompleted is broadcast when a hand reaches showdown or an
// uncontested fold.
type HandCompleted struct {
	HandID          string                 `json:"hand_id"`
	Winners         []HandCompletedWinner  `json:"winners"`
	PotDistribution []PotDistributionEntry `json:"pot_distribution"`
	UpdatedStacks   map[string]int         `json:"updated_stacks"`
}

// TopUpAck confirms a top-up request.
type TopUpAck struct {
	PlayerID string `json:"player_id"`
	NewStack int    `json:"new_stack"`
}

// PlayerDisconnected announces a dropped connection and its grace period.
type PlayerDisconnected struct {
	PlayerID            string `json:"player_id"`
	RemainingGraceTimeMs int   `json:"remaining_grace_time_ms"`
}

// PlayerReconnected announces a player rebinding to a new connection.
type PlayerReconnected struct {
	PlayerID string `json:"player_id"`
}

// PlayerRemoved announces a player's removal from the table.
type PlayerRemoved struct {
	PlayerID string `json:"player_id"`
	Seat     int    `json:"seat"`
}

// Error is sent in place of any frame that failed to validate or apply.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
