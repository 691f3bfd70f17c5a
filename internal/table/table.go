// Package table implements the two-seat Table Manager: seating,
// starting and ending hands, routing player actions into the hand
// state machine, and between-hand chip top-ups.
package table

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lox/headsup-holdem/internal/bet"
	"github.com/lox/headsup-holdem/internal/handfsm"
)

// State is the table's lifecycle state.
type State int

const (
	WaitingForPlayers State = iota
	HandInProgress
	HandComplete
)

func (s State) String() string {
	switch s {
	case WaitingForPlayers:
		return "WAITING_FOR_PLAYERS"
	case HandInProgress:
		return "HAND_IN_PROGRESS"
	case HandComplete:
		return "HAND_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

var (
	ErrTableFull          = errors.New("table: both seats occupied")
	ErrAlreadySeated      = errors.New("table: player already seated")
	ErrHandInProgress     = errors.New("table: a hand is already in progress")
	ErrNotEnoughPlayers   = errors.New("table: both seats must be occupied to start a hand")
	ErrNoHandInProgress   = errors.New("table: no hand in progress")
	ErrPlayerNotFound     = errors.New("table: player not seated at this table")
	ErrNotYourTurn        = errors.New("table: not this player's turn")
	ErrTopUpNotEligible   = errors.New("table: stack is above the top-up threshold")
	ErrHandNotComplete    = errors.New("table: hand has not reached showdown")
	ErrPotNotFullyPaidOut = errors.New("table: pot was not fully distributed")
)

// ConnectionState is a seated player's last-known connection status.
type ConnectionState int

const (
	Connected ConnectionState = iota
	Disconnected
	Reconnecting
)

func (s ConnectionState) String() string {
	switch s {
	case Connected:
		return "CONNECTED"
	case Disconnected:
		return "DISCONNECTED"
	case Reconnecting:
		return "RECONNECTING"
	default:
		return "UNKNOWN"
	}
}

// Player is a seated player's table-visible state.
type Player struct {
	ID    string
	Name  string
	Stack int
	Seat  int

	ConnectionState ConnectionState
	DisconnectedAt  time.Time
	SittingOut      bool
}

// Table is a single two-seat heads-up table.
type Table struct {
	mu sync.Mutex

	Seats  [2]*Player
	Dealer int
	State  State
	Hand   *handfsm.Hand

	SmallBlind int
	BigBlind   int

	TopUpThreshold int
	TopUpTarget    int
}

// New builds an empty table with the given blinds. Top-up threshold
// and target default to the standard 5x/100x big blind policy.
func New(smallBlind, bigBlind int) *Table {
	return &Table{
		Dealer:         0,
		State:          WaitingForPlayers,
		SmallBlind:     smallBlind,
		BigBlind:       bigBlind,
		TopUpThreshold: 5 * bigBlind,
		TopUpTarget:    100 * bigBlind,
	}
}

// Seat assigns a player to the first empty seat. Seating into an
// in-flight hand is rejected; seating while HAND_COMPLETE (between
// hands, pending EndHand) or WAITING_FOR_PLAYERS is allowed.
func (t *Table) Seat(p *Player) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State == HandInProgress {
		return 0, ErrHandInProgress
	}
	for _, s := range t.Seats {
		if s != nil && s.ID == p.ID {
			return 0, ErrAlreadySeated
		}
	}
	for seat, s := range t.Seats {
		if s == nil {
			p.Seat = seat
			t.Seats[seat] = p
			return seat, nil
		}
	}
	return 0, ErrTableFull
}

func (t *Table) seatOf(playerID string) (int, bool) {
	for seat, s := range t.Seats {
		if s != nil && s.ID == playerID {
			return seat, true
		}
	}
	return 0, false
}

// StartHand creates a new Hand with both seated players, provided
// neither seat is empty and no hand is currently running.
func (t *Table) StartHand() (*handfsm.Hand, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State == HandInProgress {
		return nil, ErrHandInProgress
	}
	if t.Seats[0] == nil || t.Seats[1] == nil {
		return nil, ErrNotEnoughPlayers
	}

	participants := [2]handfsm.Participant{
		{ID: t.Seats[0].ID, Stack: t.Seats[0].Stack},
		{ID: t.Seats[1].ID, Stack: t.Seats[1].Stack},
	}
	h, err := handfsm.Start(t.Dealer, participants, t.SmallBlind, t.BigBlind)
	if err != nil {
		return nil, err
	}
	t.Hand = h
	t.State = HandInProgress
	return h, nil
}

// ProcessAction resolves playerID to a seat, rejects the action if it
// is not their turn or they are not seated at this table, and
// otherwise delegates to the Hand.
func (t *Table) ProcessAction(playerID string, action bet.Action, amount int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Hand == nil {
		return ErrNoHandInProgress
	}
	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	if seat != t.Hand.Actor {
		return ErrNotYourTurn
	}
	if err := t.Hand.ApplyAction(seat, action, amount); err != nil {
		return err
	}
	if t.Hand.IsComplete() {
		t.settleLocked()
	}
	return nil
}

// settleLocked copies the completed hand's final stacks back onto the
// seated players and marks the table HAND_COMPLETE. Callers must hold t.mu.
func (t *Table) settleLocked() {
	t.Seats[0].Stack = t.Hand.Stacks[0]
	t.Seats[1].Stack = t.Hand.Stacks[1]
	t.State = HandComplete
}

// EndHand asserts the pot was fully distributed, rotates the dealer
// button, clears the finished hand, and returns the table to
// WAITING_FOR_PLAYERS.
func (t *Table) EndHand() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State != HandComplete || t.Hand == nil {
		return ErrHandNotComplete
	}
	awarded := 0
	for _, w := range t.Hand.Winners {
		awarded += w.Amount
	}
	committed := t.Hand.Committed[0] + t.Hand.Committed[1]
	if awarded != committed {
		return fmt.Errorf("%w: awarded %d, committed %d", ErrPotNotFullyPaidOut, awarded, committed)
	}

	t.Dealer = (t.Dealer + 1) % 2
	t.Hand = nil
	t.State = WaitingForPlayers
	return nil
}

// RequestTopUp applies the top-up policy for a player's explicit
// request: only between hands, and only if their stack is at or
// below the threshold, in which case it is set (not added) to the
// target stack.
func (t *Table) RequestTopUp(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.State == HandInProgress {
		return ErrHandInProgress
	}
	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	p := t.Seats[seat]
	if p.Stack > t.TopUpThreshold {
		return ErrTopUpNotEligible
	}
	p.Stack = t.TopUpTarget
	return nil
}

// MarkDisconnected records a dropped connection for playerID without
// vacating their seat.
func (t *Table) MarkDisconnected(playerID string, at time.Time) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	t.Seats[seat].ConnectionState = Disconnected
	t.Seats[seat].DisconnectedAt = at
	return nil
}

// MarkSittingOut flags a still-disconnected player sitting out, used
// once their grace period has expired without a reconnect. A sitting
// out player is not dealt into a new hand until they reconnect.
func (t *Table) MarkSittingOut(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	t.Seats[seat].SittingOut = true
	return nil
}

// MarkReconnected clears a player's disconnected/sitting-out state on
// a successful rebind to a new connection.
func (t *Table) MarkReconnected(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	t.Seats[seat].ConnectionState = Connected
	t.Seats[seat].SittingOut = false
	t.Seats[seat].DisconnectedAt = time.Time{}
	return nil
}

// AnySittingOut reports whether either seated player is currently
// marked sitting out.
func (t *Table) AnySittingOut() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, p := range t.Seats {
		if p != nil && p.SittingOut {
			return true
		}
	}
	return false
}

// ForceFoldPlayer folds playerID out of the hand currently in
// progress without removing their seat, whether or not it is their
// turn; used when a disconnected player's grace period expires.
func (t *Table) ForceFoldPlayer(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.Hand == nil || t.Hand.IsComplete() {
		return ErrNoHandInProgress
	}
	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}
	if err := t.Hand.ForceFold(seat); err != nil {
		return err
	}
	if t.Hand.IsComplete() {
		t.settleLocked()
	}
	return nil
}

// RemovePlayer removes a seated player. If a hand is in flight and
// the player is a participant, their remaining opponent wins the hand
// uncontested.
func (t *Table) RemovePlayer(playerID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	seat, ok := t.seatOf(playerID)
	if !ok {
		return ErrPlayerNotFound
	}

	settledNow := false
	if t.State == HandInProgress && t.Hand != nil && !t.Hand.IsComplete() {
		if err := t.Hand.ForceFold(seat); err != nil {
			return err
		}
		if t.Hand.IsComplete() {
			t.settleLocked()
			settledNow = true
		}
	}

	t.Seats[seat] = nil
	if !settledNow && t.State != HandInProgress {
		t.State = WaitingForPlayers
	}
	return nil
}
