// Package handfsm implements the state machine for a single hand of
// heads-up No-Limit Hold'em: blinds, dealing, betting rounds,
// showdown, and pot settlement.
package handfsm

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/lox/headsup-holdem/internal/bet"
	"github.com/lox/headsup-holdem/internal/card"
	"github.com/lox/headsup-holdem/internal/eval"
	"github.com/lox/headsup-holdem/internal/pot"
)

// Street is the current betting round.
type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
	Showdown
)

func (s Street) String() string {
	switch s {
	case Preflop:
		return "PREFLOP"
	case Flop:
		return "FLOP"
	case Turn:
		return "TURN"
	case River:
		return "RIVER"
	case Showdown:
		return "SHOWDOWN"
	default:
		return "UNKNOWN"
	}
}

var (
	// ErrHandComplete is returned for an action submitted after the
	// hand has reached showdown.
	ErrHandComplete = errors.New("handfsm: hand already complete")
	// ErrNotActor is returned when the seat attempting to act is not
	// the current actor.
	ErrNotActor = errors.New("handfsm: not this seat's turn")
)

// Participant is the table-level information a Hand needs about one
// seated player at the moment a hand starts.
type Participant struct {
	ID    string
	Stack int
}

// HistoryEntry is one applied action, in the order it occurred.
type HistoryEntry struct {
	Seat      int
	Action    bet.Action
	Amount    int
	Timestamp time.Time
}

// Winner is one seat's share of the showdown, including the hand rank
// that earned it (blank if the hand ended by fold before a showdown
// hand comparison took place).
type Winner struct {
	Seat     int
	Amount   int
	HandRank string
}

// Hand is a single hand of heads-up hold'em from blinds to showdown.
type Hand struct {
	ID         string
	Dealer     int // seat posting the small blind and acting first preflop
	Players    [2]Participant
	Deck       *card.Deck
	Board      []card.Card
	HoleCards  [2][]card.Card
	Stacks     [2]int
	Committed  [2]int // cumulative chips committed this hand, per seat
	Folded     [2]bool
	AllIn      [2]bool
	Round      Street
	Actor      int
	BetRound   *bet.Round
	Contrib    [2]int // per-street round contribution
	SmallBlind int
	BigBlind   int
	History    []HistoryEntry
	Pots       []pot.SidePot
	Winners    []Winner
	StartedAt  time.Time
	CompletedAt time.Time
}

// Start shuffles a fresh deck, deals two hole cards to each
// participant one at a time in seat order, posts blinds (dealer posts
// small blind, the other seat posts big blind), and sets the dealer
// to act first preflop.
func Start(dealerSeat int, participants [2]Participant, smallBlind, bigBlind int) (*Hand, error) {
	h := &Hand{
		ID:         uuid.NewString(),
		Dealer:     dealerSeat,
		Players:    participants,
		Deck:       card.New(),
		SmallBlind: smallBlind,
		BigBlind:   bigBlind,
		StartedAt:  time.Now(),
	}
	h.Stacks[0] = participants[0].Stack
	h.Stacks[1] = participants[1].Stack

	for i := 0; i < 2; i++ {
		for seat := 0; seat < 2; seat++ {
			c, err := h.Deck.Deal()
			if err != nil {
				return nil, fmt.Errorf("handfsm: dealing hole cards: %w", err)
			}
			h.HoleCards[seat] = append(h.HoleCards[seat], c)
		}
	}

	bbSeat := h.otherSeat(dealerSeat)
	h.postBlind(dealerSeat, smallBlind)
	h.postBlind(bbSeat, bigBlind)

	h.BetRound = bet.NewRound(2, bigBlind)
	h.Round = Preflop
	h.Actor = dealerSeat

	if err := h.checkInvariants(); err != nil {
		return nil, err
	}
	return h, nil
}

func (h *Hand) otherSeat(seat int) int {
	return (seat + 1) % 2
}

func (h *Hand) postBlind(seat, amount int) {
	posted := amount
	if posted > h.Stacks[seat] {
		posted = h.Stacks[seat]
	}
	h.Stacks[seat] -= posted
	h.Committed[seat] += posted
	h.Contrib[seat] += posted
	if h.Stacks[seat] == 0 {
		h.AllIn[seat] = true
	}
}

// IsComplete reports whether the hand has reached showdown.
func (h *Hand) IsComplete() bool {
	return h.Round == Showdown
}

// LegalActions returns the current actor's legal actions.
func (h *Hand) LegalActions() []bet.Action {
	if h.IsComplete() {
		return nil
	}
	toCall := h.BetRound.CurrentBet - h.Contrib[h.Actor]
	return bet.LegalActions(toCall, h.Stacks[h.Actor])
}

// ApplyAction validates and applies an action from the current actor.
// On failure, the hand is left unmutated.
func (h *Hand) ApplyAction(seat int, action bet.Action, amount int) error {
	if h.IsComplete() {
		return ErrHandComplete
	}
	if seat != h.Actor {
		return ErrNotActor
	}

	toCall := h.BetRound.CurrentBet - h.Contrib[seat]
	stack := h.Stacks[seat]

	legal := false
	for _, a := range bet.LegalActions(toCall, stack) {
		if a == action {
			legal = true
			break
		}
	}
	if !legal {
		return bet.ErrInvalidAction
	}

	switch action {
	case bet.Fold:
		h.Folded[seat] = true
	case bet.Call:
		delta := toCall
		if delta > stack {
			delta = stack
		}
		h.Stacks[seat] -= delta
		h.Contrib[seat] += delta
		h.Committed[seat] += delta
		if h.Stacks[seat] == 0 {
			h.AllIn[seat] = true
		}
	case bet.Raise:
		if err := bet.ValidateRaise(amount, toCall, h.BetRound.MinRaise, stack); err != nil {
			return err
		}
		newCurrentBet, newMinRaise := bet.ApplyRaise(amount, toCall, h.BetRound.MinRaise, h.Contrib[seat])
		h.Stacks[seat] -= amount
		h.Contrib[seat] += amount
		h.Committed[seat] += amount
		h.BetRound.CurrentBet = newCurrentBet
		h.BetRound.MinRaise = newMinRaise
		h.BetRound.LastRaiser = seat
		if h.Stacks[seat] == 0 {
			h.AllIn[seat] = true
		}
		for i := range h.BetRound.Acted {
			h.BetRound.Acted[i] = false
		}
	}

	h.BetRound.MarkActed(seat)
	if h.Round == Preflop && seat == h.otherSeat(h.Dealer) {
		h.BetRound.MarkBigBlindActed()
	}

	h.History = append(h.History, HistoryEntry{Seat: seat, Action: action, Amount: amount, Timestamp: time.Now()})

	if err := h.checkInvariants(); err != nil {
		return err
	}

	if h.countNonFolded() == 1 {
		h.showdown()
		return nil
	}

	bbSeat := h.otherSeat(h.Dealer)
	if bet.IsRoundComplete(h.BetRound, h.Contrib[:], h.Folded[:], h.AllIn[:], h.Round == Preflop, bbSeat) {
		h.advanceRound()
		return nil
	}

	h.Actor = h.otherSeat(seat)
	return nil
}

// ForceFold folds the given seat regardless of whose turn it is. Used
// when a player is removed (e.g. a disconnect grace period expiring)
// while a hand is in flight.
func (h *Hand) ForceFold(seat int) error {
	if h.IsComplete() {
		return ErrHandComplete
	}
	if h.Folded[seat] {
		return nil
	}
	h.Folded[seat] = true
	h.BetRound.MarkActed(seat)
	if h.Round == Preflop && seat == h.otherSeat(h.Dealer) {
		h.BetRound.MarkBigBlindActed()
	}

	if h.countNonFolded() == 1 {
		h.showdown()
		return nil
	}

	if seat == h.Actor {
		bbSeat := h.otherSeat(h.Dealer)
		if bet.IsRoundComplete(h.BetRound, h.Contrib[:], h.Folded[:], h.AllIn[:], h.Round == Preflop, bbSeat) {
			h.advanceRound()
		} else {
			h.Actor = h.otherSeat(seat)
		}
	}
	return nil
}

func (h *Hand) countNonFolded() int {
	n := 0
	for _, f := range h.Folded {
		if !f {
			n++
		}
	}
	return n
}

// advanceRound deals the next street's community cards and resets the
// betting round, or moves to showdown after the river.
func (h *Hand) advanceRound() {
	switch h.Round {
	case Preflop:
		h.Round = Flop
		cards, _ := h.Deck.DealN(3)
		h.Board = append(h.Board, cards...)
	case Flop:
		h.Round = Turn
		cards, _ := h.Deck.DealN(1)
		h.Board = append(h.Board, cards...)
	case Turn:
		h.Round = River
		cards, _ := h.Deck.DealN(1)
		h.Board = append(h.Board, cards...)
	case River:
		h.showdown()
		return
	}

	h.Contrib = [2]int{}
	h.BetRound.ResetForStreet(2)
	h.Actor = h.otherSeat(h.Dealer)

	if h.Folded[h.Actor] || h.AllIn[h.Actor] {
		other := h.otherSeat(h.Actor)
		if h.Folded[other] || h.AllIn[other] {
			h.advanceRound()
			return
		}
		h.Actor = other
	}
}

// showdown settles the hand: builds side pots from cumulative
// commitments, evaluates every contesting hand, awards pots, and
// credits winners' stacks.
func (h *Hand) showdown() {
	h.Round = Showdown
	pots := pot.Build(h.Committed[:])

	var contenders []int
	for seat, folded := range h.Folded {
		if !folded {
			contenders = append(contenders, seat)
		}
	}

	hands := make(map[int]eval.Result)
	if len(contenders) > 1 {
		for _, seat := range contenders {
			combined := make([]card.Card, 0, 7)
			combined = append(combined, h.HoleCards[seat]...)
			combined = append(combined, h.Board...)
			hands[seat] = eval.Evaluate(combined)
		}
	}

	winnings, _ := pot.Award(pots, hands, h.Folded[:], h.Dealer, 2)

	var winners []Winner
	for seat, amount := range winnings {
		h.Stacks[seat] += amount
		rank := ""
		if r, ok := hands[seat]; ok {
			rank = r.Class.String()
		}
		winners = append(winners, Winner{Seat: seat, Amount: amount, HandRank: rank})
	}
	sort.Slice(winners, func(i, j int) bool { return winners[i].Seat < winners[j].Seat })

	h.Pots = pots
	h.Winners = winners
	h.CompletedAt = time.Now()
}

// checkInvariants enforces chip conservation, hole-card counts, and
// non-negative commitments at every transition.
func (h *Hand) checkInvariants() error {
	total := h.Stacks[0] + h.Stacks[1] + h.Committed[0] + h.Committed[1]
	starting := h.Players[0].Stack + h.Players[1].Stack
	if total != starting {
		return fmt.Errorf("handfsm: chip conservation violated: have %d, want %d", total, starting)
	}
	for seat, cards := range h.HoleCards {
		if len(cards) != 0 && len(cards) != 2 {
			return fmt.Errorf("handfsm: seat %d has %d hole cards, want 0 or 2", seat, len(cards))
		}
	}
	for seat, c := range h.Committed {
		if c < 0 {
			return fmt.Errorf("handfsm: seat %d has negative commitment %d", seat, c)
		}
	}
	return nil
}
