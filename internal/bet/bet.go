// Package bet implements the pure betting-legality rules for heads-up
// No-Limit Hold'em: which actions are legal at a decision point, how a
// raise updates the round's current bet and min-raise, and whether a
// betting round is complete.
package bet

import "errors"

// Action is one of the three player-facing actions. call also spells
// a zero-delta check; raise amounts are the total chips the acting
// player commits from their stack this action (matching the call
// plus whatever they raise on top).
type Action int

const (
	Fold Action = iota
	Call
	Raise
)

func (a Action) String() string {
	switch a {
	case Fold:
		return "fold"
	case Call:
		return "call"
	case Raise:
		return "raise"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidAction is returned for an action not currently legal
	// (e.g. raising with no chips left beyond the amount to call).
	ErrInvalidAction = errors.New("bet: invalid action")
	// ErrInvalidAmount is returned when a raise's amount falls outside
	// the legal range for the acting player's stack and the round's
	// current min-raise.
	ErrInvalidAmount = errors.New("bet: invalid amount")
)

// Round holds the mutable state of a single betting round (one street).
type Round struct {
	CurrentBet int
	MinRaise   int
	LastRaiser int // seat index of the last player to raise, -1 if none
	BigBlind   int
	Acted      []bool
	bbActed    bool // preflop big-blind-option tracking
}

// NewRound starts a fresh preflop round: current bet and min-raise
// both equal the big blind.
func NewRound(numPlayers, bigBlind int) *Round {
	return &Round{
		CurrentBet: bigBlind,
		MinRaise:   bigBlind,
		LastRaiser: -1,
		BigBlind:   bigBlind,
		Acted:      make([]bool, numPlayers),
	}
}

// ResetForStreet resets the round for the next street: current bet
// back to 0, min-raise back to the big blind, no last raiser, no
// player yet acted.
func (r *Round) ResetForStreet(numPlayers int) {
	r.CurrentBet = 0
	r.MinRaise = r.BigBlind
	r.LastRaiser = -1
	r.Acted = make([]bool, numPlayers)
}

// MarkActed records that the given seat has acted this round.
func (r *Round) MarkActed(seat int) {
	if seat >= 0 && seat < len(r.Acted) {
		r.Acted[seat] = true
	}
}

// LegalActions returns the actions available to a player who has
// toCall chips to match and stack chips remaining.
func LegalActions(toCall, stack int) []Action {
	actions := []Action{Fold, Call}
	if stack > toCall {
		actions = append(actions, Raise)
	}
	return actions
}

// MinRaiseAmount returns the smallest legal total-chips-this-action
// value for a raise: enough to call plus the round's min-raise, or
// the player's entire stack if that falls short (an under-raise
// all-in is still legal, it simply does not reopen the betting round
// with a fresh min-raise).
func MinRaiseAmount(toCall, minRaise, stack int) int {
	need := toCall + minRaise
	if need > stack {
		return stack
	}
	return need
}

// MaxRaiseAmount returns the largest legal total-chips-this-action
// value for a raise: the player's whole remaining stack.
func MaxRaiseAmount(stack int) int {
	return stack
}

// ValidateRaise checks whether amount is a legal raise given toCall,
// the round's current min-raise, and the acting player's stack.
func ValidateRaise(amount, toCall, minRaise, stack int) error {
	if amount <= toCall {
		return ErrInvalidAmount
	}
	if amount > stack {
		return ErrInvalidAmount
	}
	if amount < stack && amount < toCall+minRaise {
		return ErrInvalidAmount
	}
	return nil
}

// ApplyRaise returns the round's new current bet and min-raise after
// a legal raise of amount (total chips committed this action) by a
// player whose prior round contribution was priorContribution.
//
// An under-raise all-in (amount < toCall+minRaise, only legal because
// it exhausts the player's stack) matches the new current bet but does
// not reopen the round with a larger min-raise.
func ApplyRaise(amount, toCall, minRaise, priorContribution int) (newCurrentBet, newMinRaise int) {
	newCurrentBet = priorContribution + amount
	raiseSize := newCurrentBet - (priorContribution + toCall)
	if raiseSize >= minRaise {
		newMinRaise = raiseSize
	} else {
		newMinRaise = minRaise
	}
	return newCurrentBet, newMinRaise
}

// IsRoundComplete reports whether every non-folded, non-all-in player
// has acted and every non-folded player's round contribution matches
// the current bet (or they are all-in for less). isPreflop and bbSeat
// implement the heads-up big-blind option: if nobody has raised, the
// big blind still gets to act even if contributions already match.
// A round with at most one non-folded player is always complete.
func IsRoundComplete(r *Round, contributions []int, folded, allIn []bool, isPreflop bool, bbSeat int) bool {
	activeCount := 0
	nonFolded := 0
	for i := range contributions {
		if !folded[i] {
			nonFolded++
		}
		if !folded[i] && !allIn[i] {
			activeCount++
		}
	}

	if nonFolded <= 1 || activeCount == 0 {
		return true
	}

	for i := range contributions {
		if !folded[i] && !allIn[i] && contributions[i] != r.CurrentBet {
			return false
		}
	}

	for i := range contributions {
		if !folded[i] && !allIn[i] && !r.Acted[i] {
			return false
		}
	}

	if isPreflop && r.LastRaiser == -1 && bbSeat >= 0 && bbSeat < len(folded) {
		if !folded[bbSeat] && !allIn[bbSeat] && !r.bbActed {
			return false
		}
	}

	return true
}

// MarkBigBlindActed records that the big blind has acted at least
// once this preflop round, closing their option once everyone else
// has also matched the current bet.
func (r *Round) MarkBigBlindActed() {
	r.bbActed = true
}
