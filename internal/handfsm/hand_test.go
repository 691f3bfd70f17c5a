package handfsm

import (
	"testing"

	"github.com/lox/headsup-holdem/internal/bet"
)

func newTestHand(t *testing.T) *Hand {
	t.Helper()
	participants := [2]Participant{
		{ID: "p1", Stack: 400},
		{ID: "p2", Stack: 400},
	}
	h, err := Start(0, participants, 2, 4)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	return h
}

func TestStartPostsBlindsHeadsUp(t *testing.T) {
	h := newTestHand(t)
	if h.Stacks[0] != 398 {
		t.Fatalf("expected dealer (small blind) stack 398, got %d", h.Stacks[0])
	}
	if h.Stacks[1] != 396 {
		t.Fatalf("expected big blind stack 396, got %d", h.Stacks[1])
	}
	if h.BetRound.CurrentBet != 4 {
		t.Fatalf("expected current bet 4, got %d", h.BetRound.CurrentBet)
	}
	if h.BetRound.MinRaise != 4 {
		t.Fatalf("expected min-raise 4, got %d", h.BetRound.MinRaise)
	}
	if h.Round != Preflop {
		t.Fatalf("expected PREFLOP, got %v", h.Round)
	}
	if h.Actor != 0 {
		t.Fatalf("expected dealer (seat 0) to act first preflop, got seat %d", h.Actor)
	}
	for seat, cards := range h.HoleCards {
		if len(cards) != 2 {
			t.Fatalf("seat %d: expected 2 hole cards, got %d", seat, len(cards))
		}
	}
}

func TestFoldEndsHandImmediatelyWithPotToSurvivor(t *testing.T) {
	h := newTestHand(t)
	if err := h.ApplyAction(0, bet.Fold, 0); err != nil {
		t.Fatalf("ApplyAction(fold): %v", err)
	}
	if !h.IsComplete() {
		t.Fatalf("expected hand complete after fold with two participants")
	}
	if len(h.Winners) != 1 || h.Winners[0].Seat != 1 {
		t.Fatalf("expected seat 1 to win uncontested, got %+v", h.Winners)
	}
	if h.Winners[0].Amount != 6 {
		t.Fatalf("expected pot of 6 (2 sb + 4 bb), got %d", h.Winners[0].Amount)
	}
	if h.Winners[0].HandRank != "" {
		t.Fatalf("expected no hand rank on an uncontested fold win, got %q", h.Winners[0].HandRank)
	}
}

func TestPreflopCheckAroundAdvancesToFlop(t *testing.T) {
	h := newTestHand(t)
	if err := h.ApplyAction(0, bet.Call, 0); err != nil {
		t.Fatalf("dealer calls the big blind: %v", err)
	}
	if h.Actor != 1 {
		t.Fatalf("expected big blind to act next, got seat %d", h.Actor)
	}
	if err := h.ApplyAction(1, bet.Call, 0); err != nil {
		t.Fatalf("big blind checks its option: %v", err)
	}
	if h.Round != Flop {
		t.Fatalf("expected round to advance to FLOP, got %v", h.Round)
	}
	if len(h.Board) != 3 {
		t.Fatalf("expected 3 community cards on the flop, got %d", len(h.Board))
	}
	if h.Actor != 1 {
		t.Fatalf("expected non-dealer to act first postflop, got seat %d", h.Actor)
	}
}

func TestMinRaiseBoundary(t *testing.T) {
	h := newTestHand(t)
	// Dealer (small blind) tries to commit 5 this action (toCall=2, min-raise=4 -> minimum legal raise commits 6).
	if err := h.ApplyAction(0, bet.Raise, 2+4-1); err == nil {
		t.Fatalf("expected a raise one below the minimum to be rejected")
	}
	if err := h.ApplyAction(0, bet.Raise, 2+4); err != nil {
		t.Fatalf("expected a raise of exactly the minimum to be accepted, got %v", err)
	}
	// Dealer's round contribution was 2 (the small blind); committing 6
	// more this action (2 to call + 4 to raise) brings the round's
	// current bet to 8.
	if h.BetRound.CurrentBet != 8 {
		t.Fatalf("expected current bet 8 after the min-raise, got %d", h.BetRound.CurrentBet)
	}
}

func TestChipConservationThroughoutHand(t *testing.T) {
	h := newTestHand(t)
	total := func() int {
		return h.Stacks[0] + h.Stacks[1] + h.Committed[0] + h.Committed[1]
	}
	start := total()
	if err := h.ApplyAction(0, bet.Call, 0); err != nil {
		t.Fatalf("call: %v", err)
	}
	if total() != start {
		t.Fatalf("chip total changed after call: got %d want %d", total(), start)
	}
	if err := h.ApplyAction(1, bet.Call, 0); err != nil {
		t.Fatalf("check: %v", err)
	}
	if total() != start {
		t.Fatalf("chip total changed after check: got %d want %d", total(), start)
	}
}

func TestNotActorRejected(t *testing.T) {
	h := newTestHand(t)
	if err := h.ApplyAction(1, bet.Call, 0); err != ErrNotActor {
		t.Fatalf("expected ErrNotActor, got %v", err)
	}
}

func TestApplyActionAfterCompleteRejected(t *testing.T) {
	h := newTestHand(t)
	if err := h.ApplyAction(0, bet.Fold, 0); err != nil {
		t.Fatalf("fold: %v", err)
	}
	if err := h.ApplyAction(1, bet.Call, 0); err != ErrHandComplete {
		t.Fatalf("expected ErrHandComplete, got %v", err)
	}
}
