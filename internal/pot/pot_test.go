package pot

import (
	"testing"

	"github.com/lox/headsup-holdem/internal/card"
	"github.com/lox/headsup-holdem/internal/eval"
)

func TestBuildHeadsUpNoAllIn(t *testing.T) {
	pots := Build([]int{20, 20})
	if len(pots) != 1 {
		t.Fatalf("expected a single pot, got %d", len(pots))
	}
	if pots[0].Amount != 40 {
		t.Fatalf("expected pot of 40, got %d", pots[0].Amount)
	}
	if Total(pots) != 40 {
		t.Fatalf("expected total 40, got %d", Total(pots))
	}
}

func TestBuildWithSidePot(t *testing.T) {
	// Seat 0 all-in for 30, seat 1 covers and commits 50.
	pots := Build([]int{30, 50})
	if len(pots) != 2 {
		t.Fatalf("expected two pots, got %d", len(pots))
	}
	if pots[0].Amount != 60 || len(pots[0].Eligible) != 2 {
		t.Fatalf("expected main pot of 60 eligible to both seats, got %+v", pots[0])
	}
	if pots[1].Amount != 20 || len(pots[1].Eligible) != 1 || pots[1].Eligible[0] != 1 {
		t.Fatalf("expected side pot of 20 eligible to seat 1 only, got %+v", pots[1])
	}
	if Total(pots) != 80 {
		t.Fatalf("expected total commitments of 80 preserved, got %d", Total(pots))
	}
}

func TestBuildSumEqualsCommitmentsForAnyVector(t *testing.T) {
	vectors := [][]int{
		{10, 10},
		{5, 15},
		{0, 100},
		{33, 33},
		{1, 2},
	}
	for _, v := range vectors {
		pots := Build(v)
		sum := 0
		for _, c := range v {
			sum += c
		}
		if Total(pots) != sum {
			t.Fatalf("commitments %v: expected total %d, got %d", v, sum, Total(pots))
		}
	}
}

func hand(t *testing.T, ss ...string) eval.Result {
	t.Helper()
	cards := make([]card.Card, len(ss))
	for i, s := range ss {
		c, err := card.Parse(s)
		if err != nil {
			t.Fatalf("card.Parse(%q): %v", s, err)
		}
		cards[i] = c
	}
	return eval.Evaluate(cards)
}

func TestAwardSingleWinner(t *testing.T) {
	pots := []SidePot{{Amount: 40, Eligible: []int{0, 1}}}
	hands := map[int]eval.Result{
		0: hand(t, "Ac", "Ad", "2h", "3s", "4c"),
		1: hand(t, "Kc", "Kd", "2h", "3s", "4c"),
	}
	folded := []bool{false, false}
	winnings, dist := Award(pots, hands, folded, 0, 2)
	if winnings[0] != 40 || winnings[1] != 0 {
		t.Fatalf("expected seat 0 to win all 40, got %+v", winnings)
	}
	if len(dist) != 1 || dist[0].Seat != 0 || dist[0].Amount != 40 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}
}

func TestAwardSplitPotOddChipToSeatLeftOfButton(t *testing.T) {
	pots := []SidePot{{Amount: 41, Eligible: []int{0, 1}}}
	// Identical hands -> split.
	hands := map[int]eval.Result{
		0: hand(t, "Ac", "Kd", "2h", "3s", "4c"),
		1: hand(t, "Ad", "Kh", "2c", "3d", "4h"),
	}
	folded := []bool{false, false}
	winnings, _ := Award(pots, hands, folded, 0, 2)
	if winnings[0]+winnings[1] != 41 {
		t.Fatalf("expected chip conservation, got %+v", winnings)
	}
	// Button is seat 0, so seat 1 is first left of button and gets the odd chip.
	if winnings[1] != 21 || winnings[0] != 20 {
		t.Fatalf("expected seat 1 to receive the odd chip, got %+v", winnings)
	}
}

func TestAwardExcludesFoldedFromContestingButTheyStillFundedThePot(t *testing.T) {
	pots := []SidePot{{Amount: 30, Eligible: []int{0, 1}}}
	hands := map[int]eval.Result{
		1: hand(t, "Kc", "Kd", "2h", "3s", "4c"),
	}
	folded := []bool{true, false}
	winnings, _ := Award(pots, hands, folded, 0, 2)
	if winnings[1] != 30 {
		t.Fatalf("expected sole non-folded eligible seat to win the full pot, got %+v", winnings)
	}
	if _, ok := winnings[0]; ok {
		t.Fatalf("folded seat should not receive winnings")
	}
}
