package eval

import (
	"math/rand/v2"
	"testing"

	"github.com/lox/headsup-holdem/internal/card"
)

func mustParse(t *testing.T, s string) card.Card {
	t.Helper()
	c, err := card.Parse(s)
	if err != nil {
		t.Fatalf("card.Parse(%q): %v", s, err)
	}
	return c
}

func hand(t *testing.T, ss ...string) []card.Card {
	t.Helper()
	out := make([]card.Card, len(ss))
	for i, s := range ss {
		out[i] = mustParse(t, s)
	}
	return out
}

func TestEvaluateClasses(t *testing.T) {
	cases := []struct {
		name  string
		cards []string
		class RankClass
		key   []int
	}{
		{"royal flush", []string{"Ts", "Js", "Qs", "Ks", "As"}, RoyalFlush, []int{int(card.Ace)}},
		{"straight flush nine high", []string{"5h", "6h", "7h", "8h", "9h"}, StraightFlush, []int{int(card.Nine)}},
		{"wheel straight flush", []string{"Ah", "2h", "3h", "4h", "5h"}, StraightFlush, []int{int(card.Five)}},
		{"four of a kind", []string{"7c", "7d", "7h", "7s", "2c"}, FourOfAKind, []int{int(card.Seven), int(card.Two)}},
		{"full house", []string{"Kc", "Kd", "Kh", "3s", "3c"}, FullHouse, []int{int(card.King), int(card.Three)}},
		{"flush", []string{"2c", "5c", "9c", "Jc", "Kc"}, Flush, []int{int(card.King), int(card.Jack), int(card.Nine), int(card.Five), int(card.Two)}},
		{"six high straight", []string{"2d", "3c", "4h", "5s", "6d"}, Straight, []int{int(card.Six)}},
		{"wheel straight", []string{"Ad", "2c", "3h", "4s", "5d"}, Straight, []int{int(card.Five)}},
		{"three of a kind", []string{"9c", "9d", "9h", "4s", "2c"}, ThreeOfAKind, []int{int(card.Nine), int(card.Four), int(card.Two)}},
		{"two pair", []string{"Jc", "Jd", "4h", "4s", "2c"}, TwoPair, []int{int(card.Jack), int(card.Four), int(card.Two)}},
		{"one pair", []string{"8c", "8d", "Kh", "4s", "2c"}, OnePair, []int{int(card.Eight), int(card.King), int(card.Four), int(card.Two)}},
		{"high card", []string{"2c", "5d", "9h", "Jc", "Ks"}, HighCard, []int{int(card.King), int(card.Jack), int(card.Nine), int(card.Five), int(card.Two)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := Evaluate(hand(t, tc.cards...))
			if r.Class != tc.class {
				t.Fatalf("expected class %v, got %v", tc.class, r.Class)
			}
			if len(r.Key) != len(tc.key) {
				t.Fatalf("expected key %v, got %v", tc.key, r.Key)
			}
			for i := range tc.key {
				if r.Key[i] != tc.key[i] {
					t.Fatalf("expected key %v, got %v", tc.key, r.Key)
				}
			}
		})
	}
}

func TestWheelStraightBelowSixHigh(t *testing.T) {
	wheel := Evaluate(hand(t, "Ad", "2c", "3h", "4s", "5d"))
	sixHigh := Evaluate(hand(t, "2d", "3c", "4h", "5s", "6d"))
	if Compare(wheel, sixHigh) >= 0 {
		t.Fatalf("expected wheel straight to rank below six-high straight")
	}
}

func TestRoyalFlushAboveOtherStraightFlush(t *testing.T) {
	royal := Evaluate(hand(t, "Ts", "Js", "Qs", "Ks", "As"))
	other := Evaluate(hand(t, "5h", "6h", "7h", "8h", "9h"))
	if Compare(royal, other) <= 0 {
		t.Fatalf("expected royal flush to outrank a lower straight flush")
	}
}

func TestEvaluateSevenCardBestOfSubsets(t *testing.T) {
	// Board gives a flush; hole cards are irrelevant junk for notional
	// kickers, best 5 of 7 must still pick the flush over any pair.
	cards := hand(t, "2c", "7d", "3c", "9c", "Jc", "Kc", "4c")
	r := Evaluate(cards)
	if r.Class != Flush {
		t.Fatalf("expected flush from seven cards, got %v", r.Class)
	}
}

func TestEvaluateSixCardBestOfSubsets(t *testing.T) {
	cards := hand(t, "7h", "7d", "7c", "7s", "2h", "3d")
	r := Evaluate(cards)
	if r.Class != FourOfAKind {
		t.Fatalf("expected four of a kind from six cards, got %v", r.Class)
	}
	if r.Key[1] != int(card.Three) {
		t.Fatalf("expected kicker to be the highest non-quad card (Three), got %d", r.Key[1])
	}
}

func TestCompareAntisymmetric(t *testing.T) {
	a := Evaluate(hand(t, "Ac", "Ad", "2h", "3s", "4c"))
	b := Evaluate(hand(t, "Kc", "Kd", "2h", "3s", "4c"))
	if Compare(a, b) != -Compare(b, a) {
		t.Fatalf("Compare is not antisymmetric: Compare(a,b)=%d Compare(b,a)=%d", Compare(a, b), Compare(b, a))
	}
}

func TestCompareTransitiveRandomSample(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	sample := func() []card.Card {
		deck := make([]card.Card, 52)
		for i := range deck {
			deck[i] = card.Card(i)
		}
		rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
		n := 5 + rng.IntN(3)
		return deck[:n]
	}

	for i := 0; i < 200; i++ {
		a := Evaluate(sample())
		b := Evaluate(sample())
		c := Evaluate(sample())
		if Compare(a, b) > 0 && Compare(b, c) > 0 {
			if Compare(a, c) <= 0 {
				t.Fatalf("transitivity violated: a>b, b>c, but a<=c (a=%+v b=%+v c=%+v)", a, b, c)
			}
		}
	}
}

func TestEvaluatePanicsOnBadCount(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for a 4-card hand")
		}
	}()
	Evaluate(hand(t, "2c", "3c", "4c", "5c"))
}
