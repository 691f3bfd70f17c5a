package eval

import (
	"sort"

	"github.com/lox/headsup-holdem/internal/card"
)

// Evaluate classifies a 5, 6, or 7 card hand. For 6 or 7 cards it
// enumerates every 5-card subset and returns the lexicographically
// maximum (class, key) — i.e. the best 5-card hand the cards contain.
func Evaluate(cards []card.Card) Result {
	switch len(cards) {
	case 5:
		return evaluate5(cards)
	case 6, 7:
		best := Result{Class: HighCard, Key: nil}
		first := true
		forEachCombination(len(cards), 5, func(idx []int) {
			subset := make([]card.Card, 5)
			for i, j := range idx {
				subset[i] = cards[j]
			}
			r := evaluate5(subset)
			if first || Compare(r, best) > 0 {
				best = r
				first = false
			}
		})
		return best
	default:
		panic("eval: Evaluate requires 5, 6, or 7 cards")
	}
}

// forEachCombination invokes fn with every k-length, strictly
// increasing index subset of [0, n).
func forEachCombination(n, k int, fn func(idx []int)) {
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		fn(idx)
		i := k - 1
		for i >= 0 && idx[i] == i+n-k {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

func evaluate5(cards []card.Card) Result {
	var rankCounts [13]int
	var suitCounts [4]int
	var rankBits uint16

	for _, c := range cards {
		rankCounts[c.Rank()]++
		suitCounts[c.Suit()]++
		rankBits |= 1 << uint(c.Rank())
	}

	flushSuit := -1
	for s := 0; s < 4; s++ {
		if suitCounts[s] == 5 {
			flushSuit = s
			break
		}
	}

	if flushSuit >= 0 {
		if top, ok := straightTop(rankBits); ok {
			if top == int(card.Ace) {
				return Result{Class: RoyalFlush, Key: []int{top}}
			}
			return Result{Class: StraightFlush, Key: []int{top}}
		}
		return Result{Class: Flush, Key: descendingRanks(cards)}
	}

	quad, hasQuad := rankWithCount(rankCounts, 4, -1)
	if hasQuad {
		kicker, _ := highestRankWithCount(rankCounts, 1, quad)
		return Result{Class: FourOfAKind, Key: []int{quad, kicker}}
	}

	trips, hasTrips := highestRankWithCount(rankCounts, 3, -1)
	if hasTrips {
		// A second three-of-a-kind counts as a pair for full-house purposes.
		if secondTrips, ok := highestRankWithCount(rankCounts, 3, trips); ok {
			return Result{Class: FullHouse, Key: []int{trips, secondTrips}}
		}
		if pair, ok := highestRankWithCount(rankCounts, 2, -1); ok {
			return Result{Class: FullHouse, Key: []int{trips, pair}}
		}
	}

	if top, ok := straightTop(rankBits); ok {
		return Result{Class: Straight, Key: []int{top}}
	}

	if hasTrips {
		kickers := kickersExcluding(rankCounts, 2, trips)
		return Result{Class: ThreeOfAKind, Key: append([]int{trips}, kickers...)}
	}

	if pair1, ok := highestRankWithCount(rankCounts, 2, -1); ok {
		if pair2, ok := highestRankWithCount(rankCounts, 2, pair1); ok {
			kicker, _ := highestRankWithCount(rankCounts, 1, -1)
			return Result{Class: TwoPair, Key: []int{pair1, pair2, kicker}}
		}
		kickers := kickersExcluding(rankCounts, 3, pair1)
		return Result{Class: OnePair, Key: append([]int{pair1}, kickers...)}
	}

	return Result{Class: HighCard, Key: descendingRanks(cards)}
}

// straightTop finds the highest straight in a 13-bit rank bitmap,
// treating A-2-3-4-5 (the wheel) as topping out at 5, below 6-high.
func straightTop(bits uint16) (int, bool) {
	for top := int(card.Ace); top >= int(card.Six); top-- {
		mask := uint16(0x1F) << uint(top-4)
		if bits&mask == mask {
			return top, true
		}
	}
	wheel := uint16(1<<int(card.Ace) | 1<<int(card.Two) | 1<<int(card.Three) | 1<<int(card.Four) | 1<<int(card.Five))
	if bits&wheel == wheel {
		return int(card.Five), true
	}
	return 0, false
}

func rankWithCount(counts [13]int, count, exclude int) (int, bool) {
	for r := int(card.Ace); r >= int(card.Two); r-- {
		if r != exclude && counts[r] == count {
			return r, true
		}
	}
	return 0, false
}

// highestRankWithCount is an alias of rankWithCount kept distinct for
// readability at call sites that are explicitly hunting for the best
// remaining rank of a given multiplicity.
func highestRankWithCount(counts [13]int, count, exclude int) (int, bool) {
	return rankWithCount(counts, count, exclude)
}

// kickersExcluding returns up to n highest single-count ranks other
// than exclude, descending.
func kickersExcluding(counts [13]int, n, exclude int) []int {
	var out []int
	for r := int(card.Ace); r >= int(card.Two) && len(out) < n; r-- {
		if r == exclude {
			continue
		}
		if counts[r] >= 1 {
			out = append(out, r)
		}
	}
	return out
}

func descendingRanks(cards []card.Card) []int {
	ranks := make([]int, len(cards))
	for i, c := range cards {
		ranks[i] = int(c.Rank())
	}
	sort.Sort(sort.Reverse(sort.IntSlice(ranks)))
	return ranks
}
