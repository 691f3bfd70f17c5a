// Package pot builds side pots from committed chip totals and awards
// them at showdown, holding chip conservation as an invariant.
package pot

import (
	"sort"

	"github.com/lox/headsup-holdem/internal/eval"
)

// SidePot is an amount of chips and the set of seats entitled to
// contest it.
type SidePot struct {
	Amount   int
	Eligible []int
}

// Build constructs the ordered side pots for a set of per-seat total
// committed chips. Folded players still contribute to pot amounts (a
// fold doesn't refund chips already in), so commitments here include
// folded players; eligibility to contest a pot at showdown is a
// separate, later filter (see Award).
//
// Distinct positive commitment levels are sorted ascending; each gap
// between consecutive levels forms one pot sized at the gap times the
// number of seats committed at least that far.
func Build(commitments []int) []SidePot {
	levels := distinctPositiveLevels(commitments)

	var pots []SidePot
	prev := 0
	for _, level := range levels {
		gap := level - prev
		if gap <= 0 {
			prev = level
			continue
		}
		var eligible []int
		for seat, c := range commitments {
			if c >= level {
				eligible = append(eligible, seat)
			}
		}
		if len(eligible) > 0 {
			pots = append(pots, SidePot{Amount: gap * len(eligible), Eligible: eligible})
		}
		prev = level
	}
	return pots
}

func distinctPositiveLevels(commitments []int) []int {
	seen := make(map[int]bool)
	for _, c := range commitments {
		if c > 0 {
			seen[c] = true
		}
	}
	levels := make([]int, 0, len(seen))
	for l := range seen {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	return levels
}

// Distribution records one seat's share of one pot, for reporting.
type Distribution struct {
	PotIndex int
	Seat     int
	Amount   int
}

// Award splits every pot among its non-folded eligible seats' best
// hands, giving any odd remainder chip one at a time to winners in
// seat order starting from the first seat left of the button. Returns
// each seat's total winnings and a per-pot distribution breakdown.
func Award(pots []SidePot, hands map[int]eval.Result, folded []bool, buttonSeat, numSeats int) (map[int]int, []Distribution) {
	winnings := make(map[int]int)
	var dist []Distribution

	for potIdx, p := range pots {
		var contenders []int
		for _, seat := range p.Eligible {
			if !folded[seat] {
				contenders = append(contenders, seat)
			}
		}
		if len(contenders) == 0 {
			continue
		}

		winners := bestHandSeats(contenders, hands)
		share := p.Amount / len(winners)
		remainder := p.Amount % len(winners)

		for _, seat := range winners {
			winnings[seat] += share
			dist = append(dist, Distribution{PotIndex: potIdx, Seat: seat, Amount: share})
		}

		if remainder > 0 {
			order := seatOrderFrom(buttonSeat, numSeats)
			winnerSet := make(map[int]bool, len(winners))
			for _, w := range winners {
				winnerSet[w] = true
			}
			for _, seat := range order {
				if remainder == 0 {
					break
				}
				if winnerSet[seat] {
					winnings[seat]++
					dist = append(dist, Distribution{PotIndex: potIdx, Seat: seat, Amount: 1})
					remainder--
				}
			}
		}
	}

	return winnings, dist
}

func bestHandSeats(seats []int, hands map[int]eval.Result) []int {
	best := hands[seats[0]]
	winners := []int{seats[0]}
	for _, seat := range seats[1:] {
		r := hands[seat]
		cmp := eval.Compare(r, best)
		switch {
		case cmp > 0:
			best = r
			winners = []int{seat}
		case cmp == 0:
			winners = append(winners, seat)
		}
	}
	sort.Ints(winners)
	return winners
}

// seatOrderFrom returns seat indices in table order, starting at the
// first seat left of the button and wrapping around.
func seatOrderFrom(buttonSeat, numSeats int) []int {
	order := make([]int, numSeats)
	for i := range order {
		order[i] = (buttonSeat + 1 + i) % numSeats
	}
	return order
}

// Total sums every pot's amount, for chip-conservation assertions.
func Total(pots []SidePot) int {
	total := 0
	for _, p := range pots {
		total += p.Amount
	}
	return total
}
