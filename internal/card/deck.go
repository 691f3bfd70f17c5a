package card

import (
	"crypto/rand"
	"encoding/binary"
	"errors"

	mrand "math/rand/v2"
)

// ErrDeckExhausted is returned when Deal is called past the last card.
var ErrDeckExhausted = errors.New("card: deck exhausted")

// Deck is an ordered sequence of 52 cards with a next-to-deal index.
// size = 52 - index is the deck's invariant.
type Deck struct {
	cards [52]Card
	index int
}

// New builds a deck in canonical rank-major, suit-minor order and
// shuffles it with a uniform random permutation seeded from a system
// entropy source.
func New() *Deck {
	d := &Deck{}
	i := 0
	for r := Two; r <= Ace; r++ {
		for s := Clubs; s <= Spades; s++ {
			d.cards[i] = NewCard(r, s)
			i++
		}
	}
	d.Shuffle(newSeededRand())
	return d
}

func newSeededRand() *mrand.Rand {
	var seed [32]byte
	_, _ = rand.Read(seed[:])
	return mrand.New(mrand.NewPCG(
		binary.LittleEndian.Uint64(seed[0:8]),
		binary.LittleEndian.Uint64(seed[8:16]),
	))
}

// Shuffle randomizes the deck's remaining order using Fisher-Yates,
// reshuffling the whole 52-card deck and resetting the deal index.
func (d *Deck) Shuffle(rng *mrand.Rand) {
	if rng == nil {
		rng = newSeededRand()
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
	d.index = 0
}

// Deal returns the next card, or ErrDeckExhausted once all 52 cards
// have been dealt.
func (d *Deck) Deal() (Card, error) {
	if d.index >= len(d.cards) {
		return 0, ErrDeckExhausted
	}
	c := d.cards[d.index]
	d.index++
	return c, nil
}

// DealN deals n cards in order, failing the whole call (returning no
// cards) if the deck does not have n cards left.
func (d *Deck) DealN(n int) ([]Card, error) {
	if d.Remaining() < n {
		return nil, ErrDeckExhausted
	}
	out := make([]Card, n)
	for i := range out {
		c, err := d.Deal()
		if err != nil {
			return nil, err
		}
		out[i] = c
	}
	return out, nil
}

// Remaining returns the number of cards left to deal.
func (d *Deck) Remaining() int {
	return len(d.cards) - d.index
}
