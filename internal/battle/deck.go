package battle

import "math/rand"

// Hand is one side's card rotation: HandSize visible slots, a pending next
// card, and a draw pile. Playing a card moves next into the vacated slot, pulls
// the pile head into next, and appends the played card to the pile tail, so the
// union of the three always equals the starting deck.
type Hand struct {
	slots [HandSize]Card
	next  Card
	pile  []Card
}

// NewHand shuffles a copy of deck. The deck must hold more than HandSize cards.
func NewHand(deck []Card, rng *rand.Rand) *Hand {
	d := append([]Card(nil), deck...)
	rng.Shuffle(len(d), func(i, j int) { d[i], d[j] = d[j], d[i] })
	return newHandOrdered(d)
}

func newHandOrdered(d []Card) *Hand {
	h := &Hand{}
	copy(h.slots[:], d[:HandSize])
	h.next = d[HandSize]
	h.pile = append([]Card(nil), d[HandSize+1:]...)
	return h
}

func (h *Hand) Cards() []Card {
	out := make([]Card, HandSize)
	copy(out, h.slots[:])
	return out
}

func (h *Hand) Next() Card { return h.next }

func (h *Hand) Pile() []Card { return append([]Card(nil), h.pile...) }

func (h *Hand) Slot(c Card) int {
	for i, s := range h.slots {
		if s == c {
			return i
		}
	}
	return -1
}

func (h *Hand) Contains(c Card) bool { return h.Slot(c) >= 0 }

// Affordable lists hand cards costing at most elixir, in slot order.
func (h *Hand) Affordable(elixir float64) []Card {
	return affordable(h.slots[:], elixir)
}

// Play rotates c out of the hand. It returns false when c is not held.
func (h *Hand) Play(c Card) bool {
	idx := h.Slot(c)
	if idx < 0 {
		return false
	}
	h.slots[idx] = h.next
	h.pile = append(h.pile, c)
	h.next = h.pile[0]
	h.pile = h.pile[1:]
	return true
}
