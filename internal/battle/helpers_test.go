package battle

import (
	"math"
	"testing"
	"time"
)

const tick = 100 * time.Millisecond

func newTestMatch(t *testing.T) (*Match, *EventQueue) {
	t.Helper()
	q := NewEventQueue(4096)
	m := NewMatch(DefaultRules(), Options{Seed: 7, Sink: q})
	m.hands[SideLeft] = newHandOrdered(FullDeck)
	m.hands[SideRight] = newHandOrdered(FullDeck)
	return m, q
}

// place drops the first body of kind straight onto the board.
func place(m *Match, kind Kind, side Side, x float64) *Entity {
	u := NewUnits(kind, side, x)[0]
	m.units = append(m.units, u)
	m.index[u.ID] = u
	return u
}

func hold(es ...*Entity) {
	for _, e := range es {
		e.FrozenUntil = math.Inf(1)
	}
}

func quietTowers(m *Match) {
	hold(m.towers[SideLeft], m.towers[SideRight])
}

func countEvents(evs []Event, kind EventKind) int {
	n := 0
	for _, ev := range evs {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func deckMultiset(h *Hand) map[Card]int {
	out := make(map[Card]int)
	for _, c := range h.Cards() {
		out[c]++
	}
	out[h.Next()]++
	for _, c := range h.Pile() {
		out[c]++
	}
	return out
}

func assertFullDeck(t *testing.T, h *Hand) {
	t.Helper()
	got := deckMultiset(h)
	if len(got) != len(FullDeck) {
		t.Fatalf("deck has %d distinct cards, want %d: %v", len(got), len(FullDeck), got)
	}
	for _, c := range FullDeck {
		if got[c] != 1 {
			t.Fatalf("card %s appears %d times", c, got[c])
		}
	}
}

func approx(a, b, eps float64) bool { return math.Abs(a-b) <= eps }
