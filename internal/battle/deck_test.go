package battle

import (
	"math/rand"
	"testing"
)

func TestHandPlayRotatesThroughNext(t *testing.T) {
	h := newHandOrdered(FullDeck)
	// slots: knight archer giant skeleton_army, next: dragon, pile: cannon..freeze
	if !h.Play(CardArcher) {
		t.Fatal("archer should be playable")
	}
	if got := h.Cards()[1]; got != CardDragon {
		t.Fatalf("slot 1 = %s, want dragon", got)
	}
	if h.Next() != CardCannon {
		t.Fatalf("next = %s, want cannon", h.Next())
	}
	pile := h.Pile()
	if pile[len(pile)-1] != CardArcher {
		t.Fatalf("played card should sit at the pile tail, pile=%v", pile)
	}
	assertFullDeck(t, h)
}

func TestHandPlayRejectsCardNotHeld(t *testing.T) {
	h := newHandOrdered(FullDeck)
	before := h.Cards()
	if h.Play(CardFreeze) {
		t.Fatal("freeze is in the pile, not the hand")
	}
	for i, c := range h.Cards() {
		if c != before[i] {
			t.Fatalf("hand changed on rejected play: %v -> %v", before, h.Cards())
		}
	}
}

func TestHandRotationPreservesDeck(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	h := NewHand(FullDeck, rng)
	for i := 0; i < 500; i++ {
		cards := h.Cards()
		if !h.Play(cards[rng.Intn(len(cards))]) {
			t.Fatalf("play %d rejected", i)
		}
		assertFullDeck(t, h)
	}
}

func TestHandMinimalDeckCycles(t *testing.T) {
	deck := []Card{CardKnight, CardArcher, CardGiant, CardBats, CardLog}
	h := newHandOrdered(deck)
	if !h.Play(CardKnight) {
		t.Fatal("knight should be playable")
	}
	if h.Next() != CardKnight || len(h.Pile()) != 0 {
		t.Fatalf("with an empty pile the played card becomes next, got next=%s pile=%v", h.Next(), h.Pile())
	}
	if h.Cards()[0] != CardLog {
		t.Fatalf("slot 0 = %s, want log", h.Cards()[0])
	}
}

func TestHandAffordable(t *testing.T) {
	h := newHandOrdered(FullDeck)
	got := h.Affordable(3)
	want := []Card{CardKnight, CardArcher, CardSkeletonArmy}
	if len(got) != len(want) {
		t.Fatalf("affordable = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("affordable = %v, want %v", got, want)
		}
	}
}
