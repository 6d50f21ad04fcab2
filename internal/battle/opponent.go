package battle

import (
	"math"
	"math/rand"
	"sort"
)

// Tier selects how the opponent engine plays.
type Tier int

const (
	TierNone Tier = iota
	TierReactive
	TierCounter
	TierPositional
)

func (t Tier) String() string {
	switch t {
	case TierReactive:
		return "easy"
	case TierCounter:
		return "medium"
	case TierPositional:
		return "hard"
	}
	return "none"
}

// Next is the tier a won match promotes to. Hard and TierNone have none.
func (t Tier) Next() (Tier, bool) {
	if t < TierReactive || t >= TierPositional {
		return t, false
	}
	return t + 1, true
}

// ParseTier accepts 1..3 or easy/medium/hard.
func ParseTier(s string) (Tier, bool) {
	switch s {
	case "1", "easy":
		return TierReactive, true
	case "2", "medium":
		return TierCounter, true
	case "3", "hard":
		return TierPositional, true
	}
	return TierNone, false
}

// Board is what the opponent engine sees when polled.
type Board struct {
	Side           Side
	Enemies        []*Entity
	Allies         []*Entity
	EnemyStructure *Entity
	Hand           []Card
	Elixir         float64
}

// Decision is an opponent's output for one poll. An empty Card means hold.
type Decision struct {
	Card  Card
	X     float64
	Taunt string
}

type Opponent struct {
	Side  Side
	Tier  Tier
	rng   *rand.Rand
	timer float64
}

func NewOpponent(side Side, tier Tier, rng *rand.Rand) *Opponent {
	return &Opponent{Side: side, Tier: tier, rng: rng}
}

// frame maps world lane coordinates into the deciding side's view, where its
// own base sits at the far end (x near BoardWidth) and the enemy advances
// toward larger x.
type frame Side

func (f frame) local(x float64) float64 {
	if Side(f) == SideRight {
		return x
	}
	return BoardWidth - x
}

// world is its own inverse.
func (f frame) world(x float64) float64 { return f.local(x) }

type threat struct {
	crossed []*Entity
	near    []*Entity
	score   int
	swarm   bool
	tank    bool
	air     bool
}

const (
	bridgeApproach = 150.0
	tauntThreshold = 10
)

func isSwarm(k Kind) bool { return k == KindSkeleton || k == KindBats }
func isTank(k Kind) bool  { return k == KindGiant || k == KindKnight }

func assess(b Board, f frame) threat {
	var t threat
	for _, e := range b.Enemies {
		x := f.local(e.X)
		if x > Midline {
			t.crossed = append(t.crossed, e)
		}
		if x <= Midline-bridgeApproach {
			continue
		}
		t.near = append(t.near, e)
		cost := e.Cost
		if cost == 0 {
			cost = 3
		}
		t.score += cost
		switch {
		case isSwarm(e.Kind):
			t.swarm = true
		case isTank(e.Kind):
			t.tank = true
		case e.Kind == KindDragon:
			t.air = true
		}
	}
	return t
}

var (
	swarmCounters = []Card{CardLog, CardFireball, CardWizard, CardArcher, CardDragon, CardBats}
	tankCounters  = []Card{CardMiniPekka, CardSkeletonArmy, CardDragon, CardCannon, CardBats}
	airCounters   = []Card{CardWizard, CardArcher, CardDragon, CardFireball, CardBats}
)

func inSet(c Card, set []Card) bool {
	for _, s := range set {
		if s == c {
			return true
		}
	}
	return false
}

func firstOf(cards []Card, want ...Card) Card {
	for _, c := range cards {
		if inSet(c, want) {
			return c
		}
	}
	return ""
}

func cheapest(cards []Card) Card {
	sorted := append([]Card(nil), cards...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Cost() < sorted[j].Cost() })
	return sorted[0]
}

// deepest returns the entity furthest into the deciding side's territory.
func deepest(es []*Entity, f frame) *Entity {
	var best *Entity
	for _, e := range es {
		if best == nil || f.local(e.X) > f.local(best.X) {
			best = e
		}
	}
	return best
}

// affordable lists cards costing at most elixir, keeping their order.
func affordable(hand []Card, elixir float64) []Card {
	var out []Card
	for _, c := range hand {
		if float64(c.Cost()) <= elixir {
			out = append(out, c)
		}
	}
	return out
}

// Decide picks at most one card to play and where.
func (o *Opponent) Decide(b Board) Decision {
	f := frame(b.Side)
	t := assess(b, f)

	var d Decision
	if t.score > tauntThreshold && o.rng.Float64() > 0.7 {
		d.Taunt = "Stop attacking me!"
	}
	afford := affordable(b.Hand, b.Elixir)
	if len(afford) == 0 {
		return d
	}

	var card Card
	x := BoardWidth - 100
	switch o.Tier {
	case TierReactive:
		card, x = o.reactive(b, t, afford)
	case TierCounter:
		card, x = o.counter(b, t, afford, f)
	case TierPositional:
		card, x = o.positional(b, t, afford, f)
	}
	if card == "" {
		return d
	}

	x = math.Max(Midline+20, math.Min(BoardWidth-20, x))
	d.Card = card
	d.X = f.world(x)
	switch card {
	case CardFireball, CardFreeze:
		d.X = clusterX(b, f)
	case CardLog:
		d.X = f.world(BoardWidth)
	}
	return d
}

func (o *Opponent) pick(cards []Card) Card {
	return cards[o.rng.Intn(len(cards))]
}

func (o *Opponent) reactive(b Board, t threat, afford []Card) (Card, float64) {
	if b.Elixir > 6 || t.score > 2 {
		return o.pick(afford), BoardWidth - 50 - o.rng.Float64()*150
	}
	return "", 0
}

func (o *Opponent) counter(b Board, t threat, afford []Card, f frame) (Card, float64) {
	if t.score > 0 {
		var table []Card
		switch {
		case t.swarm:
			table = swarmCounters
		case t.tank:
			table = tankCounters
		case t.air:
			table = airCounters
		}
		card := afford[0]
		for _, c := range afford {
			if inSet(c, table) {
				card = c
				break
			}
		}
		x := BoardWidth - 100
		if n := deepest(t.near, f); n != nil {
			x = f.local(n.X) + 100
		}
		return card, x
	}
	if b.Elixir > 8 {
		return o.pick(afford), BoardWidth - 100
	}
	return "", 0
}

func (o *Opponent) positional(b Board, t threat, afford []Card, f frame) (Card, float64) {
	if len(t.crossed) > 0 {
		closest := deepest(t.crossed, f)
		cx := f.local(closest.X)
		switch {
		case isTank(closest.Kind):
			if firstOf(afford, CardCannon) != "" {
				return CardCannon, Midline + 50
			}
			if c := firstOf(afford, CardMiniPekka, CardSkeletonArmy); c != "" {
				return c, cx + 30
			}
		case isSwarm(closest.Kind):
			if c := firstOf(afford, CardLog, CardWizard, CardDragon); c != "" {
				return c, cx + 100
			}
		}
		return cheapest(afford), cx + 50
	}
	if t.score != 0 {
		return "", 0
	}
	if b.Elixir >= 9 {
		if c := firstOf(afford, CardGiant, CardKnight); c != "" {
			return c, BoardWidth - 20
		}
		return cheapest(afford), BoardWidth - 20
	}
	if b.Elixir > 6 {
		for _, a := range b.Allies {
			if a.Kind != KindGiant || f.local(a.X) >= BoardWidth-100 {
				continue
			}
			if c := firstOf(afford, CardWizard, CardDragon, CardArcher); c != "" {
				return c, f.local(a.X) + 50
			}
			break
		}
	}
	return "", 0
}

// clusterX aims area spells at the enemy unit with the most company inside a
// fireball radius, ties going to the deepest. With no enemy units on the
// board it targets the enemy structure.
func clusterX(b Board, f frame) float64 {
	const radius = 80.0
	var best *Entity
	bestCount := -1
	for _, e := range b.Enemies {
		n := 0
		for _, o := range b.Enemies {
			if math.Abs(o.X-e.X) < radius {
				n++
			}
		}
		if n > bestCount || (n == bestCount && f.local(e.X) > f.local(best.X)) {
			best, bestCount = e, n
		}
	}
	if best != nil {
		return best.X
	}
	if b.EnemyStructure != nil {
		return b.EnemyStructure.ImpactX()
	}
	return f.world(100)
}
