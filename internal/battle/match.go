package battle

import (
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseNormal      Phase = "normal"
	PhaseSuddenDeath Phase = "sudden_death"
	PhaseConcluded   Phase = "concluded"
)

type Outcome string

const (
	OutcomeUndecided Outcome = "undecided"
	OutcomeLeftWins  Outcome = "left_wins"
	OutcomeRightWins Outcome = "right_wins"
	OutcomeDraw      Outcome = "draw"
)

// Winner reports the winning side, false for draws and undecided matches.
func (o Outcome) Winner() (Side, bool) {
	switch o {
	case OutcomeLeftWins:
		return SideLeft, true
	case OutcomeRightWins:
		return SideRight, true
	}
	return SideLeft, false
}

func winFor(s Side) Outcome {
	if s == SideLeft {
		return OutcomeLeftWins
	}
	return OutcomeRightWins
}

// Rules holds the match tuning. Zero values are not meaningful; start from DefaultRules.
type Rules struct {
	MatchDuration    time.Duration
	DoubleElixirAt   time.Duration // remaining time at which regeneration doubles
	SecondsPerElixir float64
	MaxElixir        float64
	StartingElixir   float64
	SuddenDeathDecay float64 // structure health lost per millisecond
	DrawEpsilon      float64
	PollInterval     time.Duration
}

func DefaultRules() Rules {
	return Rules{
		MatchDuration:    120 * time.Second,
		DoubleElixirAt:   60 * time.Second,
		SecondsPerElixir: 2.8,
		MaxElixir:        10,
		StartingElixir:   0,
		SuddenDeathDecay: 0.3,
		DrawEpsilon:      2.0,
		PollInterval:     1200 * time.Millisecond,
	}
}

// Options configures a match. A zero Tier leaves that side to inbound deploys.
type Options struct {
	Seed  int64
	Sink  EventSink
	Tiers [2]Tier
	Deck  []Card
}

// Match owns one battle. It is not safe for concurrent use: exactly one
// goroutine may call Update and Deploy.
type Match struct {
	ID    string
	rules Rules
	rng   *rand.Rand
	sink  EventSink

	elapsed float64
	phase   Phase
	outcome Outcome
	double  bool

	elixir    [2]float64
	fullSent  [2]bool
	hands     [2]*Hand
	cooldowns [2]map[Card]float64
	opponents [2]*Opponent
	plays     [2]int
	destroyed [2]bool

	towers      [2]*Entity
	units       []*Entity
	projectiles []*Projectile
	index       map[string]*Entity
}

func NewMatch(rules Rules, opts Options) *Match {
	rng := rand.New(rand.NewSource(opts.Seed))
	deck := opts.Deck
	if len(deck) <= HandSize {
		deck = FullDeck
	}
	sink := opts.Sink
	if sink == nil {
		sink = discardSink{}
	}
	m := &Match{
		ID:      "m_" + uuid.NewString(),
		rules:   rules,
		rng:     rng,
		sink:    sink,
		phase:   PhaseNormal,
		outcome: OutcomeUndecided,
		index:   make(map[string]*Entity),
	}
	for _, s := range []Side{SideLeft, SideRight} {
		m.elixir[s] = math.Min(rules.StartingElixir, rules.MaxElixir)
		m.hands[s] = NewHand(deck, rng)
		m.cooldowns[s] = make(map[Card]float64)
		m.towers[s] = NewTower(s)
		if opts.Tiers[s] != TierNone {
			m.opponents[s] = NewOpponent(s, opts.Tiers[s], rng)
		}
	}
	m.reindex()
	return m
}

func (m *Match) Phase() Phase               { return m.phase }
func (m *Match) Outcome() Outcome           { return m.outcome }
func (m *Match) Elixir(s Side) float64      { return m.elixir[s] }
func (m *Match) Hand(s Side) *Hand          { return m.hands[s] }
func (m *Match) Tower(s Side) *Entity       { return m.towers[s] }
func (m *Match) Units() []*Entity           { return m.units }
func (m *Match) Projectiles() []*Projectile { return m.projectiles }
func (m *Match) DoubleElixir() bool         { return m.double }
func (m *Match) Rules() Rules               { return m.rules }

// Elapsed is match time in milliseconds.
func (m *Match) Elapsed() float64 { return m.elapsed }

// Remaining is the normal-phase time left in milliseconds, floored at zero.
func (m *Match) Remaining() float64 {
	return math.Max(0, durationMs(m.rules.MatchDuration)-m.elapsed)
}

func durationMs(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// Update advances the match by one tick of dt. Once concluded it does nothing.
func (m *Match) Update(dt time.Duration) {
	if m.phase == PhaseConcluded || dt <= 0 {
		return
	}
	ms := durationMs(dt)
	m.elapsed += ms

	if m.advancePhase(ms) {
		return
	}
	m.regenerate(ms)
	m.pollOpponents(ms)

	m.reindex()
	m.updateUnits(ms)
	m.updateTowers()
	m.updateProjectiles(ms)
	m.cleanup()
	m.checkDestroyed()
}

// advancePhase runs the phase machine and reports whether the rest of the
// tick is suspended.
func (m *Match) advancePhase(dt float64) bool {
	if m.phase == PhaseNormal && m.elapsed >= durationMs(m.rules.MatchDuration) {
		m.phase = PhaseSuddenDeath
		m.emit(Event{Kind: EventSuddenDeath})
	}
	if m.phase == PhaseSuddenDeath {
		decay := m.rules.SuddenDeathDecay * dt
		left, right := m.towers[SideLeft], m.towers[SideRight]
		left.TakeDamage(decay)
		right.TakeDamage(decay)
		if !left.Alive() || !right.Alive() {
			m.markDestroyed()
			switch {
			case math.Abs(left.HP-right.HP) < m.rules.DrawEpsilon:
				m.conclude(OutcomeDraw)
			case left.HP > right.HP:
				m.conclude(OutcomeLeftWins)
			default:
				m.conclude(OutcomeRightWins)
			}
		}
		return true
	}
	if !m.double && m.Remaining() <= durationMs(m.rules.DoubleElixirAt) {
		m.double = true
		m.emit(Event{Kind: EventEconomyDoubled})
	}
	return false
}

func (m *Match) regenerate(dt float64) {
	secs := m.rules.SecondsPerElixir
	if m.double {
		secs /= 2
	}
	gain := (dt / 1000) / secs
	for _, s := range []Side{SideLeft, SideRight} {
		if m.elixir[s] < m.rules.MaxElixir {
			m.elixir[s] = math.Min(m.elixir[s]+gain, m.rules.MaxElixir)
		}
		if m.elixir[s] < m.rules.MaxElixir-0.1 {
			m.fullSent[s] = false
		} else if m.elixir[s] >= m.rules.MaxElixir && !m.fullSent[s] {
			m.fullSent[s] = true
			m.emit(Event{Kind: EventElixirFull, Side: s})
		}
	}
}

func (m *Match) pollOpponents(dt float64) {
	interval := durationMs(m.rules.PollInterval)
	for _, s := range []Side{SideLeft, SideRight} {
		o := m.opponents[s]
		if o == nil {
			continue
		}
		o.timer += dt
		if o.timer <= interval {
			continue
		}
		o.timer = 0
		d := o.Decide(m.board(s))
		if d.Taunt != "" {
			m.emit(Event{Kind: EventTaunt, Side: s, Text: d.Taunt})
		}
		if d.Card != "" && float64(d.Card.Cost()) <= m.elixir[s] && m.hands[s].Contains(d.Card) {
			m.play(s, d.Card, d.X)
		}
	}
}

func (m *Match) board(s Side) Board {
	b := Board{
		Side:           s,
		Hand:           m.hands[s].Cards(),
		Elixir:         m.elixir[s],
		EnemyStructure: m.towers[s.Opponent()],
	}
	for _, u := range m.units {
		if !u.Alive() {
			continue
		}
		if u.Side == s {
			b.Allies = append(b.Allies, u)
		} else {
			b.Enemies = append(b.Enemies, u)
		}
	}
	return b
}

// OwnHalf reports whether x lies on side's half of the board.
func OwnHalf(side Side, x float64) bool {
	if side == SideLeft {
		return x < Midline
	}
	return x >= Midline
}

// Deploy is the inbound deploy request. It returns false, leaving the match
// untouched, when the card is not held, unaffordable, cooling down, or placed
// off the requester's half.
func (m *Match) Deploy(card Card, side Side, x float64) bool {
	if m.phase != PhaseNormal || (side != SideLeft && side != SideRight) {
		return false
	}
	st, ok := card.Stats()
	if !ok || !m.hands[side].Contains(card) {
		return false
	}
	if m.elixir[side] < float64(st.Cost) {
		return false
	}
	if until, ok := m.cooldowns[side][card]; ok && m.elapsed < until {
		return false
	}
	if x < 0 || x > BoardWidth || (!st.Spell && !OwnHalf(side, x)) {
		return false
	}
	m.play(side, card, x)
	m.cooldowns[side][card] = m.elapsed + st.Cooldown
	return true
}

// CoolingDown reports whether an inbound deploy of card is still blocked.
func (m *Match) CoolingDown(side Side, card Card) bool {
	until, ok := m.cooldowns[side][card]
	return ok && m.elapsed < until
}

func (m *Match) play(side Side, card Card, x float64) {
	m.cast(side, card, x)
	m.elixir[side] -= float64(card.Cost())
	if m.elixir[side] < 0 {
		m.elixir[side] = 0
	}
	m.hands[side].Play(card)
	m.plays[side]++
	m.emit(Event{Kind: EventDeployed, Side: side, Card: card})
}

func (m *Match) cast(side Side, card Card, x float64) {
	switch card {
	case CardFireball:
		p := newProjectile(ProjectileBurst, side, x, -200, x, LaneY, 300, 325, "fireball")
		p.Radius = 80
		p.StructureFactor = 0.35
		m.projectiles = append(m.projectiles, p)
	case CardFreeze:
		m.freeze(side, x, 120, 4000)
	case CardLog:
		p := newProjectile(ProjectileSweep, side, x, LaneY+10, 0, 0, 160*side.Forward(), 80, "log")
		p.Life = 350
		m.projectiles = append(m.projectiles, p)
	default:
		kind, ok := card.Kind()
		if !ok {
			return
		}
		for _, u := range NewUnits(kind, side, x) {
			m.units = append(m.units, u)
			m.index[u.ID] = u
		}
	}
}

func (m *Match) freeze(side Side, x, radius, duration float64) {
	until := m.elapsed + duration
	apply := func(e *Entity) {
		if e.Side != side && e.Alive() && math.Abs(e.X-x) < radius {
			e.FrozenUntil = until
			e.RampUp = 0
		}
	}
	for _, u := range m.units {
		apply(u)
	}
	for _, t := range m.towers {
		apply(t)
	}
}

// reindex rebuilds the live-entity index that target locks resolve against.
func (m *Match) reindex() {
	clear(m.index)
	for _, u := range m.units {
		m.index[u.ID] = u
	}
	for _, t := range m.towers {
		m.index[t.ID] = t
	}
}

// cleanup removes dead units and resolved projectiles at the end of a tick.
func (m *Match) cleanup() {
	live := m.units[:0]
	for _, u := range m.units {
		if u.Alive() {
			live = append(live, u)
		} else {
			delete(m.index, u.ID)
		}
	}
	for i := len(live); i < len(m.units); i++ {
		m.units[i] = nil
	}
	m.units = live

	flying := m.projectiles[:0]
	for _, p := range m.projectiles {
		if !p.done {
			flying = append(flying, p)
		}
	}
	for i := len(flying); i < len(m.projectiles); i++ {
		m.projectiles[i] = nil
	}
	m.projectiles = flying
}

// markDestroyed announces each structure that has reached zero, once.
func (m *Match) markDestroyed() {
	for _, s := range []Side{SideLeft, SideRight} {
		if !m.towers[s].Alive() && !m.destroyed[s] {
			m.destroyed[s] = true
			m.emit(Event{Kind: EventStructureDestroyed, Side: s})
		}
	}
}

func (m *Match) checkDestroyed() {
	m.markDestroyed()
	leftDown, rightDown := m.destroyed[SideLeft], m.destroyed[SideRight]
	switch {
	case leftDown && rightDown:
		m.conclude(OutcomeDraw)
	case leftDown:
		m.conclude(OutcomeRightWins)
	case rightDown:
		m.conclude(OutcomeLeftWins)
	}
}

// conclude is idempotent; the terminal event fires once.
func (m *Match) conclude(o Outcome) {
	if m.phase == PhaseConcluded {
		return
	}
	m.phase = PhaseConcluded
	m.outcome = o
	m.emit(Event{Kind: EventMatchConcluded, Outcome: o})
}

func (m *Match) emit(ev Event) {
	ev.Elapsed = m.elapsed
	ev.Health = [2]float64{m.towers[SideLeft].HP, m.towers[SideRight].HP}
	m.sink.Notify(ev)
}

// Summary is the compact match description handed to cosmetic collaborators.
type Summary struct {
	MatchID   string  `json:"match_id"`
	Outcome   Outcome `json:"outcome"`
	Remaining float64 `json:"remaining_ms"`
	LeftHP    float64 `json:"left_hp"`
	RightHP   float64 `json:"right_hp"`
	Plays     [2]int  `json:"plays"`
}

func (m *Match) Summary() Summary {
	return Summary{
		MatchID:   m.ID,
		Outcome:   m.outcome,
		Remaining: m.Remaining(),
		LeftHP:    m.towers[SideLeft].HP,
		RightHP:   m.towers[SideRight].HP,
		Plays:     m.plays,
	}
}
