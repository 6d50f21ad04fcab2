package battle

type EntityView struct {
	ID        string    `json:"id" msgpack:"id"`
	Side      string    `json:"side" msgpack:"side"`
	Kind      Kind      `json:"kind" msgpack:"kind"`
	X         float64   `json:"x" msgpack:"x"`
	Y         float64   `json:"y" msgpack:"y"`
	Health    float64   `json:"health" msgpack:"health"`
	State     UnitState `json:"state" msgpack:"state"`
	Frozen    bool      `json:"frozen" msgpack:"frozen"`
	Flying    bool      `json:"flying,omitempty" msgpack:"flying,omitempty"`
	Structure bool      `json:"structure,omitempty" msgpack:"structure,omitempty"`
	RampUp    float64   `json:"ramp,omitempty" msgpack:"ramp,omitempty"`
}

type ProjectileView struct {
	ID     string  `json:"id" msgpack:"id"`
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Visual string  `json:"visual" msgpack:"visual"`
}

type HandView struct {
	Cards []Card `json:"cards" msgpack:"cards"`
	Next  Card   `json:"next" msgpack:"next"`
}

// Snapshot is a read-only copy of everything a presentation layer draws.
// It shares no memory with the match.
type Snapshot struct {
	MatchID      string           `json:"match_id" msgpack:"match_id"`
	Elapsed      float64          `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Remaining    float64          `json:"remaining_ms" msgpack:"remaining_ms"`
	Phase        Phase            `json:"phase" msgpack:"phase"`
	Outcome      Outcome          `json:"outcome" msgpack:"outcome"`
	DoubleElixir bool             `json:"double_elixir" msgpack:"double_elixir"`
	Elixir       [2]float64       `json:"elixir" msgpack:"elixir"`
	Hands        [2]HandView      `json:"hands" msgpack:"hands"`
	Entities     []EntityView     `json:"entities" msgpack:"entities"`
	Projectiles  []ProjectileView `json:"projectiles" msgpack:"projectiles"`
}

func (m *Match) Snapshot() Snapshot {
	s := Snapshot{
		MatchID:      m.ID,
		Elapsed:      m.elapsed,
		Remaining:    m.Remaining(),
		Phase:        m.phase,
		Outcome:      m.outcome,
		DoubleElixir: m.double,
		Elixir:       m.elixir,
		Entities:     make([]EntityView, 0, len(m.units)+2),
		Projectiles:  make([]ProjectileView, 0, len(m.projectiles)),
	}
	for _, side := range []Side{SideLeft, SideRight} {
		s.Hands[side] = HandView{Cards: m.hands[side].Cards(), Next: m.hands[side].Next()}
	}
	for _, t := range m.towers {
		s.Entities = append(s.Entities, m.view(t))
	}
	for _, u := range m.units {
		if u.Alive() {
			s.Entities = append(s.Entities, m.view(u))
		}
	}
	for _, p := range m.projectiles {
		if !p.done {
			s.Projectiles = append(s.Projectiles, ProjectileView{ID: p.ID, X: p.X, Y: p.Y, Visual: p.Visual})
		}
	}
	return s
}

func (m *Match) view(e *Entity) EntityView {
	return EntityView{
		ID:        e.ID,
		Side:      e.Side.String(),
		Kind:      e.Kind,
		X:         e.X,
		Y:         e.Y,
		Health:    e.HealthFraction(),
		State:     e.State,
		Frozen:    e.Frozen(m.elapsed),
		Flying:    e.Flying,
		Structure: e.Structure,
		RampUp:    e.RampUp,
	}
}
