package battle

import (
	"math"

	"github.com/google/uuid"
)

type UnitState string

const (
	StateMoving    UnitState = "moving"
	StateAttacking UnitState = "attacking"
	StateIdle      UnitState = "idle"
)

// Entity is a unit or a structure. TargetID is a lookup key into the live index,
// never a pointer, so a removed target simply fails to resolve.
type Entity struct {
	ID     string
	Side   Side
	Kind   Kind
	X, Y   float64
	Width  float64
	Height float64
	HP     float64
	MaxHP  float64

	Damage   float64
	Range    float64
	Sight    float64
	Speed    float64
	Cooldown float64
	Cost     int

	Flying        bool
	Structure     bool
	TargetsAir    bool
	BuildingsOnly bool
	Attack        Attack

	State       UnitState
	TargetID    string
	LastAttack  float64
	RampUp      float64
	FrozenUntil float64
}

func newEntity(kind Kind, side Side, x, y float64) *Entity {
	st := UnitData[kind]
	return &Entity{
		ID:            "e_" + uuid.NewString(),
		Side:          side,
		Kind:          kind,
		X:             x,
		Y:             y,
		Width:         st.Width,
		Height:        st.Height,
		HP:            st.HP,
		MaxHP:         st.HP,
		Damage:        st.Damage,
		Range:         st.Range,
		Sight:         st.Sight,
		Speed:         st.Speed,
		Cooldown:      st.Cooldown,
		Cost:          st.Cost,
		Flying:        st.Flying,
		Structure:     st.Structure,
		TargetsAir:    st.TargetsAir,
		BuildingsOnly: st.BuildingsOnly,
		Attack:        st.Attack,
		State:         StateMoving,
		LastAttack:    math.Inf(-1),
	}
}

// NewUnits builds the bodies a unit card deploys at lane coordinate x.
// Swarm cards stagger their bodies back toward the owner's side.
func NewUnits(kind Kind, side Side, x float64) []*Entity {
	st := UnitData[kind]
	y := LaneY
	switch {
	case st.Flying:
		y = FlyingY
	case st.Structure:
		y = LaneY - 10
	}
	back := -side.Forward()

	switch kind {
	case KindSkeleton:
		out := make([]*Entity, 0, 7)
		for i := 0; i < 7; i++ {
			out = append(out, newEntity(kind, side, x+back*15*float64(i), y))
		}
		return out
	case KindBats:
		out := make([]*Entity, 0, 5)
		for i := 0; i < 5; i++ {
			dy := 10.0
			if i%2 == 0 {
				dy = -10
			}
			out = append(out, newEntity(kind, side, x+back*12*float64(i), y+dy))
		}
		return out
	}
	return []*Entity{newEntity(kind, side, x, y)}
}

// NewTower builds a side's base structure.
func NewTower(side Side) *Entity {
	x := towerLeftX
	if side == SideRight {
		x = towerRightX
	}
	t := newEntity(KindTower, side, x, StructureY)
	t.ID = "tower-" + side.String()
	t.State = StateIdle
	return t
}

func (e *Entity) Alive() bool { return e.HP > 0 }

func (e *Entity) Frozen(now float64) bool { return e.FrozenUntil > now }

// ImpactX is the lane coordinate area checks measure against. Towers are
// anchored at their left edge, so their hit centre sits half a width in.
func (e *Entity) ImpactX() float64 {
	if e.Kind == KindTower {
		return e.X + e.Width/2
	}
	return e.X
}

// TakeDamage applies dmg and clamps health at zero.
func (e *Entity) TakeDamage(dmg float64) {
	if dmg <= 0 {
		return
	}
	e.HP = math.Max(0, e.HP-dmg)
}

func (e *Entity) HealthFraction() float64 {
	if e.MaxHP <= 0 {
		return 0
	}
	return e.HP / e.MaxHP
}

func (e *Entity) dropLock() {
	e.TargetID = ""
	e.RampUp = 0
}

func laneDistance(a, b *Entity) float64 { return math.Abs(a.X - b.X) }

// ProjectileKind tags projectile behaviour.
type ProjectileKind int

const (
	ProjectileDirect ProjectileKind = iota
	ProjectileArrow
	ProjectileLobbed
	ProjectileSweep
	ProjectileBurst
)

func (k ProjectileKind) Homing() bool {
	return k == ProjectileArrow || k == ProjectileLobbed
}

// TargetClass restricts which units an area burst may damage.
type TargetClass int

const (
	ClassAny TargetClass = iota
	ClassGround
	ClassAir
)

func (c TargetClass) Admits(e *Entity) bool {
	switch c {
	case ClassGround:
		return !e.Flying
	case ClassAir:
		return e.Flying
	}
	return true
}

func classOf(e *Entity) TargetClass {
	if e.Flying {
		return ClassAir
	}
	return ClassGround
}

// Projectile is an in-flight effect. Speed is signed for sweeps and always
// positive otherwise.
type Projectile struct {
	ID               string
	Kind             ProjectileKind
	Side             Side
	OriginX, OriginY float64
	X, Y             float64
	TX, TY           float64
	TargetID         string
	Speed            float64
	Damage           float64
	Radius           float64
	StructureFactor  float64
	Filter           TargetClass
	Life             float64
	Visual           string

	hit  map[string]struct{}
	done bool
}

func newProjectile(kind ProjectileKind, side Side, x, y, tx, ty, speed, damage float64, visual string) *Projectile {
	return &Projectile{
		ID:              "p_" + uuid.NewString(),
		Kind:            kind,
		Side:            side,
		OriginX:         x,
		OriginY:         y,
		X:               x,
		Y:               y,
		TX:              tx,
		TY:              ty,
		Speed:           speed,
		Damage:          damage,
		StructureFactor: 1,
		Visual:          visual,
	}
}

// Hits reports whether the sweep already affected id.
func (p *Projectile) Hits(id string) bool {
	_, ok := p.hit[id]
	return ok
}

func (p *Projectile) markHit(id string) {
	if p.hit == nil {
		p.hit = make(map[string]struct{})
	}
	p.hit[id] = struct{}{}
}

func (p *Projectile) Area() bool { return p.Radius > 0 }
