package battle

import "math"

const (
	arrivalEpsilon = 15.0
	contactRadius  = 30.0
	sweepContact   = 30.0
	sweepKnockback = 40.0
)

func (m *Match) updateProjectiles(dt float64) {
	for _, p := range m.projectiles {
		if p.done {
			continue
		}
		if p.Kind == ProjectileSweep {
			m.advanceSweep(p, dt)
			continue
		}
		if p.Kind.Homing() && p.TargetID != "" {
			// A dead or removed target leaves the last aim point in place.
			if t, ok := m.index[p.TargetID]; ok && t.Alive() {
				p.TX = t.X
				p.TY = t.Y + t.Height/2
			}
		}
		dx, dy := p.TX-p.X, p.TY-p.Y
		dist := math.Hypot(dx, dy)
		if dist < arrivalEpsilon {
			m.resolve(p)
			p.done = true
			continue
		}
		move := p.Speed * dt / 1000
		if move >= dist {
			p.X, p.Y = p.TX, p.TY
			continue
		}
		p.X += dx / dist * move
		p.Y += dy / dist * move
	}
}

// advanceSweep rolls a ground sweep along the lane. Each enemy ground unit is
// hit at most once per sweep. Contact covers the whole stretch rolled this
// tick, so coarse ticks cannot skip a unit.
func (m *Match) advanceSweep(p *Projectile, dt float64) {
	from := p.X
	step := p.Speed * dt / 1000
	p.X += step
	p.Life -= math.Abs(step)
	push := sweepKnockback
	if p.Speed < 0 {
		push = -sweepKnockback
	}
	lo := math.Min(from, p.X) - sweepContact
	hi := math.Max(from, p.X) + sweepContact
	for _, u := range m.units {
		if u.Side == p.Side || !u.Alive() || u.Flying || p.Hits(u.ID) {
			continue
		}
		if u.X > lo && u.X < hi {
			u.TakeDamage(p.Damage)
			p.markHit(u.ID)
			if !u.Structure {
				u.X += push
			}
		}
	}
	if p.Life <= 0 {
		p.done = true
	}
}

// resolve applies a projectile's payload at its impact point. Area payloads
// visit every eligible enemy exactly once; point payloads damage at most one
// unit and one structure.
func (m *Match) resolve(p *Projectile) {
	if p.Area() {
		m.emit(Event{Kind: EventExplosion, Side: p.Side, Visual: p.Visual})
		for _, u := range m.units {
			if u.Side == p.Side || !u.Alive() || !p.Filter.Admits(u) {
				continue
			}
			if math.Abs(u.X-p.TX) < p.Radius {
				u.TakeDamage(p.Damage)
			}
		}
		for _, t := range m.towers {
			if t.Side == p.Side || !t.Alive() {
				continue
			}
			if math.Abs(t.ImpactX()-p.TX) < p.Radius {
				t.TakeDamage(p.Damage * p.StructureFactor)
			}
		}
		return
	}
	for _, u := range m.units {
		if u.Side != p.Side && u.Alive() && math.Abs(u.X-p.TX) < contactRadius {
			u.TakeDamage(p.Damage)
			break
		}
	}
	for _, t := range m.towers {
		if t.Side != p.Side && t.Alive() && math.Abs(t.ImpactX()-p.TX) < contactRadius {
			t.TakeDamage(p.Damage)
			break
		}
	}
}
