package battle

import "math"

func (m *Match) updateUnits(dt float64) {
	now := m.elapsed
	for _, u := range m.units {
		if !u.Alive() || u.Frozen(now) {
			continue
		}
		if u.Kind == KindCannon {
			u.TakeDamage(cannonDecayPerMs * dt)
			if !u.Alive() {
				continue
			}
		}
		u.X = math.Max(0, math.Min(BoardWidth, u.X))
		m.engage(u, m.resolveTarget(u), dt)
	}
}

// resolveTarget runs the building-seeking override, lock validation and, if
// needed, fresh acquisition for one unit.
func (m *Match) resolveTarget(u *Entity) *Entity {
	if u.BuildingsOnly {
		if b := m.nearestStructure(u); b != nil && b.ID != u.TargetID {
			u.TargetID = b.ID
			u.State = StateMoving
		}
	}

	var target *Entity
	if u.TargetID != "" {
		locked := m.enemyByID(u, u.TargetID)
		switch {
		case locked == nil || !locked.Alive():
			u.dropLock()
		case u.State == StateAttacking:
			if laneDistance(u, locked) <= u.Range {
				target = locked
			} else {
				u.dropLock()
			}
		case locked.Structure && !u.BuildingsOnly:
			// A structure reached by fallback is a soft lock: re-scan so a
			// unit in sight can still pull the walker off its path.
		default:
			target = locked
		}
	}
	if target == nil {
		target = m.acquire(u)
	}
	return target
}

func (m *Match) enemyByID(u *Entity, id string) *Entity {
	e, ok := m.index[id]
	if !ok || e.Side == u.Side {
		return nil
	}
	return e
}

// canEngage applies the legal-target rules: ground-only attackers ignore
// flyers and building seekers ignore everything but structures.
func canEngage(u, e *Entity) bool {
	if e.Flying && !u.TargetsAir {
		return false
	}
	if u.BuildingsOnly && !e.Structure {
		return false
	}
	return true
}

// eachEnemy visits live enemy units first, then the enemy tower. Nearest-pick
// ties go to whichever is visited first.
func (m *Match) eachEnemy(side Side, fn func(*Entity)) {
	for _, e := range m.units {
		if e.Side != side && e.Alive() {
			fn(e)
		}
	}
	if t := m.towers[side.Opponent()]; t.Alive() {
		fn(t)
	}
}

func (m *Match) acquire(u *Entity) *Entity {
	var best *Entity
	bestDist := math.Inf(1)
	m.eachEnemy(u.Side, func(e *Entity) {
		if !canEngage(u, e) {
			return
		}
		if d := laneDistance(u, e); d <= u.Sight && d < bestDist {
			best, bestDist = e, d
		}
	})
	if best != nil {
		return best
	}
	return m.nearestStructure(u)
}

// nearestStructure ignores sight range.
func (m *Match) nearestStructure(u *Entity) *Entity {
	var best *Entity
	bestDist := math.Inf(1)
	m.eachEnemy(u.Side, func(e *Entity) {
		if !e.Structure {
			return
		}
		if d := laneDistance(u, e); d < bestDist {
			best, bestDist = e, d
		}
	})
	return best
}

func (m *Match) engage(u, target *Entity, dt float64) {
	if target == nil {
		u.State = StateIdle
		u.dropLock()
		return
	}
	u.TargetID = target.ID
	if laneDistance(u, target) <= u.Range {
		u.State = StateAttacking
		if m.elapsed-u.LastAttack > u.Cooldown {
			m.strike(u, target)
			u.LastAttack = m.elapsed
		}
		return
	}
	u.State = StateMoving
	if u.Speed <= 0 || u.Structure {
		return
	}
	dir := -1.0
	if target.X > u.X {
		dir = 1
	}
	u.X += u.Speed * dt / 1000 * dir
}

// strike dispatches on the attacker's variant. Contact variants damage now;
// ranged variants only launch a projectile.
func (m *Match) strike(u, target *Entity) {
	switch u.Attack {
	case AttackMelee:
		target.TakeDamage(u.Damage)
		m.emit(Event{Kind: EventShot, Side: u.Side, Visual: "melee"})
	case AttackRamp:
		u.RampUp = math.Min(u.RampUp+rampStep, rampCeiling)
		target.TakeDamage(u.Damage + u.RampUp)
		m.emit(Event{Kind: EventShot, Side: u.Side, Visual: "beam"})
	case AttackArrow:
		p := newProjectile(ProjectileArrow, u.Side, u.X, u.Y+10, target.X, target.Y+10, 400, u.Damage, "arrow")
		p.TargetID = target.ID
		m.launch(p)
	case AttackBurst:
		p := newProjectile(ProjectileBurst, u.Side, u.X, u.Y+10, target.X, target.Y+10, 350, u.Damage, "magic")
		p.Radius = 40
		p.Filter = classOf(target)
		m.launch(p)
	case AttackLobbed:
		p := newProjectile(ProjectileLobbed, u.Side, u.X, u.Y, target.X, target.Y+10, 400, u.Damage, "cannonball")
		p.TargetID = target.ID
		m.launch(p)
	case AttackTower:
		m.towerShot(u, target)
	}
}

func (m *Match) launch(p *Projectile) {
	m.projectiles = append(m.projectiles, p)
	m.emit(Event{Kind: EventShot, Side: p.Side, Visual: p.Visual})
}

// updateTowers runs lock validation and acquisition for both base structures.
// Towers only ever engage enemy units.
func (m *Match) updateTowers() {
	now := m.elapsed
	for _, t := range m.towers {
		if !t.Alive() || t.Frozen(now) {
			continue
		}
		var target *Entity
		if t.TargetID != "" {
			locked := m.enemyByID(t, t.TargetID)
			if locked != nil && locked.Alive() && locked.Kind != KindTower && laneDistance(t, locked) <= t.Range {
				target = locked
			} else {
				t.dropLock()
			}
		}
		if target == nil {
			bestDist := math.Inf(1)
			for _, u := range m.units {
				if u.Side == t.Side || !u.Alive() {
					continue
				}
				if d := laneDistance(t, u); d <= t.Range && d < bestDist {
					target, bestDist = u, d
				}
			}
		}
		if target == nil {
			t.State = StateIdle
			continue
		}
		t.TargetID = target.ID
		t.State = StateAttacking
		if now-t.LastAttack > t.Cooldown {
			m.strike(t, target)
			t.LastAttack = now
		}
	}
}

// towerShot applies long-range falloff at launch time.
func (m *Match) towerShot(t, target *Entity) {
	dmg := t.Damage
	if laneDistance(t, target) > towerFalloffDist {
		dmg *= towerFalloffScale
	}
	p := newProjectile(ProjectileArrow, t.Side, t.X+t.Width/2, t.Y, target.X, target.Y, 450, dmg, "arrow")
	p.TargetID = target.ID
	m.launch(p)
}
