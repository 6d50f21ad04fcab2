package battle

import (
	"testing"
	"time"
)

func runUntilSettled(t *testing.T, m *Match) {
	t.Helper()
	for i := 0; len(m.Projectiles()) > 0; i++ {
		if i > 200 {
			t.Fatal("projectiles never settled")
		}
		m.Update(tick)
	}
}

func TestSweepHitsEachUnitOnce(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	knights := []*Entity{
		place(m, KindKnight, SideRight, 350),
		place(m, KindKnight, SideRight, 380),
		place(m, KindKnight, SideRight, 410),
	}
	hold(knights...)

	m.cast(SideLeft, CardLog, 300)
	runUntilSettled(t, m)

	for i, k := range knights {
		if k.HP != 750-80 {
			t.Errorf("knight %d hp = %v, want 670", i, k.HP)
		}
		if k.X <= 350+float64(i)*30 {
			t.Errorf("knight %d was not knocked back, x=%v", i, k.X)
		}
	}
}

func TestSweepSkipsFlyers(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	bat := place(m, KindBats, SideRight, 350)
	hold(bat)

	m.cast(SideLeft, CardLog, 300)
	runUntilSettled(t, m)

	if bat.HP != bat.MaxHP {
		t.Fatalf("log hit a flyer, hp=%v", bat.HP)
	}
}

func TestBurstRespectsFilter(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	knight := place(m, KindKnight, SideRight, 310)
	bat := place(m, KindBats, SideRight, 310)
	hold(knight, bat)

	p := newProjectile(ProjectileBurst, SideLeft, 300, 300, 300, 300, 350, 130, "magic")
	p.Radius = 40
	p.Filter = ClassAir
	m.projectiles = append(m.projectiles, p)

	m.Update(tick)

	if knight.HP != 750 {
		t.Fatalf("ground unit hit by an air-only burst, hp=%v", knight.HP)
	}
	if bat.HP != 0 {
		t.Fatalf("flyer hp = %v, want 0", bat.HP)
	}
	if len(m.Units()) != 1 {
		t.Fatalf("dead flyer not removed, %d units", len(m.Units()))
	}
}

func TestFireballScalesStructureDamage(t *testing.T) {
	m, q := newTestMatch(t)
	quietTowers(m)
	knight := place(m, KindKnight, SideRight, 760)
	hold(knight)

	m.cast(SideLeft, CardFireball, 745)
	runUntilSettled(t, m)

	if want := TowerHP - 325*0.35; !approx(m.Tower(SideRight).HP, want, 1e-9) {
		t.Fatalf("tower hp = %v, want %v", m.Tower(SideRight).HP, want)
	}
	if knight.HP != 750-325 {
		t.Fatalf("knight hp = %v, want 425", knight.HP)
	}
	if n := countEvents(q.Drain(), EventExplosion); n != 1 {
		t.Fatalf("explosion events = %d, want 1", n)
	}
}

func TestHomingContinuesAfterTargetLoss(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	knight := place(m, KindKnight, SideRight, 305)
	hold(knight)

	p := newProjectile(ProjectileArrow, SideLeft, 200, 310, 300, 310, 400, 45, "arrow")
	p.TargetID = "e_gone"
	m.projectiles = append(m.projectiles, p)

	m.Update(tick)
	if !approx(p.X, 240, 1e-9) || p.TX != 300 {
		t.Fatalf("arrow at x=%v aiming %v, want 240 aiming 300", p.X, p.TX)
	}
	runUntilSettled(t, m)
	if knight.HP != 750-45 {
		t.Fatalf("knight hp = %v, want 705", knight.HP)
	}
}

func TestPointProjectileHitsOneUnit(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	a := place(m, KindKnight, SideRight, 300)
	b := place(m, KindKnight, SideRight, 300)
	hold(a, b)

	p := newProjectile(ProjectileDirect, SideLeft, 300, 310, 300, 310, 400, 100, "arrow")
	m.projectiles = append(m.projectiles, p)
	m.Update(tick)

	hit := 0
	for _, k := range []*Entity{a, b} {
		if k.HP < 750 {
			hit++
		}
	}
	if hit != 1 {
		t.Fatalf("%d units damaged, want 1", hit)
	}
}

func TestPointProjectileDamagesStructure(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	tower := m.Tower(SideRight)

	p := newProjectile(ProjectileDirect, SideLeft, tower.ImpactX(), 300, tower.ImpactX(), 300, 400, 100, "arrow")
	m.projectiles = append(m.projectiles, p)
	m.Update(tick)

	if tower.HP != TowerHP-100 {
		t.Fatalf("tower hp = %v, want %v", tower.HP, TowerHP-100)
	}
}

func TestSweepCoversWholeStepOnCoarseTicks(t *testing.T) {
	m, _ := newTestMatch(t)
	quietTowers(m)
	knight := place(m, KindKnight, SideRight, 245)
	hold(knight)

	m.cast(SideLeft, CardLog, 200)
	m.Update(500 * time.Millisecond)

	if knight.HP != 750-80 {
		t.Fatalf("log rolled past the knight without hitting it, hp=%v", knight.HP)
	}
	m.Update(500 * time.Millisecond)
	if knight.HP != 750-80 {
		t.Fatalf("knight hit twice by one log, hp=%v", knight.HP)
	}
}
