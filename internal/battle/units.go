package battle

import "math"

// Board geometry, in lane units.
const (
	BoardWidth  = 800.0
	Midline     = BoardWidth / 2
	LaneY       = 300.0
	FlyingY     = 200.0
	StructureY  = LaneY - 60
	HandSize    = 4
	TowerHP     = 3000.0
	towerLeftX  = 30.0
	towerRightX = BoardWidth - 80
)

type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) Opponent() Side {
	if s == SideLeft {
		return SideRight
	}
	return SideLeft
}

func (s Side) String() string {
	if s == SideLeft {
		return "left"
	}
	return "right"
}

// Forward is +1 for the left side (it attacks toward larger x) and -1 for the right.
func (s Side) Forward() float64 {
	if s == SideLeft {
		return 1
	}
	return -1
}

// Card is the identity of a deployable card.
type Card string

const (
	CardKnight       Card = "knight"
	CardGiant        Card = "giant"
	CardArcher       Card = "archer"
	CardSkeletonArmy Card = "skeleton_army"
	CardDragon       Card = "dragon"
	CardCannon       Card = "cannon"
	CardWizard       Card = "wizard"
	CardMiniPekka    Card = "mini_pekka"
	CardBats         Card = "bats"
	CardFireball     Card = "fireball"
	CardLog          Card = "log"
	CardFreeze       Card = "freeze"
)

// CardStats is immutable reference data. Cooldown is in milliseconds.
type CardStats struct {
	ID          Card    `json:"id" msgpack:"id"`
	Name        string  `json:"name" msgpack:"name"`
	Cost        int     `json:"cost" msgpack:"cost"`
	Cooldown    float64 `json:"cooldown_ms" msgpack:"cooldown_ms"`
	Description string  `json:"description" msgpack:"description"`
	Spell       bool    `json:"spell" msgpack:"spell"`
}

var Cards = map[Card]CardStats{
	CardKnight:       {ID: CardKnight, Name: "Knight", Cost: 3, Cooldown: 3000, Description: "Melee mini-tank. Good stats for cost."},
	CardGiant:        {ID: CardGiant, Name: "Giant", Cost: 5, Cooldown: 5000, Description: "Ignores troops. Attacks buildings only."},
	CardArcher:       {ID: CardArcher, Name: "Archer", Cost: 3, Cooldown: 3000, Description: "Ranged attackers. Good vs air."},
	CardSkeletonArmy: {ID: CardSkeletonArmy, Name: "Skel Army", Cost: 3, Cooldown: 6000, Description: "Swarm of skeletons. Weak to splash."},
	CardBats:         {ID: CardBats, Name: "Bats", Cost: 2, Cooldown: 3000, Description: "Fast flying swarm. Cheap cycle."},
	CardDragon:       {ID: CardDragon, Name: "Inf Dragon", Cost: 4, Cooldown: 7000, Description: "Flying. Damage ramps up over time."},
	CardWizard:       {ID: CardWizard, Name: "Wizard", Cost: 5, Cooldown: 5000, Description: "Deals area damage (Splash)."},
	CardMiniPekka:    {ID: CardMiniPekka, Name: "Mini P.E.K.K.A", Cost: 4, Cooldown: 4000, Description: "High single target damage. Glass cannon."},
	CardCannon:       {ID: CardCannon, Name: "Cannon", Cost: 3, Cooldown: 8000, Description: "Defensive building. Distracts giants."},
	CardFireball:     {ID: CardFireball, Name: "Fireball", Cost: 4, Cooldown: 6000, Description: "Spell. Deals area damage anywhere.", Spell: true},
	CardFreeze:       {ID: CardFreeze, Name: "Freeze", Cost: 4, Cooldown: 8000, Description: "Spell. Freezes enemies for 4 seconds.", Spell: true},
	CardLog:          {ID: CardLog, Name: "The Log", Cost: 2, Cooldown: 4000, Description: "Spell. Rolls and pushes back ground troops.", Spell: true},
}

// FullDeck is the ordered set of every playable card. Each side shuffles its own copy.
var FullDeck = []Card{
	CardKnight, CardArcher, CardGiant, CardSkeletonArmy, CardDragon, CardCannon,
	CardWizard, CardMiniPekka, CardBats, CardFireball, CardLog, CardFreeze,
}

func (c Card) Stats() (CardStats, bool) {
	s, ok := Cards[c]
	return s, ok
}

func (c Card) IsSpell() bool {
	return Cards[c].Spell
}

// Cost returns the elixir cost, or math.MaxInt for unknown cards.
func (c Card) Cost() int {
	s, ok := Cards[c]
	if !ok {
		return math.MaxInt
	}
	return s.Cost
}

// Kind is an entity archetype.
type Kind string

const (
	KindKnight    Kind = "knight"
	KindGiant     Kind = "giant"
	KindArcher    Kind = "archer"
	KindSkeleton  Kind = "skeleton"
	KindDragon    Kind = "dragon"
	KindCannon    Kind = "cannon"
	KindWizard    Kind = "wizard"
	KindMiniPekka Kind = "mini_pekka"
	KindBats      Kind = "bats"
	KindTower     Kind = "tower"
)

// Attack is the closed set of ways an entity delivers damage.
type Attack int

const (
	AttackMelee Attack = iota
	AttackRamp
	AttackArrow
	AttackBurst
	AttackLobbed
	AttackTower
)

func (a Attack) Ranged() bool {
	return a == AttackArrow || a == AttackBurst || a == AttackLobbed || a == AttackTower
}

// UnitStats is the fixed per-kind stat line. Times are milliseconds, speed is units per second.
type UnitStats struct {
	Width, Height float64
	HP            float64
	Damage        float64
	Range         float64
	Sight         float64
	Speed         float64
	Cooldown      float64
	Cost          int
	Flying        bool
	Structure     bool
	TargetsAir    bool
	BuildingsOnly bool
	Attack        Attack
}

var UnitData = map[Kind]UnitStats{
	KindKnight:    {Width: 30, Height: 40, HP: 750, Damage: 80, Range: 40, Sight: 200, Speed: 50, Cooldown: 1200, Cost: 3, Attack: AttackMelee},
	KindGiant:     {Width: 50, Height: 70, HP: 2200, Damage: 140, Range: 40, Sight: 600, Speed: 30, Cooldown: 1500, Cost: 5, BuildingsOnly: true, Attack: AttackMelee},
	KindArcher:    {Width: 25, Height: 35, HP: 200, Damage: 45, Range: 170, Sight: 220, Speed: 50, Cooldown: 1000, Cost: 3, TargetsAir: true, Attack: AttackArrow},
	KindSkeleton:  {Width: 15, Height: 20, HP: 50, Damage: 40, Range: 20, Sight: 200, Speed: 65, Cooldown: 800, Cost: 1, Attack: AttackMelee},
	KindBats:      {Width: 20, Height: 15, HP: 40, Damage: 40, Range: 20, Sight: 200, Speed: 85, Cooldown: 600, Cost: 1, Flying: true, TargetsAir: true, Attack: AttackMelee},
	KindDragon:    {Width: 40, Height: 30, HP: 400, Damage: 5, Range: 110, Sight: 200, Speed: 45, Cooldown: 400, Cost: 4, Flying: true, TargetsAir: true, Attack: AttackRamp},
	KindWizard:    {Width: 30, Height: 40, HP: 350, Damage: 130, Range: 165, Sight: 220, Speed: 50, Cooldown: 1400, Cost: 5, TargetsAir: true, Attack: AttackBurst},
	KindMiniPekka: {Width: 35, Height: 35, HP: 650, Damage: 350, Range: 30, Sight: 200, Speed: 60, Cooldown: 1600, Cost: 4, Attack: AttackMelee},
	KindCannon:    {Width: 40, Height: 40, HP: 700, Damage: 70, Range: 200, Sight: 200, Cooldown: 900, Cost: 3, Structure: true, TargetsAir: true, Attack: AttackLobbed},
	KindTower:     {Width: 50, Height: 100, HP: TowerHP, Damage: 60, Range: 300, Sight: 300, Cooldown: 800, Structure: true, TargetsAir: true, Attack: AttackTower},
}

// cardKinds maps unit cards to the archetype they spawn. Spells are absent.
var cardKinds = map[Card]Kind{
	CardKnight:       KindKnight,
	CardGiant:        KindGiant,
	CardArcher:       KindArcher,
	CardSkeletonArmy: KindSkeleton,
	CardDragon:       KindDragon,
	CardCannon:       KindCannon,
	CardWizard:       KindWizard,
	CardMiniPekka:    KindMiniPekka,
	CardBats:         KindBats,
}

func (c Card) Kind() (Kind, bool) {
	k, ok := cardKinds[c]
	return k, ok
}

// Ramp-up and falloff tuning.
const (
	rampStep          = 8.0
	rampCeiling       = 200.0
	towerFalloffDist  = 250.0
	towerFalloffScale = 0.5
	cannonDecayPerMs  = 0.07
)
