package flavor

import "clashlane/internal/battle"

// Entry is the static strategy tip and lore for one card.
type Entry struct {
	Card battle.Card `json:"card"`
	Name string      `json:"name"`
	Tip  string      `json:"tip"`
	Lore string      `json:"lore"`
}

var knowledge = map[battle.Card]Entry{
	battle.CardKnight: {
		Tip:  "A cheap tank. Place him in front of Archers or Wizards to soak up damage while they deal the pain.",
		Lore: "He has a magnificent mustache, but refuses to take off his helmet to show it. He smells like cheap cologne.",
	},
	battle.CardGiant: {
		Tip:  "He ignores enemy troops to punch buildings. Use him as a meat shield to distract enemies while your other troops kill them!",
		Lore: "He's actually a pacifist who just really, really hates architecture. He wants to return the world to nature.",
	},
	battle.CardArcher: {
		Tip:  "Great vs air units and distractions. Keep her behind a tank and she will pick flyers out of the sky.",
		Lore: "Two sisters with pink hair. They constantly argue about whose aim is better, but they never miss lunch.",
	},
	battle.CardSkeletonArmy: {
		Tip:  "The ultimate tank killer! Surround a Giant or Mini P.E.K.K.A with these guys to melt them instantly. Watch out for splash!",
		Lore: "Larry leads the pack. The other skeletons are just his cousins named Harry, Barry, Gary, Jerry...",
	},
	battle.CardBats: {
		Tip:  "Fast and cheap air cycle. Use them to distract an Inferno Dragon or chip down a Knight freely.",
		Lore: "They screech at high frequencies. If you listen closely, they are actually complaining about the cave rent prices.",
	},
	battle.CardDragon: {
		Tip:  "Damage ramps up over time! Protect him for 4 seconds and he will melt through Giants and Towers like butter.",
		Lore: "He wears a helmet because he's clumsy. His mom packed him a lunchbox that he keeps inside his armor.",
	},
	battle.CardWizard: {
		Tip:  "Deals splash damage! He is the best counter to Skeleton Army and Bats. Keep him behind a tank.",
		Lore: "He controls fire with his hands but still can't toast a piece of bread without burning it. Show-off.",
	},
	battle.CardMiniPekka: {
		Tip:  "High damage glass cannon. He destroys Giants in a few hits but gets distracted by Skeletons easily.",
		Lore: "The armor is just for show. Inside, he is powered by a relentless, unending desire for pancakes.",
	},
	battle.CardCannon: {
		Tip:  "Pull building-targeters like Giants to the center of the arena so your tower can shoot them!",
		Lore: "It's a cannon on wheels, but the wheels are rusted shut. It hasn't moved since 2016.",
	},
	battle.CardFireball: {
		Tip:  "Deals area damage anywhere. Save it for when the enemy groups their Wizard and Archers together!",
		Lore: "It's literally a ball of fire. It solves most problems. If it doesn't, use a bigger fireball.",
	},
	battle.CardFreeze: {
		Tip:  "Surprise element! Freeze the enemy tower right when your army connects for massive damage.",
		Lore: "It doesn't kill them, it just makes them really, really cold and awkward for 4 seconds.",
	},
	battle.CardLog: {
		Tip:  "Pushes back all ground units. Use it to stall a charging push or clear a Skeleton Army instantly.",
		Lore: "It was once a tree. Now it seeks revenge on everything that walks. It hates sawdust.",
	},
}

// Fallback returns the static entry for card.
func Fallback(card battle.Card) (Entry, bool) {
	e, ok := knowledge[card]
	if !ok {
		return Entry{}, false
	}
	e.Card = card
	if st, ok := card.Stats(); ok {
		e.Name = st.Name
	}
	return e, true
}

// Entries lists every fallback entry in deck order.
func Entries() []Entry {
	out := make([]Entry, 0, len(battle.FullDeck))
	for _, c := range battle.FullDeck {
		if e, ok := Fallback(c); ok {
			out = append(out, e)
		}
	}
	return out
}

var localTaunts = []string{
	"Hehehehe!", "Oops!", "Is that all?", "My tower!!!", "Stop that!", "I will win!", "Beat me if u can!", "Grrr!",
}

const (
	tipSystem = `You are a battle hardened War General.
Return the response in this EXACT format:
Tip: [Strategy Tip here]
Lore: [Backstory here]
Keep the tip practical for a lane battle card game. Keep the lore funny or epic.`
	tauntSystem = "You are the Red King of a lane battle card game. Arrogant and funny. Max 5 words."
	recapSystem = "You are a hysterical medieval sports commentator. Give a 12-word max recap of this battle outcome. Use emojis."
)

// Chat triggers raised by match events.
const (
	TriggerMatchStart   = "Match Start"
	TriggerSuddenDeath  = "Tiebreaker started! Towers losing health!"
	TriggerDoubleElixir = "Double Elixir! Mana flowing!"
	TriggerDraw         = "A draw? Unacceptable!"
	TriggerSpeakerLost  = "You got lucky this time!"
	TriggerSpeakerWon   = "Hah! Too easy!"
	TriggerTowerTaken   = "Hah! I destroyed your tower!"
	TriggerTowerLost    = "No! My tower! You'll pay for that!"
)
