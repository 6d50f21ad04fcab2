package data

// Outcome is a match result from the profile owner's point of view.
type Outcome string

const (
	Win  Outcome = "win"
	Loss Outcome = "loss"
	Draw Outcome = "draw"
)

// Result describes one finished match for a single player.
type Result struct {
	Outcome     Outcome
	SuddenDeath bool    // the match went past regulation time
	OwnHealth   float64 // own structure health fraction at the end
}

const (
	winTrophies  = 30
	lossTrophies = -20
)

func TrophyDelta(o Outcome) int {
	switch o {
	case Win:
		return winTrophies
	case Loss:
		return lossTrophies
	}
	return 0
}

func (r Result) tally() (wins, losses, draws int) {
	switch r.Outcome {
	case Win:
		return 1, 0, 0
	case Loss:
		return 0, 1, 0
	case Draw:
		return 0, 0, 1
	}
	return 0, 0, 0
}

// medalsFor lists the medals r earns on top of before. Medals already held are
// left out.
func medalsFor(before Profile, r Result) []string {
	held := make(map[string]bool, len(before.Medals))
	for _, m := range before.Medals {
		held[m] = true
	}
	var earned []string
	add := func(id string) {
		if !held[id] {
			earned = append(earned, id)
		}
	}
	switch r.Outcome {
	case Win:
		if before.Wins == 0 {
			add("first_win")
		}
		if r.OwnHealth >= 1 {
			add("flawless")
		}
		if r.SuddenDeath {
			add("overtime")
		}
	case Draw:
		add("stalemate")
	}
	return earned
}
