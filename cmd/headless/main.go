package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"
	"time"

	"clashlane/internal/battle"
	"clashlane/internal/config"
)

type runStats struct {
	runIndex int
	seed     int64

	outcome     battle.Outcome
	elapsedMs   float64
	suddenDeath bool
	leftHP      float64
	rightHP     float64
	plays       [2]int
	events      map[battle.EventKind]int
	cards       [2]map[battle.Card]int
}

type aggregate struct {
	runs        int
	leftWins    int
	rightWins   int
	draws       int
	suddenDeath int
	avgSeconds  float64
	avgPlays    [2]float64
}

func main() {
	var runs int
	var seedBase int64
	var seedStep int64
	var leftTier string
	var rightTier string
	var tickMs int
	var configPath string

	flag.IntVar(&runs, "runs", 5, "number of matches")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&leftTier, "left", "hard", "left opponent tier (easy, medium, hard)")
	flag.StringVar(&rightTier, "right", "medium", "right opponent tier (easy, medium, hard)")
	flag.IntVar(&tickMs, "tick", 33, "simulation tick in milliseconds")
	flag.StringVar(&configPath, "config", "", "optional YAML config for match rules")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if tickMs <= 0 {
		fmt.Println("error: -tick must be > 0")
		return
	}
	left, ok := battle.ParseTier(leftTier)
	if !ok {
		fmt.Printf("error: unsupported tier %q for -left\n", leftTier)
		return
	}
	right, ok := battle.ParseTier(rightTier)
	if !ok {
		fmt.Printf("error: unsupported tier %q for -right\n", rightTier)
		return
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	rules := cfg.Rules()
	tick := time.Duration(tickMs) * time.Millisecond

	fmt.Printf("=== Headless Match Report ===\n")
	fmt.Printf("left=%s right=%s runs=%d tick=%s seed_base=%d seed_step=%d\n\n", left, right, runs, tick, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		rs := runMatch(i+1, seed, rules, [2]battle.Tier{left, right}, tick)
		all = append(all, rs)
		printRun(rs)
	}
	printAggregate(summarize(all))
}

// runMatch plays one opponent-vs-opponent match to conclusion.
func runMatch(runIndex int, seed int64, rules battle.Rules, tiers [2]battle.Tier, tick time.Duration) runStats {
	rs := runStats{
		runIndex: runIndex,
		seed:     seed,
		events:   make(map[battle.EventKind]int),
		cards:    [2]map[battle.Card]int{make(map[battle.Card]int), make(map[battle.Card]int)},
	}
	sink := battle.EventSinkFunc(func(ev battle.Event) {
		rs.events[ev.Kind]++
		switch ev.Kind {
		case battle.EventDeployed:
			rs.cards[ev.Side][ev.Card]++
		case battle.EventSuddenDeath:
			rs.suddenDeath = true
		}
	})
	m := battle.NewMatch(rules, battle.Options{Seed: seed, Sink: sink, Tiers: tiers})

	// Sudden death always ends a match, so this bound is only a guard.
	limit := rules.MatchDuration + time.Duration(battle.TowerHP/rules.SuddenDeathDecay)*time.Millisecond + time.Minute
	for elapsed := time.Duration(0); m.Phase() != battle.PhaseConcluded && elapsed < limit; elapsed += tick {
		m.Update(tick)
	}

	sum := m.Summary()
	rs.outcome = sum.Outcome
	rs.elapsedMs = m.Elapsed()
	rs.leftHP = sum.LeftHP
	rs.rightHP = sum.RightHP
	rs.plays = sum.Plays
	return rs
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("outcome=%s duration=%.1fs sudden_death=%t\n", rs.outcome, rs.elapsedMs/1000, rs.suddenDeath)
	fmt.Printf("structures: left=%.0f right=%.0f\n", rs.leftHP, rs.rightHP)
	fmt.Printf("plays: left=%d right=%d\n", rs.plays[battle.SideLeft], rs.plays[battle.SideRight])
	fmt.Printf("cards_left: %s\n", joinCounts(rs.cards[battle.SideLeft]))
	fmt.Printf("cards_right: %s\n", joinCounts(rs.cards[battle.SideRight]))
	fmt.Printf("events: shot=%d explosion=%d taunt=%d elixir_full=%d\n\n",
		rs.events[battle.EventShot], rs.events[battle.EventExplosion], rs.events[battle.EventTaunt], rs.events[battle.EventElixirFull])
}

func summarize(all []runStats) aggregate {
	agg := aggregate{runs: len(all)}
	if len(all) == 0 {
		return agg
	}
	var seconds float64
	var plays [2]int
	for _, rs := range all {
		switch rs.outcome {
		case battle.OutcomeLeftWins:
			agg.leftWins++
		case battle.OutcomeRightWins:
			agg.rightWins++
		case battle.OutcomeDraw:
			agg.draws++
		}
		if rs.suddenDeath {
			agg.suddenDeath++
		}
		seconds += rs.elapsedMs / 1000
		plays[0] += rs.plays[0]
		plays[1] += rs.plays[1]
	}
	n := float64(len(all))
	agg.avgSeconds = seconds / n
	agg.avgPlays = [2]float64{float64(plays[0]) / n, float64(plays[1]) / n}
	return agg
}

func printAggregate(agg aggregate) {
	fmt.Printf("=== Aggregate ===\n")
	fmt.Printf("runs=%d\n", agg.runs)
	fmt.Printf("results: left_wins=%d right_wins=%d draws=%d sudden_death=%d\n", agg.leftWins, agg.rightWins, agg.draws, agg.suddenDeath)
	fmt.Printf("avg_duration=%.1fs avg_plays: left=%.1f right=%.1f\n", agg.avgSeconds, agg.avgPlays[0], agg.avgPlays[1])
}

func joinCounts(counts map[battle.Card]int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for c := range counts {
		keys = append(keys, string(c))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, counts[battle.Card(k)]))
	}
	return strings.Join(parts, " ")
}
