package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"clashlane/internal/audio"
	"clashlane/internal/battle"
	"clashlane/internal/config"
	"clashlane/internal/flavor"

	"github.com/gdamore/tcell/v2"
	"github.com/gopxl/beep/speaker"
)

const (
	cursorStep  = 20.0
	overlayKeep = 4
	frameRate   = 30
)

var glyphs = map[battle.Kind]rune{
	battle.KindKnight:    'K',
	battle.KindGiant:     'G',
	battle.KindArcher:    'A',
	battle.KindSkeleton:  's',
	battle.KindDragon:    'D',
	battle.KindCannon:    'C',
	battle.KindWizard:    'W',
	battle.KindMiniPekka: 'P',
	battle.KindBats:      'b',
	battle.KindTower:     'T',
}

var projectileGlyphs = map[string]rune{
	"arrow":      '-',
	"magic":      'o',
	"cannonball": '@',
	"fireball":   '*',
	"log":        '=',
}

// Game is the terminal presentation of one human-vs-opponent match. The
// human plays the left side.
type Game struct {
	screen tcell.Screen
	cfg    config.Config
	tier   battle.Tier
	seed   int64

	match  *battle.Match
	cues   *audio.Queue
	flavor *flavor.Service
	gen    flavor.Generator
	synth  *audio.Synth

	cursorX   float64
	selected  int
	overlays  []string
	status    string
	audioInit bool
	recapped  bool
	rematches int
}

func NewGame(screen tcell.Screen, cfg config.Config, tier battle.Tier, gen flavor.Generator) *Game {
	g := &Game{
		screen:   screen,
		cfg:      cfg,
		tier:     tier,
		seed:     cfg.Seed(),
		gen:      gen,
		cursorX:  battle.Midline / 2,
		selected: -1,
	}
	if cfg.Audio.Enabled {
		g.synth = audio.NewSynth(cfg.Audio.SampleRate, cfg.Audio.Volume)
	}
	g.newMatch()
	return g
}

func (g *Game) initAudio() error {
	if g.synth == nil {
		return nil
	}
	rate := g.synth.SampleRate()
	err := speaker.Init(rate, rate.N(time.Second/10))
	if err == nil {
		g.audioInit = true
	}
	return err
}

func (g *Game) newMatch() {
	if g.flavor != nil {
		go g.flavor.Close()
	}
	g.flavor = flavor.NewService(flavor.Options{
		Generator:     g.gen,
		Timeout:       g.cfg.Flavor.Timeout,
		TauntCooldown: g.cfg.Flavor.TauntCooldown,
		Buffer:        g.cfg.Flavor.OverlayBuffer,
		Speaker:       battle.SideRight,
		Seed:          g.seed,
	})
	g.cues = audio.NewQueue(battle.SideLeft, 64)
	var tiers [2]battle.Tier
	tiers[battle.SideRight] = g.tier
	g.match = battle.NewMatch(g.cfg.Rules(), battle.Options{
		Seed:  g.seed + int64(g.rematches),
		Sink:  battle.MultiSink{g.cues, g.flavor},
		Tiers: tiers,
	})
	g.selected = -1
	g.status = ""
	g.recapped = false
	g.flavor.RequestTaunt(flavor.TriggerMatchStart)
}

func (g *Game) playCue(c audio.Cue) {
	if !g.audioInit {
		switch c {
		case audio.CueWin, audio.CueLose, audio.CueDraw, audio.CueTiebreaker:
			g.screen.Beep()
		}
		return
	}
	st, err := g.synth.Streamer(c)
	if err != nil {
		return
	}
	speaker.Play(st)
}

// column maps a lane position onto a screen column.
func column(x float64, width int) int {
	if width <= 1 {
		return 0
	}
	c := int(math.Round(x / battle.BoardWidth * float64(width-1)))
	if c < 0 {
		return 0
	}
	if c >= width {
		return width - 1
	}
	return c
}

// deploy plays the hand card in slot at the cursor.
func (g *Game) deploy(slot int) {
	cards := g.match.Hand(battle.SideLeft).Cards()
	if slot < 0 || slot >= len(cards) {
		return
	}
	card := cards[slot]
	g.selected = slot
	switch {
	case g.match.Deploy(card, battle.SideLeft, g.cursorX):
		g.status = fmt.Sprintf("deployed %s", card)
	case g.match.Elixir(battle.SideLeft) < float64(card.Cost()):
		g.status = fmt.Sprintf("not enough elixir for %s", card)
	case g.match.CoolingDown(battle.SideLeft, card):
		g.status = fmt.Sprintf("%s is cooling down", card)
	default:
		g.status = fmt.Sprintf("cannot place %s there", card)
	}
}

func (g *Game) moveCursor(dx float64) {
	g.cursorX = math.Max(0, math.Min(battle.BoardWidth, g.cursorX+dx))
}

// handleInput applies one terminal event and reports false to quit.
func (g *Game) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyLeft:
			g.moveCursor(-cursorStep)
		case tcell.KeyRight:
			g.moveCursor(cursorStep)
		case tcell.KeyRune:
			switch r := ev.Rune(); r {
			case '1', '2', '3', '4':
				g.deploy(int(r - '1'))
			case 'h':
				g.moveCursor(-cursorStep)
			case 'l':
				g.moveCursor(cursorStep)
			case 't':
				cards := g.match.Hand(battle.SideLeft).Cards()
				card := battle.Card("")
				if g.selected >= 0 && g.selected < len(cards) {
					card = cards[g.selected]
				}
				g.flavor.RequestTip(card)
			case 'r':
				if g.match.Phase() == battle.PhaseConcluded {
					g.rematches++
					g.newMatch()
				}
			case 'n':
				g.nextTier()
			case 'q':
				return false
			}
		}
	case *tcell.EventResize:
		g.screen.Sync()
	}
	return true
}

// nextTier starts a match against the next tier up after a win.
func (g *Game) nextTier() bool {
	if w, ok := g.match.Outcome().Winner(); !ok || w != battle.SideLeft {
		return false
	}
	next, ok := g.tier.Next()
	if !ok {
		return false
	}
	g.tier = next
	g.rematches++
	g.newMatch()
	return true
}

// step advances the match and collects everything it produced.
func (g *Game) step(dt time.Duration) {
	g.match.Update(dt)
	for _, c := range g.cues.Drain() {
		g.playCue(c)
	}
	for pending := true; pending; {
		select {
		case ov := <-g.flavor.Overlays():
			for _, line := range strings.Split(ov.Text, "\n") {
				g.overlays = append(g.overlays, line)
			}
		default:
			pending = false
		}
	}
	if n := len(g.overlays); n > overlayKeep {
		g.overlays = g.overlays[n-overlayKeep:]
	}
	if g.match.Phase() == battle.PhaseConcluded && !g.recapped {
		g.recapped = true
		g.status = "match over, press r for a rematch"
		if w, ok := g.match.Outcome().Winner(); ok && w == battle.SideLeft {
			if next, ok := g.tier.Next(); ok {
				g.status = fmt.Sprintf("you won, press n to face %s or r for a rematch", next)
			}
		}
		g.flavor.RequestRecap(g.match.Summary())
	}
}

func sideStyle(s battle.Side) tcell.Style {
	if s == battle.SideLeft {
		return tcell.StyleDefault.Foreground(tcell.ColorBlue)
	}
	return tcell.StyleDefault.Foreground(tcell.ColorRed)
}

func (g *Game) print(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		g.screen.SetContent(x+i, y, r, nil, style)
	}
}

func (g *Game) draw() {
	g.screen.Clear()
	width, _ := g.screen.Size()
	snap := g.match.Snapshot()

	const (
		rowHUD    = 0
		rowAir    = 2
		rowGround = 4
		rowTower  = 5
		rowCursor = 7
		rowHand   = 9
		rowStatus = 10
		rowChat   = 12
	)

	phase := string(snap.Phase)
	if snap.DoubleElixir && snap.Phase == battle.PhaseNormal {
		phase += " x2"
	}
	g.print(0, rowHUD, tcell.StyleDefault, fmt.Sprintf("%3.0fs  %-16s  you %4.1f elixir  %s vs %s",
		math.Ceil(snap.Remaining/1000), phase, snap.Elixir[battle.SideLeft], battle.SideLeft, g.tier))

	mid := column(battle.Midline, width)
	for _, row := range []int{rowAir, rowGround} {
		g.screen.SetContent(mid, row, '|', nil, tcell.StyleDefault.Dim(true))
	}
	for _, e := range snap.Entities {
		side := battle.SideLeft
		if e.Side == battle.SideRight.String() {
			side = battle.SideRight
		}
		row := rowGround
		switch {
		case e.Kind == battle.KindTower:
			row = rowTower
			g.print(column(e.X, width), rowTower+1, sideStyle(side), fmt.Sprintf("%3.0f%%", e.Health*100))
		case e.Flying:
			row = rowAir
		}
		style := sideStyle(side)
		if e.Frozen {
			style = style.Background(tcell.ColorLightCyan)
		}
		r, ok := glyphs[e.Kind]
		if !ok {
			r = '?'
		}
		g.screen.SetContent(column(e.X, width), row, r, nil, style)
	}
	for _, p := range snap.Projectiles {
		r, ok := projectileGlyphs[p.Visual]
		if !ok {
			r = '.'
		}
		row := rowGround
		if p.Y < battle.StructureY {
			row = rowAir
		}
		g.screen.SetContent(column(p.X, width), row, r, nil, tcell.StyleDefault.Foreground(tcell.ColorYellow))
	}
	g.screen.SetContent(column(g.cursorX, width), rowCursor, '^', nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Reverse(true))

	hand := snap.Hands[battle.SideLeft]
	playable := g.match.Hand(battle.SideLeft).Affordable(snap.Elixir[battle.SideLeft])
	x := 0
	for i, c := range hand.Cards {
		style := tcell.StyleDefault
		if !slices.Contains(playable, c) || g.match.CoolingDown(battle.SideLeft, c) {
			style = style.Dim(true)
		}
		if i == g.selected {
			style = style.Reverse(true)
		}
		label := fmt.Sprintf("[%d] %s(%d) ", i+1, c, c.Cost())
		g.print(x, rowHand, style, label)
		x += len(label)
	}
	g.print(x, rowHand, tcell.StyleDefault.Dim(true), "next: "+string(hand.Next))
	g.print(0, rowStatus, tcell.StyleDefault.Foreground(tcell.ColorGreen), g.status)
	for i, line := range g.overlays {
		g.print(0, rowChat+i, tcell.StyleDefault.Foreground(tcell.ColorPurple), line)
	}
	g.screen.Show()
}

func (g *Game) run() {
	tick := time.Second / frameRate
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- g.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if ev == nil || !g.handleInput(ev) {
				return
			}
		case <-ticker.C:
			g.step(tick)
			g.draw()
		}
	}
}

func (g *Game) cleanup() {
	if g.audioInit {
		speaker.Close()
	}
	g.flavor.Close()
	g.screen.Fini()
}

func main() {
	configPath := flag.String("config", "", "optional YAML config")
	tierFlag := flag.String("tier", "", "opponent tier (easy, medium, hard); overrides config")
	logPath := flag.String("log", "", "write logs to this file instead of discarding them")
	flag.Parse()

	// The terminal is ours once the screen starts.
	log.SetOutput(io.Discard)
	if *logPath != "" {
		f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		log.SetOutput(f)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	tier := cfg.Tier()
	if *tierFlag != "" {
		t, ok := battle.ParseTier(*tierFlag)
		if !ok {
			fmt.Fprintf(os.Stderr, "Unknown tier %q\n", *tierFlag)
			os.Exit(1)
		}
		tier = t
	}

	var gen flavor.Generator
	if cfg.Flavor.APIKey != "" {
		gen = flavor.NewClient(cfg.Flavor.Endpoint, cfg.Flavor.APIKey, cfg.Flavor.Timeout)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	game := NewGame(screen, cfg, tier, gen)
	if err := game.initAudio(); err != nil {
		// Non-fatal, game can run without sound
		log.Printf("Audio initialization failed: %v", err)
	}
	defer game.cleanup()

	game.run()
}
