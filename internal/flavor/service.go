package flavor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"clashlane/internal/battle"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

type OverlayKind string

const (
	OverlayTip   OverlayKind = "tip"
	OverlayTaunt OverlayKind = "taunt"
	OverlayRecap OverlayKind = "recap"
)

// Overlay is one piece of cosmetic text ready for presentation.
type Overlay struct {
	ID        string      `json:"id" msgpack:"id"`
	Kind      OverlayKind `json:"kind" msgpack:"kind"`
	Card      battle.Card `json:"card,omitempty" msgpack:"card,omitempty"`
	Text      string      `json:"text" msgpack:"text"`
	Tip       string      `json:"tip,omitempty" msgpack:"tip,omitempty"`
	Lore      string      `json:"lore,omitempty" msgpack:"lore,omitempty"`
	Generated bool        `json:"generated" msgpack:"generated"`
}

type Options struct {
	Generator     Generator // nil serves fallback text only
	Timeout       time.Duration
	TauntCooldown time.Duration
	Buffer        int
	Speaker       battle.Side // the side taunts are spoken for
	Seed          int64
}

// Service runs every text request in its own goroutine and delivers results
// into a buffered overlay channel. Nothing it does can stall a caller.
type Service struct {
	gen      Generator
	timeout  time.Duration
	cooldown time.Duration
	speaker  battle.Side
	overlays chan Overlay
	now      func() time.Time

	mu        sync.Mutex
	rng       *rand.Rand
	nextTaunt time.Time
	cache     map[[blake2b.Size256]byte]string
	dropped   int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewService(opts Options) *Service {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		gen:      opts.Generator,
		timeout:  opts.Timeout,
		cooldown: opts.TauntCooldown,
		speaker:  opts.Speaker,
		overlays: make(chan Overlay, opts.Buffer),
		now:      time.Now,
		rng:      rand.New(rand.NewSource(opts.Seed)),
		cache:    make(map[[blake2b.Size256]byte]string),
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Service) Overlays() <-chan Overlay { return s.overlays }

// Dropped counts overlays discarded because the channel was full.
func (s *Service) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

// Close abandons in-flight requests and waits for their goroutines.
func (s *Service) Close() {
	s.cancel()
	s.wg.Wait()
}

// Wait blocks until every in-flight request has delivered.
func (s *Service) Wait() { s.wg.Wait() }

func (s *Service) spawn(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
}

func (s *Service) deliver(ov Overlay) {
	ov.ID = "o_" + uuid.NewString()
	select {
	case s.overlays <- ov:
	default:
		s.mu.Lock()
		s.dropped++
		s.mu.Unlock()
	}
}

func cacheKey(prompt, system string) [blake2b.Size256]byte {
	return blake2b.Sum256([]byte(system + "\x00" + prompt))
}

func (s *Service) generate(prompt, system string, cached bool) (string, error) {
	if s.gen == nil {
		return "", ErrNoAPIKey
	}
	key := cacheKey(prompt, system)
	if cached {
		s.mu.Lock()
		text, ok := s.cache[key]
		s.mu.Unlock()
		if ok {
			return text, nil
		}
	}

	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()
	text, err := s.gen.Generate(ctx, prompt, system)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	if cached {
		s.mu.Lock()
		s.cache[key] = text
		s.mu.Unlock()
	}
	return text, nil
}

func logFailure(what string, err error) {
	if errors.Is(err, ErrNoAPIKey) {
		return
	}
	log.Printf("[FLAVOR] %s: %v", what, err)
}

// ParseTip pulls the "Tip:" and "Lore:" lines out of a generated reply.
// Missing lines come back empty.
func ParseTip(text string) (tip, lore string) {
	for _, line := range strings.Split(text, "\n") {
		if i := strings.Index(line, "Tip:"); i >= 0 && tip == "" {
			tip = strings.TrimSpace(strings.TrimLeft(line[i+len("Tip:"):], "* "))
		}
		if i := strings.Index(line, "Lore:"); i >= 0 && lore == "" {
			lore = strings.TrimSpace(strings.TrimLeft(line[i+len("Lore:"):], "* "))
		}
	}
	return tip, lore
}

// RequestTip asks for a tip about card, or a random card when card is unknown.
// The static entry fills any part the generator does not supply.
func (s *Service) RequestTip(card battle.Card) {
	entry, ok := Fallback(card)
	if !ok {
		s.mu.Lock()
		card = battle.FullDeck[s.rng.Intn(len(battle.FullDeck))]
		s.mu.Unlock()
		entry, _ = Fallback(card)
	}
	s.spawn(func() {
		ov := Overlay{Kind: OverlayTip, Card: card, Tip: entry.Tip, Lore: entry.Lore}
		prompt := fmt.Sprintf("Give me a pro strategy tip and a funny 1-sentence backstory lore for the card: %s.", entry.Name)
		text, err := s.generate(prompt, tipSystem, true)
		if err != nil {
			logFailure("tip "+string(card), err)
		} else {
			tip, lore := ParseTip(text)
			if tip != "" {
				ov.Tip, ov.Generated = tip, true
			}
			if lore != "" {
				ov.Lore, ov.Generated = lore, true
			}
		}
		ov.Text = "Tip: " + ov.Tip + "\nLore: " + ov.Lore
		s.deliver(ov)
	})
}

// RequestTaunt speaks a line for trigger. It reports false while the taunt
// cooldown is running. Half of accepted taunts use a local line outright.
func (s *Service) RequestTaunt(trigger string) bool {
	now := s.now()
	s.mu.Lock()
	if now.Before(s.nextTaunt) {
		s.mu.Unlock()
		return false
	}
	s.nextTaunt = now.Add(s.cooldown)
	local := s.rng.Float64() > 0.5
	fallback := localTaunts[s.rng.Intn(len(localTaunts))]
	s.mu.Unlock()

	if local || s.gen == nil {
		s.deliver(Overlay{Kind: OverlayTaunt, Text: fallback})
		return true
	}
	s.spawn(func() {
		ov := Overlay{Kind: OverlayTaunt, Text: fallback}
		prompt := fmt.Sprintf("Game Context: %s. Speak as the Red King.", trigger)
		if text, err := s.generate(prompt, tauntSystem, false); err != nil {
			logFailure("taunt", err)
		} else {
			ov.Text, ov.Generated = text, true
		}
		s.deliver(ov)
	})
	return true
}

func resultName(o battle.Outcome) string {
	switch o {
	case battle.OutcomeLeftWins:
		return "Left"
	case battle.OutcomeRightWins:
		return "Right"
	}
	return "Nobody"
}

func recapPrompt(sum battle.Summary) string {
	return fmt.Sprintf("Match Result: %s won. Time Remaining: %ds. Left Tower HP: %d. Right Tower HP: %d.",
		resultName(sum.Outcome),
		int(math.Floor(sum.Remaining/1000)),
		int(math.Floor(sum.LeftHP)),
		int(math.Floor(sum.RightHP)))
}

func localRecap(sum battle.Summary) string {
	if sum.Outcome == battle.OutcomeDraw {
		return "Both towers crumble! Nobody wins, everybody cries!"
	}
	return resultName(sum.Outcome) + " side storms the field and takes the crown!"
}

// RequestRecap narrates a finished match.
func (s *Service) RequestRecap(sum battle.Summary) {
	s.spawn(func() {
		ov := Overlay{Kind: OverlayRecap, Text: localRecap(sum)}
		if text, err := s.generate(recapPrompt(sum), recapSystem, false); err != nil {
			logFailure("recap", err)
		} else {
			ov.Text, ov.Generated = text, true
		}
		s.deliver(ov)
	})
}

// Notify turns match events into chat lines. It never blocks the tick.
func (s *Service) Notify(ev battle.Event) {
	switch ev.Kind {
	case battle.EventTaunt:
		if ev.Side == s.speaker && ev.Text != "" {
			s.deliver(Overlay{Kind: OverlayTaunt, Text: ev.Text})
		}
	case battle.EventSuddenDeath:
		s.RequestTaunt(TriggerSuddenDeath)
	case battle.EventEconomyDoubled:
		s.RequestTaunt(TriggerDoubleElixir)
	case battle.EventStructureDestroyed:
		s.mu.Lock()
		speak := s.rng.Float64() < 0.3
		s.mu.Unlock()
		if !speak {
			return
		}
		if ev.Side == s.speaker {
			s.RequestTaunt(TriggerTowerLost)
		} else {
			s.RequestTaunt(TriggerTowerTaken)
		}
	case battle.EventMatchConcluded:
		winner, ok := ev.Outcome.Winner()
		switch {
		case !ok:
			s.RequestTaunt(TriggerDraw)
		case winner == s.speaker:
			s.RequestTaunt(TriggerSpeakerWon)
		default:
			s.RequestTaunt(TriggerSpeakerLost)
		}
	}
}
