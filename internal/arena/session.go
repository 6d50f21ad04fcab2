package arena

import (
	"context"
	"time"

	"clashlane/internal/audio"
	"clashlane/internal/battle"
	"clashlane/internal/data"
	"clashlane/internal/flavor"
	"clashlane/internal/logging"

	"github.com/google/uuid"
)

// The human always plays the left side; the opponent engine plays the right.
const (
	humanSide    = battle.SideLeft
	opponentSide = battle.SideRight
)

// Command is one client request.
type Command struct {
	Type string      `json:"type" msgpack:"type"` // deploy, tip, reset, next
	Card battle.Card `json:"card,omitempty" msgpack:"card,omitempty"`
	X    float64     `json:"x,omitempty" msgpack:"x,omitempty"`
}

// Frame is everything a client needs to draw one tick.
type Frame struct {
	Type     string           `json:"type" msgpack:"type"`
	Side     battle.Side      `json:"side" msgpack:"side"`
	Tier     string           `json:"tier" msgpack:"tier"`
	State    battle.Snapshot  `json:"state" msgpack:"state"`
	Events   []battle.Event   `json:"events,omitempty" msgpack:"events,omitempty"`
	Cues     []audio.Cue      `json:"cues,omitempty" msgpack:"cues,omitempty"`
	Overlays []flavor.Overlay `json:"overlays,omitempty" msgpack:"overlays,omitempty"`
	Rejected []Command        `json:"rejected,omitempty" msgpack:"rejected,omitempty"`
	Profile  *data.Profile    `json:"profile,omitempty" msgpack:"profile,omitempty"`
}

// ResultRecorder persists a finished match for a player.
type ResultRecorder interface {
	RecordResult(ctx context.Context, id string, r data.Result) (data.Profile, error)
}

type SessionOptions struct {
	UserID   string
	Rules    battle.Rules
	Tier     battle.Tier
	Seed     int64
	Codec    Codec
	Buffer   int
	Flavor   flavor.Options
	Recorder ResultRecorder
}

// Session hosts one human-vs-opponent match. Run is the only goroutine that
// touches the match; clients talk to it through Submit and read from Send.
type Session struct {
	ID     string
	UserID string
	Send   chan []byte

	opts     SessionOptions
	commands chan Command
	results  chan data.Profile

	match       *battle.Match
	events      *battle.EventQueue
	cues        *audio.Queue
	flavor      *flavor.Service
	suddenDeath bool
	recorded    bool
	rematches   int
	dropped     int
}

func NewSession(opts SessionOptions) *Session {
	if opts.Buffer <= 0 {
		opts.Buffer = 256
	}
	if opts.UserID == "" {
		opts.UserID = "guest"
	}
	s := &Session{
		ID:       "s_" + uuid.NewString(),
		UserID:   opts.UserID,
		Send:     make(chan []byte, opts.Buffer),
		opts:     opts,
		commands: make(chan Command, 32),
		results:  make(chan data.Profile, 1),
	}
	s.start()
	return s
}

func (s *Session) start() {
	fo := s.opts.Flavor
	fo.Speaker = opponentSide
	fo.Seed = s.opts.Seed + int64(s.rematches)
	s.flavor = flavor.NewService(fo)
	s.events = battle.NewEventQueue(1024)
	s.cues = audio.NewQueue(humanSide, 64)

	var tiers [2]battle.Tier
	tiers[opponentSide] = s.opts.Tier
	s.match = battle.NewMatch(s.opts.Rules, battle.Options{
		Seed:  s.opts.Seed + int64(s.rematches),
		Sink:  battle.MultiSink{s.events, s.cues, s.flavor},
		Tiers: tiers,
	})
	s.suddenDeath = false
	s.recorded = false
	s.flavor.RequestTaunt(flavor.TriggerMatchStart)
}

// Match exposes the hosted match for inspection. Only safe while Run is not
// executing.
func (s *Session) Match() *battle.Match { return s.match }

// Dropped counts frames discarded because the client fell behind.
func (s *Session) Dropped() int { return s.dropped }

// Submit queues a command for the next frame. It reports false when the
// queue is full.
func (s *Session) Submit(cmd Command) bool {
	select {
	case s.commands <- cmd:
		return true
	default:
		return false
	}
}

func (s *Session) apply(cmd Command) bool {
	switch cmd.Type {
	case "deploy":
		return s.match.Deploy(cmd.Card, humanSide, cmd.X)
	case "tip":
		s.flavor.RequestTip(cmd.Card)
		return true
	case "reset":
		if s.match.Phase() != battle.PhaseConcluded {
			return false
		}
		s.restart()
		return true
	case "next":
		if w, ok := s.match.Outcome().Winner(); !ok || w != humanSide {
			return false
		}
		next, ok := s.opts.Tier.Next()
		if !ok {
			return false
		}
		s.opts.Tier = next
		s.restart()
		return true
	}
	return false
}

func (s *Session) restart() {
	go s.flavor.Close()
	s.rematches++
	s.start()
}

// Step runs one frame: pending commands, one match update, and the frame
// that describes the result.
func (s *Session) Step(dt time.Duration) Frame {
	f := Frame{Type: "frame", Side: humanSide}
	for pending := true; pending; {
		select {
		case cmd := <-s.commands:
			if !s.apply(cmd) {
				f.Rejected = append(f.Rejected, cmd)
			}
		default:
			pending = false
		}
	}

	s.match.Update(dt)

	f.Events = s.events.Drain()
	for _, ev := range f.Events {
		if ev.Kind == battle.EventSuddenDeath {
			s.suddenDeath = true
		}
	}
	f.Cues = s.cues.Drain()
	for pending := true; pending; {
		select {
		case ov := <-s.flavor.Overlays():
			f.Overlays = append(f.Overlays, ov)
		default:
			pending = false
		}
	}
	select {
	case p := <-s.results:
		f.Profile = &p
	default:
	}
	f.State = s.match.Snapshot()
	f.Tier = s.opts.Tier.String()

	if s.match.Phase() == battle.PhaseConcluded && !s.recorded {
		s.recorded = true
		s.flavor.RequestRecap(s.match.Summary())
		s.record()
	}
	return f
}

func resultFor(o battle.Outcome) data.Outcome {
	winner, ok := o.Winner()
	switch {
	case !ok:
		return data.Draw
	case winner == humanSide:
		return data.Win
	}
	return data.Loss
}

func (s *Session) record() {
	if s.opts.Recorder == nil || s.UserID == "guest" {
		return
	}
	r := data.Result{
		Outcome:     resultFor(s.match.Outcome()),
		SuddenDeath: s.suddenDeath,
		OwnHealth:   s.match.Tower(humanSide).HealthFraction(),
	}
	matchID := s.match.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		p, err := s.opts.Recorder.RecordResult(ctx, s.UserID, r)
		if err != nil {
			logging.Error("failed to record result", err, logging.Fields{"user": s.UserID, "match": matchID})
			return
		}
		logging.Info("result recorded", logging.Fields{"user": s.UserID, "match": matchID, "outcome": string(r.Outcome), "trophies": p.Trophies})
		select {
		case s.results <- p:
		default:
		}
	}()
}

// push encodes f and queues it for the writer, dropping it when the client
// is behind.
func (s *Session) push(f Frame) {
	msg, err := s.opts.Codec.Marshal(f)
	if err != nil {
		logging.Error("failed to encode frame", err, logging.Fields{"session": s.ID})
		return
	}
	select {
	case s.Send <- msg:
	default:
		s.dropped++
	}
}

// Run steps the match every interval until ctx ends, then closes Send.
func (s *Session) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer func() {
		ticker.Stop()
		s.flavor.Close()
		close(s.Send)
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.push(s.Step(interval))
		}
	}
}
