package audio

import "clashlane/internal/battle"

// Cue names one short sound effect.
type Cue string

const (
	CueSpawn      Cue = "spawn"
	CueAttack     Cue = "attack"
	CueArrow      Cue = "arrow"
	CueMagic      Cue = "magic"
	CueCannon     Cue = "cannon"
	CueExplosion  Cue = "explosion"
	CueSqueak     Cue = "squeak"
	CueFreeze     Cue = "freeze"
	CueLog        Cue = "log"
	CueFull       Cue = "full"
	CueTime       Cue = "time"
	CueTiebreaker Cue = "tiebreaker"
	CueWin        Cue = "win"
	CueLose       Cue = "lose"
	CueDraw       Cue = "draw"
	CueChat       Cue = "chat"
)

// Cues lists every cue in a stable order.
func Cues() []Cue {
	return append([]Cue(nil), cueOrder...)
}

var cueOrder = []Cue{
	CueSpawn, CueAttack, CueArrow, CueMagic, CueCannon, CueExplosion, CueSqueak, CueFreeze,
	CueLog, CueFull, CueTime, CueTiebreaker, CueWin, CueLose, CueDraw, CueChat,
}

func ParseCue(s string) (Cue, bool) {
	c := Cue(s)
	_, ok := tones[c]
	return c, ok
}

// ForEvent picks the cue for ev as heard by listener. Events with no sound
// return false.
func ForEvent(ev battle.Event, listener battle.Side) (Cue, bool) {
	switch ev.Kind {
	case battle.EventDeployed:
		switch ev.Card {
		case battle.CardBats:
			return CueSqueak, true
		case battle.CardFreeze:
			return CueFreeze, true
		case battle.CardLog:
			return CueLog, true
		}
		return CueSpawn, true
	case battle.EventShot:
		switch ev.Visual {
		case "arrow":
			return CueArrow, true
		case "magic":
			return CueMagic, true
		case "cannonball":
			return CueCannon, true
		}
		return CueAttack, true
	case battle.EventExplosion, battle.EventStructureDestroyed:
		return CueExplosion, true
	case battle.EventElixirFull:
		if ev.Side == listener {
			return CueFull, true
		}
	case battle.EventEconomyDoubled:
		return CueTime, true
	case battle.EventSuddenDeath:
		return CueTiebreaker, true
	case battle.EventMatchConcluded:
		winner, ok := ev.Outcome.Winner()
		switch {
		case !ok:
			return CueDraw, true
		case winner == listener:
			return CueWin, true
		default:
			return CueLose, true
		}
	case battle.EventTaunt:
		return CueChat, true
	}
	return "", false
}

// Queue is one listener's cue stream. It is an event sink: Notify maps the
// event and enqueues without blocking, dropping cues when full.
type Queue struct {
	listener battle.Side
	ch       chan Cue
	dropped  int
}

func NewQueue(listener battle.Side, size int) *Queue {
	return &Queue{listener: listener, ch: make(chan Cue, size)}
}

func (q *Queue) Notify(ev battle.Event) {
	c, ok := ForEvent(ev, q.listener)
	if !ok {
		return
	}
	select {
	case q.ch <- c:
	default:
		q.dropped++
	}
}

// Dropped is only meaningful from the goroutine that calls Notify.
func (q *Queue) Dropped() int { return q.dropped }

// Drain returns every queued cue without blocking.
func (q *Queue) Drain() []Cue {
	var out []Cue
	for {
		select {
		case c := <-q.ch:
			out = append(out, c)
		default:
			return out
		}
	}
}
