package battle

type EventKind string

const (
	EventDeployed           EventKind = "deployed"
	EventShot               EventKind = "shot"
	EventExplosion          EventKind = "explosion"
	EventElixirFull         EventKind = "elixir_full"
	EventEconomyDoubled     EventKind = "economy_doubled"
	EventSuddenDeath        EventKind = "sudden_death"
	EventStructureDestroyed EventKind = "structure_destroyed"
	EventMatchConcluded     EventKind = "match_concluded"
	EventTaunt              EventKind = "taunt"
)

// Event is a best-effort notification for audio and cosmetic collaborators.
// Nothing in the simulation depends on an event being consumed.
type Event struct {
	Kind    EventKind  `json:"kind" msgpack:"kind"`
	Side    Side       `json:"side" msgpack:"side"`
	Card    Card       `json:"card,omitempty" msgpack:"card,omitempty"`
	Visual  string     `json:"visual,omitempty" msgpack:"visual,omitempty"`
	Outcome Outcome    `json:"outcome" msgpack:"outcome"`
	Health  [2]float64 `json:"health" msgpack:"health"`
	Elapsed float64    `json:"elapsed_ms" msgpack:"elapsed_ms"`
	Text    string     `json:"text,omitempty" msgpack:"text,omitempty"`
}

// EventSink receives events synchronously from the tick. Implementations must
// not block.
type EventSink interface {
	Notify(Event)
}

type EventSinkFunc func(Event)

func (f EventSinkFunc) Notify(ev Event) { f(ev) }

type discardSink struct{}

func (discardSink) Notify(Event) {}

// MultiSink fans an event out to every sink in order.
type MultiSink []EventSink

func (m MultiSink) Notify(ev Event) {
	for _, s := range m {
		if s != nil {
			s.Notify(ev)
		}
	}
}

// EventQueue is a bounded side channel. Notify never blocks; events that do not
// fit are dropped and counted.
type EventQueue struct {
	ch      chan Event
	dropped int
}

func NewEventQueue(size int) *EventQueue {
	return &EventQueue{ch: make(chan Event, size)}
}

func (q *EventQueue) Notify(ev Event) {
	select {
	case q.ch <- ev:
	default:
		q.dropped++
	}
}

// Dropped is only meaningful from the goroutine that calls Notify.
func (q *EventQueue) Dropped() int { return q.dropped }

// Drain returns every queued event without blocking.
func (q *EventQueue) Drain() []Event {
	var out []Event
	for {
		select {
		case ev := <-q.ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}
