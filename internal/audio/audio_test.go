package audio

import (
	"errors"
	"testing"
	"time"

	"clashlane/internal/battle"

	"github.com/gopxl/beep"
)

// TestOscillatorRange verifies each wave shape stays in [-1, 1]
func TestOscillatorRange(t *testing.T) {
	rate := beep.SampleRate(22050)
	for _, wave := range []WaveType{WaveSine, WaveSquare, WaveSaw, WaveTriangle} {
		osc := NewOscillator(440, 50*time.Millisecond, wave, rate)
		samples := make([][2]float64, 512)
		n, ok := osc.Stream(samples)
		if !ok || n != 512 {
			t.Fatalf("wave %d: streamed %d, ok=%v", wave, n, ok)
		}
		for i := 0; i < n; i++ {
			if samples[i][0] < -1 || samples[i][0] > 1 || samples[i][0] != samples[i][1] {
				t.Fatalf("wave %d: sample %d out of range: %v", wave, i, samples[i])
			}
		}
		if osc.Err() != nil {
			t.Fatalf("unexpected error: %v", osc.Err())
		}
	}
}

// TestOscillatorLength verifies the stream ends after its duration
func TestOscillatorLength(t *testing.T) {
	rate := beep.SampleRate(10000)
	osc := NewOscillator(300, 10*time.Millisecond, WaveSaw, rate)
	samples := make([][2]float64, 64)
	total := 0
	for {
		n, ok := osc.Stream(samples)
		total += n
		if !ok {
			break
		}
	}
	if total != 100 {
		t.Fatalf("streamed %d samples, want 100", total)
	}
}

func TestRamp(t *testing.T) {
	if got := Linear.at(10, 20, 0.5); got != 15 {
		t.Errorf("linear midpoint = %v", got)
	}
	if got := Exponential.at(100, 400, 0.5); got < 199.999 || got > 200.001 {
		t.Errorf("exponential midpoint = %v", got)
	}
	if got := Exponential.at(0.05, 0, 0.5); got != 0.025 {
		t.Errorf("exponential toward zero should fall back to linear, got %v", got)
	}
	if got := Hold.at(3, 9, 0.7); got != 3 {
		t.Errorf("hold = %v", got)
	}
}

func TestSteppedPitch(t *testing.T) {
	osc := newVoice(tones[CueWin][0], beep.SampleRate(1000))
	if f := osc.freq(0); f != 400 {
		t.Errorf("start pitch = %v", f)
	}
	if f := osc.freq(0.25); f != 600 {
		t.Errorf("second step = %v", f)
	}
	if f := osc.freq(1); f != 800 {
		t.Errorf("final step = %v", f)
	}
}

func TestEveryCueRenders(t *testing.T) {
	s := NewSynth(22050, 1)
	for _, c := range Cues() {
		b, err := s.WAV(c)
		if err != nil {
			t.Fatalf("cue %s: %v", c, err)
		}
		if len(b) < 44 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
			t.Fatalf("cue %s: not a wav file", c)
		}
		frames := (len(b) - 44) / 4
		if want := s.SampleRate().N(Duration(c)); frames != want {
			t.Errorf("cue %s: %d frames, want %d", c, frames, want)
		}
	}
}

func TestWAVIsCached(t *testing.T) {
	s := NewSynth(8000, 0.5)
	a, err := s.WAV(CueFull)
	if err != nil {
		t.Fatal(err)
	}
	b, _ := s.WAV(CueFull)
	if &a[0] != &b[0] {
		t.Fatal("second render did not come from the cache")
	}
}

func TestUnknownCue(t *testing.T) {
	s := NewSynth(8000, 1)
	if _, err := s.WAV("kazoo"); !errors.Is(err, ErrUnknownCue) {
		t.Fatalf("err = %v, want ErrUnknownCue", err)
	}
	if _, ok := ParseCue("kazoo"); ok {
		t.Fatal("ParseCue accepted an unknown cue")
	}
	if c, ok := ParseCue("tiebreaker"); !ok || c != CueTiebreaker {
		t.Fatalf("ParseCue(tiebreaker) = %q, %v", c, ok)
	}
}

func TestSilentVolume(t *testing.T) {
	s := NewSynth(8000, 0)
	st, err := s.Streamer(CueExplosion)
	if err != nil {
		t.Fatal(err)
	}
	samples := make([][2]float64, 256)
	n, _ := st.Stream(samples)
	for i := 0; i < n; i++ {
		if samples[i][0] != 0 {
			t.Fatalf("sample %d = %v at zero volume", i, samples[i][0])
		}
	}
}

func TestForEvent(t *testing.T) {
	L, R := battle.SideLeft, battle.SideRight
	cases := []struct {
		ev   battle.Event
		want Cue
		ok   bool
	}{
		{battle.Event{Kind: battle.EventDeployed, Card: battle.CardKnight}, CueSpawn, true},
		{battle.Event{Kind: battle.EventDeployed, Card: battle.CardBats}, CueSqueak, true},
		{battle.Event{Kind: battle.EventDeployed, Card: battle.CardFreeze}, CueFreeze, true},
		{battle.Event{Kind: battle.EventDeployed, Card: battle.CardLog}, CueLog, true},
		{battle.Event{Kind: battle.EventShot, Visual: "arrow"}, CueArrow, true},
		{battle.Event{Kind: battle.EventShot, Visual: "magic"}, CueMagic, true},
		{battle.Event{Kind: battle.EventShot, Visual: "cannonball"}, CueCannon, true},
		{battle.Event{Kind: battle.EventShot, Visual: "melee"}, CueAttack, true},
		{battle.Event{Kind: battle.EventExplosion}, CueExplosion, true},
		{battle.Event{Kind: battle.EventElixirFull, Side: L}, CueFull, true},
		{battle.Event{Kind: battle.EventElixirFull, Side: R}, "", false},
		{battle.Event{Kind: battle.EventEconomyDoubled}, CueTime, true},
		{battle.Event{Kind: battle.EventSuddenDeath}, CueTiebreaker, true},
		{battle.Event{Kind: battle.EventMatchConcluded, Outcome: battle.OutcomeLeftWins}, CueWin, true},
		{battle.Event{Kind: battle.EventMatchConcluded, Outcome: battle.OutcomeRightWins}, CueLose, true},
		{battle.Event{Kind: battle.EventMatchConcluded, Outcome: battle.OutcomeDraw}, CueDraw, true},
		{battle.Event{Kind: battle.EventTaunt, Side: R}, CueChat, true},
	}
	for _, tc := range cases {
		got, ok := ForEvent(tc.ev, L)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ForEvent(%s/%s/%s) = %q, %v; want %q, %v", tc.ev.Kind, tc.ev.Card, tc.ev.Visual, got, ok, tc.want, tc.ok)
		}
	}
}

func TestQueueNeverBlocks(t *testing.T) {
	q := NewQueue(battle.SideLeft, 2)
	for i := 0; i < 5; i++ {
		q.Notify(battle.Event{Kind: battle.EventExplosion})
	}
	q.Notify(battle.Event{Kind: battle.EventElixirFull, Side: battle.SideRight})
	if q.Dropped() != 3 {
		t.Fatalf("dropped = %d, want 3", q.Dropped())
	}
	got := q.Drain()
	if len(got) != 2 || got[0] != CueExplosion {
		t.Fatalf("drained %v", got)
	}
	if len(q.Drain()) != 0 {
		t.Fatal("queue not empty after drain")
	}
}
