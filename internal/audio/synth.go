package audio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/wav"
)

var ErrUnknownCue = errors.New("audio: unknown cue")

// WaveType defines oscillator wave shapes
type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveSaw
	WaveTriangle
)

// Ramp is the interpolation between a start and end value.
type Ramp int

const (
	Hold Ramp = iota
	Linear
	Exponential
)

func (r Ramp) at(from, to, t float64) float64 {
	switch r {
	case Linear:
		return from + (to-from)*t
	case Exponential:
		if from <= 0 || to <= 0 {
			return from + (to-from)*t
		}
		return from * math.Pow(to/from, t)
	}
	return from
}

// tone is one voice of a cue: a frequency sweep under a gain envelope.
type tone struct {
	wave     WaveType
	freq     [2]float64
	freqRamp Ramp
	steps    []float64 // stepped pitch, overrides freq when set
	gain     [2]float64
	gainRamp Ramp
	dur      time.Duration
}

var tones = map[Cue][]tone{
	CueSpawn:      {{wave: WaveSine, freq: [2]float64{400, 600}, freqRamp: Exponential, gain: [2]float64{0.1, 0.01}, gainRamp: Exponential, dur: 100 * time.Millisecond}},
	CueFull:       {{wave: WaveSine, freq: [2]float64{880, 440}, freqRamp: Exponential, gain: [2]float64{0.05, 0}, gainRamp: Linear, dur: 300 * time.Millisecond}},
	CueChat:       {{wave: WaveSine, freq: [2]float64{600, 300}, freqRamp: Exponential, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 100 * time.Millisecond}},
	CueTime:       {{wave: WaveTriangle, freq: [2]float64{600, 400}, freqRamp: Linear, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 350 * time.Millisecond}},
	CueAttack:     {{wave: WaveTriangle, freq: [2]float64{100, 100}, gain: [2]float64{0.1, 0.01}, gainRamp: Exponential, dur: 100 * time.Millisecond}},
	CueArrow:      {{wave: WaveTriangle, freq: [2]float64{600, 600}, gain: [2]float64{0.05, 0.01}, gainRamp: Exponential, dur: 50 * time.Millisecond}},
	CueCannon:     {{wave: WaveSquare, freq: [2]float64{150, 40}, freqRamp: Exponential, gain: [2]float64{0.1, 0.01}, gainRamp: Exponential, dur: 200 * time.Millisecond}},
	CueMagic:      {{wave: WaveSine, freq: [2]float64{800, 400}, freqRamp: Linear, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 200 * time.Millisecond}},
	CueSqueak:     {{wave: WaveSaw, freq: [2]float64{900, 1200}, freqRamp: Linear, gain: [2]float64{0.05, 0}, gainRamp: Linear, dur: 100 * time.Millisecond}},
	CueExplosion:  {{wave: WaveSaw, freq: [2]float64{100, 10}, freqRamp: Exponential, gain: [2]float64{0.1, 0.01}, gainRamp: Exponential, dur: 300 * time.Millisecond}},
	CueFreeze:     {{wave: WaveSine, freq: [2]float64{1200, 800}, freqRamp: Exponential, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 500 * time.Millisecond}},
	CueLog:        {{wave: WaveSquare, freq: [2]float64{80, 60}, freqRamp: Linear, gain: [2]float64{0.05, 0}, gainRamp: Linear, dur: 500 * time.Millisecond}},
	CueWin:        {{wave: WaveSquare, steps: []float64{400, 600, 800, 800, 800}, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 500 * time.Millisecond}},
	CueLose:       {{wave: WaveSaw, freq: [2]float64{300, 100}, freqRamp: Linear, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 500 * time.Millisecond}},
	CueDraw:       {{wave: WaveSine, freq: [2]float64{300, 300}, gain: [2]float64{0.1, 0}, gainRamp: Linear, dur: 500 * time.Millisecond}},
	CueTiebreaker: {
		{wave: WaveSine, freq: [2]float64{880, 880}, gain: [2]float64{0.1, 0.001}, gainRamp: Exponential, dur: 1500 * time.Millisecond},
		{wave: WaveSine, freq: [2]float64{1108, 1108}, gain: [2]float64{0.08, 0.001}, gainRamp: Exponential, dur: 1500 * time.Millisecond},
	},
}

// oscillator generates one swept voice.
type oscillator struct {
	t        tone
	phase    float64
	duration int
	position int
	rate     beep.SampleRate
}

// NewOscillator creates a fixed-pitch oscillator.
func NewOscillator(freq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return newVoice(tone{wave: wave, freq: [2]float64{freq, freq}, gain: [2]float64{1, 1}, dur: duration}, rate)
}

func newVoice(t tone, rate beep.SampleRate) *oscillator {
	return &oscillator{t: t, duration: rate.N(t.dur), rate: rate}
}

func (o *oscillator) progress() float64 {
	if o.duration <= 1 {
		return 0
	}
	return float64(o.position) / float64(o.duration-1)
}

func (o *oscillator) freq(p float64) float64 {
	if n := len(o.t.steps); n > 0 {
		i := int(p * float64(n))
		if i >= n {
			i = n - 1
		}
		return o.t.steps[i]
	}
	return o.t.freqRamp.at(o.t.freq[0], o.t.freq[1], p)
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}
		p := o.progress()

		var val float64
		switch o.t.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1.0
			} else {
				val = -1.0
			}
		case WaveSaw:
			val = 2.0 * (o.phase - 0.5)
		case WaveTriangle:
			val = 1 - 4*math.Abs(o.phase-0.5)
		}
		val *= o.t.gainRamp.at(o.t.gain[0], o.t.gain[1], p)

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq(p) / float64(o.rate)
		o.phase = o.phase - math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// constantVoice renders a held pure tone through the library sine generator
// with the tone's gain envelope applied on top.
func constantVoice(t tone, rate beep.SampleRate) (beep.Streamer, error) {
	sine, err := generators.SineTone(rate, t.freq[0])
	if err != nil {
		return nil, err
	}
	total := rate.N(t.dur)
	pos := 0
	return beep.Take(total, beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		n, ok := sine.Stream(samples)
		for i := 0; i < n; i++ {
			p := 0.0
			if total > 1 {
				p = float64(pos) / float64(total-1)
			}
			g := t.gainRamp.at(t.gain[0], t.gain[1], p)
			samples[i][0] *= g
			samples[i][1] *= g
			pos++
		}
		return n, ok
	})), nil
}

// Helper to create a volume effect safely
// math.Log2(0) is -Inf, so we handle 0 volume by making it silent
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Volume: 0, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol), Silent: false}
}

// Synth renders cues. Rendered WAV files are cached per cue; it is safe for
// concurrent use.
type Synth struct {
	rate   beep.SampleRate
	volume float64

	mu    sync.Mutex
	cache map[Cue][]byte
}

// NewSynth builds a renderer. Volume scales every cue on top of its own gain;
// 1 plays cues at their designed level.
func NewSynth(sampleRate int, volume float64) *Synth {
	return &Synth{rate: beep.SampleRate(sampleRate), volume: volume, cache: make(map[Cue][]byte)}
}

func (s *Synth) SampleRate() beep.SampleRate { return s.rate }

// Streamer returns a fresh, finite stream for c.
func (s *Synth) Streamer(c Cue) (beep.Streamer, error) {
	voices, ok := tones[c]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCue, c)
	}
	streams := make([]beep.Streamer, 0, len(voices))
	for _, v := range voices {
		if v.wave == WaveSine && v.freqRamp == Hold && len(v.steps) == 0 {
			cv, err := constantVoice(v, s.rate)
			if err != nil {
				return nil, fmt.Errorf("cue %s: %w", c, err)
			}
			streams = append(streams, cv)
			continue
		}
		streams = append(streams, newVoice(v, s.rate))
	}
	mixed := streams[0]
	if len(streams) > 1 {
		mixed = beep.Mix(streams...)
	}
	// Mix never ends on its own.
	return beep.Take(s.rate.N(Duration(c)), newVolume(mixed, s.volume)), nil
}

// Duration is the length of the longest voice in c.
func Duration(c Cue) time.Duration {
	var d time.Duration
	for _, v := range tones[c] {
		if v.dur > d {
			d = v.dur
		}
	}
	return d
}

// WAV renders c as a 16-bit stereo WAV file.
func (s *Synth) WAV(c Cue) ([]byte, error) {
	s.mu.Lock()
	b, ok := s.cache[c]
	s.mu.Unlock()
	if ok {
		return b, nil
	}

	st, err := s.Streamer(c)
	if err != nil {
		return nil, err
	}

	var f memFile
	format := beep.Format{SampleRate: s.rate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(&f, st, format); err != nil {
		return nil, fmt.Errorf("encode %s: %w", c, err)
	}

	s.mu.Lock()
	s.cache[c] = f.buf
	s.mu.Unlock()
	return f.buf, nil
}

// memFile is an in-memory io.WriteSeeker; the WAV encoder seeks back to patch
// its header sizes.
type memFile struct {
	buf []byte
	pos int
}

func (m *memFile) Write(p []byte) (int, error) {
	end := m.pos + len(p)
	if end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[m.pos:], p)
	m.pos = end
	return len(p), nil
}

func (m *memFile) Seek(offset int64, whence int) (int64, error) {
	var n int64
	switch whence {
	case io.SeekStart:
		n = offset
	case io.SeekCurrent:
		n = int64(m.pos) + offset
	case io.SeekEnd:
		n = int64(len(m.buf)) + offset
	default:
		return 0, fmt.Errorf("memfile: bad whence %d", whence)
	}
	if n < 0 {
		return 0, errors.New("memfile: negative position")
	}
	m.pos = int(n)
	return n, nil
}
