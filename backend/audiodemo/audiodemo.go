// Package audiodemo renders a compiled event graph to an ebiten/oto audio
// stream: a minimal illustrative backend, not a notation renderer. It adapts
// the teacher's SampleSource/FinishingSource/StreamReader/shared-context
// pattern from its internal/audio package to walk an eventgraph.Graph
// instead of a synth engine's per-tick callback.
package audiodemo

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"sync"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/cbegin/clef-go/internal/eventgraph"
)

// SampleSource is implemented by anything that can fill a float32 buffer of
// interleaved stereo samples.
type SampleSource interface {
	Process(dst []float32)
}

// FinishingSource lets the stream signal end-of-playback with io.EOF.
type FinishingSource interface {
	SampleSource
	Finished() bool
}

// Config selects the oscillator waveform and render sample rate.
type Config struct {
	SampleRate int
	Waveform   Waveform
}

func DefaultConfig() Config { return Config{SampleRate: 48000, Waveform: WaveSine} }

type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
)

type activeVoice struct {
	freq        float64
	phase       float64
	amp         float32
	samplesLeft int64
}

// EventSource walks a compiled Graph's Note events and renders them as
// simple oscillator tones. It is a demonstration backend: no envelope
// shaping, no filtering, one waveform for every channel.
type EventSource struct {
	cfg             Config
	events          []eventgraph.Event
	secondsPerWhole float64
	cursorSample    int64
	totalSamples    int64
	nextEventIdx    int
	active          []activeVoice
}

// NewEventSource prepares g for playback at cfg.SampleRate. The tempo and
// beat unit used for the whole-render are read from g's initial-tempo /
// initial-time-signature metadata, not re-derived by scanning events.
func NewEventSource(g *eventgraph.Graph, cfg Config) *EventSource {
	bpm := g.InitialTempo()
	beatUnit := g.InitialTimeSignature().Denominator
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	// seconds_per_whole_note = beat_unit_denominator · (60/bpm): bpm counts
	// beat_unit-valued beats per minute (the active time signature's
	// denominator names the beat), so a whole note is beat_unit beats long.
	secondsPerWhole := (60.0 / float64(bpm)) * float64(beatUnit)
	endSeconds := g.Duration().Float64() * secondsPerWhole
	tailSeconds := 0.5
	total := int64((endSeconds + tailSeconds) * float64(cfg.SampleRate))

	return &EventSource{
		cfg:             cfg,
		events:          notes,
		secondsPerWhole: secondsPerWhole,
		totalSamples:    total,
	}
}

func (s *EventSource) startSample(e eventgraph.Event) int64 {
	return int64(e.StartTime.Float64() * s.secondsPerWhole * float64(s.cfg.SampleRate))
}

func (s *EventSource) durationSamples(e eventgraph.Event) int64 {
	return int64(e.EffectiveDuration.Float64() * s.secondsPerWhole * float64(s.cfg.SampleRate))
}

func midiToFreq(midi int) float64 {
	return 440.0 * math.Pow(2, float64(midi-69)/12.0)
}

// Process fills dst (interleaved stereo, len(dst) must be even) with the
// mix of every currently-sounding voice.
func (s *EventSource) Process(dst []float32) {
	frames := len(dst) / 2
	for i := 0; i < frames; i++ {
		for s.nextEventIdx < len(s.events) && s.startSample(s.events[s.nextEventIdx]) <= s.cursorSample {
			e := s.events[s.nextEventIdx]
			s.active = append(s.active, activeVoice{
				freq:        midiToFreq(e.MIDI),
				amp:         float32(e.Velocity) / 127.0,
				samplesLeft: s.durationSamples(e),
			})
			s.nextEventIdx++
		}

		var mix float32
		kept := s.active[:0]
		for _, v := range s.active {
			if v.samplesLeft <= 0 {
				continue
			}
			mix += v.amp * s.sample(v.phase) * 0.3
			v.phase += v.freq / float64(s.cfg.SampleRate)
			if v.phase >= 1 {
				v.phase -= 1
			}
			v.samplesLeft--
			kept = append(kept, v)
		}
		s.active = kept

		dst[i*2] = mix
		dst[i*2+1] = mix
		s.cursorSample++
	}
}

func (s *EventSource) sample(phase float64) float32 {
	switch s.cfg.Waveform {
	case WaveSquare:
		if math.Sin(2*math.Pi*phase) >= 0 {
			return 1
		}
		return -1
	default:
		return float32(math.Sin(2 * math.Pi * phase))
	}
}

// Finished reports whether playback has run past the graph's end plus tail.
func (s *EventSource) Finished() bool { return s.cursorSample >= s.totalSamples }

// StreamReader adapts a SampleSource to io.ReadCloser the way the teacher's
// internal/audio.StreamReader adapts a VoiceEngine.
type StreamReader struct {
	mu     sync.Mutex
	source SampleSource
	buf    []float32
}

func NewStreamReader(source SampleSource) *StreamReader {
	return &StreamReader{source: source}
}

func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		u := math.Float32bits(r.buf[i])
		binary.LittleEndian.PutUint32(p[i*4:], u)
	}
	n := frames * 8
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}
	return n, nil
}

func (r *StreamReader) Close() error { return nil }

// Player wraps an ebiten/oto player over a StreamReader.
type Player struct {
	player *ebitaudio.Player
	reader io.ReadCloser
}

var (
	audioContextOnce sync.Once
	audioContext     *ebitaudio.Context
	audioContextErr  error
	audioSampleRate  int
)

func sharedAudioContext(sampleRate int) (*ebitaudio.Context, error) {
	audioContextOnce.Do(func() {
		audioSampleRate = sampleRate
		audioContext = ebitaudio.NewContext(sampleRate)
	})
	if audioContextErr != nil {
		return nil, audioContextErr
	}
	if audioSampleRate != sampleRate {
		return nil, fmt.Errorf("audio context already initialized at %d Hz (requested %d Hz)", audioSampleRate, sampleRate)
	}
	return audioContext, nil
}

// NewPlayer builds a Player that renders g through an EventSource at
// cfg.SampleRate.
func NewPlayer(g *eventgraph.Graph, cfg Config) (*Player, error) {
	ctx, err := sharedAudioContext(cfg.SampleRate)
	if err != nil {
		return nil, err
	}
	source := NewEventSource(g, cfg)
	reader := NewStreamReader(source)
	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, err
	}
	return &Player{player: pl, reader: reader}, nil
}

func (p *Player) Play()           { p.player.Play() }
func (p *Player) Pause()          { p.player.Pause() }
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

func (p *Player) Stop() error {
	p.player.Pause()
	p.player.Close()
	return p.reader.Close()
}
