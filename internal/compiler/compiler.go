// Package compiler walks a validated *ast.Score and produces an
// *eventgraph.Graph: a flat, timeline-ordered set of Events. It assumes the
// tree has already passed internal/semantic — it does not re-validate
// measure durations or tie spelling, it just computes timing.
package compiler

import (
	"github.com/cbegin/clef-go/internal/ast"
	"github.com/cbegin/clef-go/internal/eventgraph"
	"github.com/cbegin/clef-go/internal/gm"
	"github.com/cbegin/clef-go/internal/rational"
)

// Config mirrors the teacher's Config/Default*Config() pairing.
type Config struct {
	DefaultTempo int
}

func DefaultConfig() Config { return Config{DefaultTempo: 120} }

// EventCompiler is transient: a fresh one is constructed for every Compile
// call, matching spec's "compiler instance is transient per-compile-call".
type EventCompiler struct {
	cfg Config

	events   []eventgraph.Event
	pending  map[tieKey]int // pending tie -> index into events
	channels map[string]int
}

func New(cfg Config) *EventCompiler {
	return &EventCompiler{cfg: cfg, pending: map[tieKey]int{}, channels: map[string]int{}}
}

type tieKey struct {
	staff string
	voice int
	midi  int
}

// Compile produces a fully sorted Graph from sc. Callers should run sc
// through internal/semantic first; Compile does not repeat that validation.
func Compile(sc *ast.Score, cfg Config) (*eventgraph.Graph, error) {
	c := New(cfg)
	return c.compile(sc)
}

func (c *EventCompiler) compile(sc *ast.Score) (*eventgraph.Graph, error) {
	c.allocateChannels(sc)

	bpm := c.cfg.DefaultTempo
	if sc.InitialTempo != nil {
		bpm = *sc.InitialTempo
		c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTempo, StartTime: rational.Zero(), Value: bpm})
	}

	ts := ast.TimeSignatureChange{Numerator: 4, Denominator: 4}
	if sc.InitialTimeSig != nil {
		ts = *sc.InitialTimeSig
		c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTimeSignature, StartTime: rational.Zero(), Numerator: ts.Numerator, Denominator: ts.Denominator})
	}

	for _, staff := range sc.Staves {
		c.compileStaff(staff, ts)
	}

	g := eventgraph.New()
	for _, e := range c.events {
		g.Add(e)
	}
	g.Sort()
	g.SetInitialTempo(bpm)
	g.SetInitialTimeSignature(eventgraph.TimeSignature{Numerator: ts.Numerator, Denominator: ts.Denominator})
	return g, nil
}

// allocateChannels assigns each staff a MIDI channel 0-15, skipping the
// percussion channel, in staff order.
func (c *EventCompiler) allocateChannels(sc *ast.Score) {
	next := 0
	for _, staff := range sc.Staves {
		if next == gm.DrumChannel {
			next++
		}
		c.channels[staff.ID] = next % 16
		next++
	}
}

func (c *EventCompiler) compileStaff(staff *ast.Staff, inheritedTimeSig ast.TimeSignatureChange) {
	channel := c.channels[staff.ID]
	program := 0
	if staff.Instrument != "" {
		if p, ok := gm.ResolveInstrument(staff.Instrument); ok {
			program = p
		}
	}
	c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindProgramChange, StartTime: rational.Zero(), StaffID: staff.ID, Channel: channel, Program: program})

	cursors := map[int]rational.Rat{}
	velocities := map[int]int{}
	cursorFor := func(voice int) rational.Rat { return cursors[voice] }
	velocityFor := func(voice int) int {
		if v, ok := velocities[voice]; ok {
			return v
		}
		return gm.DefaultVelocity
	}

	ts := inheritedTimeSig
	for _, item := range staff.Items {
		switch v := item.(type) {
		case ast.TimeSignatureChange:
			ts = v
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTimeSignature, StartTime: cursorFor(0), StaffID: staff.ID, Numerator: v.Numerator, Denominator: v.Denominator})
		case ast.TempoChange:
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTempo, StartTime: cursorFor(0), StaffID: staff.ID, Value: v.BPM})
		case ast.InstrumentChange:
			if p, ok := gm.ResolveInstrument(v.Name); ok {
				program = p
			}
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindProgramChange, StartTime: cursorFor(0), StaffID: staff.ID, Channel: channel, Program: program})
		case ast.Voice:
			vcursor := rational.Zero()
			vvel := gm.DefaultVelocity
			for _, m := range v.Measures {
				switch mi := m.(type) {
				case ast.Measure:
					vcursor = c.compileMeasure(staff.ID, v.Number, channel, &vvel, mi, ts, vcursor)
				case ast.TimeSignatureChange:
					ts = mi
				case ast.TempoChange:
					c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTempo, StartTime: vcursor, StaffID: staff.ID, Value: mi.BPM})
				case ast.InstrumentChange:
					if p, ok := gm.ResolveInstrument(mi.Name); ok {
						program = p
					}
					c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindProgramChange, StartTime: vcursor, StaffID: staff.ID, Channel: channel, Program: program})
				}
			}
		case ast.Measure:
			vel := velocityFor(0)
			cursors[0] = c.compileMeasure(staff.ID, 0, channel, &vel, v, ts, cursorFor(0))
			velocities[0] = vel
		}
	}
}

// compileMeasure compiles one measure starting at the caller-tracked cursor
// start and returns the cursor at the measure's end. Voice blocks each start
// at start with their own cursor; the measure ends where the longest block ends.
func (c *EventCompiler) compileMeasure(staffID string, voiceNum int, channel int, velocity *int, m ast.Measure, ts ast.TimeSignatureChange, start rational.Rat) rational.Rat {
	if blocks := measureVoiceBlocks(m.Items); blocks != nil {
		end := start
		for _, vb := range blocks {
			vel := *velocity
			e := c.compileItems(staffID, vb.VoiceNumber, channel, &vel, vb.Items, start, rational.NewInt(1))
			if e.Cmp(end) > 0 {
				end = e
			}
		}
		return end
	}
	return c.compileItems(staffID, voiceNum, channel, velocity, m.Items, start, rational.NewInt(1))
}

func measureVoiceBlocks(items []ast.Node) []ast.VoiceBlock {
	var blocks []ast.VoiceBlock
	for _, it := range items {
		vb, ok := it.(ast.VoiceBlock)
		if !ok {
			return nil
		}
		blocks = append(blocks, vb)
	}
	return blocks
}

// compileItems walks a flat list of measure contents (or tuplet/slur
// contents), advancing cursor and emitting events. scale multiplies every
// nominal duration, accumulating across nested tuplets.
func (c *EventCompiler) compileItems(staffID string, voiceNum, channel int, velocity *int, items []ast.Node, cursor rational.Rat, scale rational.Rat) rational.Rat {
	for _, item := range items {
		switch n := item.(type) {
		case ast.Note:
			cursor = c.compileNote(staffID, voiceNum, channel, *velocity, n, cursor, scale)
		case ast.Chord:
			cursor = c.compileChord(staffID, voiceNum, channel, *velocity, n, cursor, scale)
		case ast.Rest:
			d := n.Dur.Value().Mul(scale)
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindRest, StartTime: cursor, Duration: d, EffectiveDuration: d, StaffID: staffID, VoiceID: voiceNum})
			cursor = cursor.Add(d)
		case ast.Tuplet:
			ratio := rational.NewFrac(int64(n.Normal), int64(n.Actual))
			cursor = c.compileItems(staffID, voiceNum, channel, velocity, n.Contents, cursor, scale.Mul(ratio))
		case ast.Slur:
			cursor = c.compileItems(staffID, voiceNum, channel, velocity, n.Contents, cursor, scale)
		case ast.Dynamic:
			if v, ok := gm.Velocity(n.Marking); ok {
				*velocity = v
			}
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindDynamic, StartTime: cursor, StaffID: staffID, VoiceID: voiceNum, Velocity: *velocity})
		case ast.Hairpin:
			target := *velocity + 30
			if n.Kind == ast.HairpinDecresc || n.Kind == ast.HairpinDim {
				target = *velocity - 30
			}
			target = clamp(target, 20, 127)
			d := n.Dur.Value().Mul(scale)
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindDynamic, StartTime: cursor, Duration: d, StaffID: staffID, VoiceID: voiceNum, HairpinFrom: *velocity, HairpinTo: target})
			*velocity = target
		case ast.Pedal:
			val := 127
			if n.Kind == ast.PedalUp {
				val = 0
			}
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindPedal, StartTime: cursor, StaffID: staffID, VoiceID: voiceNum, Channel: channel, Controller: 64, Value: val})
		case ast.TempoChange:
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTempo, StartTime: cursor, StaffID: staffID, Value: n.BPM})
		case ast.TimeSignatureChange:
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindTimeSignature, StartTime: cursor, StaffID: staffID, Numerator: n.Numerator, Denominator: n.Denominator})
		case ast.InstrumentChange:
			if p, ok := gm.ResolveInstrument(n.Name); ok {
				c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindProgramChange, StartTime: cursor, StaffID: staffID, Channel: channel, Program: p})
			}
		}
	}
	return cursor
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// compileNote handles grace consumption, ornament expansion, tie fusion and
// articulation-driven effective duration for a single note.
func (c *EventCompiler) compileNote(staffID string, voiceNum, channel, velocity int, n ast.Note, cursor rational.Rat, scale rational.Rat) rational.Rat {
	nominal := n.Dur.Value().Mul(scale)
	entryCursor := cursor

	if len(n.Grace) > 0 {
		graceStep := nominal.Quo(rational.NewInt(8))
		for _, g := range n.Grace {
			c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindNote, StartTime: cursor, Duration: graceStep, EffectiveDuration: applyArticulation(graceStep, g.Articulations), StaffID: staffID, VoiceID: voiceNum, Channel: channel, MIDI: g.Pitch.MIDI(), Velocity: velocity})
			cursor = cursor.Add(graceStep)
		}
		nominal = nominal.Sub(cursor.Sub(entryCursor))
	}

	if orn, ok := firstOrnament(n.Ornaments); ok {
		c.emitOrnament(staffID, voiceNum, channel, velocity, n, orn, cursor, nominal)
		return cursor.Add(nominal)
	}

	midi := n.Pitch.MIDI()
	key := tieKey{staff: staffID, voice: voiceNum, midi: midi}
	if idx, ok := c.pending[key]; ok {
		c.events[idx].Duration = c.events[idx].Duration.Add(nominal)
		if !n.TiedForward {
			c.events[idx].EffectiveDuration = applyArticulation(c.events[idx].Duration, n.Articulations)
			delete(c.pending, key)
		}
		return cursor.Add(nominal)
	}

	eff := nominal
	if !n.TiedForward {
		eff = applyArticulation(nominal, n.Articulations)
	}
	c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindNote, StartTime: cursor, Duration: nominal, EffectiveDuration: eff, StaffID: staffID, VoiceID: voiceNum, Channel: channel, MIDI: midi, Velocity: velocity})
	if n.TiedForward {
		c.pending[key] = len(c.events) - 1
	}
	return cursor.Add(nominal)
}

func (c *EventCompiler) compileChord(staffID string, voiceNum, channel, velocity int, ch ast.Chord, cursor rational.Rat, scale rational.Rat) rational.Rat {
	nominal := ch.Dur.Value().Mul(scale)
	for _, pitch := range ch.Pitches {
		midi := pitch.MIDI()
		key := tieKey{staff: staffID, voice: voiceNum, midi: midi}
		if idx, ok := c.pending[key]; ok {
			c.events[idx].Duration = c.events[idx].Duration.Add(nominal)
			if !ch.TiedForward {
				c.events[idx].EffectiveDuration = applyArticulation(c.events[idx].Duration, ch.Articulations)
				delete(c.pending, key)
			}
			continue
		}
		eff := nominal
		if !ch.TiedForward {
			eff = applyArticulation(nominal, ch.Articulations)
		}
		c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindNote, StartTime: cursor, Duration: nominal, EffectiveDuration: eff, StaffID: staffID, VoiceID: voiceNum, Channel: channel, MIDI: midi, Velocity: velocity})
		if ch.TiedForward {
			c.pending[key] = len(c.events) - 1
		}
	}
	return cursor.Add(nominal)
}

func firstOrnament(ornaments []ast.Ornament) (ast.Ornament, bool) {
	if len(ornaments) == 0 {
		return ast.Ornament{}, false
	}
	return ornaments[0], true
}

// emitOrnament replaces the single main note with the note sequence the
// ornament expands to. Articulation shortens only the final note of the
// figure; the earlier notes sound for their full slice.
func (c *EventCompiler) emitOrnament(staffID string, voiceNum, channel, velocity int, n ast.Note, orn ast.Ornament, cursor rational.Rat, total rational.Rat) {
	mainMIDI := n.Pitch.MIDI()
	auxMIDI := mainMIDI + 2
	if orn.Aux != nil {
		auxMIDI = orn.Aux.MIDI()
	}

	var seq []int
	var durs []rational.Rat
	eighth := total.Quo(rational.NewInt(8))
	switch orn.Kind {
	case ast.OrnamentTrill:
		for i := 0; i < 8; i++ {
			if i%2 == 0 {
				seq = append(seq, mainMIDI)
			} else {
				seq = append(seq, auxMIDI)
			}
			durs = append(durs, eighth)
		}
	case ast.OrnamentMordent:
		seq = []int{mainMIDI, auxMIDI, mainMIDI}
		remainder := total.Sub(eighth).Sub(eighth)
		durs = []rational.Rat{eighth, eighth, remainder}
	case ast.OrnamentTurn:
		quarter := total.Quo(rational.NewInt(4))
		seq = []int{auxMIDI, mainMIDI, mainMIDI - 2, mainMIDI}
		durs = []rational.Rat{quarter, quarter, quarter, quarter}
	default:
		seq = []int{mainMIDI}
		durs = []rational.Rat{total}
	}

	t := cursor
	for i, midi := range seq {
		d := durs[i]
		eff := d
		if i == len(seq)-1 {
			eff = applyArticulation(d, n.Articulations)
		}
		c.events = append(c.events, eventgraph.Event{Kind: eventgraph.KindNote, StartTime: t, Duration: d, EffectiveDuration: eff, StaffID: staffID, VoiceID: voiceNum, Channel: channel, MIDI: midi, Velocity: velocity})
		t = t.Add(d)
	}
}

// applyArticulation computes effective (sounded) duration from nominal
// (timeline) duration, per the closed set of articulation rules: staccato
// halves it, staccatissimo quarters it, tenuto/legato leave it full, and the
// absence of any articulation still shortens it slightly to 9/10 so notes
// don't butt up against one another by default.
func applyArticulation(nominal rational.Rat, arts []ast.Articulation) rational.Rat {
	for _, a := range arts {
		if a == ast.ArticulationStaccatissimo {
			return nominal.Quo(rational.NewInt(4))
		}
	}
	for _, a := range arts {
		if a == ast.ArticulationStaccato {
			return nominal.Quo(rational.NewInt(2))
		}
	}
	for _, a := range arts {
		if a == ast.ArticulationTenuto || a == ast.ArticulationLegato {
			return nominal
		}
	}
	return nominal.Mul(rational.NewFrac(9, 10))
}
