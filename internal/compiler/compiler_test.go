package compiler

import (
	"testing"

	"github.com/cbegin/clef-go/internal/eventgraph"
	"github.com/cbegin/clef-go/internal/parser"
	"github.com/cbegin/clef-go/internal/rational"
)

func compileOrFail(t *testing.T, src string) *eventgraph.Graph {
	t.Helper()
	sc, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g, err := Compile(sc, DefaultConfig())
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return g
}

func TestBasicTimingOfFourQuarters(t *testing.T) {
	g := compileOrFail(t, `score {
		tempo 120
		time 4/4
		staff s {
			measure {
				C4 q
				D4 q
				E4 q
				F4 q
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 4 {
		t.Fatalf("expected 4 note events, got %d", len(notes))
	}
	want := []string{"0", "1/4", "1/2", "3/4"}
	for i, n := range notes {
		if n.StartTime.String() != want[i] {
			t.Fatalf("note %d starts at %s, want %s", i, n.StartTime, want[i])
		}
	}
}

func TestTieFusionSumsDuration(t *testing.T) {
	g := compileOrFail(t, `score {
		time 2/4
		staff s {
			measure {
				C4 q tie
				C4 q
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 1 {
		t.Fatalf("expected tie fusion to leave exactly 1 note event, got %d", len(notes))
	}
	if !notes[0].Duration.Equal(rational.NewFrac(1, 2)) {
		t.Fatalf("fused nominal duration = %s, want 1/2", notes[0].Duration)
	}
	wantEff := rational.NewFrac(9, 20) // (1/4+1/4) nominal, shrunk to 9/10 (no articulation)
	if !notes[0].EffectiveDuration.Equal(wantEff) {
		t.Fatalf("fused effective duration = %s, want %s", notes[0].EffectiveDuration, wantEff)
	}
}

func TestChordProducesOneEventPerPitch(t *testing.T) {
	g := compileOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				<C4, E4, G4> q
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 note events for a triad, got %d", len(notes))
	}
	for _, n := range notes {
		if !n.StartTime.IsZero() {
			t.Fatalf("chord notes must share a start time, got %s", n.StartTime)
		}
	}
}

func TestChannelAllocationSkipsPercussionChannel(t *testing.T) {
	src := `score {
		staff a {
			measure { C4 w }
		}
		staff b {
			measure { C4 w }
		}
		staff c { measure { C4 w } }
		staff d { measure { C4 w } }
		staff e { measure { C4 w } }
		staff f { measure { C4 w } }
		staff g { measure { C4 w } }
		staff h { measure { C4 w } }
		staff i { measure { C4 w } }
		staff j { measure { C4 w } }
	}`
	sc, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	c := New(DefaultConfig())
	c.allocateChannels(sc)
	if c.channels["a"] != 0 {
		t.Fatalf("expected staff a on channel 0, got %d", c.channels["a"])
	}
	if c.channels["b"] != 1 {
		t.Fatalf("expected staff b on channel 1, got %d", c.channels["b"])
	}
	if c.channels["i"] != 8 || c.channels["j"] != 10 {
		t.Fatalf("expected staves i and j on channels 8 and 10 (9 skipped), got %d and %d", c.channels["i"], c.channels["j"])
	}
}

func TestVoicesStartSynchronizedAtZero(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				voice 1 {
					C4 w
				}
				voice 2 {
					D4 h
					E4 h
				}
			}
		}
	}`)
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote && e.VoiceID == 1 {
			if !e.StartTime.IsZero() {
				t.Fatalf("voice 1 note should start at 0, got %s", e.StartTime)
			}
		}
	}
}

func TestStaccatoHalvesEffectiveDuration(t *testing.T) {
	g := compileOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				C4 q staccato
			}
		}
	}`)
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			if !e.Duration.Equal(rational.NewFrac(1, 4)) {
				t.Fatalf("staccato quarter nominal duration = %s, want 1/4", e.Duration)
			}
			want := rational.NewFrac(1, 8)
			if !e.EffectiveDuration.Equal(want) {
				t.Fatalf("staccato quarter effective duration = %s, want %s", e.EffectiveDuration, want)
			}
		}
	}
}

func TestTripletExactness(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				tuplet 3 in 2 {
					C4 e
					D4 e
					E4 e
				}
				F4 q
				G4 h
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 5 {
		t.Fatalf("expected 5 notes, got %d", len(notes))
	}
	wantStart := []string{"0", "1/12", "1/6", "1/4", "1/2"}
	twelfth := rational.NewFrac(1, 12)
	for i, n := range notes[:3] {
		if n.StartTime.String() != wantStart[i] {
			t.Fatalf("triplet note %d starts at %s, want %s", i, n.StartTime, wantStart[i])
		}
		if !n.Duration.Equal(twelfth) {
			t.Fatalf("triplet note %d nominal duration wrong: %s, want %s", i, n.Duration, twelfth)
		}
		if !n.EffectiveDuration.Equal(twelfth.Mul(rational.NewFrac(9, 10))) {
			t.Fatalf("triplet note %d effective duration wrong: %s", i, n.EffectiveDuration)
		}
	}
}

func TestGraceNotesShortenMainNoteAndShiftStart(t *testing.T) {
	g := compileOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				grace { D4 x } C4 q
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 2 {
		t.Fatalf("expected grace + main note, got %d", len(notes))
	}
	eighth := rational.NewFrac(1, 4).Quo(rational.NewInt(8))
	if !notes[0].StartTime.IsZero() || !notes[0].Duration.Equal(eighth) {
		t.Fatalf("grace note wrong: start=%s dur=%s", notes[0].StartTime, notes[0].Duration)
	}
	if !notes[1].StartTime.Equal(eighth) {
		t.Fatalf("main note should start after grace, got %s", notes[1].StartTime)
	}
	wantMainNominal := rational.NewFrac(1, 4).Sub(eighth)
	if !notes[1].Duration.Equal(wantMainNominal) {
		t.Fatalf("main note nominal duration = %s, want %s", notes[1].Duration, wantMainNominal)
	}
	wantMainEff := wantMainNominal.Mul(rational.NewFrac(9, 10))
	if !notes[1].EffectiveDuration.Equal(wantMainEff) {
		t.Fatalf("main note effective duration = %s, want %s", notes[1].EffectiveDuration, wantMainEff)
	}
}

func TestMordentFirstTwoNotesAreEighthOfTotal(t *testing.T) {
	g := compileOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				C4 q mordent
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 notes for a mordent, got %d", len(notes))
	}
	eighth := rational.NewFrac(1, 4).Quo(rational.NewInt(8))
	if !notes[0].Duration.Equal(eighth) || !notes[1].Duration.Equal(eighth) {
		t.Fatalf("mordent's first two notes should each be D/8, got %s and %s", notes[0].Duration, notes[1].Duration)
	}
	wantLastNominal := rational.NewFrac(1, 4).Sub(eighth).Sub(eighth)
	if !notes[2].Duration.Equal(wantLastNominal) {
		t.Fatalf("mordent's final note nominal duration = %s, want %s", notes[2].Duration, wantLastNominal)
	}
	wantLast := wantLastNominal.Mul(rational.NewFrac(9, 10))
	if !notes[2].EffectiveDuration.Equal(wantLast) {
		t.Fatalf("mordent's final note effective duration = %s, want %s", notes[2].EffectiveDuration, wantLast)
	}
	if notes[0].MIDI != 60 || notes[1].MIDI != 62 || notes[2].MIDI != 60 {
		t.Fatalf("mordent pitch sequence wrong: %d %d %d", notes[0].MIDI, notes[1].MIDI, notes[2].MIDI)
	}
}

func TestTieFusionAcrossMeasuresMatchesWholeNote(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				C4 h tie
			}
			measure {
				C4 h
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 1 {
		t.Fatalf("expected the tied half notes to fuse into 1 note event, got %d", len(notes))
	}
	if notes[0].MIDI != 60 || !notes[0].StartTime.IsZero() || !notes[0].Duration.Equal(rational.NewInt(1)) {
		t.Fatalf("fused note wrong: midi=%d start=%s dur=%s", notes[0].MIDI, notes[0].StartTime, notes[0].Duration)
	}
}

func TestChordSharesStartAndDurationAcrossPitches(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				<C4, E4, G4> w
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 3 {
		t.Fatalf("expected 3 note events for a triad, got %d", len(notes))
	}
	midis := map[int]bool{}
	for _, n := range notes {
		midis[n.MIDI] = true
		if !n.StartTime.IsZero() || !n.Duration.Equal(rational.NewInt(1)) {
			t.Fatalf("chord note wrong: start=%s dur=%s", n.StartTime, n.Duration)
		}
	}
	for _, want := range []int{60, 64, 67} {
		if !midis[want] {
			t.Fatalf("expected MIDI %d in chord, got set %v", want, midis)
		}
	}
}

func TestPolyphonicVoicesSynchronizeAtZero(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			voice 1 {
				measure {
					C5 w
				}
			}
			voice 2 {
				measure {
					C4 w
				}
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 2 {
		t.Fatalf("expected one note per voice, got %d", len(notes))
	}
	seenVoices := map[int]bool{}
	for _, n := range notes {
		if !n.StartTime.IsZero() {
			t.Fatalf("both voices should start at 0, got %s for voice %d", n.StartTime, n.VoiceID)
		}
		seenVoices[n.VoiceID] = true
	}
	if !seenVoices[1] || !seenVoices[2] {
		t.Fatalf("expected distinct voice_ids 1 and 2, got %v", seenVoices)
	}
}

func TestVelocityPropagatesFromMostRecentDynamic(t *testing.T) {
	g := compileOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				C4 q
				mf
				D4 q
				ff
				E4 q
				F4 q
			}
		}
	}`)
	var notes []eventgraph.Event
	for _, e := range g.Events() {
		if e.Kind == eventgraph.KindNote {
			notes = append(notes, e)
		}
	}
	if len(notes) != 4 {
		t.Fatalf("expected 4 notes, got %d", len(notes))
	}
	want := []int{80, 80, 112, 112} // default, mf=80, ff=112, ff carries forward
	for i, n := range notes {
		if n.Velocity != want[i] {
			t.Fatalf("note %d velocity = %d, want %d", i, n.Velocity, want[i])
		}
	}
}

func TestEventsSortedByStartTimeThenKindPriority(t *testing.T) {
	g := compileOrFail(t, `score {
		tempo 100
		time 2/4
		staff s {
			measure {
				mf
				C4 q
				D4 q
			}
		}
	}`)
	events := g.Events()
	for i := 1; i < len(events); i++ {
		if events[i-1].StartTime.Cmp(events[i].StartTime) > 0 {
			t.Fatalf("events not sorted by start time at index %d", i)
		}
	}
	wantKinds := []eventgraph.Kind{eventgraph.KindTempo, eventgraph.KindTimeSignature, eventgraph.KindProgramChange, eventgraph.KindDynamic, eventgraph.KindNote}
	for i, k := range wantKinds {
		if events[i].Kind != k {
			t.Fatalf("event %d at time 0 is %s, want %s", i, events[i].Kind, k)
		}
	}
}
