// Package ast defines the immutable value tree the parser produces and the
// semantic analyzer / event compiler walk. Every node is a plain value type;
// nothing here mutates once built, matching spec.md §5 ("the analyzer never
// mutates the AST").
package ast

import "github.com/cbegin/clef-go/internal/rational"

// Node is implemented by every AST node. Analyzer and compiler dispatch on
// concrete type with a type switch, the same single-dispatch style the
// teacher uses for its EventType switch in internal/mml/parser.go and
// internal/sequencer/sequencer.go.
type Node interface {
	node()
}

// Accidental is one of the five accidental spellings spec.md §3 names, plus
// "none" for a plain natural letter with no explicit mark.
type Accidental int

const (
	AccidentalNone Accidental = iota
	AccidentalNatural
	AccidentalSharp
	AccidentalDoubleSharp
	AccidentalFlat
	AccidentalDoubleFlat
)

func (a Accidental) SemitoneOffset() int {
	switch a {
	case AccidentalSharp:
		return 1
	case AccidentalDoubleSharp:
		return 2
	case AccidentalFlat:
		return -1
	case AccidentalDoubleFlat:
		return -2
	default: // AccidentalNone, AccidentalNatural
		return 0
	}
}

func (a Accidental) String() string {
	switch a {
	case AccidentalNatural:
		return "natural"
	case AccidentalSharp:
		return "sharp"
	case AccidentalDoubleSharp:
		return "double-sharp"
	case AccidentalFlat:
		return "flat"
	case AccidentalDoubleFlat:
		return "double-flat"
	default:
		return "none"
	}
}

// letterBase maps a pitch letter to its semitone offset from C within an
// octave, per spec.md §3: C=0, D=2, E=4, F=5, G=7, A=9, B=11.
var letterBase = map[byte]int{
	'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11,
}

// Pitch is (letter, octave, accidental). Letter is always the upper-case
// form of one of C,D,E,F,G,A,B.
type Pitch struct {
	Letter     byte
	Octave     int
	Accidental Accidental
}

// MIDI returns (octave+1)·12 + base[letter] + semitone_offset(accidental).
func (p Pitch) MIDI() int {
	return (p.Octave+1)*12 + letterBase[p.Letter] + p.Accidental.SemitoneOffset()
}

// EnharmonicEqual reports whether p and other share a MIDI number.
func (p Pitch) EnharmonicEqual(other Pitch) bool { return p.MIDI() == other.MIDI() }

// NotationallyEqual reports whether p and other are the identical spelling
// (same letter, octave and accidental) rather than merely enharmonically
// equivalent.
func (p Pitch) NotationallyEqual(other Pitch) bool {
	return p.Letter == other.Letter && p.Octave == other.Octave && p.Accidental == other.Accidental
}

// Duration is (base, dots). Value() computes base·(2−2⁻ᵈᵒᵗˢ) exactly.
type Duration struct {
	Name string // one of w,h,q,e,s,t,x — the named duration this base came from
	Base rational.Rat
	Dots int
}

func (d Duration) Value() rational.Rat { return rational.Dotted(d.Base, d.Dots) }

// Articulation is a per-note modifier affecting sounded (not timeline)
// duration, per spec.md §4.3.
type Articulation int

const (
	ArticulationNone Articulation = iota
	ArticulationStaccato
	ArticulationStaccatissimo
	ArticulationTenuto
	ArticulationLegato
	ArticulationAccent
)

// OrnamentKind is one of the three note-adjacent figures spec.md §4.3 names.
type OrnamentKind int

const (
	OrnamentNone OrnamentKind = iota
	OrnamentTrill
	OrnamentMordent
	OrnamentTurn
)

// Ornament carries an optional explicit auxiliary pitch for a trill; nil
// means "default to main+2 semitones" per spec.md §4.3.
type Ornament struct {
	Kind OrnamentKind
	Aux  *Pitch
}

// Note is a single pitched, durational event.
type Note struct {
	Pitch         Pitch
	Dur           Duration
	Articulations []Articulation
	Ornaments     []Ornament
	TiedForward   bool
	Grace         []Note // grace notes sounding immediately before this note
}

func (Note) node() {}

// Chord is a non-empty ordered set of simultaneous pitches sharing one
// duration, articulation list, ornament list and tie flag.
type Chord struct {
	Pitches       []Pitch
	Dur           Duration
	Articulations []Articulation
	Ornaments     []Ornament
	TiedForward   bool
}

func (Chord) node() {}

// Rest occupies time without sounding.
type Rest struct {
	Dur Duration
}

func (Rest) node() {}

// Tuplet rescales the duration of its contents by Normal/Actual; tuplets may
// nest, and effective ratios multiply down (spec.md §3).
type Tuplet struct {
	Actual   int
	Normal   int
	Contents []Node
}

func (Tuplet) node() {}

// Slur has no duration effect at the CORE layer (spec.md §9, Open Question);
// its contents are still ordinary measure contents.
type Slur struct {
	Contents []Node
}

func (Slur) node() {}

// Dynamic is a symbolic marking from the closed set in spec.md §3.
type Dynamic struct {
	Marking string
}

func (Dynamic) node() {}

// HairpinKind is one of the three kinds spec.md §3 names.
type HairpinKind int

const (
	HairpinCresc HairpinKind = iota
	HairpinDecresc
	HairpinDim
)

func (k HairpinKind) String() string {
	switch k {
	case HairpinCresc:
		return "cresc"
	case HairpinDecresc:
		return "decresc"
	case HairpinDim:
		return "dim"
	default:
		return "unknown"
	}
}

// Hairpin is a gradual dynamic change over Dur.
type Hairpin struct {
	Kind HairpinKind
	Dur  Duration
}

func (Hairpin) node() {}

// PedalKind is one of the three pedal marker kinds spec.md §3 names.
type PedalKind int

const (
	PedalDown PedalKind = iota
	PedalUp
	PedalChange
)

func (k PedalKind) String() string {
	switch k {
	case PedalDown:
		return "ped"
	case PedalUp:
		return "ped_up"
	case PedalChange:
		return "ped_change"
	default:
		return "unknown"
	}
}

type Pedal struct {
	Kind PedalKind
}

func (Pedal) node() {}

// InstrumentChange switches the active instrument for a staff, at time 0 or
// mid-stream.
type InstrumentChange struct {
	Name string
}

func (InstrumentChange) node() {}

// TempoChange sets the active tempo in beats per minute.
type TempoChange struct {
	BPM int
}

func (TempoChange) node() {}

// TimeSignatureChange sets the active time signature Numerator/Denominator.
type TimeSignatureChange struct {
	Numerator   int
	Denominator int
}

// Value returns the time signature's value as a fraction of a whole note:
// numerator/denominator.
func (t TimeSignatureChange) Value() rational.Rat {
	return rational.NewFrac(int64(t.Numerator), int64(t.Denominator))
}

func (TimeSignatureChange) node() {}

// KeySignature is the score's (or a later directive's) key.
type KeySignature struct {
	Letter     byte
	Accidental Accidental
	Minor      bool
}

func (KeySignature) node() {}

// VoiceBlock is a synchronized hand/voice inside a measure, per spec.md §9's
// guidance: MeasureContent = Item(...) | VoiceBlock(voice_id, items).
type VoiceBlock struct {
	VoiceNumber int
	Items       []Node
}

func (VoiceBlock) node() {}

// Measure is a time-signature-sized chunk of music. Items is either a flat
// list of ordinary measure contents, or a set of VoiceBlock items (never a
// mix — internal/semantic enforces this).
type Measure struct {
	Number *int
	Items  []Node
}

func (Measure) node() {}

// Voice is one independent line within a staff.
type Voice struct {
	Number   int
	Measures []Node // Measure, or a mid-stream TempoChange/TimeSignatureChange/InstrumentChange
}

func (Voice) node() {}

// Staff is one instrumental line, containing voices and/or directly-placed
// measures.
type Staff struct {
	ID         string
	Instrument string
	Items      []Node // Voice, Measure, TempoChange, TimeSignatureChange, InstrumentChange
}

func (Staff) node() {}

// Score is the root of the tree.
type Score struct {
	Staves         []*Staff
	InitialTempo   *int
	InitialTimeSig *TimeSignatureChange
	InitialKey     *KeySignature
}

func (Score) node() {}
