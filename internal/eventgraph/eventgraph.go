// Package eventgraph defines the compiled, timeline-ordered output of
// internal/compiler: an immutable, read-only set of Events sorted by start
// time. It has no knowledge of the source AST.
package eventgraph

import (
	"sort"

	"github.com/cbegin/clef-go/internal/rational"
)

// Kind identifies an Event's role on the timeline. Ordering within a single
// start_time is governed by kindPriority below, mirroring the tagged
// EventType/Event pair the teacher's internal/mml package uses.
type Kind int

const (
	KindTempo Kind = iota
	KindTimeSignature
	KindProgramChange
	KindControlChange
	KindDynamic
	KindPedal
	KindNote
	KindRest
)

func (k Kind) String() string {
	switch k {
	case KindTempo:
		return "tempo"
	case KindTimeSignature:
		return "time_signature"
	case KindProgramChange:
		return "program_change"
	case KindControlChange:
		return "control_change"
	case KindDynamic:
		return "dynamic"
	case KindPedal:
		return "pedal"
	case KindNote:
		return "note"
	case KindRest:
		return "rest"
	default:
		return "unknown"
	}
}

// kindPriority orders same-start-time events: control/meta events before
// sounding events.
var kindPriority = map[Kind]int{
	KindTempo:         0,
	KindTimeSignature: 1,
	KindProgramChange: 2,
	KindDynamic:       3,
	KindPedal:         4,
	KindControlChange: 4,
	KindNote:          10,
	KindRest:          20,
}

// Event is a single compiled timeline entry. Not every field is meaningful
// for every Kind; callers switch on Kind the same way the teacher's sequencer
// switches on mml.EventType.
type Event struct {
	Kind              Kind
	StartTime         rational.Rat
	Duration          rational.Rat // nominal, timeline-advancing duration; meaningful for KindNote/KindRest
	EffectiveDuration rational.Rat // sounded duration after articulation; meaningful for KindNote
	StaffID           string
	VoiceID           int
	Channel           int // meaningful for KindNote/KindProgramChange/KindControlChange/KindPedal
	MIDI              int // meaningful for KindNote
	Velocity          int // meaningful for KindNote/KindDynamic
	Program           int // meaningful for KindProgramChange
	Controller        int // meaningful for KindControlChange/KindPedal (e.g. 64 = sustain pedal)
	Value             int // meaningful for KindControlChange/KindPedal/KindTempo(bpm)
	Numerator         int // meaningful for KindTimeSignature
	Denominator       int // meaningful for KindTimeSignature
	HairpinFrom       int // meaningful for KindDynamic when representing a hairpin's start velocity
	HairpinTo         int // meaningful for KindDynamic when representing a hairpin's end velocity
}

// TimeSignature is a bare numerator/denominator pair. It mirrors
// ast.TimeSignatureChange without importing internal/ast, since this package
// has no knowledge of the source AST.
type TimeSignature struct {
	Numerator   int
	Denominator int
}

// Graph is a sorted, read-only collection of Events, plus the score-level
// metadata a backend needs before it can play anything: the initial tempo
// and time signature in effect at time zero.
type Graph struct {
	events []Event
	sorted bool

	initialTempo   int
	initialTimeSig TimeSignature
}

// New returns an empty Graph.
func New() *Graph { return &Graph{} }

// SetInitialTempo records the score's resolved starting tempo in beats per
// minute.
func (g *Graph) SetInitialTempo(bpm int) { g.initialTempo = bpm }

// InitialTempo returns the score's starting tempo in beats per minute.
func (g *Graph) InitialTempo() int { return g.initialTempo }

// SetInitialTimeSignature records the score's resolved starting time
// signature.
func (g *Graph) SetInitialTimeSignature(ts TimeSignature) { g.initialTimeSig = ts }

// InitialTimeSignature returns the score's starting time signature.
func (g *Graph) InitialTimeSignature() TimeSignature { return g.initialTimeSig }

// Add appends e. The graph is marked unsorted until Sort is called.
func (g *Graph) Add(e Event) {
	g.events = append(g.events, e)
	g.sorted = false
}

// Sort orders events by (start_time ASC, kind priority ASC), stably —
// events with equal start_time and kind retain their insertion order.
func (g *Graph) Sort() {
	sort.SliceStable(g.events, func(i, j int) bool {
		a, b := g.events[i], g.events[j]
		cmp := a.StartTime.Cmp(b.StartTime)
		if cmp != 0 {
			return cmp < 0
		}
		return kindPriority[a.Kind] < kindPriority[b.Kind]
	})
	g.sorted = true
}

// Events returns the events in sorted order, sorting first if needed.
func (g *Graph) Events() []Event {
	if !g.sorted {
		g.Sort()
	}
	return g.events
}

// Duration returns the end time of the last sounding event (Note or Rest),
// or zero for an empty graph.
func (g *Graph) Duration() rational.Rat {
	max := rational.Zero()
	for _, e := range g.events {
		if e.Kind != KindNote && e.Kind != KindRest {
			continue
		}
		end := e.StartTime.Add(e.Duration)
		if end.Cmp(max) > 0 {
			max = end
		}
	}
	return max
}

// EventsInRange returns events with start_time in [from, to).
func (g *Graph) EventsInRange(from, to rational.Rat) []Event {
	var out []Event
	for _, e := range g.Events() {
		if e.StartTime.Cmp(from) >= 0 && e.StartTime.Cmp(to) < 0 {
			out = append(out, e)
		}
	}
	return out
}

// EventsForStaff returns every event belonging to staffID, in sorted order.
func (g *Graph) EventsForStaff(staffID string) []Event {
	var out []Event
	for _, e := range g.Events() {
		if e.StaffID == staffID {
			out = append(out, e)
		}
	}
	return out
}

// Len reports the number of events in the graph.
func (g *Graph) Len() int { return len(g.events) }
