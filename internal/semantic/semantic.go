// Package semantic validates an *ast.Score against the invariants that make
// it compilable: exact measure durations, tuplet shape, tie resolution, the
// pedal state machine, and the closed dynamics vocabulary. It never mutates
// the tree it walks, and it never looks at timing beyond what validation
// needs — that is internal/compiler's job.
package semantic

import (
	"fmt"

	"github.com/cbegin/clef-go/internal/ast"
	"github.com/cbegin/clef-go/internal/gm"
	"github.com/cbegin/clef-go/internal/rational"
)

// SemanticError is one validation failure, always attributable to a
// staff/voice/measure triple so a caller can locate it in source.
type SemanticError struct {
	Staff   string
	Voice   int
	Measure int
	Message string
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("staff %s voice %d measure %d: %s", e.Staff, e.Voice, e.Measure, e.Message)
}

// Warning is a non-fatal finding: instrument name not recognized, a redundant
// pedal DOWN, an empty slur, or sibling voices whose total durations differ.
type Warning struct {
	Staff   string
	Voice   int
	Measure int
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("staff %s voice %d measure %d: %s", w.Staff, w.Voice, w.Measure, w.Message)
}

// Report is the outcome of a full analysis pass. In strict mode, the first
// error recorded sets stopped and every subsequent walk function returns
// without doing further validation work.
type Report struct {
	Errors   []*SemanticError
	Warnings []Warning

	strict  bool
	stopped bool
}

func (r *Report) OK() bool { return len(r.Errors) == 0 }

// Halted reports whether strict mode has already short-circuited the walk.
func (r *Report) Halted() bool { return r.stopped }

func (r *Report) addErr(staff string, voice, measure int, format string, args ...any) {
	r.Errors = append(r.Errors, &SemanticError{Staff: staff, Voice: voice, Measure: measure, Message: fmt.Sprintf(format, args...)})
	if r.strict {
		r.stopped = true
	}
}

func (r *Report) addWarn(staff string, voice, measure int, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{Staff: staff, Voice: voice, Measure: measure, Message: fmt.Sprintf(format, args...)})
}

// Config mirrors the teacher's Config/Default*Config() pairing. Strict mode
// makes the first error abort the walk; unrecognized instrument names always
// stay warnings regardless of Strict.
type Config struct {
	Strict bool
}

func DefaultConfig() Config { return Config{Strict: false} }

// Analyzer walks a Score once and produces a Report.
type Analyzer struct {
	cfg Config
}

func New(cfg Config) *Analyzer { return &Analyzer{cfg: cfg} }

// pendingTie is a note carried forward awaiting its continuation, keyed by
// (staff, voice, midi number) per spec: a tie resolves against the next
// note at the same pitch in the same staff/voice, matching enharmonically.
type tieKey struct {
	staff string
	voice int
	midi  int
}

type pendingTie struct {
	pitch   ast.Pitch
	measure int
}

// trackState is the per-(staff,voice) running validation context.
type trackState struct {
	timeSig    ast.TimeSignatureChange
	pedalDown  bool
	measureIdx int
}

// Analyze validates sc and returns a Report. It never returns a nil Report.
func (a *Analyzer) Analyze(sc *ast.Score) *Report {
	report := &Report{strict: a.cfg.Strict}
	pending := map[tieKey]pendingTie{}

	baseTimeSig := ast.TimeSignatureChange{Numerator: 4, Denominator: 4}
	if sc.InitialTimeSig != nil {
		baseTimeSig = *sc.InitialTimeSig
	}

	for _, staff := range sc.Staves {
		if report.stopped {
			break
		}
		if staff.Instrument != "" {
			if _, ok := gm.ResolveInstrument(staff.Instrument); !ok {
				// Unrecognized instrument name is Advisory: it never aborts,
				// even in strict mode.
				report.addWarn(staff.ID, 0, 0, "unrecognized instrument %q", staff.Instrument)
			}
		}

		ts := baseTimeSig
		directTrack := &trackState{timeSig: ts}
		voiceTotals := map[int]rational.Rat{}

		for _, item := range staff.Items {
			if report.stopped {
				break
			}
			switch v := item.(type) {
			case ast.TimeSignatureChange:
				ts = v
				directTrack.timeSig = ts
			case ast.TempoChange, ast.InstrumentChange:
				// no measure-shape consequence
			case ast.Voice:
				voiceTotals[v.Number] = voiceTotals[v.Number].Add(a.analyzeVoice(report, pending, staff.ID, v, ts))
			case ast.Measure:
				a.analyzeMeasure(report, pending, staff.ID, 0, directTrack, v)
			}
		}

		if report.stopped {
			break
		}
		a.checkVoiceAlignment(report, staff.ID, voiceTotals)
	}

	if !report.stopped {
		for key, p := range pending {
			report.addErr(key.staff, key.voice, p.measure, "tied-forward note at MIDI %d is never resolved", key.midi)
			if report.stopped {
				break
			}
		}
	}

	return report
}

// analyzeVoice validates v's measures and returns v's total duration summed
// across all of them, for the cross-voice alignment check in Analyze.
func (a *Analyzer) analyzeVoice(report *Report, pending map[tieKey]pendingTie, staffID string, v ast.Voice, inheritedTimeSig ast.TimeSignatureChange) rational.Rat {
	ts := inheritedTimeSig
	track := &trackState{timeSig: ts}
	total := rational.Zero()
	for _, item := range v.Measures {
		if report.stopped {
			break
		}
		switch m := item.(type) {
		case ast.TimeSignatureChange:
			ts = m
			track.timeSig = ts
		case ast.TempoChange, ast.InstrumentChange:
		case ast.Measure:
			a.analyzeMeasure(report, pending, staffID, v.Number, track, m)
			total = total.Add(measureTotalDuration(m.Items))
		}
	}
	return total
}

// measureTotalDuration sums a measure's own notated duration, ignoring any
// internal voice-block split (each voice block's own total already equals
// the measure's time-signature value when the measure validates).
func measureTotalDuration(items []ast.Node) rational.Rat {
	if blocks := measureVoiceBlocks(items); blocks != nil {
		if len(blocks) == 0 {
			return rational.Zero()
		}
		return measureTotalDuration(blocks[0].Items)
	}
	total := rational.Zero()
	for _, it := range items {
		switch n := it.(type) {
		case ast.Note, ast.Chord, ast.Rest, ast.Tuplet:
			total = total.Add(itemDuration(n))
		case ast.Slur:
			for _, sub := range n.Contents {
				total = total.Add(itemDuration(sub))
			}
		}
	}
	return total
}

// checkVoiceAlignment warns when sibling voices in the same staff accumulate
// different total durations across all their measures combined.
func (a *Analyzer) checkVoiceAlignment(report *Report, staffID string, voiceTotals map[int]rational.Rat) {
	if len(voiceTotals) < 2 {
		return
	}
	var first rational.Rat
	firstSet := false
	for num, total := range voiceTotals {
		if !firstSet {
			first = total
			firstSet = true
			continue
		}
		if !total.Equal(first) {
			report.addWarn(staffID, num, 0, "voice total duration %s drifts from sibling voices' %s", total, first)
		}
	}
}

// analyzeMeasure validates one measure: either a flat list of items (a
// single implicit voice) or a set of VoiceBlocks that must each sum to the
// active time signature's value independently.
func (a *Analyzer) analyzeMeasure(report *Report, pending map[tieKey]pendingTie, staffID string, voiceNum int, track *trackState, m ast.Measure) {
	track.measureIdx++
	measureNum := track.measureIdx
	if m.Number != nil {
		measureNum = *m.Number
	}

	blocks := measureVoiceBlocks(m.Items)
	if len(blocks) == 0 {
		a.validateItemsDuration(report, pending, staffID, voiceNum, measureNum, track, m.Items)
		return
	}
	for _, vb := range blocks {
		if report.stopped {
			break
		}
		a.validateItemsDuration(report, pending, staffID, vb.VoiceNumber, measureNum, track, vb.Items)
	}
}

// measureVoiceBlocks returns items as VoiceBlocks if every top-level item in
// a measure is a VoiceBlock; nil otherwise (in the mixed case the items go to
// validateItemsDuration, which reports each VoiceBlock it meets as an error).
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

// validateItemsDuration walks items (already unwrapped from any VoiceBlock),
// accumulating duration, validating tuplets, ties and pedal, and finally
// checking the sum equals the active time signature value.
func (a *Analyzer) validateItemsDuration(report *Report, pending map[tieKey]pendingTie, staffID string, voiceNum, measureNum int, track *trackState, items []ast.Node) {
	total := rational.Zero()
	for _, it := range items {
		if report.stopped {
			return
		}
		switch n := it.(type) {
		case ast.Note:
			total = total.Add(n.Dur.Value())
			a.checkTie(report, pending, staffID, voiceNum, measureNum, n)
		case ast.Chord:
			total = total.Add(n.Dur.Value())
		case ast.Rest:
			total = total.Add(n.Dur.Value())
		case ast.Tuplet:
			total = total.Add(a.tupletDuration(report, staffID, voiceNum, measureNum, n))
		case ast.Slur:
			if len(n.Contents) == 0 {
				report.addWarn(staffID, voiceNum, measureNum, "empty slur")
			}
			for _, sub := range n.Contents {
				total = total.Add(itemDuration(sub))
			}
		case ast.Dynamic:
			if !isKnownDynamic(n.Marking) {
				report.addErr(staffID, voiceNum, measureNum, "unknown dynamic marking %q", n.Marking)
			}
		case ast.Pedal:
			a.checkPedal(report, staffID, voiceNum, measureNum, track, n)
		case ast.Hairpin, ast.TempoChange, ast.TimeSignatureChange, ast.InstrumentChange:
			// no duration contribution at the measure-shape level
		case ast.VoiceBlock:
			report.addErr(staffID, voiceNum, measureNum, "voice block mixed with bare items in the same measure")
		}
	}

	if report.stopped {
		return
	}
	want := track.timeSig.Value()
	if !total.Equal(want) {
		report.addErr(staffID, voiceNum, measureNum, "measure duration %s does not match time signature value %s", total, want)
	}
}

func itemDuration(n ast.Node) rational.Rat {
	switch v := n.(type) {
	case ast.Note:
		return v.Dur.Value()
	case ast.Chord:
		return v.Dur.Value()
	case ast.Rest:
		return v.Dur.Value()
	case ast.Tuplet:
		sum := rational.Zero()
		for _, c := range v.Contents {
			sum = sum.Add(itemDuration(c))
		}
		return sum.Mul(rational.NewFrac(int64(v.Normal), int64(v.Actual)))
	default:
		return rational.Zero()
	}
}

// tupletDuration validates actual/normal/non-empty-contents and returns the
// tuplet's total contribution to the enclosing measure: the sum of its
// contents' nominal durations scaled by normal/actual. Nested tuplets
// multiply ratios by recursing through itemDuration.
func (a *Analyzer) tupletDuration(report *Report, staffID string, voiceNum, measureNum int, t ast.Tuplet) rational.Rat {
	if t.Actual <= 0 || t.Normal <= 0 {
		report.addErr(staffID, voiceNum, measureNum, "tuplet actual/normal must be positive, got %d/%d", t.Actual, t.Normal)
		return rational.Zero()
	}
	if len(t.Contents) == 0 {
		report.addErr(staffID, voiceNum, measureNum, "tuplet has no contents")
		return rational.Zero()
	}
	for _, c := range t.Contents {
		if report.stopped {
			break
		}
		if inner, ok := c.(ast.Tuplet); ok {
			a.tupletDuration(report, staffID, voiceNum, measureNum, inner)
		}
	}
	return itemDuration(t)
}

func (a *Analyzer) checkTie(report *Report, pending map[tieKey]pendingTie, staffID string, voiceNum, measureNum int, n ast.Note) {
	midi := n.Pitch.MIDI()
	key := tieKey{staff: staffID, voice: voiceNum, midi: midi}
	if prior, ok := pending[key]; ok {
		if !prior.pitch.NotationallyEqual(n.Pitch) {
			report.addErr(staffID, voiceNum, measureNum,
				"tied note spelled %c%s%d does not match the tie-start spelling %c%s%d even though both are MIDI %d",
				n.Pitch.Letter, n.Pitch.Accidental, n.Pitch.Octave, prior.pitch.Letter, prior.pitch.Accidental, prior.pitch.Octave, midi)
		}
		delete(pending, key)
	}
	if n.TiedForward {
		pending[key] = pendingTie{pitch: n.Pitch, measure: measureNum}
	}
}

func (a *Analyzer) checkPedal(report *Report, staffID string, voiceNum, measureNum int, track *trackState, p ast.Pedal) {
	switch p.Kind {
	case ast.PedalDown:
		if track.pedalDown {
			report.addWarn(staffID, voiceNum, measureNum, "pedal already down, redundant DOWN marking")
		}
		track.pedalDown = true
	case ast.PedalUp:
		if !track.pedalDown {
			report.addErr(staffID, voiceNum, measureNum, "pedal UP marking with no pedal currently down")
		}
		track.pedalDown = false
	case ast.PedalChange:
		track.pedalDown = true
	}
}

func isKnownDynamic(marking string) bool {
	switch marking {
	case "ppp", "pp", "p", "mp", "mf", "f", "ff", "fff", "fp", "sfz", "sf":
		return true
	}
	return false
}
