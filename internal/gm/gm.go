// Package gm holds the General MIDI program table, an instrument alias
// table (grounded on the extra names original_source's instrument catalog
// recognized), and the fixed dynamics-to-velocity mapping spec.md §3 names.
package gm

import "strings"

// programs is the standard General MIDI instrument list, program numbers
// 0-127, melodic instruments only (percussion lives on channel 9 and is
// addressed by note number, not program change).
var programs = [128]string{
	"acoustic grand piano", "bright acoustic piano", "electric grand piano", "honky-tonk piano",
	"electric piano 1", "electric piano 2", "harpsichord", "clavinet",
	"celesta", "glockenspiel", "music box", "vibraphone",
	"marimba", "xylophone", "tubular bells", "dulcimer",
	"drawbar organ", "percussive organ", "rock organ", "church organ",
	"reed organ", "accordion", "harmonica", "tango accordion",
	"acoustic guitar (nylon)", "acoustic guitar (steel)", "electric guitar (jazz)", "electric guitar (clean)",
	"electric guitar (muted)", "overdriven guitar", "distortion guitar", "guitar harmonics",
	"acoustic bass", "electric bass (finger)", "electric bass (pick)", "fretless bass",
	"slap bass 1", "slap bass 2", "synth bass 1", "synth bass 2",
	"violin", "viola", "cello", "contrabass",
	"tremolo strings", "pizzicato strings", "orchestral harp", "timpani",
	"string ensemble 1", "string ensemble 2", "synth strings 1", "synth strings 2",
	"choir aahs", "voice oohs", "synth voice", "orchestra hit",
	"trumpet", "trombone", "tuba", "muted trumpet",
	"french horn", "brass section", "synth brass 1", "synth brass 2",
	"soprano sax", "alto sax", "tenor sax", "baritone sax",
	"oboe", "english horn", "bassoon", "clarinet",
	"piccolo", "flute", "recorder", "pan flute",
	"blown bottle", "shakuhachi", "whistle", "ocarina",
	"lead 1 (square)", "lead 2 (sawtooth)", "lead 3 (calliope)", "lead 4 (chiff)",
	"lead 5 (charang)", "lead 6 (voice)", "lead 7 (fifths)", "lead 8 (bass + lead)",
	"pad 1 (new age)", "pad 2 (warm)", "pad 3 (polysynth)", "pad 4 (choir)",
	"pad 5 (bowed)", "pad 6 (metallic)", "pad 7 (halo)", "pad 8 (sweep)",
	"fx 1 (rain)", "fx 2 (soundtrack)", "fx 3 (crystal)", "fx 4 (atmosphere)",
	"fx 5 (brightness)", "fx 6 (goblins)", "fx 7 (echoes)", "fx 8 (sci-fi)",
	"sitar", "banjo", "shamisen", "koto",
	"kalimba", "bag pipe", "fiddle", "shanai",
	"tinkle bell", "agogo", "steel drums", "woodblock",
	"taiko drum", "melodic tom", "synth drum", "reverse cymbal",
	"guitar fret noise", "breath noise", "seashore", "bird tweet",
	"telephone ring", "helicopter", "applause", "gunshot",
}

// aliases maps informal names (as they appear in the original catalog of
// instrument names this module's dynamics table was distilled from) to a GM
// program index, on top of exact matches against programs above.
var aliases = map[string]int{
	"piano":         0,
	"grand piano":   0,
	"epiano":        4,
	"organ":         19,
	"guitar":        24,
	"nylon guitar":  24,
	"steel guitar":  25,
	"bass":          32,
	"electric bass": 33,
	"strings":       48,
	"choir":         52,
	"brass":         61,
	"sax":           65,
	"saxophone":     65,
	"flute":         73,
	"synth lead":    80,
	"synth pad":     88,
	"violin":        40,
	"cello":         42,
}

// ResolveInstrument looks up name (case-insensitive) against the alias table
// and the canonical GM program list, returning its program number.
func ResolveInstrument(name string) (int, bool) {
	key := strings.ToLower(strings.TrimSpace(name))
	if prog, ok := aliases[key]; ok {
		return prog, true
	}
	for i, p := range programs {
		if p == key {
			return i, true
		}
	}
	return 0, false
}

// ProgramName returns the canonical GM name for a program number, or ""
// if out of range.
func ProgramName(program int) string {
	if program < 0 || program >= len(programs) {
		return ""
	}
	return programs[program]
}

// dynamicVelocity is the fixed mapping from a symbolic dynamic marking to a
// MIDI velocity, per spec.md §3. fp and sf/sfz carry no time-varying
// behavior in this system — just their listed fixed velocity.
var dynamicVelocity = map[string]int{
	"ppp": 16,
	"pp":  33,
	"p":   49,
	"mp":  64,
	"mf":  80,
	"f":   96,
	"ff":  112,
	"fff": 127,
	"fp":  96,
	"sfz": 127,
	"sf":  112,
}

// DefaultVelocity is used before the first dynamic marking in a staff/voice
// is seen.
const DefaultVelocity = 80

// Velocity returns the fixed velocity for a dynamic marking, and ok=false if
// marking isn't in the closed set.
func Velocity(marking string) (int, bool) {
	v, ok := dynamicVelocity[marking]
	return v, ok
}

// DrumChannel is the GM percussion channel, skipped during staff-to-channel
// allocation for melodic staves.
const DrumChannel = 9
