// Package parser builds an *ast.Score from a clef token stream. It is a
// straightforward recursive-descent parser, one function per grammar
// production, mirroring the dispatch-by-keyword style of the teacher's
// internal/mml parseTrack/parseNote family — but driven off a pre-lexed
// token slice instead of raw bytes.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cbegin/clef-go/internal/ast"
	"github.com/cbegin/clef-go/internal/lexer"
	"github.com/cbegin/clef-go/internal/rational"
	"github.com/cbegin/clef-go/internal/token"
)

// ParseError is returned for any syntactic failure. Expected lists up to 5
// alternatives the parser would have accepted at this position.
type ParseError struct {
	Line, Column int
	Message      string
	Expected     []string
	SourceLine   string
}

func (e *ParseError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%d: %s", e.Line, e.Column, e.Message)
	if len(e.Expected) > 0 {
		b.WriteString(" (expected ")
		b.WriteString(strings.Join(e.Expected, ", "))
		b.WriteString(")")
	}
	if e.SourceLine != "" {
		fmt.Fprintf(&b, "\n  %s", e.SourceLine)
	}
	return b.String()
}

const maxExpected = 5

func capExpected(alts []string) []string {
	if len(alts) > maxExpected {
		return alts[:maxExpected]
	}
	return alts
}

// Config mirrors the teacher's Config/Default*Config() pairing.
type Config struct {
	MaxTupletNesting int
}

func DefaultConfig() Config { return Config{MaxTupletNesting: 8} }

// Parser holds the token stream and current position.
type Parser struct {
	cfg    Config
	src    string
	lines  []string
	toks   []token.Token
	pos    int
}

func New(src string) *Parser { return NewWithConfig(src, DefaultConfig()) }

func NewWithConfig(src string, cfg Config) *Parser {
	return &Parser{cfg: cfg, src: src, lines: strings.Split(src, "\n")}
}

// Parse tokenizes and parses src into a Score.
func (p *Parser) Parse() (*ast.Score, error) {
	toks, err := lexer.New(p.src).Tokenize()
	if err != nil {
		if pe, ok := err.(*lexer.PositionError); ok {
			return nil, p.errAt(pe.Line, pe.Column, pe.Msg, nil)
		}
		return nil, err
	}
	p.toks = toks
	p.pos = 0
	return p.parseScore()
}

func (p *Parser) sourceLine(line int) string {
	if line < 1 || line > len(p.lines) {
		return ""
	}
	return p.lines[line-1]
}

func (p *Parser) errAt(line, col int, msg string, expected []string) *ParseError {
	return &ParseError{Line: line, Column: col, Message: msg, Expected: capExpected(expected), SourceLine: p.sourceLine(line)}
}

func (p *Parser) errHere(msg string, expected []string) *ParseError {
	t := p.peek()
	return p.errAt(t.Line, t.Column, msg, expected)
}

func (p *Parser) peek() token.Token { return p.toks[p.pos] }

func (p *Parser) peekAt(offset int) token.Token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *Parser) advance() token.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(kind token.Kind) bool { return p.peek().Kind == kind }

func (p *Parser) atKeyword(kw string) bool {
	t := p.peek()
	return t.Kind == token.IDENT && t.Text == kw
}

func (p *Parser) expect(kind token.Kind) (token.Token, error) {
	if !p.at(kind) {
		return token.Token{}, p.errHere(fmt.Sprintf("unexpected %s %q", p.peek().Kind, p.peek().Text), []string{kind.String()})
	}
	return p.advance(), nil
}

func (p *Parser) expectKeyword(kw string) error {
	if !p.atKeyword(kw) {
		return p.errHere(fmt.Sprintf("unexpected %s %q", p.peek().Kind, p.peek().Text), []string{kw})
	}
	p.advance()
	return nil
}

func (p *Parser) expectInt() (int, error) {
	t, err := p.expect(token.INT)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(t.Text)
	if convErr != nil {
		return 0, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid integer %q", t.Text), nil)
	}
	return n, nil
}

// parseScore parses `score { ... }`.
func (p *Parser) parseScore() (*ast.Score, error) {
	if err := p.expectKeyword("score"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	sc := &ast.Score{}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch {
		case p.atKeyword("tempo"):
			bpm, err := p.parseTempoDirective()
			if err != nil {
				return nil, err
			}
			if sc.InitialTempo == nil {
				sc.InitialTempo = &bpm
			}
		case p.atKeyword("time"):
			ts, err := p.parseTimeDirective()
			if err != nil {
				return nil, err
			}
			if sc.InitialTimeSig == nil {
				sc.InitialTimeSig = &ts
			}
		case p.atKeyword("key"):
			key, err := p.parseKeyDirective()
			if err != nil {
				return nil, err
			}
			if sc.InitialKey == nil {
				sc.InitialKey = &key
			}
		case p.atKeyword("staff"):
			st, err := p.parseStaff()
			if err != nil {
				return nil, err
			}
			sc.Staves = append(sc.Staves, st)
		default:
			return nil, p.errHere(fmt.Sprintf("unexpected %s %q in score body", p.peek().Kind, p.peek().Text),
				[]string{"tempo", "time", "key", "staff"})
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.EOF); err != nil {
		return nil, err
	}
	return sc, nil
}

func (p *Parser) parseTempoDirective() (int, error) {
	if err := p.expectKeyword("tempo"); err != nil {
		return 0, err
	}
	return p.expectInt()
}

func (p *Parser) parseTimeDirective() (ast.TimeSignatureChange, error) {
	if err := p.expectKeyword("time"); err != nil {
		return ast.TimeSignatureChange{}, err
	}
	num, err := p.expectInt()
	if err != nil {
		return ast.TimeSignatureChange{}, err
	}
	if _, err := p.expect(token.SLASH); err != nil {
		return ast.TimeSignatureChange{}, err
	}
	den, err := p.expectInt()
	if err != nil {
		return ast.TimeSignatureChange{}, err
	}
	return ast.TimeSignatureChange{Numerator: num, Denominator: den}, nil
}

func (p *Parser) parseKeyDirective() (ast.KeySignature, error) {
	if err := p.expectKeyword("key"); err != nil {
		return ast.KeySignature{}, err
	}
	letter, acc, err := p.parseLetterAccidental()
	if err != nil {
		return ast.KeySignature{}, err
	}
	minor := false
	if p.atKeyword("minor") {
		p.advance()
		minor = true
	} else if p.atKeyword("major") {
		p.advance()
	}
	return ast.KeySignature{Letter: letter, Accidental: acc, Minor: minor}, nil
}

// parseLetterAccidental parses a bare key-signature letter like "F", "Fs" or
// "Bb" (sharp/flat suffix letters, since "#": HASH is reserved for pitches
// attached to an octave digit elsewhere).
func (p *Parser) parseLetterAccidental() (byte, ast.Accidental, error) {
	t, err := p.expect(token.IDENT)
	if err != nil {
		return 0, ast.AccidentalNone, err
	}
	text := t.Text
	if len(text) == 0 {
		return 0, ast.AccidentalNone, p.errAt(t.Line, t.Column, "empty key letter", nil)
	}
	letter := upper(text[0])
	if letter < 'A' || letter > 'G' {
		return 0, ast.AccidentalNone, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid key letter %q", text), nil)
	}
	acc := ast.AccidentalNone
	switch text[1:] {
	case "":
		acc = ast.AccidentalNone
	case "s":
		acc = ast.AccidentalSharp
	case "b":
		acc = ast.AccidentalFlat
	default:
		return 0, ast.AccidentalNone, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid key accidental %q", text), nil)
	}
	return letter, acc, nil
}

func upper(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return b - 'a' + 'A'
	}
	return b
}

// parseStaff parses `staff <ident> { ... }`.
func (p *Parser) parseStaff() (*ast.Staff, error) {
	if err := p.expectKeyword("staff"); err != nil {
		return nil, err
	}
	idTok, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	st := &ast.Staff{ID: idTok.Text}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch {
		case p.atKeyword("instrument"):
			p.advance()
			name, err := p.parseInstrumentName()
			if err != nil {
				return nil, err
			}
			if st.Instrument == "" {
				st.Instrument = name
			}
			st.Items = append(st.Items, ast.InstrumentChange{Name: name})
		case p.atKeyword("tempo"):
			bpm, err := p.parseTempoDirective()
			if err != nil {
				return nil, err
			}
			st.Items = append(st.Items, ast.TempoChange{BPM: bpm})
		case p.atKeyword("time"):
			ts, err := p.parseTimeDirective()
			if err != nil {
				return nil, err
			}
			st.Items = append(st.Items, ts)
		case p.atKeyword("voice"):
			v, err := p.parseVoice()
			if err != nil {
				return nil, err
			}
			st.Items = append(st.Items, v)
		case p.atKeyword("measure"):
			m, err := p.parseMeasure()
			if err != nil {
				return nil, err
			}
			st.Items = append(st.Items, m)
		default:
			return nil, p.errHere(fmt.Sprintf("unexpected %s %q in staff body", p.peek().Kind, p.peek().Text),
				[]string{"instrument", "tempo", "time", "voice", "measure"})
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	return st, nil
}

// parseInstrumentName joins consecutive identifiers into one name ("acoustic
// grand piano"), stopping before a keyword or dynamic that starts the next item.
func (p *Parser) parseInstrumentName() (string, error) {
	var parts []string
loop:
	for p.at(token.IDENT) {
		switch text := p.peek().Text; {
		case dynamicNames[text]:
			break loop
		case text == "measure", text == "voice", text == "tempo", text == "time", text == "instrument",
			text == "rest", text == "tuplet", text == "slur", text == "grace":
			break loop
		}
		parts = append(parts, p.advance().Text)
	}
	if len(parts) == 0 {
		return "", p.errHere("expected instrument name", []string{"identifier"})
	}
	return strings.Join(parts, " "), nil
}

// parseVoice parses `voice <int> { <measure>* }`.
func (p *Parser) parseVoice() (ast.Voice, error) {
	if err := p.expectKeyword("voice"); err != nil {
		return ast.Voice{}, err
	}
	num, err := p.expectInt()
	if err != nil {
		return ast.Voice{}, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.Voice{}, err
	}
	v := ast.Voice{Number: num}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		switch {
		case p.atKeyword("measure"):
			m, err := p.parseMeasure()
			if err != nil {
				return ast.Voice{}, err
			}
			v.Measures = append(v.Measures, m)
		case p.atKeyword("tempo"):
			bpm, err := p.parseTempoDirective()
			if err != nil {
				return ast.Voice{}, err
			}
			v.Measures = append(v.Measures, ast.TempoChange{BPM: bpm})
		case p.atKeyword("time"):
			ts, err := p.parseTimeDirective()
			if err != nil {
				return ast.Voice{}, err
			}
			v.Measures = append(v.Measures, ts)
		case p.atKeyword("instrument"):
			p.advance()
			name, err := p.parseInstrumentName()
			if err != nil {
				return ast.Voice{}, err
			}
			v.Measures = append(v.Measures, ast.InstrumentChange{Name: name})
		default:
			return ast.Voice{}, p.errHere(fmt.Sprintf("unexpected %s %q in voice body", p.peek().Kind, p.peek().Text),
				[]string{"measure", "tempo", "time", "instrument"})
		}
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.Voice{}, err
	}
	return v, nil
}

// parseMeasure parses `measure [<int>] { <items> }`.
func (p *Parser) parseMeasure() (ast.Measure, error) {
	if err := p.expectKeyword("measure"); err != nil {
		return ast.Measure{}, err
	}
	m := ast.Measure{}
	if p.at(token.INT) {
		n, err := p.expectInt()
		if err != nil {
			return ast.Measure{}, err
		}
		m.Number = &n
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.Measure{}, err
	}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		item, err := p.parseMeasureItem()
		if err != nil {
			return ast.Measure{}, err
		}
		m.Items = append(m.Items, item)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.Measure{}, err
	}
	return m, nil
}

var dynamicNames = map[string]bool{
	"ppp": true, "pp": true, "p": true, "mp": true, "mf": true,
	"f": true, "ff": true, "fff": true, "fp": true, "sfz": true, "sf": true,
}

var articulationNames = map[string]ast.Articulation{
	"staccato":      ast.ArticulationStaccato,
	"staccatissimo": ast.ArticulationStaccatissimo,
	"tenuto":        ast.ArticulationTenuto,
	"legato":        ast.ArticulationLegato,
	"accent":        ast.ArticulationAccent,
}

var durationNames = map[string]bool{
	"w": true, "h": true, "q": true, "e": true, "s": true, "t": true, "x": true,
}

// parseMeasureItem dispatches on the next keyword, the same one-big-switch
// style the teacher uses in parseTrack.
func (p *Parser) parseMeasureItem() (ast.Node, error) {
	t := p.peek()
	switch {
	case t.Kind == token.LANGLE:
		return p.parseChord()
	case t.Kind == token.IDENT && t.Text == "rest":
		p.advance()
		dur, err := p.parseDuration()
		if err != nil {
			return nil, err
		}
		return ast.Rest{Dur: dur}, nil
	case t.Kind == token.IDENT && t.Text == "tuplet":
		return p.parseTuplet()
	case t.Kind == token.IDENT && t.Text == "slur":
		return p.parseSlur()
	case t.Kind == token.IDENT && t.Text == "voice":
		return p.parseVoiceBlock()
	case t.Kind == token.IDENT && t.Text == "grace":
		return p.parseGraceThenNote()
	case t.Kind == token.IDENT && t.Text == "instrument":
		p.advance()
		name, err := p.parseInstrumentName()
		if err != nil {
			return nil, err
		}
		return ast.InstrumentChange{Name: name}, nil
	case t.Kind == token.IDENT && t.Text == "tempo":
		bpm, err := p.parseTempoDirective()
		if err != nil {
			return nil, err
		}
		return ast.TempoChange{BPM: bpm}, nil
	case t.Kind == token.IDENT && t.Text == "time":
		ts, err := p.parseTimeDirective()
		if err != nil {
			return nil, err
		}
		return ts, nil
	case t.Kind == token.IDENT && dynamicNames[t.Text]:
		p.advance()
		return ast.Dynamic{Marking: t.Text}, nil
	case t.Kind == token.IDENT && (t.Text == "cresc" || t.Text == "decresc" || t.Text == "dim"):
		return p.parseHairpin()
	case t.Kind == token.IDENT && (t.Text == "ped" || t.Text == "ped_up" || t.Text == "ped_change"):
		p.advance()
		var kind ast.PedalKind
		switch t.Text {
		case "ped":
			kind = ast.PedalDown
		case "ped_up":
			kind = ast.PedalUp
		case "ped_change":
			kind = ast.PedalChange
		}
		return ast.Pedal{Kind: kind}, nil
	case t.Kind == token.IDENT:
		return p.parseNote()
	default:
		return nil, p.errHere(fmt.Sprintf("unexpected %s %q in measure", t.Kind, t.Text),
			[]string{"pitch", "rest", "tuplet", "slur", "voice", "<chord>"})
	}
}

func (p *Parser) parseHairpin() (ast.Hairpin, error) {
	t := p.advance()
	var kind ast.HairpinKind
	switch t.Text {
	case "cresc":
		kind = ast.HairpinCresc
	case "decresc":
		kind = ast.HairpinDecresc
	case "dim":
		kind = ast.HairpinDim
	}
	dur, err := p.parseDuration()
	if err != nil {
		return ast.Hairpin{}, err
	}
	return ast.Hairpin{Kind: kind, Dur: dur}, nil
}

func (p *Parser) parseVoiceBlock() (ast.VoiceBlock, error) {
	if err := p.expectKeyword("voice"); err != nil {
		return ast.VoiceBlock{}, err
	}
	num, err := p.expectInt()
	if err != nil {
		return ast.VoiceBlock{}, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.VoiceBlock{}, err
	}
	vb := ast.VoiceBlock{VoiceNumber: num}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		item, err := p.parseMeasureItem()
		if err != nil {
			return ast.VoiceBlock{}, err
		}
		vb.Items = append(vb.Items, item)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.VoiceBlock{}, err
	}
	return vb, nil
}

func (p *Parser) parseSlur() (ast.Slur, error) {
	if err := p.expectKeyword("slur"); err != nil {
		return ast.Slur{}, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.Slur{}, err
	}
	var s ast.Slur
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		item, err := p.parseMeasureItem()
		if err != nil {
			return ast.Slur{}, err
		}
		s.Contents = append(s.Contents, item)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.Slur{}, err
	}
	return s, nil
}

func (p *Parser) parseTuplet() (ast.Tuplet, error) {
	if err := p.expectKeyword("tuplet"); err != nil {
		return ast.Tuplet{}, err
	}
	actual, err := p.expectInt()
	if err != nil {
		return ast.Tuplet{}, err
	}
	if err := p.expectKeyword("in"); err != nil {
		return ast.Tuplet{}, err
	}
	normal, err := p.expectInt()
	if err != nil {
		return ast.Tuplet{}, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return ast.Tuplet{}, err
	}
	tup := ast.Tuplet{Actual: actual, Normal: normal}
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		item, err := p.parseMeasureItem()
		if err != nil {
			return ast.Tuplet{}, err
		}
		tup.Contents = append(tup.Contents, item)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return ast.Tuplet{}, err
	}
	return tup, nil
}

// parseGraceThenNote parses `grace { <note>+ } <note>` and folds the grace
// notes into the main note that follows.
func (p *Parser) parseGraceThenNote() (ast.Node, error) {
	if err := p.expectKeyword("grace"); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var grace []ast.Note
	for !p.at(token.RBRACE) && !p.at(token.EOF) {
		n, err := p.parseNote()
		if err != nil {
			return nil, err
		}
		grace = append(grace, n)
	}
	if _, err := p.expect(token.RBRACE); err != nil {
		return nil, err
	}
	main, err := p.parseNote()
	if err != nil {
		return nil, err
	}
	main.Grace = grace
	return main, nil
}

// parsePitch parses a single pitch: letter[accidental-letters] octave, or
// letter '#'['#'] octave for sharps (HASH isn't part of the identifier
// charset, so sharp pitches lex as two-or-three tokens).
func (p *Parser) parsePitch() (ast.Pitch, error) {
	t, err := p.expect(token.IDENT)
	if err != nil {
		return ast.Pitch{}, err
	}
	text := t.Text
	if len(text) == 0 {
		return ast.Pitch{}, p.errAt(t.Line, t.Column, "empty pitch token", nil)
	}
	letter := upper(text[0])
	if letter < 'A' || letter > 'G' {
		return ast.Pitch{}, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid pitch letter %q", text), nil)
	}
	rest := text[1:]
	acc := ast.AccidentalNone
	i := 0
	for i < len(rest) && lower(rest[i]) == 'b' {
		i++
	}
	switch i {
	case 1:
		acc = ast.AccidentalFlat
	case 2:
		acc = ast.AccidentalDoubleFlat
	}
	octDigits := rest[i:]
	sharps := 0
	for p.at(token.HASH) {
		p.advance()
		sharps++
	}
	if sharps == 1 {
		acc = ast.AccidentalSharp
	} else if sharps >= 2 {
		acc = ast.AccidentalDoubleSharp
	}
	if octDigits == "" {
		ot, err := p.expect(token.INT)
		if err != nil {
			return ast.Pitch{}, err
		}
		octDigits = ot.Text
	}
	oct, convErr := strconv.Atoi(octDigits)
	if convErr != nil {
		return ast.Pitch{}, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid octave in pitch %q", text), nil)
	}
	return ast.Pitch{Letter: letter, Octave: oct, Accidental: acc}, nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b - 'A' + 'a'
	}
	return b
}

// parseDuration parses a duration name token followed by zero or more DOT
// tokens, e.g. "q" or "q" DOT DOT for a double-dotted quarter.
func (p *Parser) parseDuration() (ast.Duration, error) {
	t, err := p.expect(token.IDENT)
	if err != nil {
		return ast.Duration{}, err
	}
	if !durationNames[t.Text] {
		return ast.Duration{}, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid duration name %q", t.Text),
			[]string{"w", "h", "q", "e", "s", "t", "x"})
	}
	base, ok := rational.NamedDurationBase(t.Text[0])
	if !ok {
		return ast.Duration{}, p.errAt(t.Line, t.Column, fmt.Sprintf("invalid duration name %q", t.Text), nil)
	}
	dots := 0
	for p.at(token.DOT) {
		p.advance()
		dots++
	}
	return ast.Duration{Name: t.Text, Base: base, Dots: dots}, nil
}

// parseNote parses PITCH DURATION [articulations] [ornament] [tie].
func (p *Parser) parseNote() (ast.Note, error) {
	pitch, err := p.parsePitch()
	if err != nil {
		return ast.Note{}, err
	}
	dur, err := p.parseDuration()
	if err != nil {
		return ast.Note{}, err
	}
	n := ast.Note{Pitch: pitch, Dur: dur}
	if err := p.parseNoteSuffixes(&n.Articulations, &n.Ornaments, &n.TiedForward); err != nil {
		return ast.Note{}, err
	}
	return n, nil
}

// parseChord parses `< pitch (, pitch)* > DURATION [suffixes]`.
func (p *Parser) parseChord() (ast.Chord, error) {
	if _, err := p.expect(token.LANGLE); err != nil {
		return ast.Chord{}, err
	}
	var pitches []ast.Pitch
	for {
		pitch, err := p.parsePitch()
		if err != nil {
			return ast.Chord{}, err
		}
		pitches = append(pitches, pitch)
		if p.at(token.COMMA) {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RANGLE); err != nil {
		return ast.Chord{}, err
	}
	if len(pitches) == 0 {
		return ast.Chord{}, p.errHere("chord must contain at least one pitch", nil)
	}
	dur, err := p.parseDuration()
	if err != nil {
		return ast.Chord{}, err
	}
	c := ast.Chord{Pitches: pitches, Dur: dur}
	if err := p.parseNoteSuffixes(&c.Articulations, &c.Ornaments, &c.TiedForward); err != nil {
		return ast.Chord{}, err
	}
	return c, nil
}

func (p *Parser) parseNoteSuffixes(articulations *[]ast.Articulation, ornaments *[]ast.Ornament, tied *bool) error {
	for {
		t := p.peek()
		if t.Kind != token.IDENT {
			return nil
		}
		if art, ok := articulationNames[t.Text]; ok {
			p.advance()
			*articulations = append(*articulations, art)
			continue
		}
		switch t.Text {
		case "tie":
			p.advance()
			*tied = true
		case "trill":
			p.advance()
			orn := ast.Ornament{Kind: ast.OrnamentTrill}
			if p.at(token.IDENT) && !isNoteSuffixKeyword(p.peek().Text) {
				aux, err := p.parsePitch()
				if err != nil {
					return err
				}
				orn.Aux = &aux
			}
			*ornaments = append(*ornaments, orn)
		case "mordent":
			p.advance()
			*ornaments = append(*ornaments, ast.Ornament{Kind: ast.OrnamentMordent})
		case "turn":
			p.advance()
			*ornaments = append(*ornaments, ast.Ornament{Kind: ast.OrnamentTurn})
		default:
			return nil
		}
	}
}

func isNoteSuffixKeyword(text string) bool {
	if _, ok := articulationNames[text]; ok {
		return true
	}
	switch text {
	case "tie", "trill", "mordent", "turn":
		return true
	}
	return false
}
