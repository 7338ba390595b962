// Package lexer turns clef source text into a token stream. Comments are
// stripped here; everything else about the grammar lives in internal/parser.
package lexer

import (
	"fmt"
	"strings"

	"github.com/cbegin/clef-go/internal/token"
)

// Config holds the lexer's tunable knobs, mirroring the teacher's
// ParserConfig/Default*() pairing rather than a package-level global.
type Config struct {
	TabWidth int
}

// DefaultConfig returns the lexer configuration clef source files are
// expected to use.
func DefaultConfig() Config {
	return Config{TabWidth: 4}
}

// PositionError is a lexical failure at a specific line/column. internal/parser
// wraps these into a ParseError with source-line context before returning
// them to callers.
type PositionError struct {
	Line, Column int
	Msg          string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%d:%d: %s", e.Line, e.Column, e.Msg)
}

type Lexer struct {
	cfg    Config
	src    string
	pos    int
	line   int
	col    int
}

func New(src string) *Lexer { return NewWithConfig(src, DefaultConfig()) }

func NewWithConfig(src string, cfg Config) *Lexer {
	return &Lexer{cfg: cfg, src: stripComments(src), line: 1, col: 1}
}

// Tokenize scans the entire source and returns the token stream, terminated
// by a single EOF token. The parser never needs incremental lexing: a score
// file is small enough to tokenize eagerly, the same way the teacher
// preprocesses a whole MML string before walking it.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var out []token.Token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Kind == token.EOF {
			return out, nil
		}
	}
}

func (l *Lexer) next() (token.Token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token.Token{Kind: token.EOF, Line: l.line, Column: l.col}, nil
	}
	startLine, startCol := l.line, l.col
	ch := l.src[l.pos]
	switch {
	case ch == '{':
		l.advance()
		return token.Token{Kind: token.LBRACE, Text: "{", Line: startLine, Column: startCol}, nil
	case ch == '}':
		l.advance()
		return token.Token{Kind: token.RBRACE, Text: "}", Line: startLine, Column: startCol}, nil
	case ch == '<':
		l.advance()
		return token.Token{Kind: token.LANGLE, Text: "<", Line: startLine, Column: startCol}, nil
	case ch == '>':
		l.advance()
		return token.Token{Kind: token.RANGLE, Text: ">", Line: startLine, Column: startCol}, nil
	case ch == ',':
		l.advance()
		return token.Token{Kind: token.COMMA, Text: ",", Line: startLine, Column: startCol}, nil
	case ch == ':':
		l.advance()
		return token.Token{Kind: token.COLON, Text: ":", Line: startLine, Column: startCol}, nil
	case ch == '/':
		l.advance()
		return token.Token{Kind: token.SLASH, Text: "/", Line: startLine, Column: startCol}, nil
	case ch == '.':
		l.advance()
		return token.Token{Kind: token.DOT, Text: ".", Line: startLine, Column: startCol}, nil
	case ch == '#':
		l.advance()
		return token.Token{Kind: token.HASH, Text: "#", Line: startLine, Column: startCol}, nil
	case isDigit(ch):
		text := l.scanWhile(isDigit)
		return token.Token{Kind: token.INT, Text: text, Line: startLine, Column: startCol}, nil
	case isIdentStart(ch):
		text := l.scanWhile(isIdentPart)
		return token.Token{Kind: token.IDENT, Text: text, Line: startLine, Column: startCol}, nil
	default:
		return token.Token{}, &PositionError{Line: startLine, Column: startCol, Msg: fmt.Sprintf("unexpected character %q", ch)}
	}
}

func (l *Lexer) scanWhile(pred func(byte) bool) string {
	start := l.pos
	for l.pos < len(l.src) && pred(l.src[l.pos]) {
		l.advance()
	}
	return l.src[start:l.pos]
}

func (l *Lexer) skipSpace() {
	for l.pos < len(l.src) {
		ch := l.src[l.pos]
		if ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' {
			l.advance()
			continue
		}
		break
	}
}

func (l *Lexer) advance() {
	if l.src[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else if l.src[l.pos] == '\t' {
		l.col += l.cfg.TabWidth
	} else {
		l.col++
	}
	l.pos++
}

// stripComments removes // line comments and /* */ block comments (which may
// not nest, per spec.md §4.1), preserving every other byte including
// newlines so line numbers downstream stay accurate.
func stripComments(src string) string {
	var out strings.Builder
	out.Grow(len(src))
	for i := 0; i < len(src); i++ {
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '/' {
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				out.WriteByte('\n')
			}
			continue
		}
		if i+1 < len(src) && src[i] == '/' && src[i+1] == '*' {
			i += 2
			for i < len(src) {
				if i+1 < len(src) && src[i] == '*' && src[i+1] == '/' {
					i++
					break
				}
				if src[i] == '\n' {
					out.WriteByte('\n')
				}
				i++
			}
			continue
		}
		out.WriteByte(src[i])
	}
	return out.String()
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
func isIdentStart(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '_'
}
func isIdentPart(b byte) bool { return isIdentStart(b) || isDigit(b) }
