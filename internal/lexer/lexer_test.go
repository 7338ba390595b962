package lexer

import (
	"testing"

	"github.com/cbegin/clef-go/internal/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeBraces(t *testing.T) {
	toks, err := New("score { tempo 120 }").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	want := []token.Kind{token.IDENT, token.LBRACE, token.IDENT, token.INT, token.RBRACE, token.EOF}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestTokenizeStripsComments(t *testing.T) {
	toks, err := New("// a comment\nC4 q /* block\ncomment */ D4 q").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	var idents []string
	for _, tk := range toks {
		if tk.Kind == token.IDENT {
			idents = append(idents, tk.Text)
		}
	}
	want := []string{"C4", "q", "D4", "q"}
	if len(idents) != len(want) {
		t.Fatalf("got idents %v, want %v", idents, want)
	}
	for i := range want {
		if idents[i] != want[i] {
			t.Fatalf("ident %d: got %s, want %s", i, idents[i], want[i])
		}
	}
}

func TestTokenizeLineColumn(t *testing.T) {
	toks, err := New("score {\n  tempo\n}").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	var tempoTok token.Token
	for _, tk := range toks {
		if tk.Text == "tempo" {
			tempoTok = tk
		}
	}
	if tempoTok.Line != 2 || tempoTok.Column != 3 {
		t.Fatalf("tempo at %d:%d, want 2:3", tempoTok.Line, tempoTok.Column)
	}
}

func TestTokenizeUnexpectedCharacter(t *testing.T) {
	_, err := New("score { ! }").Tokenize()
	if err == nil {
		t.Fatalf("expected lexer error for '!'")
	}
	pe, ok := err.(*PositionError)
	if !ok {
		t.Fatalf("expected *PositionError, got %T", err)
	}
	if pe.Line != 1 || pe.Column != 9 {
		t.Fatalf("error at %d:%d, want 1:9", pe.Line, pe.Column)
	}
}
