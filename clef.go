// Package clef exposes the compiler pipeline as three composable calls —
// ParseScore, Analyze, CompileEvents — plus a one-shot Compile convenience
// wrapper, the same shape as the teacher's package-level Compile(mmlText)
// helper in player.go.
package clef

import (
	"fmt"

	"github.com/cbegin/clef-go/internal/ast"
	"github.com/cbegin/clef-go/internal/compiler"
	"github.com/cbegin/clef-go/internal/eventgraph"
	"github.com/cbegin/clef-go/internal/parser"
	"github.com/cbegin/clef-go/internal/semantic"
)

// ParseScore tokenizes and parses src into an AST.
func ParseScore(src string) (*ast.Score, error) {
	sc, err := parser.New(src).Parse()
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return sc, nil
}

// Analyze validates sc. strict stops the walk at the first error; warnings
// stay warnings either way. See internal/semantic.Config.
func Analyze(sc *ast.Score, strict bool) *semantic.Report {
	return semantic.New(semantic.Config{Strict: strict}).Analyze(sc)
}

// CompileEvents compiles a Score that has already passed Analyze into an
// event graph. It does not call Analyze itself.
func CompileEvents(sc *ast.Score) (*eventgraph.Graph, error) {
	return compiler.Compile(sc, compiler.DefaultConfig())
}

// Compile parses, validates (non-strict) and compiles src in one call. It
// returns the first semantic error, if any, wrapped in a descriptive error.
func Compile(src string) (*eventgraph.Graph, error) {
	sc, err := ParseScore(src)
	if err != nil {
		return nil, err
	}
	report := Analyze(sc, false)
	if !report.OK() {
		return nil, fmt.Errorf("%d semantic error(s), first: %w", len(report.Errors), report.Errors[0])
	}
	return CompileEvents(sc)
}
