// Command clefc parses, validates and compiles a clef score file, printing
// either a validation report or a compiled event dump.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	clef "github.com/cbegin/clef-go"
	"github.com/cbegin/clef-go/internal/eventgraph"
)

func main() {
	var (
		path    = flag.String("file", "", "path to a .clef source file")
		inline  = flag.String("score", "", "inline clef source")
		strict  = flag.Bool("strict", false, "stop validation at the first semantic error")
		dump    = flag.Bool("dump", false, "print every compiled event instead of just a summary")
	)
	flag.Parse()

	src, err := resolveInput(*path, *inline)
	if err != nil {
		log.Fatal(err)
	}

	sc, err := clef.ParseScore(src)
	if err != nil {
		log.Fatal(err)
	}

	report := clef.Analyze(sc, *strict)
	for _, w := range report.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w.String())
	}
	if !report.OK() {
		for _, e := range report.Errors {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Error())
		}
		log.Fatalf("%d semantic error(s)", len(report.Errors))
	}

	graph, err := clef.CompileEvents(sc)
	if err != nil {
		log.Fatal(err)
	}

	if *dump {
		printEvents(graph)
		return
	}
	fmt.Printf("staves: %d\n", len(sc.Staves))
	fmt.Printf("events: %d\n", graph.Len())
	fmt.Printf("duration (whole notes): %s\n", graph.Duration())
}

func printEvents(g *eventgraph.Graph) {
	for _, e := range g.Events() {
		fmt.Printf("%-8s t=%-10s staff=%-8s voice=%d %s\n", e.Kind, e.StartTime, e.StaffID, e.VoiceID, eventDetail(e))
	}
}

func eventDetail(e eventgraph.Event) string {
	switch e.Kind {
	case eventgraph.KindNote:
		return fmt.Sprintf("midi=%d vel=%d dur=%s eff=%s ch=%d", e.MIDI, e.Velocity, e.Duration, e.EffectiveDuration, e.Channel)
	case eventgraph.KindRest:
		return fmt.Sprintf("dur=%s", e.Duration)
	case eventgraph.KindTempo:
		return fmt.Sprintf("bpm=%d", e.Value)
	case eventgraph.KindTimeSignature:
		return fmt.Sprintf("%d/%d", e.Numerator, e.Denominator)
	case eventgraph.KindProgramChange:
		return fmt.Sprintf("ch=%d program=%d", e.Channel, e.Program)
	case eventgraph.KindPedal:
		return fmt.Sprintf("ch=%d controller=%d value=%d", e.Channel, e.Controller, e.Value)
	case eventgraph.KindDynamic:
		if e.HairpinTo != 0 {
			return fmt.Sprintf("hairpin %d->%d over %s", e.HairpinFrom, e.HairpinTo, e.Duration)
		}
		return fmt.Sprintf("vel=%d", e.Velocity)
	default:
		return ""
	}
}

func resolveInput(path, inline string) (string, error) {
	if strings.TrimSpace(inline) != "" {
		return inline, nil
	}
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	return "", fmt.Errorf("one of -file or -score is required")
}
