package semantic

import (
	"testing"

	"github.com/cbegin/clef-go/internal/parser"
)

func parseOrFail(t *testing.T, src string) *Report {
	t.Helper()
	sc, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return New(DefaultConfig()).Analyze(sc)
}

func TestValidMeasureDurationPasses(t *testing.T) {
	report := parseOrFail(t, `score {
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
	if !report.OK() {
		t.Fatalf("expected no errors, got %v", report.Errors)
	}
}

func TestShortMeasureDurationFails(t *testing.T) {
	report := parseOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				C4 q
				D4 q
			}
		}
	}`)
	if report.OK() {
		t.Fatalf("expected a duration error")
	}
}

func TestTripletDurationExactness(t *testing.T) {
	report := parseOrFail(t, `score {
		time 4/4
		staff s {
			measure {
				tuplet 3 in 2 {
					C4 q
					C4 q
					C4 q
				}
				C4 h
			}
		}
	}`)
	if !report.OK() {
		t.Fatalf("expected triplet-filled measure to validate, got %v", report.Errors)
	}
}

func TestNestedTupletRatioMultiplies(t *testing.T) {
	// inner 5-in-4 of thirty-second notes = 1/8; outer 3-in-2 combining
	// that with two eighth notes (1/8 + 1/8 + 1/8 = 3/8, scaled by 2/3)
	// occupies exactly 1/4 — ratios compound by multiplication, not by sum.
	report := parseOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				tuplet 3 in 2 {
					tuplet 5 in 4 {
						C4 t
						C4 t
						C4 t
						C4 t
						C4 t
					}
					C4 e
					C4 e
				}
			}
		}
	}`)
	if !report.OK() {
		t.Fatalf("expected nested tuplet ratios to multiply out exactly, got %v", report.Errors)
	}
}

func TestTieMismatchedSpellingErrors(t *testing.T) {
	report := parseOrFail(t, `score {
		time 2/4
		staff s {
			measure {
				C#4 q tie
				Db4 q
			}
		}
	}`)
	if report.OK() {
		t.Fatalf("expected a tie spelling mismatch error")
	}
}

func TestTieMatchingSpellingPasses(t *testing.T) {
	report := parseOrFail(t, `score {
		time 2/4
		staff s {
			measure {
				C4 q tie
				C4 q
			}
		}
	}`)
	if !report.OK() {
		t.Fatalf("expected matching tie to pass, got %v", report.Errors)
	}
}

func TestUnresolvedTrailingTieErrors(t *testing.T) {
	report := parseOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				C4 q tie
			}
		}
	}`)
	if report.OK() {
		t.Fatalf("expected a residual unresolved tie to error")
	}
}

func TestPedalUpWithoutDownErrors(t *testing.T) {
	report := parseOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				ped_up
				C4 q
			}
		}
	}`)
	if report.OK() {
		t.Fatalf("expected pedal UP with no DOWN to error")
	}
}

func TestPedalDownThenUpPasses(t *testing.T) {
	report := parseOrFail(t, `score {
		time 1/4
		staff s {
			measure {
				ped
				C4 q
				ped_up
			}
		}
	}`)
	if !report.OK() {
		t.Fatalf("expected DOWN then UP to pass, got %v", report.Errors)
	}
}

func TestSiblingVoiceDurationDriftWarnsNotErrors(t *testing.T) {
	report := parseOrFail(t, `score {
		time 4/4
		staff s {
			voice 1 {
				measure {
					C4 w
				}
			}
			voice 2 {
				measure {
					D4 h
					E4 h
				}
				measure {
					F4 w
				}
			}
		}
	}`)
	if !report.OK() {
		t.Fatalf("voice length drift is advisory, not an error, got %v", report.Errors)
	}
	if len(report.Warnings) == 0 {
		t.Fatalf("expected a warning about voice 2 accumulating more total duration than voice 1")
	}
}

func TestVoiceBlocksValidateIndependently(t *testing.T) {
	report := parseOrFail(t, `score {
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
	if !report.OK() {
		t.Fatalf("expected both voices to independently satisfy 4/4, got %v", report.Errors)
	}
}
