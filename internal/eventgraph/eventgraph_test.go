package eventgraph

import (
	"testing"

	"github.com/cbegin/clef-go/internal/rational"
)

func TestSortOrdersByStartTimeThenKind(t *testing.T) {
	g := New()
	g.Add(Event{Kind: KindNote, StartTime: rational.NewFrac(1, 4)})
	g.Add(Event{Kind: KindTempo, StartTime: rational.NewFrac(1, 4)})
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero()})
	g.Sort()
	events := g.Events()
	if events[0].Kind != KindNote || !events[0].StartTime.IsZero() {
		t.Fatalf("expected note at time 0 first, got %+v", events[0])
	}
	if events[1].Kind != KindTempo {
		t.Fatalf("expected tempo before note at the same start time, got %+v", events[1])
	}
}

func TestSortIsStableForEqualKeys(t *testing.T) {
	g := New()
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero(), MIDI: 60})
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero(), MIDI: 64})
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero(), MIDI: 67})
	g.Sort()
	events := g.Events()
	want := []int{60, 64, 67}
	for i, w := range want {
		if events[i].MIDI != w {
			t.Fatalf("stable sort broke insertion order at %d: got %d, want %d", i, events[i].MIDI, w)
		}
	}
}

func TestDurationIsMaxNoteEnd(t *testing.T) {
	g := New()
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero(), Duration: rational.NewFrac(1, 4)})
	g.Add(Event{Kind: KindNote, StartTime: rational.NewFrac(1, 4), Duration: rational.NewFrac(1, 2)})
	g.Add(Event{Kind: KindTempo, StartTime: rational.NewInt(10)}) // not sounding, ignored
	if !g.Duration().Equal(rational.NewFrac(3, 4)) {
		t.Fatalf("duration = %s, want 3/4", g.Duration())
	}
}

func TestEventsForStaffFiltersByID(t *testing.T) {
	g := New()
	g.Add(Event{Kind: KindNote, StaffID: "a", StartTime: rational.Zero()})
	g.Add(Event{Kind: KindNote, StaffID: "b", StartTime: rational.Zero()})
	got := g.EventsForStaff("a")
	if len(got) != 1 || got[0].StaffID != "a" {
		t.Fatalf("expected 1 event for staff a, got %+v", got)
	}
}

func TestEventsInRangeIsHalfOpen(t *testing.T) {
	g := New()
	g.Add(Event{Kind: KindNote, StartTime: rational.Zero()})
	g.Add(Event{Kind: KindNote, StartTime: rational.NewFrac(1, 2)})
	g.Add(Event{Kind: KindNote, StartTime: rational.NewInt(1)})
	got := g.EventsInRange(rational.Zero(), rational.NewInt(1))
	if len(got) != 2 {
		t.Fatalf("expected 2 events in [0,1), got %d", len(got))
	}
}
