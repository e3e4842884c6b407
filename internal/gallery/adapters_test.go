package gallery

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

type countingSink struct {
	progress, frames, alerts int
}

func (s *countingSink) Progress(float64) { s.progress++ }
func (s *countingSink) Render(Frame)     { s.frames++ }
func (s *countingSink) Alert(Alert)      { s.alerts++ }

func TestMultiSink_FansOut(t *testing.T) {
	a, b := &countingSink{}, &countingSink{}
	m := NewMultiSink(a, nil, b)

	if len(m) != 2 {
		t.Fatalf("len(MultiSink) = %d, want 2", len(m))
	}

	m.Progress(0.5)
	m.Render(Frame{})
	m.Render(Frame{})
	m.Alert(Alert{})

	for i, s := range []*countingSink{a, b} {
		if s.progress != 1 || s.frames != 2 || s.alerts != 1 {
			t.Errorf("sink %d = %+v", i, *s)
		}
	}
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s := NewLogSink(logger)

	s.Render(Frame{Query: "q", Slots: []Slot{{ID: "a", Occupied: true}, {}}, PoolSize: 3})
	s.Alert(Alert{Kind: KindInsufficientResults, Query: "q", Message: "3 distinct results found"})

	out := buf.String()
	for _, want := range []string{"occupied=1", "pool_size=3", "level=WARN", "kind=insufficient_results"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
