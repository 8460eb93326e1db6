package observ

import (
	"strings"
	"testing"
	"time"
)

func TestTimerReport(t *testing.T) {
	tm := NewTimer()
	done := tm.Track("collect")
	done("3 files")
	idx := tm.Begin("format")
	tm.End(idx, "")
	tm.End(42, "ignored")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("expected 2 phases, got %d", len(report.Phases))
	}
	if report.Phases[0].Name != "collect" || report.Phases[0].Note != "3 files" {
		t.Fatalf("unexpected first phase %+v", report.Phases[0])
	}
	sum := report.Phases[0].DurationMS + report.Phases[1].DurationMS
	if report.TotalMS != sum {
		t.Fatalf("total %v != sum %v", report.TotalMS, sum)
	}

	summary := tm.Summary()
	for _, want := range []string{"timings:", "collect", "// 3 files", "total"} {
		if !strings.Contains(summary, want) {
			t.Fatalf("summary missing %q:\n%s", want, summary)
		}
	}
}

func TestTimerNilSafe(t *testing.T) {
	var tm *Timer
	tm.Track("x")("")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("expected empty report, got %+v", r)
	}
}

func TestDurationToMillis(t *testing.T) {
	if got := DurationToMillis(1500 * time.Microsecond); got != 1.5 {
		t.Fatalf("DurationToMillis = %v", got)
	}
}
