package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLatencyWindowSnapshot(t *testing.T) {
	w := newLatencyWindow(8)
	w.Observe("upstream_synthesis", 500)
	w.Observe("upstream_synthesis", 700)
	w.Observe("upstream_synthesis", 900)
	w.ObserveIndicator("submit_timeout")
	w.ObserveIndicator("submit_timeout")

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Stages) != 1 {
		t.Fatalf("len(Stages) = %d, want 1", len(snap.Stages))
	}
	s := snap.Stages[0]
	if s.Samples != 3 || s.LastMS != 900 || s.P50MS != 700 {
		t.Fatalf("stage = %+v", s)
	}
	if s.P95MS <= 700 || s.P95MS > 900 {
		t.Fatalf("P95MS = %.2f, want (700,900]", s.P95MS)
	}
	if s.TargetP95MS != 4000 {
		t.Fatalf("TargetP95MS = %.2f, want 4000", s.TargetP95MS)
	}
	if len(snap.Indicators) != 1 || snap.Indicators[0].Count != 2 {
		t.Fatalf("Indicators = %+v", snap.Indicators)
	}
}

func TestLatencyWindowWraps(t *testing.T) {
	w := newLatencyWindow(2)
	for _, v := range []float64{1, 2, 3} {
		w.Observe("console_submit", v)
	}
	s := w.Snapshot().Stages[0]
	if s.Samples != 2 || s.AvgMS != 2.5 {
		t.Fatalf("stage = %+v, want 2 samples averaging 2.5", s)
	}
}

func TestMetricsRecorder(t *testing.T) {
	m := NewMetricsWith(prometheus.NewRegistry(), "test")
	m.ObserveSubmission("success", 20*time.Millisecond)
	m.ObserveSubmission("empty_input", 0)
	m.ObserveNotification("error")
	m.ObserveReplay("unavailable")
	m.ObserveSynthesis("mock", "success", 5*time.Millisecond)

	if got := testutil.ToFloat64(m.ConsoleSubmissions.WithLabelValues("success")); got != 1 {
		t.Fatalf("success submissions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.ConsoleNotifications.WithLabelValues("error")); got != 1 {
		t.Fatalf("error notifications = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.SynthesisRequests.WithLabelValues("mock", "success")); got != 1 {
		t.Fatalf("synthesis requests = %v, want 1", got)
	}
	snap := m.SnapshotLatency()
	if len(snap.Stages) != 2 {
		t.Fatalf("len(Stages) = %d, want 2", len(snap.Stages))
	}
	if len(snap.Indicators) != 1 || snap.Indicators[0].Name != "submit_empty_input" {
		t.Fatalf("Indicators = %+v", snap.Indicators)
	}
}
