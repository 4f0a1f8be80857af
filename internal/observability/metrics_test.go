package observability

import (
	"testing"
	"time"
)

func TestMetricsRecordAndGather(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/tickets", "POST", 201, 15*time.Millisecond)
	m.RecordTransition("ASSIGN")
	m.RecordGeoResolution(false)
	m.SetOverdue(3)

	families, err := m.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	found := map[string]bool{}
	for _, family := range families {
		found[family.GetName()] = true
		if family.GetName() == "tickets_overdue" {
			if got := family.GetMetric()[0].GetGauge().GetValue(); got != 3 {
				t.Errorf("tickets_overdue = %v, want 3", got)
			}
		}
	}
	for _, name := range []string{"http_requests_total", "ticket_transitions_total", "geo_resolutions_total", "tickets_overdue"} {
		if !found[name] {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "X")
	m.RecordTransition("CREATE")
	m.RecordGeoResolution(true)
	m.SetOverdue(1)
}
