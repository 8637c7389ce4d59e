package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()

	r.Action("hireStaff", OutcomeAccepted)
	r.Action("hireStaff", OutcomeAccepted)
	r.Action("hireStaff", OutcomeRejected)
	r.Cash("A", 6000)
	r.Season(3)
	r.StorageCorrupt()

	assert.Equal(t, 2.0, value(t, r, "glassfist_actions_total", "outcome", OutcomeAccepted))
	assert.Equal(t, 1.0, value(t, r, "glassfist_actions_total", "outcome", OutcomeRejected))
	assert.Equal(t, 6000.0, value(t, r, "glassfist_cash", "franchise", "A"))
	assert.Equal(t, 3.0, value(t, r, "glassfist_season", "", ""))
	assert.Equal(t, 1.0, value(t, r, "glassfist_storage_corrupt_total", "", ""))
}

// value reads one series from the registry, optionally filtered by a label.
func value(t *testing.T, r *Recorder, name, label, want string) float64 {
	t.Helper()
	families, err := r.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if label != "" && !hasLabel(m.GetLabel(), label, want) {
				continue
			}
			return m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	t.Fatalf("metric %s{%s=%q} not found", name, label, want)
	return 0
}

func hasLabel[L interface {
	GetName() string
	GetValue() string
}](labels []L, name, want string) bool {
	for _, l := range labels {
		if l.GetName() == name && l.GetValue() == want {
			return true
		}
	}
	return false
}

func TestNilRecorderIsSafe(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Action("x", OutcomeAccepted)
		r.Cash("A", 1)
		r.Season(1)
		r.StorageCorrupt()
	})
}

func TestHandlerServesMetrics(t *testing.T) {
	r := New()
	r.Season(2)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "glassfist_season 2")
}
