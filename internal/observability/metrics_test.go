package observability

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestDispatchTotal_CountsByOutcome(t *testing.T) {
	before := testutil.ToFloat64(DispatchTotal.WithLabelValues("Report", "index", OutcomeForward))

	DispatchTotal.WithLabelValues("Report", "index", OutcomeForward).Inc()

	after := testutil.ToFloat64(DispatchTotal.WithLabelValues("Report", "index", OutcomeForward))
	assert.Equal(t, before+1, after)
}

func TestCSRFFailuresTotal(t *testing.T) {
	before := testutil.ToFloat64(CSRFFailuresTotal)
	CSRFFailuresTotal.Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(CSRFFailuresTotal))
}

func TestHistogramsAcceptLabels(t *testing.T) {
	assert.NotPanics(t, func() {
		HTTPRequestDuration.WithLabelValues("GET", "/", "200").Observe(0.05)
		DispatchDuration.WithLabelValues("Report", "create").Observe(0.01)
		DBQueryDuration.WithLabelValues("select", "reports").Observe(0.002)
	})
}
