package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCountersAreRegisteredWithLabels(t *testing.T) {
	before := testutil.ToFloat64(UnitOfWork.WithLabelValues("accept_invitation", "atomic", "committed"))
	UnitOfWork.WithLabelValues("accept_invitation", "atomic", "committed").Inc()
	require.Equal(t, before+1, testutil.ToFloat64(UnitOfWork.WithLabelValues("accept_invitation", "atomic", "committed")))

	before = testutil.ToFloat64(MatchesCreated)
	MatchesCreated.Inc()
	require.Equal(t, before+1, testutil.ToFloat64(MatchesCreated))

	SessionVerifications.WithLabelValues("logged_out").Inc()
	require.GreaterOrEqual(t, testutil.ToFloat64(SessionVerifications.WithLabelValues("logged_out")), 1.0)
}

func TestAPILatencyObserves(t *testing.T) {
	APILatency.WithLabelValues("GET", "/api/matches", "200").Observe(0.01)
	require.GreaterOrEqual(t, testutil.CollectAndCount(APILatency), 1)
}
