package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		tokensIssuedTotal,
		tokensFinalizedTotal,
		tokenResolveFailures,
		tokensSweptTotal,
	)
}

var (
	tokensIssuedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_tokens_issued_total",
			Help: "Payment tokens issued to merchants.",
		},
	)

	tokensFinalizedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_tokens_finalized_total",
			Help: "Tokens finalized, labeled by decision (submit/fail/cancel).",
		},
		[]string{"decision"},
	)

	tokenResolveFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_token_resolve_failures_total",
			Help: "Failed public token resolutions by reason.",
		},
		[]string{"reason"},
	)

	tokensSweptTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gateway_tokens_swept_total",
			Help: "In-progress tokens expired by the sweeper.",
		},
	)
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func IncTokenIssued() { tokensIssuedTotal.Inc() }

func IncTokenFinalized(decision string) {
	tokensFinalizedTotal.WithLabelValues(norm(decision)).Inc()
}

func IncTokenResolveFailure(reason string) {
	tokenResolveFailures.WithLabelValues(norm(reason)).Inc()
}

func AddTokensSwept(n int) { tokensSweptTotal.Add(float64(n)) }
