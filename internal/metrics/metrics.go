// Package metrics provides Prometheus instrumentation for the ledger.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerTransactionsTotal counts ledger entries, partitioned by type.
	LedgerTransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "psl_ledger_transactions_total",
		Help: "Total ledger entries written",
	}, []string{"type"})

	// OrdersProcessedTotal counts orders settled from payment events.
	OrdersProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "psl_orders_processed_total",
		Help: "Orders created from verified payment events",
	})

	// DuplicateEventsTotal counts webhook deliveries dropped as duplicates.
	DuplicateEventsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "psl_duplicate_events_total",
		Help: "Payment events discarded as already processed",
	})

	// SignatureRejectionsTotal counts webhook deliveries failing verification.
	SignatureRejectionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "psl_signature_rejections_total",
		Help: "Payment events rejected by signature verification",
	})

	// InsufficientFundsTotal counts debits refused for lack of balance.
	InsufficientFundsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "psl_insufficient_funds_total",
		Help: "Debits refused because the wallet balance was too low",
	})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
