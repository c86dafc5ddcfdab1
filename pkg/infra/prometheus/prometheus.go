package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var registry = prometheus.NewRegistry()

var registerer prometheus.Registerer = registry

var (
	sweepBuckets = []float64{
		0.01, 0.05, 0.1,
		0.5, 1, 2.5,
		5, 10, 30,
	}

	EventsScoredTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authshield_events_scored_total",
			Help: "Total number of login events scored",
		},
		[]string{"suspicious"},
	)

	FreezeActionsTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authshield_freeze_actions_total",
			Help: "Freeze and unfreeze attempts by action and result",
		},
		[]string{"action", "result"},
	)

	LedgerWritesTotal = promauto.With(registerer).NewCounterVec(
		prometheus.CounterOpts{
			Name: "authshield_ledger_writes_total",
			Help: "Best-effort ledger writes by result",
		},
		[]string{"result"},
	)

	ClusterSweepDuration = promauto.With(registerer).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "authshield_cluster_sweep_duration_seconds",
			Help:    "Duration of cluster-detection sweeps",
			Buckets: sweepBuckets,
		},
	)

	FlaggedAccounts = promauto.With(registerer).NewGauge(
		prometheus.GaugeOpts{
			Name: "authshield_flagged_accounts",
			Help: "Accounts flagged by the most recent cluster sweep",
		},
	)
)

func init() {
	registerer.MustRegister(collectors.NewGoCollector())
	registerer.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
}

// Registry exposes the private registry for the metrics endpoint.
func Registry() *prometheus.Registry {
	return registry
}
