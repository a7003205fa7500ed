// Package metrics defines the custom Prometheus metrics for the catalog API.
// It is the single source of truth for metric names, labels and help
// strings. Metrics register with the default registry on package load.
package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalog"

// ── Account metrics ───────────────────────────────────────────────────────────

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success", "invalid_credentials", "locked_out" or "error"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRegistrationsTotal counts registration attempts.
// Label:
//   - result: "success", "rejected", "invalid" or "error"
var AuthRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// TokensIssuedTotal counts bearer tokens handed out.
// Label:
//   - flow: "register" or "login"
var TokensIssuedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tokens_issued_total",
		Help:      "Total number of bearer tokens issued, by flow.",
	},
	[]string{"flow"},
)

// LoginDuration measures credential verification, dominated by bcrypt cost.
var LoginDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_login_duration_seconds",
		Help:      "Duration of login requests from bind to token issuance.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
	},
)

// ── Product metrics ───────────────────────────────────────────────────────────

// ProductMutationsTotal counts successful catalog writes.
// Label:
//   - operation: "create", "update" or "delete"
var ProductMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "product_mutations_total",
		Help:      "Total number of successful product writes, by operation.",
	},
	[]string{"operation"},
)

// Collectors returns the account and product metrics so a registry other
// than the default one can expose them too.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		AuthLoginsTotal,
		AuthRegistrationsTotal,
		TokensIssuedTotal,
		LoginDuration,
		ProductMutationsTotal,
	}
}

// ── Database metrics ──────────────────────────────────────────────────────────

// RegisterPostgresPool exposes connection pool occupancy, read at scrape time.
// Label:
//   - state: "in_use", "idle" or "max"
func RegisterPostgresPool(pool *pgxpool.Pool) {
	gauge := func(state string, value func(*pgxpool.Stat) int32) {
		promauto.NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace:   namespace,
				Name:        "db_pool_connections",
				Help:        "PostgreSQL pool connections, by state.",
				ConstLabels: prometheus.Labels{"state": state},
			},
			func() float64 { return float64(value(pool.Stat())) },
		)
	}
	gauge("in_use", (*pgxpool.Stat).AcquiredConns)
	gauge("idle", (*pgxpool.Stat).IdleConns)
	gauge("max", (*pgxpool.Stat).MaxConns)
}
