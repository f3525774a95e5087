package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/accountd/accountd/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "accountd_accounts_created_total %d\n", snap.AccountsCreated)
	writeMetric(w, "accountd_account_create_conflicts_total %d\n", snap.AccountCreateConflicts)
	writeMetric(w, "accountd_account_cache_hits_total %d\n", snap.CacheHits)
	writeMetric(w, "accountd_account_cache_misses_total %d\n", snap.CacheMisses)

	keys := make([]metrics.LookupKey, 0, len(snap.AccountLookups))
	for k := range snap.AccountLookups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Kind != keys[j].Kind {
			return keys[i].Kind < keys[j].Kind
		}
		return keys[i].Outcome < keys[j].Outcome
	})
	for _, k := range keys {
		writeMetric(w, "accountd_account_lookups_total{by=%q,outcome=%q} %d\n", k.Kind, k.Outcome, snap.AccountLookups[k])
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
