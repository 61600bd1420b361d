package store

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation result labels.
const (
	resultChanged = "changed"
	resultNoop    = "noop"
)

var (
	catalogOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Total number of catalog mutations by outcome",
		},
		[]string{"operation", "result"},
	)

	catalogMedicines = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_medicines",
			Help: "Number of medicines in the catalog",
		},
	)

	catalogFavorites = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_favorites",
			Help: "Number of names marked favorite",
		},
	)
)

func recordOperation(operation string, changed bool) {
	result := resultNoop
	if changed {
		result = resultChanged
	}
	catalogOperationsTotal.WithLabelValues(operation, result).Inc()
}
