package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts controller activity.
type Metrics struct {
	mutations     *prometheus.CounterVec
	importFiles   *prometheus.CounterVec
	importRecords *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with reg when it is not
// nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submanager",
			Name:      "subscription_mutations_total",
			Help:      "Subscription changes by operation and result.",
		}, []string{"op", "result"}),
		importFiles: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submanager",
			Name:      "import_files_total",
			Help:      "Uploaded CSV files by outcome.",
		}, []string{"outcome"}),
		importRecords: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "submanager",
			Name:      "import_records_total",
			Help:      "Imported CSV rows by result.",
		}, []string{"result"}),
	}
}
