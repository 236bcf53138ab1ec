// Package metrics exposes Prometheus metrics for the batch store. A custom
// collector reads the live batches on each scrape, so counts always reflect
// the store without separate bookkeeping.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/serpgap/serpgap/internal/store"
)

var (
	batchesDesc = prometheus.NewDesc(
		"serpgap_batches",
		"Number of live batches in the store",
		nil, nil,
	)
	rowsDesc = prometheus.NewDesc(
		"serpgap_batch_rows",
		"Row count per batch",
		[]string{"batch"},
		nil,
	)
	candidatesDesc = prometheus.NewDesc(
		"serpgap_batch_candidates",
		"Row count per batch and candidate type",
		[]string{"batch", "type"},
		nil,
	)
	defectiveDesc = prometheus.NewDesc(
		"serpgap_batch_defective_rows",
		"Rows with data-quality issues per batch",
		[]string{"batch"},
		nil,
	)
	cannibalDesc = prometheus.NewDesc(
		"serpgap_batch_cannibal_groups",
		"Cannibalization groups detected per batch",
		[]string{"batch"},
		nil,
	)
	durationDesc = prometheus.NewDesc(
		"serpgap_batch_processing_seconds",
		"Engine processing time per batch",
		[]string{"batch"},
		nil,
	)
)

// StoreCollector is a custom Prometheus collector that reads the batch store
// on each scrape.
type StoreCollector struct {
	store *store.Store
}

// Describe sends all metric descriptors to the channel.
func (c *StoreCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- batchesDesc
	ch <- rowsDesc
	ch <- candidatesDesc
	ch <- defectiveDesc
	ch <- cannibalDesc
	ch <- durationDesc
}

// Collect walks the live batches and emits one gauge set per batch.
func (c *StoreCollector) Collect(ch chan<- prometheus.Metric) {
	entries := c.store.List()
	ch <- prometheus.MustNewConstMetric(batchesDesc, prometheus.GaugeValue, float64(len(entries)))

	for _, e := range entries {
		id := e.Batch.ID
		s := e.Batch.Summary
		ch <- prometheus.MustNewConstMetric(rowsDesc, prometheus.GaugeValue, float64(s.Rows), id)
		ch <- prometheus.MustNewConstMetric(defectiveDesc, prometheus.GaugeValue, float64(s.Defective), id)
		ch <- prometheus.MustNewConstMetric(cannibalDesc, prometheus.GaugeValue, float64(s.CannibalGroups), id)
		ch <- prometheus.MustNewConstMetric(durationDesc, prometheus.GaugeValue, s.Duration.Seconds(), id)
		for typ, n := range s.Candidates {
			ch <- prometheus.MustNewConstMetric(candidatesDesc, prometheus.GaugeValue, float64(n), id, typ)
		}
	}
}

var initOnce sync.Once

// Init registers the store collector with the default registry.
// Must be called once at startup.
func Init(st *store.Store) {
	initOnce.Do(func() {
		prometheus.MustRegister(&StoreCollector{store: st})
	})
}
