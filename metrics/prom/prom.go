// Package prom exports database metrics to Prometheus.
//
//	reg := prometheus.NewRegistry()
//	collector, err := prom.New(reg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	db := vecdb.New(vecdb.WithMetricsCollector(collector))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/vecdb"
)

// Compile time check to ensure Collector satisfies the MetricsCollector interface.
var _ vecdb.MetricsCollector = (*Collector)(nil)

const namespace = "vecdb"

// Collector implements vecdb.MetricsCollector with Prometheus metrics.
type Collector struct {
	opLatency *prometheus.HistogramVec
	ops       *prometheus.CounterVec
	vectors   prometheus.Counter
	points    prometheus.Histogram
	k         prometheus.Histogram
}

// New creates a Collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of database operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total database operations",
		}, []string{"op", "status"}),
		vectors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "inserted_vectors_total",
			Help:      "Total vectors inserted",
		}),
		points: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "index_build_points",
			Help:      "Number of points per index build",
			Buckets:   prometheus.ExponentialBuckets(16, 4, 10),
		}),
		k: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_k",
			Help:      "Requested neighbors per query",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 1000},
		}),
	}

	for _, m := range []prometheus.Collector{c.opLatency, c.ops, c.vectors, c.points, c.k} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	s := status(err)
	c.ops.WithLabelValues(op, s).Inc()
	c.opLatency.WithLabelValues(op, s).Observe(d.Seconds())
}

// RecordCreate implements vecdb.MetricsCollector.
func (c *Collector) RecordCreate(err error) {
	c.ops.WithLabelValues("create", status(err)).Inc()
}

// RecordDelete implements vecdb.MetricsCollector.
func (c *Collector) RecordDelete(err error) {
	c.ops.WithLabelValues("delete", status(err)).Inc()
}

// RecordInsert implements vecdb.MetricsCollector.
func (c *Collector) RecordInsert(count int, d time.Duration, err error) {
	c.observe("insert", d, err)
	if err == nil {
		c.vectors.Add(float64(count))
	}
}

// RecordBuild implements vecdb.MetricsCollector.
func (c *Collector) RecordBuild(points int, d time.Duration, err error) {
	c.observe("build", d, err)
	if err == nil {
		c.points.Observe(float64(points))
	}
}

// RecordQuery implements vecdb.MetricsCollector.
func (c *Collector) RecordQuery(k int, d time.Duration, err error) {
	c.observe("query", d, err)
	c.k.Observe(float64(k))
}

// RecordSnapshot implements vecdb.MetricsCollector.
func (c *Collector) RecordSnapshot(d time.Duration, err error) {
	c.observe("snapshot", d, err)
}
