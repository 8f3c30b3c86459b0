// Package metrics exports region statistics to Prometheus.
package metrics

import (
	"github.com/Keksclan/rawrcache/region"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "rawrcache"

// SizeFunc reports the current entry count per cache namespace.
type SizeFunc func() map[string]int

// Collector counts region events and reports region sizes. It implements both
// prometheus.Collector and region.Observer, so the same value is registered
// with Prometheus and handed to each region.
type Collector struct {
	Hits        *prometheus.CounterVec
	Misses      *prometheus.CounterVec
	Evictions   *prometheus.CounterVec
	Expirations *prometheus.CounterVec
	Loads       *prometheus.CounterVec

	size  *prometheus.Desc
	sizes SizeFunc
}

// NewCollector creates a Collector. sizes may be nil, in which case no size
// gauge is exported.
func NewCollector(sizes SizeFunc) *Collector {
	return &Collector{
		Hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "hits_total",
			Help:      "Total number of reads that found a live entry",
		}, []string{"cache"}),
		Misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "misses_total",
			Help:      "Total number of reads that found no live entry",
		}, []string{"cache"}),
		Evictions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "evictions_total",
			Help:      "Total number of entries removed to respect the capacity bound",
		}, []string{"cache"}),
		Expirations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "expirations_total",
			Help:      "Total number of entries removed after their TTL or TTI elapsed",
		}, []string{"cache"}),
		Loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "loads_total",
			Help:      "Total number of loader calls by result",
		}, []string{"cache", "result"}),
		size: prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", "entries"),
			"Current number of entries, including expired entries not yet purged",
			[]string{"cache"}, nil,
		),
		sizes: sizes,
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.Hits.Describe(ch)
	c.Misses.Describe(ch)
	c.Evictions.Describe(ch)
	c.Expirations.Describe(ch)
	c.Loads.Describe(ch)
	ch <- c.size
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.Hits.Collect(ch)
	c.Misses.Collect(ch)
	c.Evictions.Collect(ch)
	c.Expirations.Collect(ch)
	c.Loads.Collect(ch)
	if c.sizes == nil {
		return
	}
	for ns, n := range c.sizes() {
		ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(n), ns)
	}
}

func (c *Collector) Hit(namespace string)     { c.Hits.WithLabelValues(namespace).Inc() }
func (c *Collector) Miss(namespace string)    { c.Misses.WithLabelValues(namespace).Inc() }
func (c *Collector) Evicted(namespace string) { c.Evictions.WithLabelValues(namespace).Inc() }
func (c *Collector) Expired(namespace string) { c.Expirations.WithLabelValues(namespace).Inc() }

func (c *Collector) Loaded(namespace string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.Loads.WithLabelValues(namespace, result).Inc()
}

var (
	_ prometheus.Collector = (*Collector)(nil)
	_ region.Observer      = (*Collector)(nil)
)
