package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cellgate/cellgate/actor"
)

// collector exposes the Actor's counters and top-denied-keys snapshot as a
// custom prometheus.Collector. This is the external /metrics surface named
// in §6.1 as a collaborator; the counters it reads are produced entirely
// by the Actor (§3).
type collector struct {
	handle *actor.Actor

	total     *prometheus.Desc
	allowed   *prometheus.Desc
	denied    *prometheus.Desc
	topDenied *prometheus.Desc
}

func newCollector(a *actor.Actor) *collector {
	return &collector{
		handle:    a,
		total:     prometheus.NewDesc("cellgate_requests_total", "Total throttle decisions made.", nil, nil),
		allowed:   prometheus.NewDesc("cellgate_requests_allowed_total", "Allowed throttle decisions.", nil, nil),
		denied:    prometheus.NewDesc("cellgate_requests_denied_total", "Denied throttle decisions.", nil, nil),
		topDenied: prometheus.NewDesc("cellgate_top_denied_key_total", "Denial count for tracked top keys.", []string{"key"}, nil),
	}
}

func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.allowed
	ch <- c.denied
	ch <- c.topDenied
}

func (c *collector) Collect(ch chan<- prometheus.Metric) {
	snap := c.handle.Metrics().Snapshot()
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(snap.Total))
	ch <- prometheus.MustNewConstMetric(c.allowed, prometheus.CounterValue, float64(snap.Allowed))
	ch <- prometheus.MustNewConstMetric(c.denied, prometheus.CounterValue, float64(snap.Denied))

	for key, count := range c.handle.TopDeniedKeys() {
		ch <- prometheus.MustNewConstMetric(c.topDenied, prometheus.CounterValue, float64(count), key)
	}
}
