package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"visualjobs.local/internal/domain"
)

// Metrics exposes the loaded snapshot and the startup fetch on /metrics.
type Metrics struct {
	Applications  *prometheus.GaugeVec
	Rates         *prometheus.GaugeVec
	Edges         prometheus.Gauge
	FetchDuration prometheus.Histogram
	FetchFailures prometheus.Counter
	DetailLookups *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Applications: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "visualjobs_applications",
				Help: "Applications per current pipeline stage in the loaded snapshot",
			},
			[]string{"stage"},
		),
		Rates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "visualjobs_rate_percent",
				Help: "Summary rates of the loaded snapshot, in percent",
			},
			[]string{"rate"},
		),
		Edges: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "visualjobs_flow_edges",
			Help: "Number of edges in the flow diagram",
		}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "visualjobs_fetch_duration_seconds",
			Help:    "Duration of the Notion fetch and snapshot build",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
		FetchFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "visualjobs_fetch_failures_total",
			Help: "Failed Notion fetches",
		}),
		DetailLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "visualjobs_detail_lookups_total",
				Help: "Detail panel lookups by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(m.Applications, m.Rates, m.Edges, m.FetchDuration, m.FetchFailures, m.DetailLookups)
	return m
}

// ObserveFetch records how long a fetch took and whether it failed.
func (m *Metrics) ObserveFetch(took time.Duration, err error) {
	m.FetchDuration.Observe(took.Seconds())
	if err != nil {
		m.FetchFailures.Inc()
	}
}

// Observe publishes the snapshot's stage counts and rates.
func (m *Metrics) Observe(snap *domain.Snapshot) {
	counts := make(map[domain.Stage]int, len(domain.Stages))
	for _, sc := range snap.Distribution {
		counts[sc.Stage] = sc.Count
	}
	for _, st := range domain.Stages {
		m.Applications.WithLabelValues(string(st)).Set(float64(counts[st]))
	}

	s := snap.Summary
	m.Rates.WithLabelValues("response").Set(s.ResponseRate)
	m.Rates.WithLabelValues("oa").Set(s.OARate)
	m.Rates.WithLabelValues("interview").Set(s.InterviewRate)
	m.Rates.WithLabelValues("offer").Set(s.OfferRate)
	m.Rates.WithLabelValues("rejection").Set(s.RejectionRate)
	m.Rates.WithLabelValues("acceptance").Set(s.AcceptanceRate)
	m.Edges.Set(float64(len(snap.Edges)))
}

// DetailLookup counts one click; found reports whether records were listed.
func (m *Metrics) DetailLookup(found bool) {
	result := "placeholder"
	if found {
		result = "found"
	}
	m.DetailLookups.WithLabelValues(result).Inc()
}
