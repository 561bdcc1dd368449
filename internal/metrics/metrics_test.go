package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"visualjobs.local/internal/domain"
)

func TestObserve(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.Observe(&domain.Snapshot{
		Edges: make([]domain.FlowEdge, 3),
		Distribution: []domain.StageCount{
			{Stage: domain.StageApplied, Count: 4},
			{Stage: domain.StageWithdrawn, Count: 1},
		},
		Summary: domain.Summary{ResponseRate: 60, OfferRate: 10},
	})

	assert.Equal(t, 4.0, testutil.ToFloat64(m.Applications.WithLabelValues("Applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Applications.WithLabelValues("Withdrawn")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Applications.WithLabelValues("In Review")))
	assert.Equal(t, 9, testutil.CollectAndCount(m.Applications))
	assert.Equal(t, 60.0, testutil.ToFloat64(m.Rates.WithLabelValues("response")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.Rates.WithLabelValues("offer")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Edges))
}

func TestObserveFetch(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveFetch(time.Second, nil)
	m.ObserveFetch(time.Second, errors.New("down"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(m.FetchDuration))
}

func TestDetailLookup(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.DetailLookup(true)
	m.DetailLookup(false)
	m.DetailLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.DetailLookups.WithLabelValues("found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DetailLookups.WithLabelValues("placeholder")))
}
