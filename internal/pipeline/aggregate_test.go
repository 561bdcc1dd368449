package pipeline

import (
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visualjobs.local/internal/domain"
)

func rec(id, status string, oa, interview bool) domain.ApplicationRecord {
	return domain.ApplicationRecord{ID: id, Status: status, FollowUp: status, HasOA: oa, HasInterview: interview}
}

func mixedRecords() []domain.ApplicationRecord {
	return ClassifyAll([]domain.ApplicationRecord{
		rec("1", "Not started", false, false),
		rec("2", "In progress", false, false),
		rec("3", "Not started", true, false),
		rec("4", "In progress", true, true),
		rec("5", "Offer", true, true),
		rec("6", "Rejection", false, false),
		rec("7", "Rejection", true, false),
		rec("8", "Rejection", true, true),
		rec("9", "Withdraw", false, false),
		rec("10", "Not started", false, false),
	})
}

func TestAggregatePipelineEdges(t *testing.T) {
	flow := AggregatePipeline(mixedRecords())

	want := []domain.FlowEdge{
		{Source: "Applied", Target: "No Response Yet", SourceIndex: 0, TargetIndex: 1, Count: 2},
		{Source: "Applied", Target: "In Review", SourceIndex: 0, TargetIndex: 2, Count: 1},
		{Source: "In Review", Target: "OA Completed", SourceIndex: 2, TargetIndex: 3, Count: 1},
		{Source: "OA Completed", Target: "Interview Completed", SourceIndex: 3, TargetIndex: 4, Count: 1},
		{Source: "Interview Completed", Target: "Offer Received", SourceIndex: 4, TargetIndex: 5, Count: 1},
		{Source: "Applied", Target: "Rejected (Initial)", SourceIndex: 0, TargetIndex: 6, Count: 1},
		{Source: "OA Completed", Target: "Rejected (Post-OA)", SourceIndex: 3, TargetIndex: 7, Count: 1},
		{Source: "Interview Completed", Target: "Rejected (Post-Interview)", SourceIndex: 4, TargetIndex: 8, Count: 1},
		{Source: "Applied", Target: "Withdrawn", SourceIndex: 0, TargetIndex: 9, Count: 1},
	}
	if diff := cmp.Diff(want, flow.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}

	labels := make([]string, len(flow.Nodes))
	for i, n := range flow.Nodes {
		assert.Equal(t, i, n.Index)
		labels[i] = n.Label
	}
	assert.Equal(t, []string{
		"Applied", "No Response Yet", "In Review", "OA Completed", "Interview Completed",
		"Offer Received", "Rejected (Initial)", "Rejected (Post-OA)", "Rejected (Post-Interview)", "Withdrawn",
	}, labels)
}

func TestAggregatePipelineOmitsZeroEdges(t *testing.T) {
	flow := AggregatePipeline(ClassifyAll([]domain.ApplicationRecord{
		rec("1", "In progress", false, false),
		rec("2", "In progress", false, false),
	}))

	require.Len(t, flow.Edges, 1)
	assert.Equal(t, domain.FlowEdge{Source: "Applied", Target: "In Review", SourceIndex: 0, TargetIndex: 1, Count: 2}, flow.Edges[0])
	assert.Len(t, flow.Nodes, 2)
	_, ok := flow.Details[domain.EdgeKey{Source: "Applied", Target: "Withdrawn"}]
	assert.False(t, ok)
}

func TestAggregatePipelineEmpty(t *testing.T) {
	flow := AggregatePipeline(nil)
	assert.Empty(t, flow.Edges)
	assert.Empty(t, flow.Nodes)
	assert.Empty(t, flow.Details)
}

func TestAggregatePipelineFlowConservation(t *testing.T) {
	records := mixedRecords()
	flow := AggregatePipeline(records)

	outflow := map[string]int{}
	for _, e := range flow.Edges {
		assert.GreaterOrEqual(t, e.Count, 1)
		assert.Len(t, flow.Details[e.Key()], e.Count)
		outflow[e.Source] += e.Count
	}
	for node, n := range outflow {
		assert.LessOrEqual(t, n, len(records), "outflow of %s", node)
	}
}

func assertDetailPartition(t *testing.T, records []domain.ApplicationRecord, details domain.DetailIndex) {
	t.Helper()
	seen := map[string]domain.EdgeKey{}
	for key, set := range details {
		for _, r := range set {
			prev, dup := seen[r.ID]
			assert.False(t, dup, "record %s in both %v and %v", r.ID, prev, key)
			seen[r.ID] = key
		}
	}
	var want, got []string
	for _, r := range records {
		want = append(want, r.ID)
	}
	for id := range seen {
		got = append(got, id)
	}
	sort.Strings(want)
	sort.Strings(got)
	assert.Equal(t, want, got)
}

func TestDetailIndexPartitionsRecords(t *testing.T) {
	records := mixedRecords()
	assertDetailPartition(t, records, AggregatePipeline(records).Details)
	assertDetailPartition(t, records, AggregateGroupBy(records).Details)
}

func TestDetailIndexKeepsFetchOrder(t *testing.T) {
	flow := AggregatePipeline(mixedRecords())
	set := flow.Details[domain.EdgeKey{Source: "Applied", Target: NoResponseNode}]
	require.Len(t, set, 2)
	assert.Equal(t, "1", set[0].ID)
	assert.Equal(t, "10", set[1].ID)
}

func TestAggregateGroupBy(t *testing.T) {
	records := []domain.ApplicationRecord{
		{ID: "1", Stage: "Applied", FollowUp: "Not started"},
		{ID: "2", Stage: "Interviewing", FollowUp: "In progress"},
		{ID: "3", Stage: "Applied", FollowUp: "Not started"},
		{ID: "4", Stage: "", FollowUp: "Rejection"},
		{ID: "5", Stage: "Interviewing", FollowUp: "Offer"},
	}
	flow := AggregateGroupBy(records)

	want := []domain.FlowEdge{
		{Source: "Applied", Target: "Not started", SourceIndex: 0, TargetIndex: 1, Count: 2},
		{Source: "Interviewing", Target: "In progress", SourceIndex: 2, TargetIndex: 3, Count: 1},
		{Source: Unspecified, Target: "Rejection", SourceIndex: 4, TargetIndex: 5, Count: 1},
		{Source: "Interviewing", Target: "Offer", SourceIndex: 2, TargetIndex: 6, Count: 1},
	}
	if diff := cmp.Diff(want, flow.Edges); diff != "" {
		t.Fatalf("edges mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, flow.Details[domain.EdgeKey{Source: "Applied", Target: "Not started"}], 2)
}

func TestAggregateGroupByKeepsNamespacesApart(t *testing.T) {
	records := []domain.ApplicationRecord{
		{ID: "1", Stage: "Offer", FollowUp: "In progress"},
		{ID: "2", Stage: "In progress", FollowUp: "Offer"},
	}
	flow := AggregateGroupBy(records)

	require.Len(t, flow.Nodes, 4)
	require.Len(t, flow.Edges, 2)
	assert.NotEqual(t, flow.Edges[0].SourceIndex, flow.Edges[1].TargetIndex, "source Offer and target Offer are distinct nodes")
	assert.Equal(t, "Offer", flow.Nodes[flow.Edges[0].SourceIndex].Label)
	assert.Equal(t, "Offer", flow.Nodes[flow.Edges[1].TargetIndex].Label)
}

func TestAggregateUnknownMode(t *testing.T) {
	_, err := Aggregate("sankey", nil)
	require.Error(t, err)

	flow, err := Aggregate(domain.ModeGroupBy, nil)
	require.NoError(t, err)
	assert.Empty(t, flow.Edges)
}
