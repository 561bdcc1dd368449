package pipeline

import (
	"fmt"

	"visualjobs.local/internal/domain"
)

// NoResponseNode is the pipeline-mode target for applications that are
// still sitting at Applied.
const NoResponseNode = "No Response Yet"

// Unspecified labels an empty raw value in group-by mode.
const Unspecified = "Unspecified"

// Flow is the aggregator output: diagram nodes, weighted edges and the
// records behind each edge.
type Flow struct {
	Nodes   []domain.Node
	Edges   []domain.FlowEdge
	Details domain.DetailIndex
}

// pipelineEdges is the fixed topology. Each stage feeds exactly one edge.
var pipelineEdges = []struct {
	key   domain.EdgeKey
	stage domain.Stage
}{
	{domain.EdgeKey{Source: string(domain.StageApplied), Target: NoResponseNode}, domain.StageApplied},
	{domain.EdgeKey{Source: string(domain.StageApplied), Target: string(domain.StageInReview)}, domain.StageInReview},
	{domain.EdgeKey{Source: string(domain.StageInReview), Target: string(domain.StageOACompleted)}, domain.StageOACompleted},
	{domain.EdgeKey{Source: string(domain.StageOACompleted), Target: string(domain.StageInterviewCompleted)}, domain.StageInterviewCompleted},
	{domain.EdgeKey{Source: string(domain.StageInterviewCompleted), Target: string(domain.StageOfferReceived)}, domain.StageOfferReceived},
	{domain.EdgeKey{Source: string(domain.StageApplied), Target: string(domain.StageRejectedInitial)}, domain.StageRejectedInitial},
	{domain.EdgeKey{Source: string(domain.StageOACompleted), Target: string(domain.StageRejectedPostOA)}, domain.StageRejectedPostOA},
	{domain.EdgeKey{Source: string(domain.StageInterviewCompleted), Target: string(domain.StageRejectedPostInterview)}, domain.StageRejectedPostInterview},
	{domain.EdgeKey{Source: string(domain.StageApplied), Target: string(domain.StageWithdrawn)}, domain.StageWithdrawn},
}

// flowBuilder accumulates edges in first-seen order and assigns node
// indexes as endpoints first appear. With shareNodes unset, sources and
// targets are separate namespaces and the same label can yield two nodes.
type flowBuilder struct {
	flow       *Flow
	edgeIdx    map[domain.EdgeKey]int
	sourceIdx  map[string]int
	targetIdx  map[string]int
	shareNodes bool
}

func newFlowBuilder(shareNodes bool) *flowBuilder {
	return &flowBuilder{
		flow:       &Flow{Details: domain.DetailIndex{}},
		edgeIdx:    map[domain.EdgeKey]int{},
		sourceIdx:  map[string]int{},
		targetIdx:  map[string]int{},
		shareNodes: shareNodes,
	}
}

func (b *flowBuilder) node(label string, own, other map[string]int) int {
	if i, ok := own[label]; ok {
		return i
	}
	if b.shareNodes {
		if i, ok := other[label]; ok {
			own[label] = i
			return i
		}
	}
	i := len(b.flow.Nodes)
	b.flow.Nodes = append(b.flow.Nodes, domain.Node{Index: i, Label: label})
	own[label] = i
	return i
}

func (b *flowBuilder) add(key domain.EdgeKey, rec domain.ApplicationRecord) {
	if i, ok := b.edgeIdx[key]; ok {
		b.flow.Edges[i].Count++
	} else {
		src := b.node(key.Source, b.sourceIdx, b.targetIdx)
		dst := b.node(key.Target, b.targetIdx, b.sourceIdx)
		b.edgeIdx[key] = len(b.flow.Edges)
		b.flow.Edges = append(b.flow.Edges, domain.FlowEdge{
			Source:      key.Source,
			Target:      key.Target,
			SourceIndex: src,
			TargetIndex: dst,
			Count:       1,
		})
	}
	b.flow.Details[key] = append(b.flow.Details[key], rec)
}

// AggregatePipeline maps each classified record onto the fixed stage
// topology. Edges keep the topology order and zero-count edges are
// omitted. Records must already carry CurrentStage.
func AggregatePipeline(records []domain.ApplicationRecord) *Flow {
	byStage := make(map[domain.Stage][]domain.ApplicationRecord, len(domain.Stages))
	for _, r := range records {
		byStage[r.CurrentStage] = append(byStage[r.CurrentStage], r)
	}

	b := newFlowBuilder(true)
	for _, pe := range pipelineEdges {
		for _, r := range byStage[pe.stage] {
			b.add(pe.key, r)
		}
	}
	return b.flow
}

// AggregateGroupBy groups records by their raw (Stage, Follow-up) pair.
// Labels are the values found in the data. A label used both as a stage and
// as a follow-up value becomes two separate nodes.
func AggregateGroupBy(records []domain.ApplicationRecord) *Flow {
	b := newFlowBuilder(false)
	for _, r := range records {
		key := domain.EdgeKey{
			Source: labelOrUnspecified(r.Stage),
			Target: labelOrUnspecified(r.FollowUp),
		}
		b.add(key, r)
	}
	return b.flow
}

func labelOrUnspecified(s string) string {
	if s == "" {
		return Unspecified
	}
	return s
}

// Aggregate runs the aggregator selected by mode.
func Aggregate(mode domain.AggregationMode, records []domain.ApplicationRecord) (*Flow, error) {
	switch mode {
	case domain.ModePipeline:
		return AggregatePipeline(records), nil
	case domain.ModeGroupBy:
		return AggregateGroupBy(records), nil
	default:
		return nil, fmt.Errorf("unknown aggregation mode %q", mode)
	}
}
