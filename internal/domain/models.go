package domain

import "time"

// Stage is the derived pipeline position of one application.
type Stage string

const (
	StageApplied               Stage = "Applied"
	StageInReview              Stage = "In Review"
	StageOACompleted           Stage = "OA Completed"
	StageInterviewCompleted    Stage = "Interview Completed"
	StageOfferReceived         Stage = "Offer Received"
	StageRejectedInitial       Stage = "Rejected (Initial)"
	StageRejectedPostOA        Stage = "Rejected (Post-OA)"
	StageRejectedPostInterview Stage = "Rejected (Post-Interview)"
	StageWithdrawn             Stage = "Withdrawn"
)

// Stages lists every CurrentStage value in pipeline order.
var Stages = []Stage{
	StageApplied,
	StageInReview,
	StageOACompleted,
	StageInterviewCompleted,
	StageOfferReceived,
	StageRejectedInitial,
	StageRejectedPostOA,
	StageRejectedPostInterview,
	StageWithdrawn,
}

// Valid reports whether s is one of the nine stage labels.
func (s Stage) Valid() bool {
	for _, st := range Stages {
		if s == st {
			return true
		}
	}
	return false
}

// Raw status values as they appear in the Notion status properties.
const (
	StatusNotStarted = "Not started"
	StatusInProgress = "In progress"
	StatusOffer      = "Offer"
	StatusRejection  = "Rejection"
	StatusWithdraw   = "Withdraw"
)

// ApplicationRecord is one normalized row of the job tracker database.
type ApplicationRecord struct {
	ID           string `json:"id" yaml:"id"`
	Company      string `json:"company" yaml:"company"`
	Position     string `json:"position" yaml:"position"`
	AppliedDate  string `json:"applied_date" yaml:"applied_date"`
	Link         string `json:"link" yaml:"link"`
	Status       string `json:"status" yaml:"status"`
	Stage        string `json:"stage" yaml:"stage"`
	FollowUp     string `json:"follow_up" yaml:"follow_up"`
	HasOA        bool   `json:"has_oa" yaml:"has_oa"`
	HasInterview bool   `json:"has_interview" yaml:"has_interview"`
	Accepted     bool   `json:"accepted" yaml:"accepted"`
	CurrentStage Stage  `json:"current_stage" yaml:"current_stage"`
}

// EdgeKey identifies a flow between two diagram nodes.
type EdgeKey struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

func (k EdgeKey) String() string { return k.Source + " → " + k.Target }

// FlowEdge is one weighted link of the diagram. SourceIndex and TargetIndex
// point into Snapshot.Nodes.
type FlowEdge struct {
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	SourceIndex int    `json:"source_index" yaml:"source_index"`
	TargetIndex int    `json:"target_index" yaml:"target_index"`
	Count       int    `json:"count" yaml:"count"`
}

func (e FlowEdge) Key() EdgeKey { return EdgeKey{Source: e.Source, Target: e.Target} }

// Node is a diagram node. Index is assigned in order of first appearance.
type Node struct {
	Index int    `json:"index" yaml:"index"`
	Label string `json:"label" yaml:"label"`
}

// DetailIndex maps each edge to the records that make it up.
type DetailIndex map[EdgeKey][]ApplicationRecord

// AggregationMode selects how records are turned into flow edges.
type AggregationMode string

const (
	ModePipeline AggregationMode = "pipeline"
	ModeGroupBy  AggregationMode = "groupby"
)

// Summary holds headline counts and percentage rates (0-100).
type Summary struct {
	Total          int     `json:"total" yaml:"total"`
	Offers         int     `json:"offers" yaml:"offers"`
	ResponseRate   float64 `json:"response_rate" yaml:"response_rate"`
	OARate         float64 `json:"oa_rate" yaml:"oa_rate"`
	InterviewRate  float64 `json:"interview_rate" yaml:"interview_rate"`
	OfferRate      float64 `json:"offer_rate" yaml:"offer_rate"`
	RejectionRate  float64 `json:"rejection_rate" yaml:"rejection_rate"`
	AcceptanceRate float64 `json:"acceptance_rate" yaml:"acceptance_rate"`
}

// StageCount is one entry of the CurrentStage distribution.
type StageCount struct {
	Stage Stage `json:"stage" yaml:"stage"`
	Count int   `json:"count" yaml:"count"`
}

// Snapshot is everything the presentation layer needs, built once per fetch.
type Snapshot struct {
	FetchedAt    time.Time           `json:"fetched_at" yaml:"fetched_at"`
	Mode         AggregationMode     `json:"mode" yaml:"mode"`
	Records      []ApplicationRecord `json:"records" yaml:"records"`
	Nodes        []Node              `json:"nodes" yaml:"nodes"`
	Edges        []FlowEdge          `json:"edges" yaml:"edges"`
	Details      DetailIndex         `json:"-" yaml:"-"`
	Summary      Summary             `json:"summary" yaml:"summary"`
	Distribution []StageCount        `json:"distribution" yaml:"distribution"`
}

// Run is one archived snapshot summary in the history store.
type Run struct {
	ID        string
	FetchedAt time.Time
	Mode      AggregationMode
	Summary   Summary
	Stages    map[Stage]int
}
