// Package diagram shapes a snapshot into the node/link payload of the
// Sankey chart and resolves clicks on links back to applications.
package diagram

import (
	"fmt"
	"strings"

	"visualjobs.local/internal/domain"
)

// Figure is the Plotly sankey trace data.
type Figure struct {
	Nodes NodeData `json:"node"`
	Links LinkData `json:"link"`
}

type NodeData struct {
	Label []string `json:"label"`
	Color []string `json:"color"`
}

type LinkData struct {
	Source     []int            `json:"source"`
	Target     []int            `json:"target"`
	Value      []int            `json:"value"`
	CustomData []string         `json:"customdata"`
	Color      []string         `json:"color"`
	// Keys carry the (source, target) labels used for detail lookups.
	Keys       []domain.EdgeKey `json:"keys"`
}

// node palette, matched by label substring in this order. Rejections come
// first so "Rejected (Post-Interview)" is not painted as an interview.
var nodeColors = []struct {
	match []string
	color string
}{
	{[]string{"Rejected"}, "#EF4444"},
	{[]string{"Withdrawn"}, "#6B7280"},
	{[]string{"Applied"}, "#6366F1"},
	{[]string{"Review", "No Response"}, "#94A3B8"},
	{[]string{"OA"}, "#F59E0B"},
	{[]string{"Interview"}, "#8B5CF6"},
	{[]string{"Offer"}, "#10B981"},
}

const defaultNodeColor = "#94A3B8"

var linkColors = []struct {
	match string
	color string
}{
	{"Applied", "rgba(99, 102, 241, 0.4)"},
	{"OA", "rgba(245, 158, 11, 0.4)"},
	{"Interview", "rgba(139, 92, 246, 0.4)"},
}

const defaultLinkColor = "rgba(148, 163, 184, 0.4)"

// NodeColor returns the stage-category color for a node label.
func NodeColor(label string) string {
	for _, nc := range nodeColors {
		for _, m := range nc.match {
			if strings.Contains(label, m) {
				return nc.color
			}
		}
	}
	return defaultNodeColor
}

// LinkColor returns the translucent color for links leaving source.
func LinkColor(source string) string {
	for _, lc := range linkColors {
		if strings.Contains(source, lc.match) {
			return lc.color
		}
	}
	return defaultLinkColor
}

// HoverText is the tooltip shown on a link.
func HoverText(e domain.FlowEdge) string {
	return fmt.Sprintf("%s → %s: %d applications", e.Source, e.Target, e.Count)
}

// Build converts snapshot nodes and edges into the chart payload.
func Build(snap *domain.Snapshot) Figure {
	f := Figure{
		Nodes: NodeData{
			Label: make([]string, len(snap.Nodes)),
			Color: make([]string, len(snap.Nodes)),
		},
		Links: LinkData{
			Source:     make([]int, 0, len(snap.Edges)),
			Target:     make([]int, 0, len(snap.Edges)),
			Value:      make([]int, 0, len(snap.Edges)),
			CustomData: make([]string, 0, len(snap.Edges)),
			Color:      make([]string, 0, len(snap.Edges)),
			Keys:       make([]domain.EdgeKey, 0, len(snap.Edges)),
		},
	}
	for _, n := range snap.Nodes {
		f.Nodes.Label[n.Index] = n.Label
		f.Nodes.Color[n.Index] = NodeColor(n.Label)
	}
	for _, e := range snap.Edges {
		f.Links.Source = append(f.Links.Source, e.SourceIndex)
		f.Links.Target = append(f.Links.Target, e.TargetIndex)
		f.Links.Value = append(f.Links.Value, e.Count)
		f.Links.CustomData = append(f.Links.CustomData, HoverText(e))
		f.Links.Color = append(f.Links.Color, LinkColor(e.Source))
		f.Links.Keys = append(f.Links.Keys, e.Key())
	}
	return f
}
