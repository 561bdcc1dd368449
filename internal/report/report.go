// Package report prints a snapshot to a terminal or as machine-readable
// JSON/YAML for the `report` command.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"visualjobs.local/internal/diagram"
	"visualjobs.local/internal/domain"
)

const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#6366F1"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	valueStyle = lipgloss.NewStyle().Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#94A3B8")).
			Padding(0, 1)
)

// Render writes snap in the given format.
func Render(w io.Writer, snap *domain.Snapshot, format string) error {
	switch strings.ToLower(format) {
	case "", FormatText:
		_, err := io.WriteString(w, Text(snap))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

// Text renders the summary cards, the stage distribution and the flows.
func Text(snap *domain.Snapshot) string {
	s := snap.Summary
	cards := []string{
		card("Applications", fmt.Sprintf("%d", s.Total)),
		card("Response Rate", pct(s.ResponseRate)),
		card("OA Rate", pct(s.OARate)),
		card("Interview Rate", pct(s.InterviewRate)),
		card("Offer Rate", pct(s.OfferRate)),
		card("Rejection Rate", pct(s.RejectionRate)),
		card("Acceptance Rate", pct(s.AcceptanceRate)),
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("VisualJobs"))
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Stages"))
	b.WriteString("\n")
	for _, sc := range snap.Distribution {
		fmt.Fprintf(&b, "  %-28s %s\n", labelStyle.Render(string(sc.Stage)), valueStyle.Render(fmt.Sprintf("%d", sc.Count)))
	}

	b.WriteString("\n")
	b.WriteString(titleStyle.Render(fmt.Sprintf("Flows (%s)", snap.Mode)))
	b.WriteString("\n")
	if len(snap.Edges) == 0 {
		b.WriteString(labelStyle.Render("  no applications yet"))
		b.WriteString("\n")
	}
	for _, e := range snap.Edges {
		b.WriteString("  ")
		b.WriteString(diagram.HoverText(e))
		b.WriteString("\n")
	}
	return b.String()
}

func card(label, value string) string {
	return boxStyle.Render(valueStyle.Render(value) + "\n" + labelStyle.Render(label))
}

func pct(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
