package api

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"go.uber.org/zap"

	"visualjobs.local/internal/diagram"
	"visualjobs.local/internal/domain"
)

//go:embed templates/dashboard.html
var templateFS embed.FS

var dashboardTmpl = template.Must(template.ParseFS(templateFS, "templates/dashboard.html"))

type metricCard struct {
	Value string
	Label string
	Color string
}

type dashboardData struct {
	Cards       []metricCard
	Figure      template.JS
	Placeholder string
	Mode        domain.AggregationMode
	FetchedAt   string
	Empty       bool
}

func summaryCards(s domain.Summary) []metricCard {
	pct := func(v float64) string { return fmt.Sprintf("%.0f%%", v) }
	return []metricCard{
		{Value: fmt.Sprintf("%d", s.Total), Label: "Applications", Color: "#6366F1"},
		{Value: pct(s.ResponseRate), Label: "Response Rate", Color: "#8B5CF6"},
		{Value: pct(s.OARate), Label: "OA Rate", Color: "#F59E0B"},
		{Value: pct(s.InterviewRate), Label: "Interview Rate", Color: "#EC4899"},
		{Value: pct(s.OfferRate), Label: "Offer Rate", Color: "#10B981"},
		{Value: pct(s.RejectionRate), Label: "Rejection Rate", Color: "#EF4444"},
		{Value: pct(s.AcceptanceRate), Label: "Acceptance Rate", Color: "#0EA5E9"},
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	fig, err := json.Marshal(diagram.Build(s.snap))
	if err != nil {
		s.log.Error("encode diagram", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Cards:       summaryCards(s.snap.Summary),
		Figure:      template.JS(fig),
		Placeholder: diagram.Placeholder,
		Mode:        s.snap.Mode,
		FetchedAt:   s.snap.FetchedAt.Format("2006-01-02 15:04 MST"),
		Empty:       len(s.snap.Edges) == 0,
	}

	var buf bytes.Buffer
	if err := dashboardTmpl.Execute(&buf, data); err != nil {
		s.log.Error("render dashboard", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
