package diagram

import "visualjobs.local/internal/domain"

// Placeholder is shown until a link with applications behind it is clicked.
const Placeholder = "Click a flow in the diagram to see the applications behind it."

// DetailRow is one application listed in the detail panel.
type DetailRow struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	AppliedDate string `json:"applied_date"`
	Link        string `json:"link"`
}

// Details is the detail panel content. Placeholder is set when there is
// nothing to list.
type Details struct {
	Key         *domain.EdgeKey `json:"key,omitempty"`
	Title       string          `json:"title,omitempty"`
	Rows        []DetailRow     `json:"rows"`
	Placeholder string          `json:"placeholder,omitempty"`
}

// LookupDetails resolves a clicked link. A nil key means nothing has been
// clicked yet. Unknown keys give the placeholder rather than an error.
func LookupDetails(index domain.DetailIndex, key *domain.EdgeKey) Details {
	if key == nil {
		return Details{Rows: []DetailRow{}, Placeholder: Placeholder}
	}
	records, ok := index[*key]
	if !ok || len(records) == 0 {
		return Details{Rows: []DetailRow{}, Placeholder: Placeholder}
	}

	rows := make([]DetailRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, DetailRow{
			Company:     r.Company,
			Position:    r.Position,
			AppliedDate: r.AppliedDate,
			Link:        r.Link,
		})
	}
	k := *key
	return Details{
		Key:   &k,
		Title: HoverText(domain.FlowEdge{Source: k.Source, Target: k.Target, Count: len(rows)}),
		Rows:  rows,
	}
}
