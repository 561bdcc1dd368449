package notion

import (
	"strings"

	gnt "github.com/dstotijn/go-notion"

	"visualjobs.local/internal/config"
	"visualjobs.local/internal/domain"
)

// Schema says which Notion properties feed which record fields.
type Schema struct {
	Version string
	Names   config.PropertyNames
}

// DefaultSchema is the v1 tracker layout with the stock property names.
func DefaultSchema() Schema {
	return Schema{
		Version: config.SchemaV1,
		Names: config.PropertyNames{
			Company:       "Company",
			Position:      "Position",
			AppliedDate:   "Applied Date",
			Link:          "Link",
			FollowUp:      "Follow-up Status",
			Stage:         "Stage",
			OADate:        "OA Date",
			InterviewDate: "Interview Date",
			Accepted:      "Accepted",
		},
	}
}

// SchemaFromConfig builds the schema for a loaded configuration.
func SchemaFromConfig(cfg *config.Config) Schema {
	return Schema{Version: cfg.Notion.SchemaVersion, Names: cfg.Properties}
}

// Normalize maps one database page onto the flat record layout. Absent or
// empty properties take their defaults; CurrentStage is left for the
// classifier.
func (s Schema) Normalize(page gnt.Page) domain.ApplicationRecord {
	props, _ := page.Properties.(gnt.DatabasePageProperties)

	rec := domain.ApplicationRecord{
		ID:           page.ID,
		Company:      textValue(props, s.Names.Company),
		Position:     textValue(props, s.Names.Position),
		AppliedDate:  textValue(props, s.Names.AppliedDate),
		Link:         textValue(props, s.Names.Link),
		Stage:        textValue(props, s.Names.Stage),
		FollowUp:     orDefault(textValue(props, s.Names.FollowUp), domain.StatusNotStarted),
		HasOA:        hasValue(props, s.Names.OADate),
		HasInterview: hasValue(props, s.Names.InterviewDate),
		Accepted:     boolValue(props, s.Names.Accepted),
	}

	rec.Status = rec.FollowUp
	if s.Version == config.SchemaV2 {
		rec.Status = orDefault(rec.Stage, domain.StatusNotStarted)
	}
	return rec
}

// NormalizeAll normalizes pages in order.
func (s Schema) NormalizeAll(pages []gnt.Page) []domain.ApplicationRecord {
	out := make([]domain.ApplicationRecord, 0, len(pages))
	for _, p := range pages {
		out = append(out, s.Normalize(p))
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func plainText(rt []gnt.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		b.WriteString(r.PlainText)
	}
	return strings.TrimSpace(b.String())
}

// textValue reads whatever textual value the property carries.
func textValue(props gnt.DatabasePageProperties, name string) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	switch {
	case len(prop.Title) > 0:
		return plainText(prop.Title)
	case len(prop.RichText) > 0:
		return plainText(prop.RichText)
	case prop.URL != nil:
		return strings.TrimSpace(*prop.URL)
	case prop.Status != nil:
		return prop.Status.Name
	case prop.Select != nil:
		return prop.Select.Name
	case prop.Date != nil:
		return prop.Date.Start.Time.Format("2006-01-02")
	case prop.Email != nil:
		return *prop.Email
	}
	return ""
}

// hasValue reports whether a date-like property is filled in.
func hasValue(props gnt.DatabasePageProperties, name string) bool {
	prop, ok := props[name]
	if !ok {
		return false
	}
	if prop.Date != nil {
		return true
	}
	if prop.Checkbox != nil {
		return *prop.Checkbox
	}
	return textValue(props, name) != ""
}

func boolValue(props gnt.DatabasePageProperties, name string) bool {
	prop, ok := props[name]
	if !ok || prop.Checkbox == nil {
		return false
	}
	return *prop.Checkbox
}
