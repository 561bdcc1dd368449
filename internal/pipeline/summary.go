package pipeline

import "visualjobs.local/internal/domain"

// Rate returns n/d as a percentage, or 0 when d is 0.
func Rate(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return float64(n) / float64(d) * 100
}

// Summarize computes the headline rates over all records.
func Summarize(records []domain.ApplicationRecord) domain.Summary {
	var responded, withOA, withInterview, offers, rejected, accepted int
	for _, r := range records {
		if r.FollowUp != domain.StatusNotStarted {
			responded++
		}
		if r.HasOA {
			withOA++
		}
		if r.HasInterview {
			withInterview++
		}
		switch r.Status {
		case domain.StatusOffer:
			offers++
			if r.Accepted {
				accepted++
			}
		case domain.StatusRejection:
			rejected++
		}
	}

	total := len(records)
	return domain.Summary{
		Total:          total,
		Offers:         offers,
		ResponseRate:   Rate(responded, total),
		OARate:         Rate(withOA, total),
		InterviewRate:  Rate(withInterview, total),
		OfferRate:      Rate(offers, total),
		RejectionRate:  Rate(rejected, total),
		AcceptanceRate: Rate(accepted, offers),
	}
}

// Distribution counts records per CurrentStage, in pipeline order, skipping
// stages nobody is in.
func Distribution(records []domain.ApplicationRecord) []domain.StageCount {
	counts := make(map[domain.Stage]int, len(domain.Stages))
	for _, r := range records {
		counts[r.CurrentStage]++
	}
	var out []domain.StageCount
	for _, st := range domain.Stages {
		if n := counts[st]; n > 0 {
			out = append(out, domain.StageCount{Stage: st, Count: n})
		}
	}
	return out
}
