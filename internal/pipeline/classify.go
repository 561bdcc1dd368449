package pipeline

import "visualjobs.local/internal/domain"

// Classify derives the current stage from the primary status and the
// OA/interview date flags. Rules are evaluated top to bottom; the first
// match wins, so a rejection after an interview is never reported as a
// completed interview.
func Classify(status string, hasOA, hasInterview bool) domain.Stage {
	switch {
	case status == domain.StatusOffer:
		return domain.StageOfferReceived
	case status == domain.StatusRejection && hasInterview:
		return domain.StageRejectedPostInterview
	case status == domain.StatusRejection && hasOA:
		return domain.StageRejectedPostOA
	case status == domain.StatusRejection:
		return domain.StageRejectedInitial
	case status == domain.StatusWithdraw:
		return domain.StageWithdrawn
	case hasInterview:
		return domain.StageInterviewCompleted
	case hasOA:
		return domain.StageOACompleted
	case status == domain.StatusInProgress:
		return domain.StageInReview
	default:
		return domain.StageApplied
	}
}

// ClassifyAll returns a copy of records with CurrentStage filled in.
func ClassifyAll(records []domain.ApplicationRecord) []domain.ApplicationRecord {
	out := make([]domain.ApplicationRecord, len(records))
	for i, r := range records {
		r.CurrentStage = Classify(r.Status, r.HasOA, r.HasInterview)
		out[i] = r
	}
	return out
}
