// Package status derives a case's lifecycle status from its authoritative
// child collections. No stored status field is trusted on its own: every
// read path recomputes, so concurrent writers (seller, agents, admin)
// converge without a lock.
package status

import "boligmatch-backend/internal/domain"

// Resolve derives the current status of a case. Pure, total and
// deterministic: nil or missing inputs fall back to the earliest
// applicable state, and identical inputs always yield the same result.
//
// Priority order, first match wins:
//  1. terminal manual override (withdrawn/archived)
//  2. selection recorded (completed if the case carries a completion mark)
//  3. at least one offer
//  4. showing completed
//  5. showing scheduled
//  6. case submitted
//  7. draft
func Resolve(c *domain.Case, showing *domain.ShowingRecord, offers []domain.Offer, sel *domain.Selection) domain.CaseStatus {
	if c == nil {
		return domain.StatusDraft
	}
	if c.ManualStatus != nil {
		if ms := *c.ManualStatus; ms == domain.StatusWithdrawn || ms == domain.StatusArchived {
			return ms
		}
	}
	if sel != nil {
		if c.CompletedAt != nil {
			return domain.StatusCompleted
		}
		return domain.StatusBrokerSelected
	}
	if len(offers) > 0 {
		return domain.StatusOffersReceived
	}
	if showing != nil {
		if showing.Completed {
			return domain.StatusShowingCompleted
		}
		if showing.ScheduledAt != nil {
			return domain.StatusShowingScheduled
		}
	}
	if c.SubmittedAt != nil {
		return domain.StatusActive
	}
	return domain.StatusDraft
}

// OpenForOffers reports whether agents may submit or edit offers in the
// given status: the showing must be over and no broker selected yet.
func OpenForOffers(s domain.CaseStatus) bool {
	return s == domain.StatusShowingCompleted || s == domain.StatusOffersReceived
}

// OpenForAgents reports whether the case is visible to browsing agents
// (submitted, not yet selected, not terminal).
func OpenForAgents(s domain.CaseStatus) bool {
	switch s {
	case domain.StatusActive, domain.StatusShowingScheduled, domain.StatusShowingCompleted, domain.StatusOffersReceived:
		return true
	}
	return false
}
