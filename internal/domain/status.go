package domain

// CaseStatus is the lifecycle status of a case. It is derived on read from
// the case's children (showing, offers, selection); only terminal overrides
// (withdrawn, archived) are ever stored directly.
type CaseStatus string

const (
	StatusDraft            CaseStatus = "draft"
	StatusActive           CaseStatus = "active"
	StatusShowingScheduled CaseStatus = "showing_scheduled"
	StatusShowingCompleted CaseStatus = "showing_completed"
	StatusOffersReceived   CaseStatus = "offers_received"
	StatusBrokerSelected   CaseStatus = "broker_selected"
	StatusCompleted        CaseStatus = "completed"
	StatusWithdrawn        CaseStatus = "withdrawn"
	StatusArchived         CaseStatus = "archived"
)

// statusOrder positions the non-terminal statuses on the lifecycle axis.
// Terminal overrides sit outside the ordering.
var statusOrder = map[CaseStatus]int{
	StatusDraft:            0,
	StatusActive:           1,
	StatusShowingScheduled: 2,
	StatusShowingCompleted: 3,
	StatusOffersReceived:   4,
	StatusBrokerSelected:   5,
	StatusCompleted:        6,
}

// Valid reports whether s is a known status value.
func (s CaseStatus) Valid() bool {
	if s.Terminal() {
		return true
	}
	_, ok := statusOrder[s]
	return ok
}

// Terminal reports whether s ends the lifecycle (no further transitions).
func (s CaseStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusWithdrawn || s == StatusArchived
}

// AtLeast reports whether s is at or past other on the lifecycle axis.
// Withdrawn/archived are not ordered and always return false.
func (s CaseStatus) AtLeast(other CaseStatus) bool {
	a, ok1 := statusOrder[s]
	b, ok2 := statusOrder[other]
	return ok1 && ok2 && a >= b
}
