package status

import (
	"testing"
	"time"

	"boligmatch-backend/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func timePtr(t time.Time) *time.Time { return &t }

func statusPtr(s domain.CaseStatus) *domain.CaseStatus { return &s }

func TestResolve_NilCase(t *testing.T) {
	assert.Equal(t, domain.StatusDraft, Resolve(nil, nil, nil, nil))
}

func TestResolve_Draft(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New()}
	assert.Equal(t, domain.StatusDraft, Resolve(c, nil, nil, nil))
}

func TestResolve_Active(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	assert.Equal(t, domain.StatusActive, Resolve(c, nil, nil, nil))
}

func TestResolve_ShowingScheduled(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	s := &domain.ShowingRecord{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now().Add(48 * time.Hour))}
	assert.Equal(t, domain.StatusShowingScheduled, Resolve(c, s, nil, nil))
}

func TestResolve_ShowingWithoutDateStaysActive(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	s := &domain.ShowingRecord{CaseID: c.CaseID}
	assert.Equal(t, domain.StatusActive, Resolve(c, s, nil, nil))
}

func TestResolve_ShowingCompleted(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	s := &domain.ShowingRecord{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now()), Completed: true}
	assert.Equal(t, domain.StatusShowingCompleted, Resolve(c, s, nil, nil))
}

func TestResolve_OffersReceived(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	s := &domain.ShowingRecord{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now()), Completed: true}
	offers := []domain.Offer{{OfferID: uuid.New(), CaseID: c.CaseID}}
	assert.Equal(t, domain.StatusOffersReceived, Resolve(c, s, offers, nil))
}

func TestResolve_BrokerSelected(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	offers := []domain.Offer{{OfferID: uuid.New(), CaseID: c.CaseID}}
	sel := &domain.Selection{CaseID: c.CaseID, OfferID: offers[0].OfferID}
	assert.Equal(t, domain.StatusBrokerSelected, Resolve(c, nil, offers, sel))
}

func TestResolve_Completed(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now()), CompletedAt: timePtr(time.Now())}
	sel := &domain.Selection{CaseID: c.CaseID, OfferID: uuid.New()}
	assert.Equal(t, domain.StatusCompleted, Resolve(c, nil, nil, sel))
}

func TestResolve_TerminalOverrideWinsOverEverything(t *testing.T) {
	c := &domain.Case{
		CaseID:       uuid.New(),
		SubmittedAt:  timePtr(time.Now()),
		ManualStatus: statusPtr(domain.StatusArchived),
	}
	s := &domain.ShowingRecord{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now()), Completed: true}
	offers := []domain.Offer{{OfferID: uuid.New(), CaseID: c.CaseID}}
	sel := &domain.Selection{CaseID: c.CaseID, OfferID: offers[0].OfferID}
	assert.Equal(t, domain.StatusArchived, Resolve(c, s, offers, sel))
}

func TestResolve_NonTerminalManualStatusIgnored(t *testing.T) {
	// Only withdrawn/archived may override; anything else is not trusted.
	c := &domain.Case{CaseID: uuid.New(), ManualStatus: statusPtr(domain.StatusOffersReceived)}
	assert.Equal(t, domain.StatusDraft, Resolve(c, nil, nil, nil))
}

func TestResolve_Deterministic(t *testing.T) {
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Unix(1700000000, 0))}
	s := &domain.ShowingRecord{CaseID: c.CaseID, ScheduledAt: timePtr(time.Unix(1700100000, 0)), Completed: true}
	offers := []domain.Offer{{OfferID: uuid.New(), CaseID: c.CaseID}}
	first := Resolve(c, s, offers, nil)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, Resolve(c, s, offers, nil))
	}
}

func TestResolve_SelectionDominatesLaterWrites(t *testing.T) {
	// Once a selection exists the resolver never reports a
	// pre-broker_selected status, whatever happens to showing/offers.
	c := &domain.Case{CaseID: uuid.New(), SubmittedAt: timePtr(time.Now())}
	sel := &domain.Selection{CaseID: c.CaseID, OfferID: uuid.New()}

	showings := []*domain.ShowingRecord{
		nil,
		{CaseID: c.CaseID},
		{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now())},
		{CaseID: c.CaseID, ScheduledAt: timePtr(time.Now()), Completed: true},
	}
	offerSets := [][]domain.Offer{
		nil,
		{},
		{{OfferID: uuid.New(), CaseID: c.CaseID}},
		{{OfferID: uuid.New()}, {OfferID: uuid.New()}},
	}
	for _, sh := range showings {
		for _, os := range offerSets {
			got := Resolve(c, sh, os, sel)
			assert.True(t, got == domain.StatusBrokerSelected || got == domain.StatusCompleted,
				"selection must dominate, got %s", got)
		}
	}
}

func TestOpenForOffers(t *testing.T) {
	assert.False(t, OpenForOffers(domain.StatusDraft))
	assert.False(t, OpenForOffers(domain.StatusActive))
	assert.False(t, OpenForOffers(domain.StatusShowingScheduled))
	assert.True(t, OpenForOffers(domain.StatusShowingCompleted))
	assert.True(t, OpenForOffers(domain.StatusOffersReceived))
	assert.False(t, OpenForOffers(domain.StatusBrokerSelected))
	assert.False(t, OpenForOffers(domain.StatusWithdrawn))
}

func TestOpenForAgents(t *testing.T) {
	assert.False(t, OpenForAgents(domain.StatusDraft))
	assert.True(t, OpenForAgents(domain.StatusActive))
	assert.True(t, OpenForAgents(domain.StatusOffersReceived))
	assert.False(t, OpenForAgents(domain.StatusBrokerSelected))
	assert.False(t, OpenForAgents(domain.StatusArchived))
}
