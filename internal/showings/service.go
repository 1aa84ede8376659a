package showings

import (
	"context"
	"time"

	"boligmatch-backend/internal/cases"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ScheduleShowing attaches (or moves) the single showing of a case.
// Rescheduling is allowed until the showing is completed.
func (s *Service) ScheduleShowing(ctx context.Context, caseID uuid.UUID, at time.Time, actor domain.Actor) (*domain.ShowingRecord, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	switch b.Status() {
	case domain.StatusActive, domain.StatusShowingScheduled:
		// ok
	case domain.StatusDraft:
		return nil, apperr.Precondition("Case has not been submitted yet")
	default:
		return nil, apperr.Precondition("Showing can no longer be scheduled")
	}

	if b.Showing == nil {
		rec := &domain.ShowingRecord{CaseID: caseID, ScheduledAt: &at}
		if err := s.DB.WithContext(ctx).Create(rec).Error; err != nil {
			return nil, err
		}
		return rec, nil
	}
	if err := s.DB.WithContext(ctx).Model(&domain.ShowingRecord{}).
		Where("showing_id = ?", b.Showing.ShowingID).
		Update("scheduled_at", at).Error; err != nil {
		return nil, err
	}
	b.Showing.ScheduledAt = &at
	return b.Showing, nil
}

type RegisterAgentInput struct {
	AgentID    uuid.UUID
	AgentName  string
	AgencyName string
	Outcome    domain.RegistrationOutcome
}

// RegisterAgent upserts one roster entry keyed by (case, agent).
// Re-registration with a different decision overwrites, never duplicates.
func (s *Service) RegisterAgent(ctx context.Context, caseID uuid.UUID, in RegisterAgentInput) (*domain.AgentRegistration, error) {
	if in.Outcome != domain.OutcomeRegistered && in.Outcome != domain.OutcomeDeclined {
		return nil, apperr.Precondition("Outcome must be registered or declined")
	}
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	switch b.Status() {
	case domain.StatusActive, domain.StatusShowingScheduled:
		// ok
	default:
		return nil, apperr.Precondition("Showing registration is closed")
	}

	var existing domain.AgentRegistration
	err = s.DB.WithContext(ctx).Where("case_id = ? AND agent_id = ?", caseID, in.AgentID).First(&existing).Error
	if err == nil {
		if err := s.DB.WithContext(ctx).Model(&domain.AgentRegistration{}).
			Where("registration_id = ?", existing.RegistrationID).
			Updates(map[string]interface{}{
				"outcome":     in.Outcome,
				"agent_name":  in.AgentName,
				"agency_name": in.AgencyName,
			}).Error; err != nil {
			return nil, err
		}
		existing.Outcome = in.Outcome
		existing.AgentName = in.AgentName
		existing.AgencyName = in.AgencyName
		return &existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	reg := &domain.AgentRegistration{
		CaseID:     caseID,
		AgentID:    in.AgentID,
		AgentName:  in.AgentName,
		AgencyName: in.AgencyName,
		Outcome:    in.Outcome,
	}
	if err := s.DB.WithContext(ctx).Create(reg).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

// CompleteShowing marks the showing as held. One-way: a completed showing
// cannot be reopened.
func (s *Service) CompleteShowing(ctx context.Context, caseID uuid.UUID, actor domain.Actor) (*domain.ShowingRecord, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	if b.Showing == nil || b.Showing.ScheduledAt == nil {
		return nil, apperr.Precondition("No showing has been scheduled")
	}
	if b.Showing.Completed {
		return nil, apperr.AlreadyDone("Showing is already completed")
	}
	if st := b.Status(); st.Terminal() {
		return nil, apperr.Precondition("Case is closed")
	}

	now := time.Now().UTC()
	if err := s.DB.WithContext(ctx).Model(&domain.ShowingRecord{}).
		Where("showing_id = ?", b.Showing.ShowingID).
		Updates(map[string]interface{}{"completed": true, "completed_at": now}).Error; err != nil {
		return nil, err
	}
	b.Showing.Completed = true
	b.Showing.CompletedAt = &now
	return b.Showing, nil
}
