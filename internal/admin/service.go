package admin

import (
	"context"

	"boligmatch-backend/internal/cases"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB *gorm.DB
}

// ForceStatus writes a terminal status override for a case. It goes
// through the same manual_status field the resolver checks first, so every
// reader observes the override on the next recompute. Passing an empty
// status clears a previous override.
func (s *Service) ForceStatus(ctx context.Context, caseID uuid.UUID, st domain.CaseStatus, adminID uuid.UUID) (*domain.Case, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}

	var value interface{}
	switch st {
	case "":
		value = nil
	case domain.StatusWithdrawn, domain.StatusArchived:
		value = st
	default:
		return nil, apperr.Precondition("Only withdrawn or archived can be forced")
	}

	if err := s.DB.WithContext(ctx).Model(&domain.Case{}).Where("case_id = ?", caseID).Update("manual_status", value).Error; err != nil {
		return nil, err
	}
	log.Info().Str("case_id", caseID.String()).Str("admin_id", adminID.String()).Str("status", string(st)).Msg("Manual status override")
	if st == "" {
		b.Case.ManualStatus = nil
	} else {
		b.Case.ManualStatus = &st
	}
	return &b.Case, nil
}

// ListCases returns every case with its derived status (admin oversight).
func (s *Service) ListCases(ctx context.Context) ([]cases.CaseView, error) {
	var cs []domain.Case
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&cs).Error; err != nil {
		return nil, err
	}
	out := make([]cases.CaseView, 0, len(cs))
	for _, c := range cs {
		b, err := cases.LoadBundle(ctx, s.DB, c.CaseID)
		if err != nil {
			return nil, err
		}
		v, err := s.viewOf(b)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, nil
}

func (s *Service) viewOf(b *cases.Bundle) (*cases.CaseView, error) {
	return &cases.CaseView{
		Case:          b.Case,
		Status:        b.Status(),
		Showing:       b.Showing,
		Registrations: b.Registrations,
		OfferCount:    len(b.Offers),
	}, nil
}

// FindUser resolves a user for impersonation.
func (s *Service) FindUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("User not found")
		}
		return nil, err
	}
	return &u, nil
}
