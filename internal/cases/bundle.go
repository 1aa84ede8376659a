package cases

import (
	"context"

	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/pkg/apperr"
	"boligmatch-backend/internal/status"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bundle is a case together with the child collections its status is
// derived from. Every read path loads the bundle and recomputes status
// instead of trusting a stored field.
type Bundle struct {
	Case          domain.Case
	Showing       *domain.ShowingRecord
	Registrations []domain.AgentRegistration
	Offers        []domain.Offer
	Selection     *domain.Selection
}

// Status derives the current lifecycle status of the bundle.
func (b *Bundle) Status() domain.CaseStatus {
	return status.Resolve(&b.Case, b.Showing, b.Offers, b.Selection)
}

// LoadBundle fetches a case and all of its children in one go.
func LoadBundle(ctx context.Context, db *gorm.DB, caseID uuid.UUID) (*Bundle, error) {
	var b Bundle
	if err := db.WithContext(ctx).Where("case_id = ?", caseID).First(&b.Case).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("Case not found")
		}
		return nil, err
	}

	var showing domain.ShowingRecord
	err := db.WithContext(ctx).Where("case_id = ?", caseID).First(&showing).Error
	if err == nil {
		b.Showing = &showing
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	if err := db.WithContext(ctx).Where("case_id = ?", caseID).Order("created_at ASC").Find(&b.Registrations).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Where("case_id = ?", caseID).Order("submitted_at ASC").Find(&b.Offers).Error; err != nil {
		return nil, err
	}

	var sel domain.Selection
	err = db.WithContext(ctx).Where("case_id = ?", caseID).First(&sel).Error
	if err == nil {
		b.Selection = &sel
	} else if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	return &b, nil
}
