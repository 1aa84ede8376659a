package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Selection is the seller's final, irreversible choice of winning offer.
// At most one per case; a second selection attempt is rejected, never
// overwritten.
type Selection struct {
	SelectionID uuid.UUID `gorm:"column:selection_id;type:uuid;primaryKey" json:"selection_id"`
	CaseID      uuid.UUID `gorm:"column:case_id;type:uuid;not null;uniqueIndex" json:"case_id"`
	OfferID     uuid.UUID `gorm:"column:offer_id;type:uuid;not null" json:"offer_id"`
	SelectedBy  uuid.UUID `gorm:"column:selected_by;type:uuid;not null" json:"selected_by"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (Selection) TableName() string {
	return "Selections"
}

func (s *Selection) BeforeCreate(tx *gorm.DB) error {
	if s.SelectionID == uuid.Nil {
		s.SelectionID = uuid.New()
	}
	return nil
}
