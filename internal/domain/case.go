package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case is a seller's property listing undergoing broker selection.
// Status is not stored here except as ManualStatus (terminal override);
// the current status is always derived from the case's children.
type Case struct {
	CaseID             uuid.UUID   `gorm:"column:case_id;type:uuid;primaryKey" json:"case_id"`
	CaseNumber         string      `gorm:"column:case_number;not null;uniqueIndex" json:"case_number"`
	SellerID           uuid.UUID   `gorm:"column:seller_id;type:uuid;not null;index" json:"seller_id"`
	Address            string      `gorm:"column:address;not null" json:"address"`
	PostalCode         string      `gorm:"column:postal_code;not null" json:"postal_code"`
	Municipality       string      `gorm:"column:municipality" json:"municipality"`
	PropertyType       string      `gorm:"column:property_type" json:"property_type"`
	SizeM2             float64     `gorm:"column:size_m2" json:"size_m2"`
	RoomCount          int         `gorm:"column:room_count" json:"room_count"`
	ConstructionYear   int         `gorm:"column:construction_year" json:"construction_year"`
	EnergyLabel        string      `gorm:"column:energy_label" json:"energy_label"`
	ExpectedPrice      float64     `gorm:"column:expected_price;type:decimal(14,2)" json:"expected_price"`
	SellerNotes        string      `gorm:"column:seller_notes" json:"seller_notes"`
	Priorities         string      `gorm:"column:priorities" json:"priorities"`
	ReferenceValuation *float64    `gorm:"column:reference_valuation;type:decimal(14,2)" json:"reference_valuation"`
	ManualStatus       *CaseStatus `gorm:"column:manual_status;type:varchar(20)" json:"manual_status,omitempty"`
	SubmittedAt        *time.Time  `gorm:"column:submitted_at" json:"submitted_at"`
	CompletedAt        *time.Time  `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt          time.Time   `json:"createdAt"`
	UpdatedAt          time.Time   `json:"updatedAt"`
}

func (Case) TableName() string {
	return "Cases"
}

// BeforeCreate sets case_id if not already set (DBs without default uuid).
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.CaseID == uuid.Nil {
		c.CaseID = uuid.New()
	}
	return nil
}
