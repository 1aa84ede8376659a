package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Offer is an agent's bid on a case. One row per (case, agent);
// re-submission overwrites values but preserves the original SubmittedAt
// so tie-breaks keep the first-come order.
// Commission is an absolute DKK amount, never a percentage.
type Offer struct {
	OfferID             uuid.UUID      `gorm:"column:offer_id;type:uuid;primaryKey" json:"offer_id"`
	CaseID              uuid.UUID      `gorm:"column:case_id;type:uuid;not null;uniqueIndex:idx_offer_case_agent" json:"case_id"`
	AgentID             uuid.UUID      `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_offer_case_agent" json:"agent_id"`
	ExpectedPrice       float64        `gorm:"column:expected_price;type:decimal(14,2);not null" json:"expected_price"`
	Commission          float64        `gorm:"column:commission;type:decimal(14,2);not null" json:"commission"`
	BindingPeriodMonths int            `gorm:"column:binding_period_months;not null" json:"binding_period_months"`
	MarketingChannels   datatypes.JSON `gorm:"column:marketing_channels" json:"marketing_channels"`
	MarketingStrategy   string         `gorm:"column:marketing_strategy" json:"marketing_strategy"`
	Score               float64        `gorm:"column:score;type:decimal(6,2)" json:"score"`
	PriceDeviation      float64        `gorm:"column:price_deviation;type:decimal(8,4)" json:"price_deviation"`
	SellerViewedAt      *time.Time     `gorm:"column:seller_viewed_at" json:"seller_viewed_at"`
	SubmittedAt         time.Time      `gorm:"column:submitted_at;not null" json:"submitted_at"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

func (Offer) TableName() string {
	return "Offers"
}

func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.OfferID == uuid.Nil {
		o.OfferID = uuid.New()
	}
	return nil
}
