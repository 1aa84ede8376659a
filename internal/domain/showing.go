package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegistrationOutcome is an agent's answer to a showing invitation.
type RegistrationOutcome string

const (
	OutcomeRegistered RegistrationOutcome = "registered"
	OutcomeDeclined   RegistrationOutcome = "declined"
)

// ShowingRecord is the single open-house event for a case (1:1).
type ShowingRecord struct {
	ShowingID   uuid.UUID  `gorm:"column:showing_id;type:uuid;primaryKey" json:"showing_id"`
	CaseID      uuid.UUID  `gorm:"column:case_id;type:uuid;not null;uniqueIndex" json:"case_id"`
	ScheduledAt *time.Time `gorm:"column:scheduled_at" json:"scheduled_at"`
	Completed   bool       `gorm:"column:completed;not null;default:false" json:"completed"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (ShowingRecord) TableName() string {
	return "Showings"
}

func (s *ShowingRecord) BeforeCreate(tx *gorm.DB) error {
	if s.ShowingID == uuid.Nil {
		s.ShowingID = uuid.New()
	}
	return nil
}

// AgentRegistration is one agent's roster entry for a case's showing.
// At most one row per (case, agent); re-registration overwrites the outcome.
type AgentRegistration struct {
	RegistrationID uuid.UUID           `gorm:"column:registration_id;type:uuid;primaryKey" json:"registration_id"`
	CaseID         uuid.UUID           `gorm:"column:case_id;type:uuid;not null;uniqueIndex:idx_case_agent" json:"case_id"`
	AgentID        uuid.UUID           `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_case_agent" json:"agent_id"`
	AgentName      string              `gorm:"column:agent_name" json:"agent_name"`
	AgencyName     string              `gorm:"column:agency_name" json:"agency_name"`
	Outcome        RegistrationOutcome `gorm:"column:outcome;type:varchar(20);not null" json:"outcome"`
	CreatedAt      time.Time           `json:"createdAt"`
	UpdatedAt      time.Time           `json:"updatedAt"`
}

func (AgentRegistration) TableName() string {
	return "AgentRegistrations"
}

func (r *AgentRegistration) BeforeCreate(tx *gorm.DB) error {
	if r.RegistrationID == uuid.Nil {
		r.RegistrationID = uuid.New()
	}
	return nil
}
