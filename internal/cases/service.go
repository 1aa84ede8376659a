package cases

import (
	"context"
	"fmt"
	"time"

	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/notify"
	"boligmatch-backend/internal/pkg/apperr"
	"boligmatch-backend/internal/status"
	"boligmatch-backend/internal/valuation"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB         *gorm.DB
	Dispatcher *notify.Dispatcher
	Estimator  valuation.Estimator
}

type CreateCaseInput struct {
	SellerID         uuid.UUID
	Address          string
	PostalCode       string
	Municipality     string
	PropertyType     string
	SizeM2           float64
	RoomCount        int
	ConstructionYear int
	EnergyLabel      string
	ExpectedPrice    float64
	SellerNotes      string
	Priorities       string
}

// CreateCase persists a new draft case. The valuation lookup is
// best-effort: a miss leaves ReferenceValuation nil.
func (s *Service) CreateCase(ctx context.Context, in CreateCaseInput) (*domain.Case, error) {
	var ref *float64
	if s.Estimator != nil {
		est, err := s.Estimator.Estimate(ctx, in.Address, in.PostalCode)
		if err != nil {
			log.Warn().Err(err).Str("address", in.Address).Msg("Valuation lookup failed")
		} else {
			ref = est
		}
	}

	c := &domain.Case{
		SellerID:           in.SellerID,
		Address:            in.Address,
		PostalCode:         in.PostalCode,
		Municipality:       in.Municipality,
		PropertyType:       in.PropertyType,
		SizeM2:             in.SizeM2,
		RoomCount:          in.RoomCount,
		ConstructionYear:   in.ConstructionYear,
		EnergyLabel:        in.EnergyLabel,
		ExpectedPrice:      in.ExpectedPrice,
		SellerNotes:        in.SellerNotes,
		Priorities:         in.Priorities,
		ReferenceValuation: ref,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&domain.Case{}).Count(&count).Error; err != nil {
			return err
		}
		c.CaseNumber = fmt.Sprintf("BS-%d-%04d", time.Now().Year(), count+1)
		return tx.Create(c).Error
	})
	if err != nil {
		return nil, fmt.Errorf("Failed to create case: %v", err)
	}
	return c, nil
}

type UpdateCaseInput struct {
	Municipality     *string
	PropertyType     *string
	SizeM2           *float64
	RoomCount        *int
	ConstructionYear *int
	EnergyLabel      *string
	ExpectedPrice    *float64
	SellerNotes      *string
	Priorities       *string
}

// UpdateCase lets the seller edit property attributes while the case is
// still draft or active.
func (s *Service) UpdateCase(ctx context.Context, caseID uuid.UUID, actor domain.Actor, in UpdateCaseInput) (*domain.Case, error) {
	b, err := LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	st := b.Status()
	if st != domain.StatusDraft && st != domain.StatusActive {
		return nil, apperr.Precondition("Case can no longer be edited")
	}

	updates := map[string]interface{}{}
	if in.Municipality != nil {
		updates["municipality"] = *in.Municipality
	}
	if in.PropertyType != nil {
		updates["property_type"] = *in.PropertyType
	}
	if in.SizeM2 != nil {
		updates["size_m2"] = *in.SizeM2
	}
	if in.RoomCount != nil {
		updates["room_count"] = *in.RoomCount
	}
	if in.ConstructionYear != nil {
		updates["construction_year"] = *in.ConstructionYear
	}
	if in.EnergyLabel != nil {
		updates["energy_label"] = *in.EnergyLabel
	}
	if in.ExpectedPrice != nil {
		updates["expected_price"] = *in.ExpectedPrice
	}
	if in.SellerNotes != nil {
		updates["seller_notes"] = *in.SellerNotes
	}
	if in.Priorities != nil {
		updates["priorities"] = *in.Priorities
	}
	if len(updates) > 0 {
		if err := s.DB.WithContext(ctx).Model(&domain.Case{}).Where("case_id = ?", caseID).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	var out domain.Case
	if err := s.DB.WithContext(ctx).Where("case_id = ?", caseID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitCase moves a draft case to active and fans the new case out to
// every agent on the platform. The fan-out is fire-and-forget.
func (s *Service) SubmitCase(ctx context.Context, caseID uuid.UUID, actor domain.Actor) (*domain.Case, error) {
	b, err := LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	if b.Status() != domain.StatusDraft {
		return nil, apperr.Precondition("Case has already been submitted")
	}

	now := time.Now().UTC()
	if err := s.DB.WithContext(ctx).Model(&domain.Case{}).Where("case_id = ?", caseID).Update("submitted_at", now).Error; err != nil {
		return nil, err
	}
	b.Case.SubmittedAt = &now

	// Notify agents after the transition has committed.
	var agents []domain.User
	if err := s.DB.WithContext(ctx).Where("role = ?", domain.RoleAgent).Find(&agents).Error; err != nil {
		log.Error().Err(err).Msg("Agent fan-out query failed")
	} else {
		payload := notify.Payload{"case_number": b.Case.CaseNumber, "address": b.Case.Address}
		for _, a := range agents {
			s.Dispatcher.Go(notify.KindAgentNewCase, notify.Recipient{Email: a.Email, Name: a.Fullname}, payload)
		}
	}
	return &b.Case, nil
}

// WithdrawCase sets the terminal withdrawn override. Agents who had offers
// on the case are told it is closed.
func (s *Service) WithdrawCase(ctx context.Context, caseID uuid.UUID, actor domain.Actor) (*domain.Case, error) {
	b, err := LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	st := b.Status()
	if st.Terminal() {
		return nil, apperr.AlreadyDone("Case is already closed")
	}
	if st == domain.StatusBrokerSelected {
		return nil, apperr.Precondition("A broker has already been selected")
	}

	withdrawn := domain.StatusWithdrawn
	if err := s.DB.WithContext(ctx).Model(&domain.Case{}).Where("case_id = ?", caseID).Update("manual_status", withdrawn).Error; err != nil {
		return nil, err
	}
	b.Case.ManualStatus = &withdrawn

	payload := notify.Payload{"case_number": b.Case.CaseNumber, "address": b.Case.Address}
	if seller := s.lookupUser(ctx, b.Case.SellerID); seller != nil {
		s.Dispatcher.Go(notify.KindSellerCaseWithdrawn, notify.Recipient{Email: seller.Email, Name: seller.Fullname}, payload)
	}
	for _, o := range b.Offers {
		if agent := s.lookupUser(ctx, o.AgentID); agent != nil {
			s.Dispatcher.Go(notify.KindAgentCaseClosed, notify.Recipient{Email: agent.Email, Name: agent.Fullname}, payload)
		}
	}
	return &b.Case, nil
}

// CaseView is a case with its derived status and child collections.
type CaseView struct {
	domain.Case
	Status        domain.CaseStatus          `json:"status"`
	Showing       *domain.ShowingRecord      `json:"showing,omitempty"`
	Registrations []domain.AgentRegistration `json:"registrations,omitempty"`
	OfferCount    int                        `json:"offer_count"`
}

// GetCase returns a single case with its resolved status.
func (s *Service) GetCase(ctx context.Context, caseID uuid.UUID) (*CaseView, error) {
	b, err := LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	return viewOf(b), nil
}

// ListSellerCases returns all cases owned by the seller, newest first.
func (s *Service) ListSellerCases(ctx context.Context, sellerID uuid.UUID) ([]CaseView, error) {
	var cs []domain.Case
	if err := s.DB.WithContext(ctx).Where("seller_id = ?", sellerID).Order("created_at DESC").Find(&cs).Error; err != nil {
		return nil, err
	}
	return s.views(ctx, cs)
}

// BrowseOpenCases returns every case an agent may act on: submitted, not
// yet decided, not withdrawn or archived.
func (s *Service) BrowseOpenCases(ctx context.Context) ([]CaseView, error) {
	var cs []domain.Case
	if err := s.DB.WithContext(ctx).Where("submitted_at IS NOT NULL").Order("submitted_at DESC").Find(&cs).Error; err != nil {
		return nil, err
	}
	views, err := s.views(ctx, cs)
	if err != nil {
		return nil, err
	}
	open := make([]CaseView, 0, len(views))
	for _, v := range views {
		if status.OpenForAgents(v.Status) {
			open = append(open, v)
		}
	}
	return open, nil
}

func (s *Service) views(ctx context.Context, cs []domain.Case) ([]CaseView, error) {
	out := make([]CaseView, 0, len(cs))
	for _, c := range cs {
		b, err := LoadBundle(ctx, s.DB, c.CaseID)
		if err != nil {
			return nil, err
		}
		out = append(out, *viewOf(b))
	}
	return out, nil
}

func viewOf(b *Bundle) *CaseView {
	return &CaseView{
		Case:          b.Case,
		Status:        b.Status(),
		Showing:       b.Showing,
		Registrations: b.Registrations,
		OfferCount:    len(b.Offers),
	}
}

func (s *Service) lookupUser(ctx context.Context, id uuid.UUID) *domain.User {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		log.Warn().Err(err).Str("user_id", id.String()).Msg("Notification recipient lookup failed")
		return nil
	}
	return &u
}
