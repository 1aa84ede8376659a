package offers

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"boligmatch-backend/internal/cases"
	"boligmatch-backend/internal/config"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/notify"
	"boligmatch-backend/internal/pkg/apperr"
	"boligmatch-backend/internal/status"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Service struct {
	DB         *gorm.DB
	Dispatcher *notify.Dispatcher
	Scoring    config.ScoringConfig
}

type OfferDraft struct {
	ExpectedPrice       float64
	Commission          float64 // absolute DKK, never a percentage
	BindingPeriodMonths int
	MarketingChannels   []string
	MarketingStrategy   string
}

// SubmitResult carries the stored offer plus an advisory warning when the
// commission looks like a mistyped percentage.
type SubmitResult struct {
	Offer             *domain.Offer
	CommissionWarning string
}

// SubmitOffer records or replaces the agent's offer on a case. One offer
// per (case, agent): a re-submission overwrites values but keeps the
// original submission time so tie-breaks preserve first-come order. The
// score is recomputed on every write, never cached stale.
func (s *Service) SubmitOffer(ctx context.Context, caseID, agentID uuid.UUID, draft OfferDraft) (*SubmitResult, error) {
	if draft.ExpectedPrice <= 0 {
		return nil, apperr.Precondition("Offer price must be positive")
	}
	if draft.Commission < 0 {
		return nil, apperr.Precondition("Commission cannot be negative")
	}
	if draft.BindingPeriodMonths <= 0 {
		return nil, apperr.Precondition("Binding period must be at least one month")
	}

	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if !status.OpenForOffers(b.Status()) {
		return nil, apperr.Precondition("Case is not open for offers")
	}

	channels, err := marshalChannels(draft.MarketingChannels)
	if err != nil {
		return nil, err
	}

	offer := &domain.Offer{
		CaseID:              caseID,
		AgentID:             agentID,
		ExpectedPrice:       draft.ExpectedPrice,
		Commission:          draft.Commission,
		BindingPeriodMonths: draft.BindingPeriodMonths,
		MarketingChannels:   channels,
		MarketingStrategy:   draft.MarketingStrategy,
		SubmittedAt:         time.Now().UTC(),
	}
	offer.Score = Score(offer, &b.Case, s.Scoring)
	offer.PriceDeviation = PriceDeviation(offer, &b.Case)

	var existing domain.Offer
	err = s.DB.WithContext(ctx).Where("case_id = ? AND agent_id = ?", caseID, agentID).First(&existing).Error
	switch {
	case err == nil:
		// Edit-in-place: keep OfferID and original SubmittedAt.
		if err := s.DB.WithContext(ctx).Model(&domain.Offer{}).
			Where("offer_id = ?", existing.OfferID).
			Updates(map[string]interface{}{
				"expected_price":        offer.ExpectedPrice,
				"commission":            offer.Commission,
				"binding_period_months": offer.BindingPeriodMonths,
				"marketing_channels":    offer.MarketingChannels,
				"marketing_strategy":    offer.MarketingStrategy,
				"score":                 offer.Score,
				"price_deviation":       offer.PriceDeviation,
			}).Error; err != nil {
			return nil, err
		}
		offer.OfferID = existing.OfferID
		offer.SubmittedAt = existing.SubmittedAt
	case err == gorm.ErrRecordNotFound:
		if err := s.DB.WithContext(ctx).Create(offer).Error; err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	s.notifySeller(ctx, b)

	result := &SubmitResult{Offer: offer}
	if s.Scoring.CommissionWarnFloor > 0 && draft.Commission < draft.ExpectedPrice*s.Scoring.CommissionWarnFloor {
		result.CommissionWarning = "Commission looks unusually low. It must be an absolute DKK amount, not a percentage"
	}
	return result, nil
}

// ListOffers returns the offers on a case, ranked by score (ties broken by
// earlier submission). Sellers and admins see all offers; an agent sees
// only their own. Listing as the owning seller marks the offers viewed.
func (s *Service) ListOffers(ctx context.Context, caseID uuid.UUID, actor domain.Actor) ([]domain.Offer, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}

	isOwner := b.Case.SellerID == actor.ID
	if !isOwner && !actor.IsAdmin() && actor.Role != domain.RoleAgent {
		return nil, apperr.Ownership("Not allowed to view offers on this case")
	}

	out := b.Offers
	if !isOwner && !actor.IsAdmin() {
		own := make([]domain.Offer, 0, 1)
		for _, o := range out {
			if o.AgentID == actor.ID {
				own = append(own, o)
			}
		}
		out = own
	}

	Rank(out)

	if isOwner && len(out) > 0 {
		now := time.Now().UTC()
		if err := s.DB.WithContext(ctx).Model(&domain.Offer{}).
			Where("case_id = ? AND seller_viewed_at IS NULL", caseID).
			Update("seller_viewed_at", now).Error; err != nil {
			return nil, err
		}
		for i := range out {
			if out[i].SellerViewedAt == nil {
				out[i].SellerViewedAt = &now
			}
		}
	}
	return out, nil
}

// Rank sorts offers best-first: score descending, then earlier SubmittedAt.
func Rank(offers []domain.Offer) {
	sort.SliceStable(offers, func(i, j int) bool {
		if offers[i].Score != offers[j].Score {
			return offers[i].Score > offers[j].Score
		}
		return offers[i].SubmittedAt.Before(offers[j].SubmittedAt)
	})
}

func (s *Service) notifySeller(ctx context.Context, b *cases.Bundle) {
	var seller domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", b.Case.SellerID).First(&seller).Error; err != nil {
		log.Warn().Err(err).Str("case_id", b.Case.CaseID.String()).Msg("Seller lookup for offer notification failed")
		return
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&domain.Offer{}).Where("case_id = ?", b.Case.CaseID).Count(&count).Error; err != nil {
		count = int64(len(b.Offers))
	}
	s.Dispatcher.Go(notify.KindSellerOffersReceived,
		notify.Recipient{Email: seller.Email, Name: seller.Fullname},
		notify.Payload{"case_number": b.Case.CaseNumber, "offer_count": int(count)})
}

func marshalChannels(ids []string) (datatypes.JSON, error) {
	if ids == nil {
		ids = []string{}
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return nil, fmt.Errorf("Failed to encode marketing channels: %v", err)
	}
	return datatypes.JSON(b), nil
}
