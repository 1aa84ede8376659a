package selection

import (
	"context"
	"time"

	"boligmatch-backend/internal/cases"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/notify"
	"boligmatch-backend/internal/pkg/apperr"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type Service struct {
	DB         *gorm.DB
	Dispatcher *notify.Dispatcher
}

// SelectOffer is the seller's one-shot, irreversible choice of winning
// offer. The duplicate check runs against the durable Selection row inside
// the transaction, not an in-memory flag, so a concurrent second call loses.
// Won/lost notifications go out after the commit and never roll it back.
func (s *Service) SelectOffer(ctx context.Context, caseID, offerID uuid.UUID, actor domain.Actor) (*domain.Selection, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	if st := b.Status(); st.Terminal() {
		return nil, apperr.Precondition("Case is closed")
	}

	var winner *domain.Offer
	for i := range b.Offers {
		if b.Offers[i].OfferID == offerID {
			winner = &b.Offers[i]
			break
		}
	}
	if winner == nil {
		return nil, apperr.NotFound("Offer not found on this case")
	}

	sel := &domain.Selection{CaseID: caseID, OfferID: offerID, SelectedBy: actor.ID}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing domain.Selection
		err := tx.Where("case_id = ?", caseID).First(&existing).Error
		if err == nil {
			return apperr.AlreadyDone("A broker has already been selected for this case")
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		return tx.Create(sel).Error
	})
	if err != nil {
		return nil, err
	}

	payload := notify.Payload{"case_number": b.Case.CaseNumber, "address": b.Case.Address}
	for _, o := range b.Offers {
		agent := s.lookupUser(ctx, o.AgentID)
		if agent == nil {
			continue
		}
		kind := notify.KindAgentOfferLost
		if o.OfferID == offerID {
			kind = notify.KindAgentOfferWon
		}
		s.Dispatcher.Go(kind, notify.Recipient{Email: agent.Email, Name: agent.Fullname}, payload)
	}
	return sel, nil
}

// CompleteCase marks a decided case as fully completed (listing agreement
// signed). Terminal.
func (s *Service) CompleteCase(ctx context.Context, caseID uuid.UUID, actor domain.Actor) (*domain.Case, error) {
	b, err := cases.LoadBundle(ctx, s.DB, caseID)
	if err != nil {
		return nil, err
	}
	if b.Case.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, apperr.Ownership("Not the case owner")
	}
	switch b.Status() {
	case domain.StatusBrokerSelected:
		// ok
	case domain.StatusCompleted:
		return nil, apperr.AlreadyDone("Case is already completed")
	default:
		return nil, apperr.Precondition("No broker has been selected yet")
	}

	now := time.Now().UTC()
	if err := s.DB.WithContext(ctx).Model(&domain.Case{}).Where("case_id = ?", caseID).Update("completed_at", now).Error; err != nil {
		return nil, err
	}
	b.Case.CompletedAt = &now
	return &b.Case, nil
}

func (s *Service) lookupUser(ctx context.Context, id uuid.UUID) *domain.User {
	var u domain.User
	if err := s.DB.WithContext(ctx).Where("user_id = ?", id).First(&u).Error; err != nil {
		log.Warn().Err(err).Str("user_id", id.String()).Msg("Notification recipient lookup failed")
		return nil
	}
	return &u
}
