package selection

import (
	"context"
	"sync"
	"testing"
	"time"

	"boligmatch-backend/internal/database"
	"boligmatch-backend/internal/domain"
	"boligmatch-backend/internal/notify"
	"boligmatch-backend/internal/pkg/apperr"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type sentMail struct {
	kind notify.Kind
	to   string
}

type recordingSender struct {
	mu    sync.Mutex
	mails []sentMail
}

func (r *recordingSender) Send(ctx context.Context, kind notify.Kind, to notify.Recipient, payload notify.Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mails = append(r.mails, sentMail{kind: kind, to: to.Email})
	return nil
}

func (r *recordingSender) all() []sentMail {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sentMail(nil), r.mails...)
}

type selectionFixture struct {
	svc      *Service
	db       *gorm.DB
	sender   *recordingSender
	caseID   uuid.UUID
	sellerID uuid.UUID
	agentA   *domain.User
	agentB   *domain.User
	offerA   *domain.Offer
	offerB   *domain.Offer
}

// setupSelectionTest builds a case with a completed showing and two
// competing offers, ready for selection.
func setupSelectionTest(t *testing.T) *selectionFixture {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	seller := &domain.User{Fullname: "Mette Holm", Email: "mette@example.com", PasswordHash: "x", Role: domain.RoleSeller}
	agentA := &domain.User{Fullname: "Anders Agent", Email: "anders@maegler.dk", PasswordHash: "x", Role: domain.RoleAgent, AgencyName: "Hjem & Bolig"}
	agentB := &domain.User{Fullname: "Birthe Broker", Email: "birthe@maegler.dk", PasswordHash: "x", Role: domain.RoleAgent, AgencyName: "Nordmaegler"}
	for _, u := range []*domain.User{seller, agentA, agentB} {
		require.NoError(t, db.Create(u).Error)
	}

	now := time.Now().UTC()
	c := &domain.Case{
		CaseNumber: "BS-2025-0001", SellerID: seller.UserID,
		Address: "Strandvejen 12", PostalCode: "2900",
		ExpectedPrice: 3000000, SubmittedAt: &now,
	}
	require.NoError(t, db.Create(c).Error)
	showingAt := now.Add(-48 * time.Hour)
	require.NoError(t, db.Create(&domain.ShowingRecord{
		CaseID: c.CaseID, ScheduledAt: &showingAt, Completed: true, CompletedAt: &now,
	}).Error)

	offerA := &domain.Offer{CaseID: c.CaseID, AgentID: agentA.UserID, ExpectedPrice: 3050000, Commission: 28000, BindingPeriodMonths: 6, Score: 80, SubmittedAt: now}
	offerB := &domain.Offer{CaseID: c.CaseID, AgentID: agentB.UserID, ExpectedPrice: 2950000, Commission: 45000, BindingPeriodMonths: 10, Score: 55, SubmittedAt: now}
	require.NoError(t, db.Create(offerA).Error)
	require.NoError(t, db.Create(offerB).Error)

	sender := &recordingSender{}
	svc := &Service{DB: db, Dispatcher: &notify.Dispatcher{Sender: sender}}
	return &selectionFixture{
		svc: svc, db: db, sender: sender,
		caseID: c.CaseID, sellerID: seller.UserID,
		agentA: agentA, agentB: agentB, offerA: offerA, offerB: offerB,
	}
}

func (f *selectionFixture) sellerActor() domain.Actor {
	return domain.Actor{ID: f.sellerID, Role: domain.RoleSeller}
}

func TestSelectOffer_RecordsSelectionAndNotifiesWinnersAndLosers(t *testing.T) {
	f := setupSelectionTest(t)

	sel, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID, f.sellerActor())
	require.NoError(t, err)
	assert.Equal(t, f.offerA.OfferID, sel.OfferID)
	assert.Equal(t, f.sellerID, sel.SelectedBy)

	f.svc.Dispatcher.Wait()
	mails := f.sender.all()
	require.Len(t, mails, 2)
	byTo := map[string]notify.Kind{}
	for _, m := range mails {
		byTo[m.to] = m.kind
	}
	assert.Equal(t, notify.KindAgentOfferWon, byTo[f.agentA.Email])
	assert.Equal(t, notify.KindAgentOfferLost, byTo[f.agentB.Email])
}

func TestSelectOffer_SecondSelectionRejectedAndFirstPreserved(t *testing.T) {
	f := setupSelectionTest(t)

	first, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID, f.sellerActor())
	require.NoError(t, err)

	_, err = f.svc.SelectOffer(context.Background(), f.caseID, f.offerB.OfferID, f.sellerActor())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAlreadyDone, apperr.KindOf(err))

	var stored domain.Selection
	require.NoError(t, f.db.Where("case_id = ?", f.caseID).First(&stored).Error)
	assert.Equal(t, first.SelectionID, stored.SelectionID)
	assert.Equal(t, f.offerA.OfferID, stored.OfferID)
}

func TestSelectOffer_NotOwner(t *testing.T) {
	f := setupSelectionTest(t)

	_, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID,
		domain.Actor{ID: uuid.New(), Role: domain.RoleSeller})
	require.Error(t, err)
	assert.Equal(t, apperr.KindOwnership, apperr.KindOf(err))
}

func TestSelectOffer_AdminMaySelectOnBehalfOfSeller(t *testing.T) {
	f := setupSelectionTest(t)

	sel, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID,
		domain.Actor{ID: uuid.New(), Role: domain.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, f.offerA.OfferID, sel.OfferID)
}

func TestSelectOffer_OfferFromAnotherCase(t *testing.T) {
	f := setupSelectionTest(t)

	_, err := f.svc.SelectOffer(context.Background(), f.caseID, uuid.New(), f.sellerActor())
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestSelectOffer_WithdrawnCaseIsClosed(t *testing.T) {
	f := setupSelectionTest(t)
	withdrawn := domain.StatusWithdrawn
	require.NoError(t, f.db.Model(&domain.Case{}).Where("case_id = ?", f.caseID).
		Update("manual_status", &withdrawn).Error)

	_, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID, f.sellerActor())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestCompleteCase_RequiresSelection(t *testing.T) {
	f := setupSelectionTest(t)

	_, err := f.svc.CompleteCase(context.Background(), f.caseID, f.sellerActor())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
}

func TestCompleteCase_SetsCompletedAtOnce(t *testing.T) {
	f := setupSelectionTest(t)
	_, err := f.svc.SelectOffer(context.Background(), f.caseID, f.offerA.OfferID, f.sellerActor())
	require.NoError(t, err)

	done, err := f.svc.CompleteCase(context.Background(), f.caseID, f.sellerActor())
	require.NoError(t, err)
	require.NotNil(t, done.CompletedAt)

	_, err = f.svc.CompleteCase(context.Background(), f.caseID, f.sellerActor())
	require.Error(t, err)
	assert.Equal(t, apperr.KindAlreadyDone, apperr.KindOf(err))
}
