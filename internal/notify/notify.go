// Package notify sends lifecycle notifications to sellers and agents.
// Dispatch is fire-and-forget: the case transition that triggers a
// notification commits first and is never rolled back if the send fails.
package notify

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind identifies a notification event.
type Kind string

const (
	KindAgentNewCase         Kind = "agent_new_case"
	KindAgentCaseClosed      Kind = "agent_case_closed"
	KindSellerOffersReceived Kind = "seller_offers_received"
	KindSellerCaseWithdrawn  Kind = "seller_case_withdrawn"
	KindAgentOfferWon        Kind = "agent_offer_won"
	KindAgentOfferLost       Kind = "agent_offer_lost"
)

// Recipient is the addressee of a notification.
type Recipient struct {
	Email string
	Name  string
}

// Payload carries the template variables for a notification.
type Payload map[string]interface{}

// Sender delivers a single notification. Return value is advisory only;
// callers must never propagate a send failure into case state.
type Sender interface {
	Send(ctx context.Context, kind Kind, to Recipient, payload Payload) error
}

// Dispatcher fans out notifications asynchronously. Nil Sender = no-op.
type Dispatcher struct {
	Sender  Sender
	Timeout time.Duration

	wg sync.WaitGroup
}

func (d *Dispatcher) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return 15 * time.Second
}

// Go sends one notification in the background. Failures are logged and
// swallowed; a stalled mail sink must not block a sale.
func (d *Dispatcher) Go(kind Kind, to Recipient, payload Payload) {
	if d == nil || d.Sender == nil || to.Email == "" {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout())
		defer cancel()
		if err := d.Sender.Send(ctx, kind, to, payload); err != nil {
			log.Error().Err(err).Str("kind", string(kind)).Str("to", to.Email).Msg("Notification send failed")
		}
	}()
}

// Wait blocks until all in-flight sends finish (tests, shutdown).
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
