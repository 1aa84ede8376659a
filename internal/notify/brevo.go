package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const brevoAPI = "https://api.brevo.com/v3/smtp/email"

// BrevoSendRequest matches Brevo API v3 send transactional email body.
type BrevoSendRequest struct {
	Sender      BrevoAddress   `json:"sender"`
	To          []BrevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

type BrevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// BrevoSender delivers notifications via the Brevo transactional email API.
// Empty APIKey = no-op, so local dev and tests need no key.
type BrevoSender struct {
	APIKey   string
	MailFrom string
	Client   *http.Client
}

func (s *BrevoSender) from() string {
	if s.MailFrom != "" {
		return s.MailFrom
	}
	return "noreply@boligmatch.dk"
}

// Send implements Sender.
func (s *BrevoSender) Send(ctx context.Context, kind Kind, to Recipient, payload Payload) error {
	if s.APIKey == "" {
		return nil
	}
	subject, content := render(kind, to, payload)
	body := BrevoSendRequest{
		Sender:      BrevoAddress{Email: s.from(), Name: "Boligmatch"},
		To:          []BrevoAddress{{Email: to.Email, Name: to.Name}},
		Subject:     subject,
		HTMLContent: emailLayout(content),
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoAPI, bytes.NewReader(bodyBytes))
	if err != nil {
		return err
	}
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if s.Client == nil {
		s.Client = &http.Client{Timeout: 15 * time.Second}
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: status %d", resp.StatusCode)
	}
	return nil
}

// render picks subject and body content per notification kind.
func render(kind Kind, to Recipient, p Payload) (string, string) {
	name := to.Name
	if name == "" {
		name = "there"
	}
	caseNumber, _ := p["case_number"].(string)
	address, _ := p["address"].(string)
	switch kind {
	case KindAgentNewCase:
		return "New case open for bids: " + address,
			fmt.Sprintf(`<h1>New case %s</h1><p>Hi %s,</p><p>A seller has just listed <strong>%s</strong>. Register for the showing to place your bid.</p>`, caseNumber, name, address)
	case KindAgentCaseClosed:
		return "Case closed: " + caseNumber,
			fmt.Sprintf(`<h1>Case %s closed</h1><p>Hi %s,</p><p>The case at %s has been closed by the seller.</p>`, caseNumber, name, address)
	case KindSellerOffersReceived:
		count, _ := p["offer_count"].(int)
		return fmt.Sprintf("You have %d offer(s) on case %s", count, caseNumber),
			fmt.Sprintf(`<h1>New offer activity</h1><p>Hi %s,</p><p>Your case %s now has %d offer(s). Log in to compare them.</p>`, name, caseNumber, count)
	case KindSellerCaseWithdrawn:
		return "Your case has been withdrawn: " + caseNumber,
			fmt.Sprintf(`<h1>Case withdrawn</h1><p>Hi %s,</p><p>Your case %s (%s) has been withdrawn as requested.</p>`, name, caseNumber, address)
	case KindAgentOfferWon:
		return "Congratulations, your offer was selected",
			fmt.Sprintf(`<h1>You won case %s</h1><p>Hi %s,</p><p>The seller selected your offer for %s. They will be in touch to finalize the listing agreement.</p>`, caseNumber, name, address)
	case KindAgentOfferLost:
		return "Case decided: " + caseNumber,
			fmt.Sprintf(`<h1>Case %s decided</h1><p>Hi %s,</p><p>The seller of %s has chosen another agent. Thank you for bidding.</p>`, caseNumber, name, address)
	}
	return "Boligmatch update", fmt.Sprintf(`<p>Hi %s,</p><p>There is new activity on one of your cases.</p>`, name)
}

// emailLayout wraps content in the shared HTML shell.
func emailLayout(contentHTML string) string {
	year := time.Now().Year()
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Boligmatch</title>
  <style>
    body { margin: 0; padding: 0; width: 100%% !important; background-color: #F3F4F6; }
    body, td, p, a { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; color: #1F2937; }
    .content-body p { margin: 0 0 24px 0; font-size: 16px; line-height: 1.6; color: #374151; }
    .content-body h1 { color: #111827; font-size: 24px; margin: 0 0 20px 0; font-weight: 700; }
    .content-body a { color: #0F6E5D; font-weight: 600; text-decoration: none; }
    .footer-text { color: #6B7280; font-size: 13px; line-height: 1.5; }
  </style>
</head>
<body style="margin: 0; padding: 0; background-color: #F3F4F6;">
  <table role="presentation" width="100%%" border="0" cellspacing="0" cellpadding="0">
    <tr>
      <td align="center" style="padding: 40px 0;">
        <table role="presentation" width="600" border="0" cellspacing="0" cellpadding="0" style="width: 600px; background-color: #FFFFFF; border-radius: 8px;">
          <tr>
            <td class="content-body" style="padding: 48px;">%s</td>
          </tr>
          <tr>
            <td align="center" style="padding: 0 48px 40px 48px;">
              <p class="footer-text">&copy; %d Boligmatch. You receive this email because you have an account on boligmatch.dk.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`, contentHTML, year)
}
