// Package notify sends the intake emails: the operator's new-intake alert
// and the prospect's analysis result. Delivery is best effort and never
// decides the outcome of the request that triggered it.
package notify

import (
	"context"

	"github.com/pkg/errors"
	"github.com/resend/resend-go/v2"
)

type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ResendMailer delivers through the Resend API.
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	_, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	return errors.Wrap(err, "mail.resend")
}
