// internal/email/mailer/signup_confirmation.go
package mailer

import (
	"context"

	"github.com/dangerclosesec/dealroom/internal/email"
)

// SignupConfirmationData contains data for the signup_confirmation template
type SignupConfirmationData struct {
	Portal           string
	ConfirmationLink string
}

// SignupMailer sends the email that carries the signup verification link.
type SignupMailer struct {
	service  *email.Service
	fromName string
}

func NewSignupMailer(s *email.Service, fromName string) *SignupMailer {
	return &SignupMailer{service: s, fromName: fromName}
}

// SendSignupConfirmation emails the confirmation link for a new account.
// portal is "admin" or empty for the investor portal.
func (m *SignupMailer) SendSignupConfirmation(ctx context.Context, to, portal, link string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return m.service.SendEmail(email.EmailData{
		To:           to,
		FromName:     m.fromName,
		Subject:      "Confirm your email address",
		TemplateName: "signup_confirmation",
		TemplateData: SignupConfirmationData{
			Portal:           portal,
			ConfirmationLink: link,
		},
	})
}
