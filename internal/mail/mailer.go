package mail

import (
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
)

// Mailer delivers the account emails over SMTP. Delivery is best-effort from
// the caller's point of view: workflows log send failures and move on.
type Mailer struct {
	client      *gomail.Client
	from        string
	frontendURL string
}

func New(host string, port int, username string, password string, from string, frontendURL string) (*Mailer, error) {
	opts := []gomail.Option{
		gomail.WithPort(port),
		gomail.WithTLSPolicy(gomail.TLSOpportunistic),
	}
	if username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(username),
			gomail.WithPassword(password),
		)
	}

	client, err := gomail.NewClient(host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return &Mailer{client: client, from: from, frontendURL: frontendURL}, nil
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, email string, token string) error {
	url := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(`<p>Please click the link below to verify your email:</p>
<a href="%s">%s</a>`, url, url)

	return m.send(ctx, email, "Email Verification", body)
}

func (m *Mailer) SendPasswordResetEmail(ctx context.Context, email string, token string) error {
	url := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
	body := fmt.Sprintf(`<p>Please click the link below to reset your password:</p>
<a href="%s">%s</a>
<p>This link will expire in 1 hour.</p>`, url, url)

	return m.send(ctx, email, "Password Reset", body)
}

func (m *Mailer) send(ctx context.Context, to string, subject string, bodyHTML string) error {
	msg := gomail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, bodyHTML)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail to %s: %w", to, err)
	}
	return nil
}
