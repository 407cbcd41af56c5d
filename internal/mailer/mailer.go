// Package mailer delivers ticket confirmation emails with the QR credential
// attached, over an authenticated SMTP submission session.
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	mail "github.com/wneessen/go-mail"
)

type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration // caps the whole dial+send so a dead relay cannot hold the request slot
	Currency string        // display symbol in the email body, e.g. "₹"
}

// Ticket carries everything needed for one confirmation email.
type Ticket struct {
	To          string
	Name        string
	TicketID    string
	Item        string
	Amount      float64
	PurchasedAt time.Time
	QRPNG       []byte
}

var bodyTmpl = template.Must(template.New("ticket").Parse(`
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
	<h2 style="color: #2c3e50;">Thank You for Your Purchase!</h2>
	<p>Dear {{.Name}},</p>
	<p>Your ticket has been confirmed. Here are your details:</p>

	<div style="background-color: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
		<p><strong>Ticket ID:</strong> {{.TicketID}}</p>
		<p><strong>Item:</strong> {{.Item}}</p>
		<p><strong>Amount Paid:</strong> {{.Currency}}{{.Amount}}</p>
		<p><strong>Date:</strong> {{.Date}}</p>
	</div>

	<p>Please find your QR code ticket attached to this email. Show this QR code at the venue for entry.</p>

	<p style="margin-top: 30px;">Best regards,<br>The Team</p>
</body>
</html>
`))

type Mailer struct {
	cfg    Config
	client *mail.Client
}

func New(cfg Config) (*Mailer, error) {
	if cfg.Host == "" || cfg.From == "" {
		return nil, fmt.Errorf("mailer: host and from address are required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	if cfg.Currency == "" {
		cfg.Currency = "₹"
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("mailer: init client: %w", err)
	}

	return &Mailer{cfg: cfg, client: client}, nil
}

// SendTicket sends one confirmation email with the QR PNG attached as
// ticket_<id>.png. Single attempt; the caller treats failure as a reported
// outcome, not a reason to retry.
func (m *Mailer) SendTicket(ctx context.Context, t Ticket) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("from address: %w", err)
	}
	if err := msg.To(t.To); err != nil {
		return fmt.Errorf("to address: %w", err)
	}
	msg.Subject("Your Ticket Confirmation - " + t.TicketID)

	var body bytes.Buffer
	err := bodyTmpl.Execute(&body, map[string]any{
		"Name":     t.Name,
		"TicketID": t.TicketID,
		"Item":     t.Item,
		"Amount":   fmt.Sprintf("%.2f", t.Amount),
		"Currency": m.cfg.Currency,
		"Date":     t.PurchasedAt.Format("January 02, 2006 at 3:04 PM"),
	})
	if err != nil {
		return fmt.Errorf("render body: %w", err)
	}
	msg.SetBodyString(mail.TypeTextHTML, body.String())

	if err := msg.AttachReader("ticket_"+t.TicketID+".png", bytes.NewReader(t.QRPNG)); err != nil {
		return fmt.Errorf("attach qr: %w", err)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
