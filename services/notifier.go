package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"gateworks-backend/config"
	"gateworks-backend/utils"
)

var ErrMissingCredentials = errors.New("provider credentials are not configured")

type FailureKind string

const (
	FailureMissingCredentials FailureKind = "missing_credentials"
	FailureSendFailed         FailureKind = "send_failed"
	FailureTimedOut           FailureKind = "timed_out"
)

// Result is what every dispatch reports; expected failures never surface as
// errors to the caller.
type Result struct {
	Success bool        `json:"success"`
	Kind    FailureKind `json:"kind,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func failure(err error) Result {
	kind := FailureSendFailed
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = FailureTimedOut
	case errors.Is(err, ErrMissingCredentials):
		kind = FailureMissingCredentials
	}
	return Result{Kind: kind, Error: err.Error()}
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody, plainBody string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

type SMTPMailer struct {
	cfg    config.SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		cfg:    cfg,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody, plainBody string) error {
	if m.cfg.Host == "" || m.cfg.Password == "" {
		return utils.Permanent(ErrMissingCredentials)
	}

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.cfg.From, m.cfg.FromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", plainBody)
	msg.AddAlternative("text/html", htmlBody)

	// gomail has no context support; the send keeps running in the
	// background after a timeout but the caller is released.
	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send email: %w", err)
		}
		return nil
	}
}

type TwilioSender struct {
	from   string
	client *twilio.RestClient
}

// NewTwilioSender returns nil when Twilio is not configured.
func NewTwilioSender(cfg config.TwilioConfig) SMSSender {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.PhoneNumber == "" {
		return nil
	}
	return &TwilioSender{
		from: cfg.PhoneNumber,
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.AccountSID,
			Password: cfg.AuthToken,
		}),
	}
}

func (s *TwilioSender) SendSMS(ctx context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	done := make(chan error, 1)
	go func() {
		resp, err := s.client.Api.CreateMessage(params)
		if err == nil && resp.Sid != nil {
			zap.S().Debugw("sms accepted", "to", to, "sid", *resp.Sid)
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}

// Notification is a maintenance reminder for one facility.
type Notification struct {
	To              string
	Phone           string
	ClientName      string
	FacilityName    string
	LastServiceDate time.Time
}

const reminderSubject = "Recordatorio de mantenimiento: {{.FacilityName}}"

const reminderHTML = `<html>
<body>
	<h2>Hola {{.ClientName}},</h2>
	<p>Le recordamos que su instalación <strong>{{.FacilityName}}</strong> requiere mantenimiento.</p>
	<p>Último servicio: {{.LastDate}}</p>
	<p>Responda a este correo o llámenos para agendar una visita.</p>
</body>
</html>`

const reminderText = `Hola {{.ClientName}},

Le recordamos que su instalación {{.FacilityName}} requiere mantenimiento.
Último servicio: {{.LastDate}}

Responda a este correo o llámenos para agendar una visita.
`

const reminderSMS = `{{.ClientName}}: su instalación {{.FacilityName}} requiere mantenimiento (último servicio {{.LastDate}}).`

var (
	subjectTmpl = texttemplate.Must(texttemplate.New("subject").Parse(reminderSubject))
	htmlTmpl    = htmltemplate.Must(htmltemplate.New("html").Parse(reminderHTML))
	textTmpl    = texttemplate.Must(texttemplate.New("text").Parse(reminderText))
	smsTmpl     = texttemplate.Must(texttemplate.New("sms").Parse(reminderSMS))
)

type templateData struct {
	ClientName   string
	FacilityName string
	LastDate     string
}

type renderedReminder struct {
	Subject string
	HTML    string
	Text    string
	SMS     string
}

func render(n Notification) (renderedReminder, error) {
	data := templateData{
		ClientName:   n.ClientName,
		FacilityName: n.FacilityName,
		LastDate:     n.LastServiceDate.Format("02/01/2006"),
	}
	var subject, html, text, sms bytes.Buffer
	if err := subjectTmpl.Execute(&subject, data); err != nil {
		return renderedReminder{}, err
	}
	if err := htmlTmpl.Execute(&html, data); err != nil {
		return renderedReminder{}, err
	}
	if err := textTmpl.Execute(&text, data); err != nil {
		return renderedReminder{}, err
	}
	if err := smsTmpl.Execute(&sms, data); err != nil {
		return renderedReminder{}, err
	}
	return renderedReminder{
		Subject: strings.TrimSpace(subject.String()),
		HTML:    html.String(),
		Text:    text.String(),
		SMS:     sms.String(),
	}, nil
}

// Dispatcher sends maintenance reminders. Each call makes one attempt
// unless a retry policy is configured, and every attempt is bounded by
// timeout.
type Dispatcher struct {
	mailer  Mailer
	sms     SMSSender
	timeout time.Duration
	retry   utils.RetryPolicy
}

func NewDispatcher(mailer Mailer, sms SMSSender, timeout time.Duration, retry utils.RetryPolicy) *Dispatcher {
	return &Dispatcher{mailer: mailer, sms: sms, timeout: timeout, retry: retry}
}

func (d *Dispatcher) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d.timeout)
}

// Notify e-mails n.To.
func (d *Dispatcher) Notify(ctx context.Context, n Notification) Result {
	log := zap.S().With("to", n.To, "facility", n.FacilityName)

	msg, err := render(n)
	if err != nil {
		log.Errorw("failed to render reminder", "error", err)
		return failure(err)
	}

	err = utils.Retry(ctx, d.retry, "send reminder email", func(ctx context.Context) error {
		ctx, cancel := d.withTimeout(ctx)
		defer cancel()
		return d.mailer.Send(ctx, n.To, msg.Subject, msg.HTML, msg.Text)
	})
	if err != nil {
		res := failure(err)
		if res.Kind == FailureMissingCredentials {
			log.Warnw("email provider not configured, reminder skipped")
		} else {
			log.Errorw("failed to send reminder email", "kind", res.Kind, "error", err)
		}
		return res
	}

	log.Infow("reminder email sent")
	return Result{Success: true}
}

// NotifySMS texts n.Phone when an SMS provider is configured.
func (d *Dispatcher) NotifySMS(ctx context.Context, n Notification) Result {
	if d.sms == nil || n.Phone == "" {
		return failure(ErrMissingCredentials)
	}

	msg, err := render(n)
	if err != nil {
		return failure(err)
	}

	err = utils.Retry(ctx, d.retry, "send reminder sms", func(ctx context.Context) error {
		ctx, cancel := d.withTimeout(ctx)
		defer cancel()
		return d.sms.SendSMS(ctx, n.Phone, msg.SMS)
	})
	if err != nil {
		res := failure(err)
		zap.S().Warnw("failed to send reminder sms", "to", n.Phone, "kind", res.Kind, "error", err)
		return res
	}
	return Result{Success: true}
}

// SMSEnabled reports whether an SMS side channel is wired.
func (d *Dispatcher) SMSEnabled() bool { return d.sms != nil }
