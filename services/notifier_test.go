package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gateworks-backend/config"
	"gateworks-backend/utils"
)

type mailerFunc func(ctx context.Context, to, subject, htmlBody, plainBody string) error

func (f mailerFunc) Send(ctx context.Context, to, subject, htmlBody, plainBody string) error {
	return f(ctx, to, subject, htmlBody, plainBody)
}

func sampleNotification() Notification {
	return Notification{
		To:              "ana@example.com",
		ClientName:      "Ana <Pérez>",
		FacilityName:    "Portón norte",
		LastServiceDate: day(2024, 1, 15),
	}
}

func TestNotifySendsRenderedReminder(t *testing.T) {
	var gotTo, gotSubject, gotHTML, gotText string
	mailer := mailerFunc(func(ctx context.Context, to, subject, htmlBody, plainBody string) error {
		gotTo, gotSubject, gotHTML, gotText = to, subject, htmlBody, plainBody
		return nil
	})
	d := NewDispatcher(mailer, nil, time.Second, utils.NoRetry())

	res := d.Notify(context.Background(), sampleNotification())

	require.True(t, res.Success)
	assert.Equal(t, "ana@example.com", gotTo)
	assert.Equal(t, "Recordatorio de mantenimiento: Portón norte", gotSubject)
	assert.Contains(t, gotHTML, "Ana &lt;Pérez&gt;")
	assert.Contains(t, gotHTML, "15/01/2024")
	assert.Contains(t, gotText, "Ana <Pérez>")
}

func TestNotifyReportsMissingCredentials(t *testing.T) {
	d := NewDispatcher(NewSMTPMailer(config.SMTPConfig{}), nil, time.Second, utils.ExponentialRetry(3, time.Millisecond))

	res := d.Notify(context.Background(), sampleNotification())

	assert.False(t, res.Success)
	assert.Equal(t, FailureMissingCredentials, res.Kind)
}

func TestNotifyReportsProviderFailure(t *testing.T) {
	mailer := mailerFunc(func(ctx context.Context, to, subject, htmlBody, plainBody string) error {
		return errors.New("550 mailbox unavailable")
	})
	d := NewDispatcher(mailer, nil, time.Second, utils.NoRetry())

	res := d.Notify(context.Background(), sampleNotification())

	assert.False(t, res.Success)
	assert.Equal(t, FailureSendFailed, res.Kind)
	assert.Contains(t, res.Error, "mailbox unavailable")
}

func TestNotifyTimesOut(t *testing.T) {
	mailer := mailerFunc(func(ctx context.Context, to, subject, htmlBody, plainBody string) error {
		<-ctx.Done()
		return ctx.Err()
	})
	d := NewDispatcher(mailer, nil, 20*time.Millisecond, utils.NoRetry())

	res := d.Notify(context.Background(), sampleNotification())

	assert.False(t, res.Success)
	assert.Equal(t, FailureTimedOut, res.Kind)
}

func TestNotifyRetriesWhenEnabled(t *testing.T) {
	calls := 0
	mailer := mailerFunc(func(ctx context.Context, to, subject, htmlBody, plainBody string) error {
		calls++
		if calls < 3 {
			return errors.New("421 try again later")
		}
		return nil
	})
	d := NewDispatcher(mailer, nil, time.Second, utils.ExponentialRetry(3, time.Millisecond))

	res := d.Notify(context.Background(), sampleNotification())

	assert.True(t, res.Success)
	assert.Equal(t, 3, calls)
}

func TestNotifySMSWithoutProvider(t *testing.T) {
	d := NewDispatcher(mailerFunc(nil), NewTwilioSender(config.TwilioConfig{}), time.Second, utils.NoRetry())
	n := sampleNotification()
	n.Phone = "+525512345678"

	res := d.NotifySMS(context.Background(), n)

	assert.False(t, d.SMSEnabled())
	assert.Equal(t, FailureMissingCredentials, res.Kind)
}

type smsFunc func(ctx context.Context, to, body string) error

func (f smsFunc) SendSMS(ctx context.Context, to, body string) error { return f(ctx, to, body) }

func TestNotifySMSSendsBody(t *testing.T) {
	var gotTo, gotBody string
	sms := smsFunc(func(ctx context.Context, to, body string) error {
		gotTo, gotBody = to, body
		return nil
	})
	d := NewDispatcher(mailerFunc(nil), sms, time.Second, utils.NoRetry())
	n := sampleNotification()
	n.Phone = "+525512345678"

	res := d.NotifySMS(context.Background(), n)

	assert.True(t, res.Success)
	assert.Equal(t, "+525512345678", gotTo)
	assert.Contains(t, gotBody, "Portón norte")
}
