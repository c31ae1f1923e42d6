// services/reminder_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gateworks-backend/models"
	"gateworks-backend/utils"
)

type Notifier interface {
	Notify(ctx context.Context, n Notification) Result
	NotifySMS(ctx context.Context, n Notification) Result
}

type Recipient struct {
	Facility string `json:"facility"`
	Client   string `json:"client"`
}

type ReminderSummary struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Total   int         `json:"total"`
	Sent    int         `json:"sent"`
	SentTo  []Recipient `json:"sent_to"`
}

type ReminderService struct {
	db       *gorm.DB
	notifier Notifier
	loc      *time.Location
	now      func() time.Time
}

func NewReminderService(db *gorm.DB, notifier Notifier, loc *time.Location) *ReminderService {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderService{
		db:       db,
		notifier: notifier,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock replaces the time source; used by tests and the CLI --date flag.
func (s *ReminderService) WithClock(now func() time.Time) *ReminderService {
	s.now = now
	return s
}

// StartScheduler runs the reminder pass on schedule (a standard five-field cron)
// in the service's time zone.
func (s *ReminderService) StartScheduler(schedule string) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(s.loc))
	_, err := c.AddFunc(schedule, func() {
		if _, err := s.SendDueReminders(context.Background()); err != nil {
			zap.S().Errorw("scheduled reminder run failed", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid reminder schedule %q: %w", schedule, err)
	}

	c.Start()
	zap.S().Infow("reminder scheduler started", "schedule", schedule, "timezone", s.loc.String())
	return c, nil
}

// SendDueReminders scans every facility that has a client, e-mails the
// clients whose facilities are due today and reports who was reached.
// A failed send never stops the scan; only failing to load the facilities
// aborts the run.
func (s *ReminderService) SendDueReminders(ctx context.Context) (*ReminderSummary, error) {
	log := zap.S()
	today := s.now().In(s.loc)
	log.Infow("starting maintenance reminder run", "date", today.Format(utils.DateLayout))

	var facilities []models.Facility
	if err := s.db.WithContext(ctx).InnerJoins("Client").Find(&facilities).Error; err != nil {
		log.Errorw("failed to fetch facilities", "error", err)
		return nil, fmt.Errorf("failed to fetch facilities: %w", err)
	}

	summary := &ReminderSummary{
		Success: true,
		Total:   len(facilities),
		SentTo:  make([]Recipient, 0),
	}

	for i := range facilities {
		f := &facilities[i]
		if f.Client == nil {
			continue
		}
		email := f.Client.ContactEmail()
		if email == "" {
			continue
		}
		if !IsDueToday(f, today) {
			continue
		}
		if f.LastNotifiedOn != nil && utils.SameDay(*f.LastNotifiedOn, today) {
			log.Debugw("reminder already sent today", "facility", f.Name)
			continue
		}

		n := Notification{
			To:              email,
			Phone:           f.Client.ContactPhone(),
			ClientName:      f.Client.Name,
			FacilityName:    f.Name,
			LastServiceDate: f.LastServiceDate(),
		}

		res := s.notifier.Notify(ctx, n)
		s.logAttempt(ctx, f, models.ChannelEmail, email, res)
		if !res.Success {
			continue
		}

		summary.SentTo = append(summary.SentTo, Recipient{Facility: f.Name, Client: f.Client.Name})
		s.markNotified(ctx, f, today)

		if n.Phone != "" {
			smsRes := s.notifier.NotifySMS(ctx, n)
			if smsRes.Kind != FailureMissingCredentials {
				s.logAttempt(ctx, f, models.ChannelSMS, n.Phone, smsRes)
			}
		}
	}

	summary.Sent = len(summary.SentTo)
	summary.Message = fmt.Sprintf("Processed %d facilities, sent %d reminders", summary.Total, summary.Sent)
	log.Infow("maintenance reminder run completed", "total", summary.Total, "sent", summary.Sent)
	return summary, nil
}

func (s *ReminderService) markNotified(ctx context.Context, f *models.Facility, today time.Time) {
	y, m, d := today.Date()
	notifiedOn := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	err := s.db.WithContext(ctx).Model(&models.Facility{}).
		Where("id = ?", f.ID).
		UpdateColumn("last_notified_on", notifiedOn).Error
	if err != nil {
		zap.S().Errorw("failed to record reminder date", "facility", f.ID, "error", err)
	}
}

func (s *ReminderService) logAttempt(ctx context.Context, f *models.Facility, channel, recipient string, res Result) {
	entry := models.ReminderLog{
		FacilityID:   f.ID,
		ClientID:     f.ClientID,
		Channel:      channel,
		Recipient:    recipient,
		Status:       models.ReminderSent,
		FailureKind:  string(res.Kind),
		ErrorMessage: res.Error,
		SentAt:       s.now(),
	}
	if !res.Success {
		entry.Status = models.ReminderFailed
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		zap.S().Errorw("failed to log reminder", "facility", f.ID, "error", err)
	}
}
