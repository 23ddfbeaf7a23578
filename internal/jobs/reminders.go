// Package jobs runs the background schedules of the booking server.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"healthcare-booking-server/internal/models"
	"healthcare-booking-server/internal/services"
	"healthcare-booking-server/internal/store"
)

// ReminderCounter counts reminders that went out.
type ReminderCounter interface {
	ReminderSent()
}

type nopCounter struct{}

func (nopCounter) ReminderSent() {}

// ReminderJob reminds patients of confirmed appointments dated tomorrow (UTC).
type ReminderJob struct {
	store         store.Store
	notifications *services.NotificationService
	counter       ReminderCounter
	logger        zerolog.Logger
	now           func() time.Time

	cron *cron.Cron
}

func NewReminderJob(s store.Store, notifications *services.NotificationService, counter ReminderCounter, logger zerolog.Logger) *ReminderJob {
	if counter == nil {
		counter = nopCounter{}
	}
	return &ReminderJob{
		store:         s,
		notifications: notifications,
		counter:       counter,
		logger:        logger.With().Str("job", "appointment_reminders").Logger(),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce sends the reminders owed right now and returns how many were sent.
// Appointments that already have a reminder for the patient are skipped, so reruns are safe.
func (j *ReminderJob) RunOnce(ctx context.Context) (int, error) {
	now := j.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	to := from.AddDate(0, 0, 1)

	appointments, err := j.store.Appointments().ListBetween(ctx, models.StatusConfirmed, from, to)
	if err != nil {
		return 0, fmt.Errorf("list confirmed appointments: %w", err)
	}

	sent := 0
	for i := range appointments {
		a := &appointments[i]
		exists, err := j.store.Notifications().ExistsForAppointment(ctx, a.PatientID, a.ID, models.NotificationAppointmentReminder)
		if err != nil {
			return sent, fmt.Errorf("check reminder for %s: %w", a.ID, err)
		}
		if exists {
			continue
		}
		if _, err := j.notifications.Send(ctx, services.ReminderNotification(a)); err != nil {
			return sent, fmt.Errorf("send reminder for %s: %w", a.ID, err)
		}
		j.counter.ReminderSent()
		sent++
	}
	return sent, nil
}

// Start schedules RunOnce on the cron spec and returns immediately.
func (j *ReminderJob) Start(spec string) error {
	c := cron.New(cron.WithLocation(time.UTC))
	_, err := c.AddFunc(spec, func() {
		ctx := j.logger.WithContext(context.Background())
		sent, err := j.RunOnce(ctx)
		if err != nil {
			j.logger.Error().Err(err).Int("sent", sent).Msg("reminder run failed")
			return
		}
		j.logger.Info().Int("sent", sent).Msg("reminder run finished")
	})
	if err != nil {
		return fmt.Errorf("schedule reminders %q: %w", spec, err)
	}
	j.cron = c
	c.Start()
	j.logger.Info().Str("schedule", spec).Msg("reminder job started")
	return nil
}

// Stop waits for a running job to finish.
func (j *ReminderJob) Stop(ctx context.Context) {
	if j.cron == nil {
		return
	}
	select {
	case <-j.cron.Stop().Done():
	case <-ctx.Done():
	}
}
