// Package jobs contains the periodic work consuming the appointment
// store: SMS reminders and the no-show sweep.
package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/notify"
)

// ReminderStore supplies the reminder job's queries. The two mark
// methods persist the idempotency flags one at a time, only after a
// successful send.
type ReminderStore interface {
	DueMorningReminders(date string) ([]models.Appointment, error)
	DueThirtyMinReminders(date, from, to string) ([]models.Appointment, error)
	MarkMorningReminderSent(appointmentID string) error
	MarkThirtyMinReminderSent(appointmentID string) error
}

// ReminderJob sends the morning-of and ~30-minutes-before SMS reminders.
// It is safe to run every minute: the per-appointment sent flags make
// both reminders exactly-once.
type ReminderJob struct {
	Store       ReminderStore
	Sender      notify.Sender
	MorningHour int
	Logger      *logrus.Logger
	Now         func() time.Time
}

// NewReminderJob wires a reminder job. A nil now falls back to time.Now.
func NewReminderJob(store ReminderStore, sender notify.Sender, morningHour int, logger *logrus.Logger, now func() time.Time) *ReminderJob {
	if now == nil {
		now = time.Now
	}
	return &ReminderJob{Store: store, Sender: sender, MorningHour: morningHour, Logger: logger, Now: now}
}

// Run executes one reminder pass.
func (j *ReminderJob) Run() {
	now := j.Now()
	today := now.Format(models.DateLayout)

	if now.Hour() == j.MorningHour {
		j.sendMorningReminders(today)
	}
	j.sendThirtyMinReminders(now, today)
}

func (j *ReminderJob) sendMorningReminders(today string) {
	due, err := j.Store.DueMorningReminders(today)
	if err != nil {
		j.Logger.WithFields(logrus.Fields{"error": err}).Error("loading morning reminders")
		return
	}

	for i := range due {
		appt := &due[i]
		if appt.Patient.PhoneNumber == "" {
			continue
		}
		message := notify.MorningReminderMessage(appt.Doctor.User.FirstName, appt.Time)
		if err := j.Sender.Send(appt.Patient.PhoneNumber, message); err != nil {
			j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID, "error": err}).Warn("morning reminder failed")
			continue
		}
		if err := j.Store.MarkMorningReminderSent(appt.ID); err != nil {
			j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID, "error": err}).Error("marking morning reminder sent")
			continue
		}
		j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID}).Info("morning reminder sent")
	}
}

func (j *ReminderJob) sendThirtyMinReminders(now time.Time, today string) {
	from := now.Format(models.TimeLayout)
	to := now.Add(30 * time.Minute).Format(models.TimeLayout)
	if to < from {
		// Window crossed midnight; tomorrow's slots get their turn
		// on tomorrow's passes.
		to = "23:59"
	}

	due, err := j.Store.DueThirtyMinReminders(today, from, to)
	if err != nil {
		j.Logger.WithFields(logrus.Fields{"error": err}).Error("loading 30-minute reminders")
		return
	}

	for i := range due {
		appt := &due[i]
		if appt.Patient.PhoneNumber == "" {
			continue
		}
		message := notify.ThirtyMinReminderMessage(appt.Doctor.User.FirstName)
		if err := j.Sender.Send(appt.Patient.PhoneNumber, message); err != nil {
			j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID, "error": err}).Warn("30-minute reminder failed")
			continue
		}
		if err := j.Store.MarkThirtyMinReminderSent(appt.ID); err != nil {
			j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID, "error": err}).Error("marking 30-minute reminder sent")
			continue
		}
		j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID}).Info("30-minute reminder sent")
	}
}
