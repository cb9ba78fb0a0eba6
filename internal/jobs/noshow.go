package jobs

import (
	"time"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/notify"
)

// SweepStore supplies the no-show sweep's queries.
type SweepStore interface {
	OverdueScheduled(cutoffDate, cutoffTime string) ([]models.Appointment, error)
	MarkNoShow(appointmentID string) error
}

// NoShowJob transitions scheduled appointments whose slot plus a grace
// period has elapsed into no_show, and optionally alerts the affected
// doctors, grouped so a doctor with several misses gets one summary SMS.
type NoShowJob struct {
	Store         SweepStore
	Sender        notify.Sender
	GraceMinutes  int
	NotifyDoctors bool
	Logger        *logrus.Logger
	Now           func() time.Time
}

// NewNoShowJob wires a sweep job. A nil now falls back to time.Now.
func NewNoShowJob(store SweepStore, sender notify.Sender, graceMinutes int, notifyDoctors bool, logger *logrus.Logger, now func() time.Time) *NoShowJob {
	if now == nil {
		now = time.Now
	}
	return &NoShowJob{
		Store:         store,
		Sender:        sender,
		GraceMinutes:  graceMinutes,
		NotifyDoctors: notifyDoctors,
		Logger:        logger,
		Now:           now,
	}
}

// Run executes one sweep pass.
func (j *NoShowJob) Run() {
	cutoff := j.Now().Add(-time.Duration(j.GraceMinutes) * time.Minute)
	missed, err := j.Store.OverdueScheduled(cutoff.Format(models.DateLayout), cutoff.Format(models.TimeLayout))
	if err != nil {
		j.Logger.WithFields(logrus.Fields{"error": err}).Error("loading overdue appointments")
		return
	}
	if len(missed) == 0 {
		return
	}

	var updated []models.Appointment
	for i := range missed {
		appt := &missed[i]
		if err := j.Store.MarkNoShow(appt.ID); err != nil {
			j.Logger.WithFields(logrus.Fields{"appointmentId": appt.ID, "error": err}).Error("marking no-show")
			continue
		}
		updated = append(updated, *appt)
	}
	j.Logger.WithFields(logrus.Fields{"count": len(updated)}).Info("appointments marked no-show")

	if j.NotifyDoctors && len(updated) > 0 {
		j.notifyDoctors(updated)
	}
}

// notifyDoctors sends one alert per doctor phone number.
func (j *NoShowJob) notifyDoctors(appointments []models.Appointment) {
	byPhone := make(map[string][]models.Appointment)
	for _, appt := range appointments {
		phone := appt.Doctor.User.PhoneNumber
		if phone == "" {
			continue
		}
		byPhone[phone] = append(byPhone[phone], appt)
	}

	for phone, appts := range byPhone {
		var message string
		if len(appts) == 1 {
			message = notify.NoShowAlertMessage(appts[0].Patient.FullName(), appts[0].Date, appts[0].Time)
		} else {
			names := make([]string, 0, len(appts))
			for _, appt := range appts {
				names = append(names, appt.Patient.FullName())
			}
			message = notify.NoShowSummaryMessage(names)
		}
		if err := j.Sender.Send(phone, message); err != nil {
			j.Logger.WithFields(logrus.Fields{"phone": phone, "error": err}).Warn("no-show alert failed")
		}
	}
}
