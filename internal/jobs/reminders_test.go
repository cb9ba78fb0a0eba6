package jobs

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"clinic-app-server/internal/models"
)

type fakeReminderStore struct {
	morning        []models.Appointment
	thirtyMin      []models.Appointment
	thirtyFrom     string
	thirtyTo       string
	morningMarked  []string
	thirtyMarked   []string
	markMorningErr error
}

func (f *fakeReminderStore) DueMorningReminders(date string) ([]models.Appointment, error) {
	return f.morning, nil
}

func (f *fakeReminderStore) DueThirtyMinReminders(date, from, to string) ([]models.Appointment, error) {
	f.thirtyFrom, f.thirtyTo = from, to
	return f.thirtyMin, nil
}

func (f *fakeReminderStore) MarkMorningReminderSent(id string) error {
	if f.markMorningErr != nil {
		return f.markMorningErr
	}
	f.morningMarked = append(f.morningMarked, id)
	return nil
}

func (f *fakeReminderStore) MarkThirtyMinReminderSent(id string) error {
	f.thirtyMarked = append(f.thirtyMarked, id)
	return nil
}

type fakeSender struct {
	sent   []string
	failTo string
}

func (f *fakeSender) Send(to, body string) error {
	if to == f.failTo {
		return errors.New("gateway rejected")
	}
	f.sent = append(f.sent, to)
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func reminderAppointment(id, phone string) models.Appointment {
	appt := models.Appointment{Date: "2025-06-10", Time: "10:00", Status: models.StatusScheduled}
	appt.ID = id
	appt.Patient = models.User{FirstName: "Sita", PhoneNumber: phone}
	appt.Doctor = models.Doctor{User: models.User{FirstName: "Asha"}}
	return appt
}

func at(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2025, 6, 10, hour, minute, 0, 0, time.UTC)
	}
}

func TestReminderJobSendsMorningRemindersDuringMorningHour(t *testing.T) {
	store := &fakeReminderStore{morning: []models.Appointment{reminderAppointment("a1", "9841000000")}}
	sender := &fakeSender{}
	job := NewReminderJob(store, sender, 8, quietLogger(), at(8, 5))

	job.Run()

	if len(sender.sent) != 1 {
		t.Fatalf("expected one SMS, sent %v", sender.sent)
	}
	if len(store.morningMarked) != 1 || store.morningMarked[0] != "a1" {
		t.Fatalf("expected a1 marked sent, got %v", store.morningMarked)
	}
}

func TestReminderJobSkipsMorningRemindersOutsideMorningHour(t *testing.T) {
	store := &fakeReminderStore{morning: []models.Appointment{reminderAppointment("a1", "9841000000")}}
	sender := &fakeSender{}
	job := NewReminderJob(store, sender, 8, quietLogger(), at(9, 0))

	job.Run()

	if len(store.morningMarked) != 0 {
		t.Fatalf("morning reminders must only go out during the configured hour, got %v", store.morningMarked)
	}
}

func TestReminderJobThirtyMinWindow(t *testing.T) {
	store := &fakeReminderStore{}
	job := NewReminderJob(store, &fakeSender{}, 8, quietLogger(), at(9, 45))

	job.Run()

	if store.thirtyFrom != "09:45" || store.thirtyTo != "10:15" {
		t.Fatalf("expected window 09:45-10:15, got %s-%s", store.thirtyFrom, store.thirtyTo)
	}
}

func TestReminderJobThirtyMinWindowClampsAtMidnight(t *testing.T) {
	store := &fakeReminderStore{}
	job := NewReminderJob(store, &fakeSender{}, 8, quietLogger(), at(23, 50))

	job.Run()

	if store.thirtyFrom != "23:50" || store.thirtyTo != "23:59" {
		t.Fatalf("expected window clamped to 23:59, got %s-%s", store.thirtyFrom, store.thirtyTo)
	}
}

func TestReminderJobDoesNotMarkOnSendFailure(t *testing.T) {
	store := &fakeReminderStore{thirtyMin: []models.Appointment{
		reminderAppointment("a1", "111"),
		reminderAppointment("a2", "222"),
	}}
	sender := &fakeSender{failTo: "111"}
	job := NewReminderJob(store, sender, 8, quietLogger(), at(9, 30))

	job.Run()

	if len(store.thirtyMarked) != 1 || store.thirtyMarked[0] != "a2" {
		t.Fatalf("only successful sends may be marked, got %v", store.thirtyMarked)
	}
}

func TestReminderJobSkipsPatientsWithoutPhone(t *testing.T) {
	store := &fakeReminderStore{morning: []models.Appointment{reminderAppointment("a1", "")}}
	sender := &fakeSender{}
	job := NewReminderJob(store, sender, 8, quietLogger(), at(8, 0))

	job.Run()

	if len(sender.sent) != 0 || len(store.morningMarked) != 0 {
		t.Fatal("appointments without a patient phone must be skipped")
	}
}

func TestReminderJobDoesNotMarkWhenMarkingFails(t *testing.T) {
	store := &fakeReminderStore{
		morning:        []models.Appointment{reminderAppointment("a1", "9841000000")},
		markMorningErr: errors.New("write failed"),
	}
	sender := &fakeSender{}
	job := NewReminderJob(store, sender, 8, quietLogger(), at(8, 0))

	// The send happens, the mark fails; the next pass retries.
	job.Run()

	if len(sender.sent) != 1 {
		t.Fatalf("expected one SMS, sent %v", sender.sent)
	}
	if len(store.morningMarked) != 0 {
		t.Fatalf("expected no marks recorded, got %v", store.morningMarked)
	}
}
