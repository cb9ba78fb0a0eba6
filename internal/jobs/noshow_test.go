package jobs

import (
	"errors"
	"testing"

	"clinic-app-server/internal/models"
)

type fakeSweepStore struct {
	overdue    []models.Appointment
	cutoffDate string
	cutoffTime string
	marked     []string
	markErr    error
}

func (f *fakeSweepStore) OverdueScheduled(cutoffDate, cutoffTime string) ([]models.Appointment, error) {
	f.cutoffDate, f.cutoffTime = cutoffDate, cutoffTime
	return f.overdue, nil
}

func (f *fakeSweepStore) MarkNoShow(id string) error {
	if f.markErr != nil {
		return f.markErr
	}
	f.marked = append(f.marked, id)
	return nil
}

func missedAppointment(id, patientName, doctorPhone string) models.Appointment {
	appt := models.Appointment{Date: "2025-06-10", Time: "09:00", Status: models.StatusScheduled}
	appt.ID = id
	appt.Patient = models.User{FirstName: patientName}
	appt.Doctor = models.Doctor{User: models.User{FirstName: "Asha", PhoneNumber: doctorPhone}}
	return appt
}

func TestNoShowJobAppliesGracePeriod(t *testing.T) {
	store := &fakeSweepStore{}
	job := NewNoShowJob(store, &fakeSender{}, 15, true, quietLogger(), at(10, 0))

	job.Run()

	if store.cutoffDate != "2025-06-10" || store.cutoffTime != "09:45" {
		t.Fatalf("expected cutoff 2025-06-10 09:45, got %s %s", store.cutoffDate, store.cutoffTime)
	}
}

func TestNoShowJobMarksOverdueAppointments(t *testing.T) {
	store := &fakeSweepStore{overdue: []models.Appointment{
		missedAppointment("a1", "Sita", "111"),
		missedAppointment("a2", "Hari", "111"),
	}}
	job := NewNoShowJob(store, &fakeSender{}, 15, false, quietLogger(), at(10, 0))

	job.Run()

	if len(store.marked) != 2 {
		t.Fatalf("expected both appointments marked, got %v", store.marked)
	}
}

func TestNoShowJobGroupsAlertsPerDoctor(t *testing.T) {
	store := &fakeSweepStore{overdue: []models.Appointment{
		missedAppointment("a1", "Sita", "111"),
		missedAppointment("a2", "Hari", "111"),
		missedAppointment("a3", "Gita", "222"),
	}}
	sender := &fakeSender{}
	job := NewNoShowJob(store, sender, 15, true, quietLogger(), at(10, 0))

	job.Run()

	// One summary to the first doctor, one single alert to the second.
	if len(sender.sent) != 2 {
		t.Fatalf("expected one SMS per doctor, sent %v", sender.sent)
	}
}

func TestNoShowJobSkipsAlertsWhenDisabled(t *testing.T) {
	store := &fakeSweepStore{overdue: []models.Appointment{missedAppointment("a1", "Sita", "111")}}
	sender := &fakeSender{}
	job := NewNoShowJob(store, sender, 15, false, quietLogger(), at(10, 0))

	job.Run()

	if len(sender.sent) != 0 {
		t.Fatalf("expected no alerts, sent %v", sender.sent)
	}
	if len(store.marked) != 1 {
		t.Fatalf("the sweep must still mark no-shows, got %v", store.marked)
	}
}

func TestNoShowJobDoesNotAlertForFailedMarks(t *testing.T) {
	store := &fakeSweepStore{
		overdue: []models.Appointment{missedAppointment("a1", "Sita", "111")},
		markErr: errors.New("write failed"),
	}
	sender := &fakeSender{}
	job := NewNoShowJob(store, sender, 15, true, quietLogger(), at(10, 0))

	job.Run()

	if len(sender.sent) != 0 {
		t.Fatalf("an appointment that stayed scheduled must not be reported, sent %v", sender.sent)
	}
}

func TestNoShowJobSkipsDoctorsWithoutPhone(t *testing.T) {
	store := &fakeSweepStore{overdue: []models.Appointment{missedAppointment("a1", "Sita", "")}}
	sender := &fakeSender{}
	job := NewNoShowJob(store, sender, 15, true, quietLogger(), at(10, 0))

	job.Run()

	if len(sender.sent) != 0 {
		t.Fatalf("expected no alerts without a doctor phone, sent %v", sender.sent)
	}
}
