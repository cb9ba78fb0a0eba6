package booking

import (
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clinic-app-server/internal/events"
	"clinic-app-server/internal/models"
)

type fakeAppointmentStore struct {
	appointment *models.Appointment
	statuses    []models.AppointmentStatus
	released    []models.AppointmentStatus
	notes       string
}

func (f *fakeAppointmentStore) Find(appointmentID string) (*models.Appointment, error) {
	if f.appointment == nil || f.appointment.ID != appointmentID {
		return nil, gorm.ErrRecordNotFound
	}
	return f.appointment, nil
}

func (f *fakeAppointmentStore) UpdateStatus(appointment *models.Appointment, status models.AppointmentStatus) error {
	f.statuses = append(f.statuses, status)
	return nil
}

func (f *fakeAppointmentStore) Release(appointment *models.Appointment, status models.AppointmentStatus) error {
	f.released = append(f.released, status)
	return nil
}

func (f *fakeAppointmentStore) UpdateNotes(appointment *models.Appointment, notes string) error {
	f.notes = notes
	return nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// storedAppointment builds a preloaded appointment owned by patient-1
// with the doctor from testDoctor (profile doc-1, account user-doc).
func storedAppointment(status models.AppointmentStatus, date, timeOfDay string) *models.Appointment {
	a := &models.Appointment{
		PatientID: "patient-1",
		DoctorID:  "doc-1",
		Date:      date,
		Time:      timeOfDay,
		Status:    status,
	}
	a.ID = "appt-1"
	a.Patient = models.User{FirstName: "Bina", LastName: "Rai", PhoneNumber: "9800000001"}
	a.Doctor = *testDoctor()
	a.ApplySlotKeys()
	return a
}

func newTestService(store AppointmentStore, captured *[]events.AppointmentEvent) *Service {
	dispatcher := newRecordingDispatcher(captured)
	return &Service{
		Store:      store,
		Dispatcher: dispatcher,
		Logger:     quietLogger(),
		Now:        fixedNow,
	}
}

func newRecordingDispatcher(captured *[]events.AppointmentEvent) *events.Dispatcher {
	d := events.NewDispatcher(quietLogger())
	d.OnAppointment(func(ev events.AppointmentEvent) error {
		*captured = append(*captured, ev)
		return nil
	})
	return d
}

func assertStateError(t *testing.T, err error) {
	t.Helper()
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("expected StateError, got %v", err)
	}
}

func assertPermissionError(t *testing.T, err error) {
	t.Helper()
	var permErr *PermissionError
	if !errors.As(err, &permErr) {
		t.Fatalf("expected PermissionError, got %v", err)
	}
}

func TestCancelReleasesSlotAndPublishes(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	appointment, err := svc.Cancel("patient-1", "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.Status != models.StatusCancelled {
		t.Fatalf("expected cancelled status, got %s", appointment.Status)
	}
	if appointment.DoctorSlotKey != nil || appointment.PatientSlotKey != nil || appointment.PatientDayKey != nil {
		t.Fatal("expected slot keys cleared on cancellation")
	}
	if len(store.released) != 1 || store.released[0] != models.StatusCancelled {
		t.Fatalf("expected one cancelled release, got %v", store.released)
	}
	if len(published) != 1 || published[0].Type != events.AppointmentCancelled {
		t.Fatalf("expected a cancelled event, got %v", published)
	}
}

func TestCancelCompletedRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusCompleted, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.Cancel("patient-1", "appt-1")
	assertStateError(t, err)
	if len(store.released) != 0 {
		t.Fatal("expected no release on rejected cancel")
	}
	if len(published) != 0 {
		t.Fatal("expected no event on rejected cancel")
	}
}

func TestCancelPastRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.Cancel("patient-1", "appt-1")
	assertStateError(t, err)
}

func TestCancelByNonOwnerRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.Cancel("patient-2", "appt-1")
	assertPermissionError(t, err)
}

func TestCompleteByAssignedDoctor(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	appointment, err := svc.Complete("user-doc", models.RoleDoctor, "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.Status != models.StatusCompleted {
		t.Fatalf("expected completed status, got %s", appointment.Status)
	}
	// Completed appointments keep holding their slot.
	if appointment.DoctorSlotKey == nil {
		t.Fatal("expected slot keys to remain after completion")
	}
	if len(store.statuses) != 1 || store.statuses[0] != models.StatusCompleted {
		t.Fatalf("expected one completed status write, got %v", store.statuses)
	}
	if len(published) != 1 || published[0].Type != events.AppointmentCompleted {
		t.Fatalf("expected a completed event, got %v", published)
	}
}

func TestCompleteByUnrelatedDoctorRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.Complete("user-other", models.RoleDoctor, "appt-1")
	assertPermissionError(t, err)
}

func TestCompleteNonScheduledRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusCancelled, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.Complete("user-doc", models.RoleDoctor, "appt-1")
	assertStateError(t, err)
}

func TestMarkNoShowOnUpcomingRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.MarkNoShow("admin-1", models.RoleAdmin, "appt-1")
	assertStateError(t, err)
	if len(store.released) != 0 {
		t.Fatal("expected no release on rejected no-show")
	}
}

func TestMarkNoShowPastScheduledByAdmin(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	appointment, err := svc.MarkNoShow("admin-1", models.RoleAdmin, "appt-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.Status != models.StatusNoShow {
		t.Fatalf("expected no_show status, got %s", appointment.Status)
	}
	if len(store.released) != 1 || store.released[0] != models.StatusNoShow {
		t.Fatalf("expected one no_show release, got %v", store.released)
	}
	if len(published) != 1 || published[0].Type != events.AppointmentNoShow {
		t.Fatalf("expected a no-show event, got %v", published)
	}
}

func TestMarkNoShowCompletedRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusCompleted, "2025-06-09", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.MarkNoShow("user-doc", models.RoleDoctor, "appt-1")
	assertStateError(t, err)
}

func TestUpdateNotesByAssignedDoctor(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	appointment, err := svc.UpdateNotes("user-doc", models.RoleDoctor, "appt-1", "follow up in two weeks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if appointment.DoctorNotes != "follow up in two weeks" {
		t.Fatalf("expected notes set, got %q", appointment.DoctorNotes)
	}
	if store.notes != "follow up in two weeks" {
		t.Fatalf("expected notes written to the store, got %q", store.notes)
	}
}

func TestUpdateNotesByUnrelatedDoctorRejected(t *testing.T) {
	store := &fakeAppointmentStore{appointment: storedAppointment(models.StatusScheduled, "2025-06-11", "10:00")}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	_, err := svc.UpdateNotes("user-other", models.RoleDoctor, "appt-1", "notes")
	assertPermissionError(t, err)
}

func TestTransitionsOnMissingAppointment(t *testing.T) {
	store := &fakeAppointmentStore{}
	var published []events.AppointmentEvent
	svc := newTestService(store, &published)

	var notFound *NotFoundError
	if _, err := svc.Cancel("patient-1", "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError from cancel, got %v", err)
	}
	if _, err := svc.Complete("user-doc", models.RoleDoctor, "missing"); !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError from complete, got %v", err)
	}
}
