package booking

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"clinic-app-server/internal/events"
	"clinic-app-server/internal/models"
)

// ReceiptGenerator produces the booking receipt artifact for an
// appointment and returns its stored path.
type ReceiptGenerator interface {
	Generate(appointmentID, existingPath string) (string, error)
}

// Service owns appointment creation and the guarded status transitions.
// Side effects (receipt, SMS, event stream, index sync) run strictly
// after the row is durably written and can only degrade, never abort.
type Service struct {
	DB         *gorm.DB
	Store      AppointmentStore
	Validator  *Validator
	Receipts   ReceiptGenerator
	Dispatcher *events.Dispatcher
	Logger     *logrus.Logger
	Now        func() time.Time
}

// NewService wires a booking service. A nil now falls back to time.Now.
func NewService(db *gorm.DB, receipts ReceiptGenerator, dispatcher *events.Dispatcher, logger *logrus.Logger, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		DB:         db,
		Store:      &GormAppointmentStore{DB: db},
		Validator:  NewValidator(&GormConflictStore{DB: db}, now),
		Receipts:   receipts,
		Dispatcher: dispatcher,
		Logger:     logger,
		Now:        now,
	}
}

// Book validates and creates an appointment for the patient with the
// given doctor at date ("2006-01-02") and timeOfDay ("15:04").
//
// The validator gives friendly errors, but the unique slot-key indexes
// are the authoritative guard: when two requests race past validation,
// the losing insert comes back as gorm.ErrDuplicatedKey and is mapped
// onto the matching rule error.
func (s *Service) Book(patient *models.User, doctorID, date, timeOfDay string) (*models.Appointment, error) {
	var doctor models.Doctor
	if err := s.DB.Preload("User").First(&doctor, "id = ?", doctorID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "doctor"}
		}
		return nil, fmt.Errorf("loading doctor: %w", err)
	}

	if err := s.Validator.Validate(patient.ID, &doctor, date, timeOfDay); err != nil {
		return nil, err
	}

	appointment := &models.Appointment{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      timeOfDay,
		Status:    models.StatusScheduled,
	}
	appointment.ApplySlotKeys()

	if err := s.DB.Create(appointment).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.classifyDuplicate(patient.ID, &doctor, date, timeOfDay)
		}
		return nil, fmt.Errorf("creating appointment: %w", err)
	}
	appointment.Patient = *patient
	appointment.Doctor = doctor

	s.generateReceipt(appointment)
	s.Dispatcher.PublishAppointment(s.appointmentEvent(events.AppointmentBooked, appointment))

	return appointment, nil
}

// classifyDuplicate re-runs the conflict checks after a unique-key
// violation so the loser of a booking race still gets a rule error
// naming what it collided with.
func (s *Service) classifyDuplicate(patientID string, doctor *models.Doctor, date, timeOfDay string) error {
	if err := s.Validator.Validate(patientID, doctor, date, timeOfDay); err != nil {
		var ruleErr *RuleError
		if errors.As(err, &ruleErr) {
			return ruleErr
		}
	}
	return &RuleError{
		Rule:    RuleDoctorTimeConflict,
		Message: "This doctor is already booked for this time slot.",
	}
}

// generateReceipt creates the QR artifact and records its location with
// a narrow single-column update, so neither the validator nor the
// notification path runs again. Failure leaves the appointment without
// an artifact and is only logged.
func (s *Service) generateReceipt(appointment *models.Appointment) {
	path, err := s.Receipts.Generate(appointment.ID, appointment.QRCode)
	if err != nil {
		s.Logger.WithFields(logrus.Fields{
			"appointmentId": appointment.ID,
			"error":         err,
		}).Warn("receipt generation failed, appointment kept without artifact")
		return
	}
	if err := s.DB.Model(appointment).Update("qr_code", path).Error; err != nil {
		s.Logger.WithFields(logrus.Fields{
			"appointmentId": appointment.ID,
			"error":         err,
		}).Warn("failed to record receipt path")
		return
	}
	appointment.QRCode = path
}

// Complete marks a scheduled appointment completed. Allowed only for the
// assigned doctor or an admin.
func (s *Service) Complete(actorID string, actorRole models.Role, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.load(appointmentID)
	if err != nil {
		return nil, err
	}

	if !s.actsForDoctor(actorID, actorRole, appointment) {
		return nil, &PermissionError{Message: "You do not have permission to complete this appointment."}
	}
	if appointment.Status != models.StatusScheduled {
		return nil, &StateError{
			Message: fmt.Sprintf("This appointment cannot be completed as its status is already '%s'.", appointment.Status),
		}
	}

	appointment.Status = models.StatusCompleted
	// Completed stays active, the slot keys keep holding the slot.
	if err := s.Store.UpdateStatus(appointment, models.StatusCompleted); err != nil {
		return nil, fmt.Errorf("completing appointment: %w", err)
	}

	s.Dispatcher.PublishAppointment(s.appointmentEvent(events.AppointmentCompleted, appointment))
	return appointment, nil
}

// Cancel cancels a future scheduled appointment. Allowed only for the
// owning patient. The freed slot becomes bookable again immediately.
func (s *Service) Cancel(actorID, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.load(appointmentID)
	if err != nil {
		return nil, err
	}

	if appointment.PatientID != actorID {
		return nil, &PermissionError{Message: "You do not have permission to cancel this appointment."}
	}
	if !appointment.IsCancellable(s.Now()) {
		return nil, &StateError{
			Message: "This appointment can no longer be cancelled (it may be in the past or already completed).",
		}
	}

	if err := s.release(appointment, models.StatusCancelled); err != nil {
		return nil, fmt.Errorf("cancelling appointment: %w", err)
	}

	s.Dispatcher.PublishAppointment(s.appointmentEvent(events.AppointmentCancelled, appointment))
	return appointment, nil
}

// MarkNoShow marks a past scheduled appointment as a no-show. Allowed
// only for the assigned doctor or an admin.
func (s *Service) MarkNoShow(actorID string, actorRole models.Role, appointmentID string) (*models.Appointment, error) {
	appointment, err := s.load(appointmentID)
	if err != nil {
		return nil, err
	}

	if !s.actsForDoctor(actorID, actorRole, appointment) {
		return nil, &PermissionError{Message: "You do not have permission to modify this appointment."}
	}
	if !appointment.IsPast(s.Now()) {
		return nil, &StateError{Message: "Cannot mark an upcoming appointment as a no-show."}
	}
	if appointment.Status != models.StatusScheduled {
		return nil, &StateError{
			Message: fmt.Sprintf("Cannot mark this appointment as its status is '%s'.", appointment.Status),
		}
	}

	if err := s.release(appointment, models.StatusNoShow); err != nil {
		return nil, fmt.Errorf("marking no-show: %w", err)
	}

	s.Dispatcher.PublishAppointment(s.appointmentEvent(events.AppointmentNoShow, appointment))
	return appointment, nil
}

// UpdateNotes lets the assigned doctor or an admin attach notes without
// re-running the booking rules, since the slot itself is untouched.
func (s *Service) UpdateNotes(actorID string, actorRole models.Role, appointmentID, notes string) (*models.Appointment, error) {
	appointment, err := s.load(appointmentID)
	if err != nil {
		return nil, err
	}

	if !s.actsForDoctor(actorID, actorRole, appointment) {
		return nil, &PermissionError{Message: "You do not have permission to update this appointment's notes."}
	}

	appointment.DoctorNotes = notes
	if err := s.Store.UpdateNotes(appointment, notes); err != nil {
		return nil, fmt.Errorf("updating notes: %w", err)
	}
	return appointment, nil
}

// release writes a terminal inactive status and frees the slot through
// the store.
func (s *Service) release(appointment *models.Appointment, status models.AppointmentStatus) error {
	appointment.Status = status
	appointment.ApplySlotKeys()
	return s.Store.Release(appointment, status)
}

// load fetches an appointment with its patient and doctor for
// permission checks and event payloads.
func (s *Service) load(appointmentID string) (*models.Appointment, error) {
	appointment, err := s.Store.Find(appointmentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "appointment"}
		}
		return nil, fmt.Errorf("loading appointment: %w", err)
	}
	return appointment, nil
}

// actsForDoctor reports whether the actor is the assigned doctor or an
// admin.
func (s *Service) actsForDoctor(actorID string, actorRole models.Role, appointment *models.Appointment) bool {
	if actorRole == models.RoleAdmin {
		return true
	}
	return actorRole == models.RoleDoctor && appointment.Doctor.UserID == actorID
}

func (s *Service) appointmentEvent(eventType string, appointment *models.Appointment) events.AppointmentEvent {
	return events.AppointmentEvent{
		Type:          eventType,
		AppointmentID: appointment.ID,
		PatientID:     appointment.PatientID,
		PatientName:   appointment.Patient.FullName(),
		PatientPhone:  appointment.Patient.PhoneNumber,
		DoctorID:      appointment.DoctorID,
		DoctorName:    appointment.Doctor.User.FullName(),
		DoctorPhone:   appointment.Doctor.User.PhoneNumber,
		Date:          appointment.Date,
		Time:          appointment.Time,
	}
}
