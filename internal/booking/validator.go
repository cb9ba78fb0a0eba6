package booking

import (
	"fmt"
	"time"

	"clinic-app-server/internal/models"
)

// ConflictStore answers the existence queries the validator needs against
// the appointment store. Only appointments with an active status
// (scheduled or completed) count.
type ConflictStore interface {
	ActivePatientDoctorDateExists(patientID, doctorID, date string) (bool, error)
	ActivePatientSlotExists(patientID, date, timeOfDay string) (bool, error)
	ActiveDoctorSlotExists(doctorID, date, timeOfDay string) (bool, error)
}

// Validator gates appointment creation against the booking invariants.
// Rules are checked in a fixed order and the first failing rule is
// reported as a RuleError carrying that rule's code.
type Validator struct {
	Store ConflictStore
	Now   func() time.Time
}

// NewValidator creates a Validator. A nil now falls back to time.Now.
func NewValidator(store ConflictStore, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{Store: store, Now: now}
}

// Validate checks a prospective appointment for patientID with doctor at
// date ("2006-01-02") and timeOfDay ("15:04"). It returns nil when the
// slot is bookable, a *RuleError for the first violated rule, or a plain
// error when the store fails.
//
// Validate runs on the create path only. Updates that touch the slot
// (date, time or doctor) must go through Validate again; notes- or
// status-only updates never do, the transition actions guard status
// themselves.
func (v *Validator) Validate(patientID string, doctor *models.Doctor, date, timeOfDay string) error {
	now := v.Now()

	// Rule 1: the slot must not be in the past at the creation instant.
	today := now.Format(models.DateLayout)
	if date < today || (date == today && timeOfDay < now.Format(models.TimeLayout)) {
		return &RuleError{
			Rule:    RulePastDate,
			Message: "Cannot book appointments in the past.",
		}
	}

	// Rule 2: one active appointment per (patient, doctor, day).
	exists, err := v.Store.ActivePatientDoctorDateExists(patientID, doctor.ID, date)
	if err != nil {
		return fmt.Errorf("checking per-day duplicate: %w", err)
	}
	if exists {
		return &RuleError{
			Rule: RulePerDayDuplicate,
			Message: fmt.Sprintf("You already have an appointment with Dr. %s on %s. "+
				"A patient can only have one appointment per doctor per day.", doctor.User.FullName(), date),
		}
	}

	// Rule 3: the patient cannot hold two appointments at the same slot.
	exists, err = v.Store.ActivePatientSlotExists(patientID, date, timeOfDay)
	if err != nil {
		return fmt.Errorf("checking patient slot conflict: %w", err)
	}
	if exists {
		return &RuleError{
			Rule: RulePatientTimeConflict,
			Message: fmt.Sprintf("You already have an appointment at %s on %s. "+
				"Please choose a different time slot.", timeOfDay, date),
		}
	}

	// Rule 4: the doctor cannot be double-booked.
	exists, err = v.Store.ActiveDoctorSlotExists(doctor.ID, date, timeOfDay)
	if err != nil {
		return fmt.Errorf("checking doctor slot conflict: %w", err)
	}
	if exists {
		return &RuleError{
			Rule:    RuleDoctorTimeConflict,
			Message: "This doctor is already booked for this time slot.",
		}
	}

	// Rule 5: the slot must fall inside the doctor's working hours.
	if !doctor.WorksAt(timeOfDay) {
		return &RuleError{
			Rule: RuleOutsideHours,
			Message: fmt.Sprintf("Appointment time is outside of Dr. %s's available hours (%s - %s).",
				doctor.User.FullName(), doctor.AvailableFrom, doctor.AvailableTo),
		}
	}

	// Rule 6: the doctor must be accepting appointments.
	if !doctor.IsActive {
		return &RuleError{
			Rule:    RuleDoctorInactive,
			Message: "This doctor is currently not available for appointments.",
		}
	}

	return nil
}
