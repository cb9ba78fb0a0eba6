package booking

import (
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

var activeStatuses = []models.AppointmentStatus{models.StatusScheduled, models.StatusCompleted}

// GormConflictStore answers the validator's conflict queries against the
// appointments table.
type GormConflictStore struct {
	DB *gorm.DB
}

func (s *GormConflictStore) ActivePatientDoctorDateExists(patientID, doctorID, date string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Appointment{}).
		Where("patient_id = ? AND doctor_id = ? AND date = ? AND status IN ?", patientID, doctorID, date, activeStatuses).
		Count(&count).Error
	return count > 0, err
}

func (s *GormConflictStore) ActivePatientSlotExists(patientID, date, timeOfDay string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Appointment{}).
		Where("patient_id = ? AND date = ? AND time = ? AND status IN ?", patientID, date, timeOfDay, activeStatuses).
		Count(&count).Error
	return count > 0, err
}

func (s *GormConflictStore) ActiveDoctorSlotExists(doctorID, date, timeOfDay string) (bool, error) {
	var count int64
	err := s.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND time = ? AND status IN ?", doctorID, date, timeOfDay, activeStatuses).
		Count(&count).Error
	return count > 0, err
}

// AppointmentStore abstracts the appointment rows the status transitions
// operate on, mirroring ConflictStore on the validation side.
type AppointmentStore interface {
	// Find loads an appointment with its patient and doctor preloaded.
	Find(appointmentID string) (*models.Appointment, error)
	// UpdateStatus writes the status only; the slot keys keep holding
	// the slot.
	UpdateStatus(appointment *models.Appointment, status models.AppointmentStatus) error
	// Release writes an inactive status and clears the slot keys in the
	// same statement so the slot frees atomically with the transition.
	Release(appointment *models.Appointment, status models.AppointmentStatus) error
	// UpdateNotes writes the doctor notes only.
	UpdateNotes(appointment *models.Appointment, notes string) error
}

// GormAppointmentStore is the production AppointmentStore.
type GormAppointmentStore struct {
	DB *gorm.DB
}

func (s *GormAppointmentStore) Find(appointmentID string) (*models.Appointment, error) {
	var appointment models.Appointment
	err := s.DB.Preload("Patient").Preload("Doctor.User").First(&appointment, "id = ?", appointmentID).Error
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (s *GormAppointmentStore) UpdateStatus(appointment *models.Appointment, status models.AppointmentStatus) error {
	return s.DB.Model(appointment).Update("status", status).Error
}

func (s *GormAppointmentStore) Release(appointment *models.Appointment, status models.AppointmentStatus) error {
	return s.DB.Model(appointment).Updates(map[string]interface{}{
		"status":           status,
		"doctor_slot_key":  nil,
		"patient_slot_key": nil,
		"patient_day_key":  nil,
	}).Error
}

func (s *GormAppointmentStore) UpdateNotes(appointment *models.Appointment, notes string) error {
	return s.DB.Model(appointment).Update("doctor_notes", notes).Error
}
