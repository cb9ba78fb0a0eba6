package jobs

import (
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

// GormAppointmentStore backs both periodic jobs with the relational
// appointment store. Patient and doctor (with user) are preloaded since
// the jobs build SMS bodies from them.
type GormAppointmentStore struct {
	DB *gorm.DB
}

func (s *GormAppointmentStore) DueMorningReminders(date string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.DB.Preload("Patient").Preload("Doctor.User").
		Where("date = ? AND status = ? AND morning_reminder_sent = ?", date, models.StatusScheduled, false).
		Find(&appointments).Error
	return appointments, err
}

func (s *GormAppointmentStore) DueThirtyMinReminders(date, from, to string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.DB.Preload("Patient").Preload("Doctor.User").
		Where("date = ? AND time >= ? AND time <= ? AND status = ? AND thirty_min_reminder_sent = ?",
			date, from, to, models.StatusScheduled, false).
		Find(&appointments).Error
	return appointments, err
}

func (s *GormAppointmentStore) MarkMorningReminderSent(appointmentID string) error {
	return s.DB.Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Update("morning_reminder_sent", true).Error
}

func (s *GormAppointmentStore) MarkThirtyMinReminderSent(appointmentID string) error {
	return s.DB.Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Update("thirty_min_reminder_sent", true).Error
}

func (s *GormAppointmentStore) OverdueScheduled(cutoffDate, cutoffTime string) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := s.DB.Preload("Patient").Preload("Doctor.User").
		Where("status = ? AND (date < ? OR (date = ? AND time < ?))",
			models.StatusScheduled, cutoffDate, cutoffDate, cutoffTime).
		Find(&appointments).Error
	return appointments, err
}

func (s *GormAppointmentStore) MarkNoShow(appointmentID string) error {
	// Clearing the slot keys in the same statement frees the slot
	// atomically with the transition.
	return s.DB.Model(&models.Appointment{}).
		Where("id = ?", appointmentID).
		Updates(map[string]interface{}{
			"status":           models.StatusNoShow,
			"doctor_slot_key":  nil,
			"patient_slot_key": nil,
			"patient_day_key":  nil,
		}).Error
}
