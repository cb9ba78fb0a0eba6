package recommend

import (
	"gorm.io/gorm"

	"clinic-app-server/internal/models"
)

// GormDoctorSource serves active doctors from the relational store, with
// the owning user preloaded for API projections.
type GormDoctorSource struct {
	DB *gorm.DB
}

func (s *GormDoctorSource) ActiveBySpecialization(specialization string, limit int) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.DB.Preload("User").
		Where("specialization = ? AND is_active = ?", specialization, true).
		Limit(limit).
		Find(&doctors).Error
	return doctors, err
}

func (s *GormDoctorSource) ActiveBySpecializationLike(fragment string, limit int) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.DB.Preload("User").
		Where("specialization LIKE ? AND is_active = ?", "%"+fragment+"%", true).
		Limit(limit).
		Find(&doctors).Error
	return doctors, err
}

func (s *GormDoctorSource) AnyActive(limit int) ([]models.Doctor, error) {
	var doctors []models.Doctor
	err := s.DB.Preload("User").
		Where("is_active = ?", true).
		Limit(limit).
		Find(&doctors).Error
	return doctors, err
}
