package models

// Doctor represents the profile of a user with the doctor role.
// It is created automatically when such a user appears and is deleted
// together with the owning user row.
type Doctor struct {
	BaseModel
	UserID          string   `gorm:"size:36;uniqueIndex;not null" json:"userId"`
	Specialization  string   `gorm:"size:100" json:"specialization"`
	AppointmentFee  float64  `gorm:"default:500" json:"appointmentFee"`
	AvailableFrom   string   `gorm:"size:5;default:'09:00'" json:"availableFrom"` // "15:04"
	AvailableTo     string   `gorm:"size:5;default:'17:00'" json:"availableTo"`   // "15:04"
	Building        string   `gorm:"size:50" json:"building,omitempty"`
	Qualification   string   `gorm:"size:255" json:"qualification,omitempty"` // e.g. MD, MBBS, PhD
	ExperienceYears int      `gorm:"default:0" json:"experienceYears"`
	Rating          *float64 `json:"rating,omitempty"` // 0.0 - 5.0, absent until first review
	Image           string   `json:"image,omitempty"`
	IsActive        bool     `gorm:"default:true" json:"isActive"`

	User User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// WorksAt reports whether t ("15:04") falls inside the doctor's working
// hours. Both boundaries are bookable.
func (d *Doctor) WorksAt(t string) bool {
	return d.AvailableFrom <= t && t <= d.AvailableTo
}

// HasValidHours reports whether the working-hours window is well formed.
func (d *Doctor) HasValidHours() bool {
	return d.AvailableFrom < d.AvailableTo
}

// DoctorView is the doctor profile shape returned by the API, with the
// owning user flattened in.
type DoctorView struct {
	ID              string   `json:"id"`
	UserID          string   `json:"userId"`
	FullName        string   `json:"fullName"`
	Email           string   `json:"email,omitempty"`
	Specialization  string   `json:"specialization"`
	AppointmentFee  float64  `json:"appointmentFee"`
	AvailableFrom   string   `json:"availableFrom"`
	AvailableTo     string   `json:"availableTo"`
	Building        string   `json:"building,omitempty"`
	Qualification   string   `json:"qualification,omitempty"`
	ExperienceYears int      `json:"experienceYears"`
	Rating          *float64 `json:"rating,omitempty"`
	Image           string   `json:"image,omitempty"`
	IsActive        bool     `json:"isActive"`
}

// View builds the API projection of a doctor. The User relation must be
// preloaded for the name and email to be filled in.
func (d *Doctor) View() DoctorView {
	return DoctorView{
		ID:              d.ID,
		UserID:          d.UserID,
		FullName:        d.User.FullName(),
		Email:           d.User.Email,
		Specialization:  d.Specialization,
		AppointmentFee:  d.AppointmentFee,
		AvailableFrom:   d.AvailableFrom,
		AvailableTo:     d.AvailableTo,
		Building:        d.Building,
		Qualification:   d.Qualification,
		ExperienceYears: d.ExperienceYears,
		Rating:          d.Rating,
		Image:           d.Image,
		IsActive:        d.IsActive,
	}
}

// DoctorViews maps a slice of doctors to their API projections.
func DoctorViews(doctors []Doctor) []DoctorView {
	views := make([]DoctorView, 0, len(doctors))
	for i := range doctors {
		views = append(views, doctors[i].View())
	}
	return views
}
