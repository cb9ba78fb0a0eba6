package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleDoctor  Role = "doctor"
	RolePatient Role = "patient"
)

// Gender enum
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// User represents a user in the system
type User struct {
	BaseModel
	Username         string     `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email            string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password         string     `gorm:"size:255;not null" json:"-"` // Never send password in JSON
	FirstName        string     `gorm:"size:100" json:"firstName"`
	LastName         string     `gorm:"size:100" json:"lastName"`
	Role             Role       `gorm:"size:20;default:'patient'" json:"role"`
	Gender           Gender     `gorm:"size:10" json:"gender,omitempty"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber      string     `gorm:"size:15" json:"phoneNumber,omitempty"`
	TemporaryAddress string     `gorm:"size:255" json:"temporaryAddress,omitempty"`
	PermanentAddress string     `gorm:"size:255" json:"permanentAddress,omitempty"`
	ProfileImage     string     `json:"profileImage,omitempty"`
	IsActive         bool       `gorm:"default:true" json:"isActive"`

	// Relations (not always preloaded)
	RefreshTokens []RefreshToken `gorm:"foreignKey:UserID" json:"-"`
	Appointments  []Appointment  `gorm:"foreignKey:PatientID" json:"-"`
}

// FullName returns the user's display name.
func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// SetPassword hashes a password and sets it on the user
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashedPassword)
	return nil
}

// CheckPassword compares a password with the user's hashed password
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}

// UserSanitized represents the user data that is safe to send in API responses.
type UserSanitized struct {
	ID               string     `json:"id"`
	Username         string     `json:"username"`
	Email            string     `json:"email"`
	FirstName        string     `json:"firstName"`
	LastName         string     `json:"lastName"`
	FullName         string     `json:"fullName"`
	Role             Role       `json:"role"`
	Gender           Gender     `json:"gender,omitempty"`
	DateOfBirth      *time.Time `json:"dateOfBirth,omitempty"`
	PhoneNumber      string     `json:"phoneNumber,omitempty"`
	TemporaryAddress string     `json:"temporaryAddress,omitempty"`
	PermanentAddress string     `json:"permanentAddress,omitempty"`
	ProfileImage     string     `json:"profileImage,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// UserAdminView is the projection of a user returned to admins. It is the
// sanitized shape plus the moderation fields only admins may see or change.
type UserAdminView struct {
	UserSanitized
	IsActive bool `json:"isActive"`
}

// Sanitize creates a UserSanitized struct from a User model, excluding sensitive data.
func (u *User) Sanitize() UserSanitized {
	return UserSanitized{
		ID:               u.ID,
		Username:         u.Username,
		Email:            u.Email,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		FullName:         u.FullName(),
		Role:             u.Role,
		Gender:           u.Gender,
		DateOfBirth:      u.DateOfBirth,
		PhoneNumber:      u.PhoneNumber,
		TemporaryAddress: u.TemporaryAddress,
		PermanentAddress: u.PermanentAddress,
		ProfileImage:     u.ProfileImage,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

// AdminView creates the admin projection of a user.
func (u *User) AdminView() UserAdminView {
	return UserAdminView{
		UserSanitized: u.Sanitize(),
		IsActive:      u.IsActive,
	}
}
