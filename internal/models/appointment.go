package models

import (
	"time"
)

// Layouts for the date and time-of-day columns.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// IsActive reports whether the status counts toward booking conflicts.
// Cancelled and no-show appointments free their slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusScheduled || s == StatusCompleted
}

// Appointment represents a booked visit of a patient with a doctor.
//
// The three slot-key columns are the authoritative double-booking guard:
// each is populated while the appointment is active and NULLed once it is
// cancelled or marked no-show, so the unique indexes admit any number of
// inactive rows for the same slot but at most one active one. The booking
// validator performs the same checks up front only to produce friendly
// errors.
type Appointment struct {
	BaseModel
	PatientID string            `gorm:"size:36;index;not null" json:"patientId"`
	DoctorID  string            `gorm:"size:36;index;not null" json:"doctorId"`
	Date      string            `gorm:"size:10;index;not null" json:"date"` // "2006-01-02"
	Time      string            `gorm:"size:5;not null" json:"time"`        // "15:04"
	Status    AppointmentStatus `gorm:"size:10;default:'scheduled'" json:"status"`

	QRCode                string `gorm:"size:255" json:"qrCode,omitempty"`
	MorningReminderSent   bool   `gorm:"default:false" json:"-"`
	ThirtyMinReminderSent bool   `gorm:"default:false" json:"-"`
	DoctorNotes           string `gorm:"type:text" json:"doctorNotes,omitempty"`

	DoctorSlotKey  *string `gorm:"size:120;uniqueIndex" json:"-"`
	PatientSlotKey *string `gorm:"size:120;uniqueIndex" json:"-"`
	PatientDayKey  *string `gorm:"size:120;uniqueIndex" json:"-"`

	// Relations
	Patient User   `gorm:"foreignKey:PatientID" json:"-"`
	Doctor  Doctor `gorm:"foreignKey:DoctorID" json:"-"`
}

// SlotKeys returns the doctor-slot, patient-slot and patient-day keys for
// this appointment. All three are nil unless the status is active.
func (a *Appointment) SlotKeys() (doctorSlot, patientSlot, patientDay *string) {
	if !a.Status.IsActive() {
		return nil, nil, nil
	}
	ds := a.DoctorID + "|" + a.Date + "|" + a.Time
	ps := a.PatientID + "|" + a.Date + "|" + a.Time
	pd := a.PatientID + "|" + a.DoctorID + "|" + a.Date
	return &ds, &ps, &pd
}

// ApplySlotKeys recomputes the slot keys from the current status.
func (a *Appointment) ApplySlotKeys() {
	a.DoctorSlotKey, a.PatientSlotKey, a.PatientDayKey = a.SlotKeys()
}

// IsPast reports whether the appointment slot lies before now.
func (a *Appointment) IsPast(now time.Time) bool {
	today := now.Format(DateLayout)
	if a.Date != today {
		return a.Date < today
	}
	return a.Time < now.Format(TimeLayout)
}

// IsToday reports whether the appointment is on the current day.
func (a *Appointment) IsToday(now time.Time) bool {
	return a.Date == now.Format(DateLayout)
}

// IsUpcoming reports whether the appointment slot is still ahead.
func (a *Appointment) IsUpcoming(now time.Time) bool {
	return !a.IsPast(now)
}

// IsCancellable reports whether the patient may still cancel: the slot
// must be in the future and the appointment still scheduled.
func (a *Appointment) IsCancellable(now time.Time) bool {
	return !a.IsPast(now) && a.Status == StatusScheduled
}

// At returns the appointment's slot as a wall-clock instant in loc.
func (a *Appointment) At(loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
}

// AppointmentView is the full appointment shape returned by the API.
type AppointmentView struct {
	ID          string            `json:"id"`
	Patient     UserSanitized     `json:"patient"`
	Doctor      DoctorView        `json:"doctor"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Status      AppointmentStatus `json:"status"`
	QRCode      string            `json:"qrCode,omitempty"`
	DoctorNotes string            `json:"doctorNotes,omitempty"`
	IsPast      bool              `json:"isPast"`
	IsToday     bool              `json:"isToday"`
	IsUpcoming  bool              `json:"isUpcoming"`
	CreatedAt   time.Time         `json:"createdAt"`
	UpdatedAt   time.Time         `json:"updatedAt"`
}

// AppointmentListItem is the compact shape used by list endpoints.
type AppointmentListItem struct {
	ID             string            `json:"id"`
	PatientName    string            `json:"patientName"`
	DoctorName     string            `json:"doctorName"`
	Specialization string            `json:"specialization"`
	DoctorBuilding string            `json:"doctorBuilding,omitempty"`
	Date           string            `json:"date"`
	Time           string            `json:"time"`
	Status         AppointmentStatus `json:"status"`
	DoctorNotes    string            `json:"doctorNotes,omitempty"`
	IsPast         bool              `json:"isPast"`
	IsToday        bool              `json:"isToday"`
}

// View builds the full API projection. Patient and Doctor (with its User)
// must be preloaded.
func (a *Appointment) View(now time.Time) AppointmentView {
	return AppointmentView{
		ID:          a.ID,
		Patient:     a.Patient.Sanitize(),
		Doctor:      a.Doctor.View(),
		Date:        a.Date,
		Time:        a.Time,
		Status:      a.Status,
		QRCode:      a.QRCode,
		DoctorNotes: a.DoctorNotes,
		IsPast:      a.IsPast(now),
		IsToday:     a.IsToday(now),
		IsUpcoming:  a.IsUpcoming(now),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
}

// ListView builds the compact API projection.
func (a *Appointment) ListView(now time.Time) AppointmentListItem {
	return AppointmentListItem{
		ID:             a.ID,
		PatientName:    a.Patient.FullName(),
		DoctorName:     a.Doctor.User.FullName(),
		Specialization: a.Doctor.Specialization,
		DoctorBuilding: a.Doctor.Building,
		Date:           a.Date,
		Time:           a.Time,
		Status:         a.Status,
		DoctorNotes:    a.DoctorNotes,
		IsPast:         a.IsPast(now),
		IsToday:        a.IsToday(now),
	}
}

// AppointmentListItems maps appointments to their compact projections.
func AppointmentListItems(appointments []Appointment, now time.Time) []AppointmentListItem {
	items := make([]AppointmentListItem, 0, len(appointments))
	for i := range appointments {
		items = append(items, appointments[i].ListView(now))
	}
	return items
}
