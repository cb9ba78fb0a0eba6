package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/booking"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/receipt"
	"clinic-app-server/internal/utils"
)

// AppointmentHandler handles appointment booking, listing and the
// guarded status transitions. All write paths go through the booking
// service; the handler only maps identities and errors.
type AppointmentHandler struct {
	DB       *gorm.DB
	Booking  *booking.Service
	Receipts *receipt.Generator
	Now      func() time.Time
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, bookingService *booking.Service, receipts *receipt.Generator) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Booking: bookingService, Receipts: receipts, Now: time.Now}
}

// CreateAppointmentRequest represents the request body for booking an
// appointment.
type CreateAppointmentRequest struct {
	DoctorID string `json:"doctorId" binding:"required"`
	Date     string `json:"date" binding:"required,len=10"` // "2006-01-02"
	Time     string `json:"time" binding:"required,len=5"`  // "15:04"
}

// CreateAppointment handles booking a new appointment for the
// authenticated patient.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	if _, err := time.Parse(models.DateLayout, req.Date); err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	if _, err := time.Parse(models.TimeLayout, req.Time); err != nil {
		utils.BadRequest(c, "Invalid time, expected HH:MM")
		return
	}

	patient, ok := h.currentUser(c)
	if !ok {
		return
	}

	appointment, err := h.Booking.Book(patient, req.DoctorID, req.Date, req.Time)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appointment.View(h.Now()))
}

// GetAppointments handles listing appointments scoped to the caller:
// patients see their own, doctors see their schedule, admins see all.
// Supports ?status= and ?date_filter=upcoming|past|today.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	query := h.DB.Preload("Patient").Preload("Doctor.User")

	switch actorRole {
	case models.RolePatient:
		query = query.Where("patient_id = ?", actorID)
	case models.RoleDoctor:
		doctor, ok := h.doctorProfile(c, actorID)
		if !ok {
			return
		}
		query = query.Where("doctor_id = ?", doctor.ID)
	case models.RoleAdmin:
		// Unscoped.
	default:
		utils.Forbidden(c, "Unknown role")
		return
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	now := h.Now()
	today := now.Format(models.DateLayout)
	timeNow := now.Format(models.TimeLayout)
	switch c.Query("date_filter") {
	case "":
		// No date filter.
	case "today":
		query = query.Where("date = ?", today)
	case "upcoming":
		query = query.Where("date > ? OR (date = ? AND time >= ?)", today, today, timeNow)
	case "past":
		query = query.Where("date < ? OR (date = ? AND time < ?)", today, today, timeNow)
	default:
		utils.BadRequest(c, "Invalid date_filter, expected upcoming, past or today")
		return
	}

	var appointments []models.Appointment
	if err := query.Order("date, time").Find(&appointments).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", models.AppointmentListItems(appointments, now))
}

// GetAppointment handles fetching one appointment, visible to its
// patient, its doctor and admins.
func (h *AppointmentHandler) GetAppointment(c *gin.Context) {
	appointment, ok := h.loadVisible(c)
	if !ok {
		return
	}
	utils.Success(c, "Appointment fetched successfully", appointment.View(h.Now()))
}

// CancelAppointment handles a patient cancelling their own upcoming
// appointment.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)

	appointment, err := h.Booking.Cancel(actorID, c.Param("id"))
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	utils.Success(c, "Appointment cancelled successfully", appointment.View(h.Now()))
}

// CompleteAppointment handles the assigned doctor (or an admin) marking
// a scheduled appointment completed.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Booking.Complete(actorID, actorRole, c.Param("id"))
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	utils.Success(c, "Appointment marked as completed", appointment.View(h.Now()))
}

// MarkNoShow handles the assigned doctor (or an admin) marking a past
// scheduled appointment as a no-show.
func (h *AppointmentHandler) MarkNoShow(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Booking.MarkNoShow(actorID, actorRole, c.Param("id"))
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	utils.Success(c, "Appointment marked as no-show", appointment.View(h.Now()))
}

// UpdateNotesRequest represents the request body for attaching doctor
// notes to an appointment.
type UpdateNotesRequest struct {
	Notes string `json:"notes" binding:"required"`
}

// UpdateNotes handles the assigned doctor (or an admin) attaching notes.
func (h *AppointmentHandler) UpdateNotes(c *gin.Context) {
	var req UpdateNotesRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)

	appointment, err := h.Booking.UpdateNotes(actorID, actorRole, c.Param("id"), req.Notes)
	if err != nil {
		h.respondBookingError(c, err)
		return
	}
	utils.Success(c, "Appointment notes updated", appointment.View(h.Now()))
}

// GetBookedSlots handles listing the taken time slots of a doctor on a
// given date, so clients can grey them out before booking. Requires
// ?doctor_id= and ?date=.
func (h *AppointmentHandler) GetBookedSlots(c *gin.Context) {
	doctorID := c.Query("doctor_id")
	date := c.Query("date")
	if doctorID == "" || date == "" {
		utils.BadRequest(c, "doctor_id and date are required")
		return
	}
	if _, err := time.Parse(models.DateLayout, date); err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var times []string
	err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND date = ? AND status IN ?", doctorID, date,
			[]models.AppointmentStatus{models.StatusScheduled, models.StatusCompleted}).
		Order("time").
		Pluck("time", &times).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch booked slots: "+err.Error())
		return
	}

	utils.Success(c, "Booked slots fetched successfully", gin.H{
		"doctorId":    doctorID,
		"date":        date,
		"bookedSlots": times,
	})
}

// GetReceipt serves the QR receipt image of an appointment, visible to
// the same parties as the appointment itself.
func (h *AppointmentHandler) GetReceipt(c *gin.Context) {
	appointment, ok := h.loadVisible(c)
	if !ok {
		return
	}
	if appointment.QRCode == "" {
		utils.NotFound(c, "No receipt available for this appointment")
		return
	}
	c.File(h.Receipts.AbsPath(appointment.QRCode))
}

// DashboardStats is the aggregate view backing the doctor dashboard.
type DashboardStats struct {
	TodayTotal     int64   `json:"todayTotal"`
	TodayCompleted int64   `json:"todayCompleted"`
	TodayRemaining int64   `json:"todayRemaining"`
	UpcomingTotal  int64   `json:"upcomingTotal"`
	WeekTotal      int64   `json:"weekTotal"`
	TotalPatients  int64   `json:"totalPatients"`
	CompletionRate float64 `json:"completionRate"`
}

// GetDoctorDashboard handles the authenticated doctor's dashboard
// aggregates: today's load, the upcoming queue and the distinct patient
// count.
func (h *AppointmentHandler) GetDoctorDashboard(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	doctor, ok := h.doctorProfile(c, actorID)
	if !ok {
		return
	}

	now := h.Now()
	today := now.Format(models.DateLayout)
	timeNow := now.Format(models.TimeLayout)
	var stats DashboardStats

	base := func() *gorm.DB {
		return h.DB.Model(&models.Appointment{}).Where("doctor_id = ?", doctor.ID)
	}

	if err := base().Where("date = ? AND status IN ?", today, activeStatuses()).Count(&stats.TodayTotal).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	if err := base().Where("date = ? AND status = ?", today, models.StatusCompleted).Count(&stats.TodayCompleted).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	stats.TodayRemaining = stats.TodayTotal - stats.TodayCompleted
	if err := base().Where("status = ? AND (date > ? OR (date = ? AND time >= ?))",
		models.StatusScheduled, today, today, timeNow).Count(&stats.UpcomingTotal).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	weekEnd := now.AddDate(0, 0, 7).Format(models.DateLayout)
	if err := base().Where("date >= ? AND date < ? AND status IN ?", today, weekEnd, activeStatuses()).
		Count(&stats.WeekTotal).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	if err := base().Distinct("patient_id").Count(&stats.TotalPatients).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}

	// Completion rate over all decided past appointments.
	var completed, noShow int64
	if err := base().Where("status = ?", models.StatusCompleted).Count(&completed).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	if err := base().Where("status = ?", models.StatusNoShow).Count(&noShow).Error; err != nil {
		utils.InternalServerError(c, "Failed to compute dashboard: "+err.Error())
		return
	}
	if completed+noShow > 0 {
		stats.CompletionRate = float64(completed) / float64(completed+noShow)
	}

	utils.Success(c, "Dashboard fetched successfully", stats)
}

// GetDoctorPatients handles listing the distinct patients who have ever
// booked with the authenticated doctor.
func (h *AppointmentHandler) GetDoctorPatients(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	doctor, ok := h.doctorProfile(c, actorID)
	if !ok {
		return
	}

	var patients []models.User
	err := h.DB.
		Joins("JOIN appointments ON appointments.patient_id = users.id").
		Where("appointments.doctor_id = ?", doctor.ID).
		Distinct("users.*").
		Order("users.first_name, users.last_name").
		Find(&patients).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	views := make([]models.UserSanitized, 0, len(patients))
	for i := range patients {
		views = append(views, patients[i].Sanitize())
	}
	utils.Success(c, "Patients fetched successfully", views)
}

// respondBookingError maps the booking service's error taxonomy onto
// HTTP responses. Rule violations carry the rule name as a machine code.
func (h *AppointmentHandler) respondBookingError(c *gin.Context, err error) {
	var ruleErr *booking.RuleError
	var permErr *booking.PermissionError
	var stateErr *booking.StateError
	var notFoundErr *booking.NotFoundError

	switch {
	case errors.As(err, &ruleErr):
		utils.ErrorWithCode(c, http.StatusBadRequest, string(ruleErr.Rule), ruleErr.Message)
	case errors.As(err, &permErr):
		utils.Forbidden(c, permErr.Message)
	case errors.As(err, &stateErr):
		utils.ErrorWithCode(c, http.StatusConflict, "invalid_state", stateErr.Message)
	case errors.As(err, &notFoundErr):
		utils.NotFound(c, notFoundErr.Error())
	default:
		utils.InternalServerError(c, "Appointment operation failed: "+err.Error())
	}
}

// currentUser loads the authenticated user row, responding on failure.
func (h *AppointmentHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.Unauthorized(c, "User not found")
		return nil, false
	}
	return &user, true
}

// doctorProfile loads the doctor profile owned by the given user ID,
// responding on failure.
func (h *AppointmentHandler) doctorProfile(c *gin.Context, userID string) (*models.Doctor, bool) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "No doctor profile for this account")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}
	return &doctor, true
}

// loadVisible fetches an appointment and enforces the read permission:
// the owning patient, the assigned doctor or an admin.
func (h *AppointmentHandler) loadVisible(c *gin.Context) (*models.Appointment, bool) {
	var appointment models.Appointment
	err := h.DB.Preload("Patient").Preload("Doctor.User").First(&appointment, "id = ?", c.Param("id")).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return nil, false
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)
	switch {
	case actorRole == models.RoleAdmin:
	case appointment.PatientID == actorID:
	case actorRole == models.RoleDoctor && appointment.Doctor.UserID == actorID:
	default:
		utils.Forbidden(c, "You do not have permission to view this appointment.")
		return nil, false
	}
	return &appointment, true
}

func activeStatuses() []models.AppointmentStatus {
	return []models.AppointmentStatus{models.StatusScheduled, models.StatusCompleted}
}
