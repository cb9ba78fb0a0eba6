package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/events"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// DoctorHandler handles doctor directory and profile requests.
type DoctorHandler struct {
	DB         *gorm.DB
	Dispatcher *events.Dispatcher
}

// NewDoctorHandler creates a new DoctorHandler.
func NewDoctorHandler(db *gorm.DB, dispatcher *events.Dispatcher) *DoctorHandler {
	return &DoctorHandler{DB: db, Dispatcher: dispatcher}
}

// GetDoctors handles listing active doctors. Supports case-insensitive
// ?specialization= and ?max_fee= filters.
func (h *DoctorHandler) GetDoctors(c *gin.Context) {
	query := h.DB.Preload("User").Where("is_active = ?", true)

	if specialization := c.Query("specialization"); specialization != "" {
		query = query.Where("LOWER(specialization) = LOWER(?)", specialization)
	}
	if maxFee := c.Query("max_fee"); maxFee != "" {
		fee, err := strconv.ParseFloat(maxFee, 64)
		if err != nil {
			utils.BadRequest(c, "Invalid max_fee value")
			return
		}
		query = query.Where("appointment_fee <= ?", fee)
	}

	var doctors []models.Doctor
	if err := query.Order("specialization, created_at").Find(&doctors).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Doctors fetched successfully", models.DoctorViews(doctors))
}

// GetTopRatedDoctors handles listing the most senior active doctors,
// ordered by experience then rating. Supports ?limit= (default 5).
func (h *DoctorHandler) GetTopRatedDoctors(c *gin.Context) {
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.BadRequest(c, "Invalid limit value")
			return
		}
		limit = parsed
	}

	var doctors []models.Doctor
	err := h.DB.Preload("User").
		Where("is_active = ?", true).
		Order("experience_years DESC, rating DESC").
		Limit(limit).
		Find(&doctors).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch doctors: "+err.Error())
		return
	}

	utils.Success(c, "Top rated doctors fetched successfully", models.DoctorViews(doctors))
}

// GetDoctor handles fetching a single doctor profile by ID.
func (h *DoctorHandler) GetDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.Preload("User").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Doctor fetched successfully", doctor.View())
}

// UpdateDoctorRequest represents the request body for updating a doctor
// profile. Working hours use the "15:04" 24-hour format.
type UpdateDoctorRequest struct {
	Specialization  *string  `json:"specialization"`
	AppointmentFee  *float64 `json:"appointmentFee" binding:"omitempty,gte=0"`
	AvailableFrom   *string  `json:"availableFrom" binding:"omitempty,len=5"`
	AvailableTo     *string  `json:"availableTo" binding:"omitempty,len=5"`
	Building        *string  `json:"building"`
	Qualification   *string  `json:"qualification"`
	ExperienceYears *int     `json:"experienceYears" binding:"omitempty,gte=0"`
	Image           *string  `json:"image"`
	IsActive        *bool    `json:"isActive"`
}

// UpdateDoctor handles updating a doctor profile. Allowed for the owning
// doctor and for admins; only admins may toggle IsActive. Any change is
// announced so the search index stays in sync.
func (h *DoctorHandler) UpdateDoctor(c *gin.Context) {
	var req UpdateDoctorRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var doctor models.Doctor
	if err := h.DB.Preload("User").First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	actorRole, _ := middleware.GetUserRoleFromContext(c)
	if actorRole != models.RoleAdmin && doctor.UserID != actorID {
		utils.Forbidden(c, "You can only update your own doctor profile.")
		return
	}

	if req.Specialization != nil {
		doctor.Specialization = *req.Specialization
	}
	if req.AppointmentFee != nil {
		doctor.AppointmentFee = *req.AppointmentFee
	}
	if req.AvailableFrom != nil {
		doctor.AvailableFrom = *req.AvailableFrom
	}
	if req.AvailableTo != nil {
		doctor.AvailableTo = *req.AvailableTo
	}
	if req.Building != nil {
		doctor.Building = *req.Building
	}
	if req.Qualification != nil {
		doctor.Qualification = *req.Qualification
	}
	if req.ExperienceYears != nil {
		doctor.ExperienceYears = *req.ExperienceYears
	}
	if req.Image != nil {
		doctor.Image = *req.Image
	}
	if req.IsActive != nil {
		if actorRole != models.RoleAdmin {
			utils.Forbidden(c, "Only admins may activate or deactivate a doctor.")
			return
		}
		doctor.IsActive = *req.IsActive
	}

	if !doctor.HasValidHours() {
		utils.BadRequest(c, "availableFrom must be earlier than availableTo")
		return
	}

	if err := h.DB.Save(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to update doctor: "+err.Error())
		return
	}

	h.Dispatcher.PublishDoctor(events.DoctorEvent{Type: events.DoctorUpserted, DoctorID: doctor.ID})
	utils.Success(c, "Doctor updated successfully", doctor.View())
}

// DeleteDoctor handles removing a doctor profile (admin only). The
// owning user account stays; only the profile and its index entry go.
func (h *DoctorHandler) DeleteDoctor(c *gin.Context) {
	var doctor models.Doctor
	if err := h.DB.First(&doctor, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Doctor not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&doctor).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete doctor: "+err.Error())
		return
	}

	h.Dispatcher.PublishDoctor(events.DoctorEvent{Type: events.DoctorDeleted, DoctorID: doctor.ID})
	utils.Success(c, "Doctor deleted successfully", nil)
}
