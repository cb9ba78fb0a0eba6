package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-app-server/internal/events"
	"clinic-app-server/internal/middleware"
	"clinic-app-server/internal/models"
	"clinic-app-server/internal/utils"
)

// UserHandler handles the admin-only user management endpoints.
type UserHandler struct {
	DB         *gorm.DB
	Dispatcher *events.Dispatcher
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(db *gorm.DB, dispatcher *events.Dispatcher) *UserHandler {
	return &UserHandler{DB: db, Dispatcher: dispatcher}
}

// GetUsers handles fetching all users (admin only). An optional ?role=
// query narrows the listing.
func (h *UserHandler) GetUsers(c *gin.Context) {
	query := h.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Order("created_at DESC").Find(&users).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch users: "+err.Error())
		return
	}

	views := make([]models.UserAdminView, 0, len(users))
	for i := range users {
		views = append(views, users[i].AdminView())
	}
	utils.Success(c, "Users fetched successfully", views)
}

// GetUser handles fetching a single user by ID (admin only).
func (h *UserHandler) GetUser(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "User fetched successfully", user.AdminView())
}

// CreateUserRequest represents the admin request for provisioning a user
// with any role.
type CreateUserRequest struct {
	Username    string `json:"username" binding:"required,min=3,max=150"`
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	FirstName   string `json:"firstName" binding:"required"`
	LastName    string `json:"lastName" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=admin doctor patient"`
	PhoneNumber string `json:"phoneNumber" binding:"omitempty,numeric,len=10"`
}

// CreateUser handles provisioning a user with any role (admin only).
// Creating a doctor user also creates their doctor profile.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var existingUser models.User
	if err := h.DB.Where("username = ? OR email = ?", req.Username, req.Email).First(&existingUser).Error; err == nil {
		utils.BadRequest(c, "A user with this username or email already exists")
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	user := models.User{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Role:        models.Role(req.Role),
		PhoneNumber: req.PhoneNumber,
		IsActive:    true,
	}
	if err := user.SetPassword(req.Password); err != nil {
		utils.InternalServerError(c, "Failed to hash password: "+err.Error())
		return
	}

	if err := h.DB.Create(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to create user: "+err.Error())
		return
	}

	if user.Role == models.RoleDoctor {
		if err := h.ensureDoctorProfile(&user); err != nil {
			utils.InternalServerError(c, "User created but doctor profile failed: "+err.Error())
			return
		}
	}

	utils.Created(c, "User created successfully", user.AdminView())
}

// UpdateUserRequest represents the admin request for updating a user.
// A role change to doctor creates the doctor profile if missing.
type UpdateUserRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	Role        string  `json:"role" binding:"omitempty,oneof=admin doctor patient"`
	PhoneNumber *string `json:"phoneNumber"`
	IsActive    *bool   `json:"isActive"`
}

// UpdateUser handles updating a user's details, role and active flag
// (admin only).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	actorID, _ := middleware.GetUserIDFromContext(c)
	if req.IsActive != nil && !*req.IsActive && user.ID == actorID {
		utils.BadRequest(c, "You cannot deactivate your own account")
		return
	}

	previousRole := user.Role

	if req.FirstName != "" {
		user.FirstName = req.FirstName
	}
	if req.LastName != "" {
		user.LastName = req.LastName
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = *req.PhoneNumber
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}
	if req.Role != "" {
		user.Role = models.Role(req.Role)
	}

	if err := h.DB.Save(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to update user: "+err.Error())
		return
	}

	_, demoted := doctorRoleTransition(previousRole, user.Role)
	if user.Role == models.RoleDoctor {
		if err := h.ensureDoctorProfile(&user); err != nil {
			utils.InternalServerError(c, "User updated but doctor profile failed: "+err.Error())
			return
		}
	} else if demoted {
		if err := h.retireDoctorProfile(&user); err != nil {
			utils.InternalServerError(c, "User updated but doctor profile retirement failed: "+err.Error())
			return
		}
	}

	utils.Success(c, "User updated successfully", user.AdminView())
}

// DeleteUser handles removing a user (admin only). Deleting a doctor user
// also removes their profile from the search index.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actorID, _ := middleware.GetUserIDFromContext(c)
	if c.Param("id") == actorID {
		utils.BadRequest(c, "You cannot delete your own account")
		return
	}

	var user models.User
	if err := h.DB.First(&user, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "User not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	var doctor models.Doctor
	hadDoctorProfile := h.DB.First(&doctor, "user_id = ?", user.ID).Error == nil

	if err := h.DB.Delete(&user).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete user: "+err.Error())
		return
	}

	if hadDoctorProfile {
		h.DB.Delete(&doctor)
		h.Dispatcher.PublishDoctor(events.DoctorEvent{Type: events.DoctorDeleted, DoctorID: doctor.ID})
	}

	utils.Success(c, "User deleted successfully", nil)
}

// ensureDoctorProfile creates the default doctor profile for a user who
// has (or just gained) the doctor role, and announces the new profile so
// the search index picks it up.
func (h *UserHandler) ensureDoctorProfile(user *models.User) error {
	var doctor models.Doctor
	err := h.DB.First(&doctor, "user_id = ?", user.ID).Error
	if err == nil {
		return nil
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}

	doctor = models.Doctor{
		UserID:        user.ID,
		AvailableFrom: "09:00",
		AvailableTo:   "17:00",
		IsActive:      true,
	}
	if err := h.DB.Create(&doctor).Error; err != nil {
		return err
	}

	h.Dispatcher.PublishDoctor(events.DoctorEvent{Type: events.DoctorUpserted, DoctorID: doctor.ID})
	return nil
}

// doctorRoleTransition reports whether a role change grants or revokes
// the doctor role.
func doctorRoleTransition(previous, current models.Role) (promoted, demoted bool) {
	return previous != models.RoleDoctor && current == models.RoleDoctor,
		previous == models.RoleDoctor && current != models.RoleDoctor
}

// retireDoctorProfile deactivates the doctor profile of a user who lost
// the doctor role, so they stop being bookable and recommendable.
// Appointment history stays attached to the profile.
func (h *UserHandler) retireDoctorProfile(user *models.User) error {
	var doctor models.Doctor
	err := h.DB.First(&doctor, "user_id = ?", user.ID).Error
	if err == gorm.ErrRecordNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	if err := h.DB.Model(&doctor).Update("is_active", false).Error; err != nil {
		return err
	}

	h.Dispatcher.PublishDoctor(events.DoctorEvent{Type: events.DoctorDeleted, DoctorID: doctor.ID})
	return nil
}
