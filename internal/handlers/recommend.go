package handlers

import (
	"github.com/gin-gonic/gin"

	"clinic-app-server/internal/models"
	"clinic-app-server/internal/recommend"
	"clinic-app-server/internal/utils"
)

// Defaults for the recommendation endpoint.
const (
	recommendTopK      = 3
	recommendThreshold = 0.7
)

// RecommendHandler handles symptom-based doctor recommendation requests.
type RecommendHandler struct {
	Engine *recommend.Engine
}

// NewRecommendHandler creates a new RecommendHandler.
func NewRecommendHandler(engine *recommend.Engine) *RecommendHandler {
	return &RecommendHandler{Engine: engine}
}

// RecommendRequest represents the free-text symptom description sent by
// a patient.
type RecommendRequest struct {
	Issue string `json:"issue" binding:"required,min=3"`
}

// Recommend handles suggesting doctors for a described health issue.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	var req RecommendRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctors, err := h.Engine.Recommend(c.Request.Context(), req.Issue, recommendTopK, recommendThreshold)
	if err != nil {
		utils.InternalServerError(c, "Failed to compute recommendations: "+err.Error())
		return
	}

	utils.Success(c, "Recommendations fetched successfully", gin.H{
		"issue":   req.Issue,
		"doctors": models.DoctorViews(doctors),
	})
}
