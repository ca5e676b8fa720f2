package handlers

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"benefits-backend/models"
	"benefits-backend/services"
	"benefits-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RedemptionHandler struct {
	Service *services.RedemptionService
}

// redemptionStatus maps engine errors to HTTP statuses. Insufficient balance
// and transition conflicts are 409s: the request was well formed but lost to
// the current state of the world.
func redemptionStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrBenefitNotFound),
		errors.Is(err, services.ErrRedemptionNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, services.ErrInsufficientPoints),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict, err.Error()
	case errors.Is(err, services.ErrUserInactive),
		errors.Is(err, services.ErrBenefitInactive),
		errors.Is(err, services.ErrInvalidPoints),
		errors.Is(err, services.ErrPointsExceedValue),
		errors.Is(err, services.ErrInvalidUsageWindow),
		errors.Is(err, services.ErrNotEligible),
		errors.Is(err, services.ErrInvalidState):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout, "Operation timed out. Please try again."
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

func (h *RedemptionHandler) CreateRedemption(c *gin.Context) {
	var req struct {
		UserID     int       `json:"user_id" binding:"required,min=1"`
		BenefitID  uuid.UUID `json:"benefit_id" binding:"required"`
		Points     int       `json:"points" binding:"required"`
		RedeemedAt time.Time `json:"redeemed_at"`
		UseBy      time.Time `json:"use_by" binding:"required"`
		Notes      string    `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Collaborators can only redeem on their own behalf.
	role, _ := c.Get("user_role")
	employeeID, _ := c.Get("employee_id")
	if role != "admin" && role != "rrhh" && employeeID != req.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "You can only redeem benefits for yourself"})
		return
	}

	if req.RedeemedAt.IsZero() {
		req.RedeemedAt = time.Now().UTC()
	}

	redemption, remaining, err := h.Service.Redeem(c.Request.Context(), services.RedeemInput{
		UserID:     req.UserID,
		BenefitID:  req.BenefitID,
		Points:     req.Points,
		RedeemedAt: req.RedeemedAt,
		UseBy:      req.UseBy,
		Notes:      req.Notes,
	})
	if err != nil {
		status, msg := redemptionStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"redemption":       redemption,
		"remaining_points": remaining,
	})
}

func (h *RedemptionHandler) GetRedemption(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid redemption ID"})
		return
	}

	redemption, remaining, err := h.Service.GetByID(c.Request.Context(), id)
	if err != nil {
		status, msg := redemptionStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	// Collaborators can only see their own redemptions.
	role, _ := c.Get("user_role")
	employeeID, _ := c.Get("employee_id")
	if role != "admin" && role != "rrhh" && employeeID != redemption.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redemption":       redemption,
		"remaining_points": remaining,
	})
}

// GetUserRedemptions lists one user's redemption history, newest first.
func (h *RedemptionHandler) GetUserRedemptions(c *gin.Context) {
	userID, err := strconv.Atoi(c.Param("user_id"))
	if err != nil || userID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user ID"})
		return
	}

	role, _ := c.Get("user_role")
	employeeID, _ := c.Get("employee_id")
	if role != "admin" && role != "rrhh" && employeeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Access denied"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))
	state := models.RedemptionState(c.Query("state"))

	redemptions, total, err := h.Service.ListByUser(c.Request.Context(), userID, state, page, size)
	if err != nil {
		status, msg := redemptionStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	page, size = services.NormalizePage(page, size)
	c.JSON(http.StatusOK, gin.H{
		"redemptions": redemptions,
		"total":       total,
		"page":        page,
		"size":        size,
		"pages":       int(math.Ceil(float64(total) / float64(size))),
	})
}

// ListRedemptions is the staff view across all users, with optional
// user/benefit/state filters.
func (h *RedemptionHandler) ListRedemptions(c *gin.Context) {
	var filter services.ListFilter

	if v := c.Query("user_id"); v != "" {
		userID, err := strconv.Atoi(v)
		if err != nil || userID < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user_id filter"})
			return
		}
		filter.UserID = &userID
	}
	if v := c.Query("benefit_id"); v != "" {
		benefitID, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid benefit_id filter"})
			return
		}
		filter.BenefitID = &benefitID
	}
	filter.State = models.RedemptionState(c.Query("state"))

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "10"))

	redemptions, total, err := h.Service.ListAll(c.Request.Context(), filter, page, size)
	if err != nil {
		status, msg := redemptionStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	page, size = services.NormalizePage(page, size)
	c.JSON(http.StatusOK, gin.H{
		"redemptions": redemptions,
		"total":       total,
		"page":        page,
		"size":        size,
		"pages":       int(math.Ceil(float64(total) / float64(size))),
	})
}

// UpdateRedemptionState drives the state machine: USED, CANCELLED or EXPIRED.
func (h *RedemptionHandler) UpdateRedemptionState(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid redemption ID"})
		return
	}

	var req struct {
		State models.RedemptionState `json:"state" binding:"required"`
		Notes *string                `json:"notes"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	redemption, remaining, err := h.Service.ChangeState(c.Request.Context(), id, req.State, req.Notes)
	if err != nil {
		status, msg := redemptionStatus(err)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"redemption":       redemption,
		"remaining_points": remaining,
	})
}
