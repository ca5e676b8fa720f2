package handlers

import (
	"math"
	"net/http"
	"strconv"

	"benefits-backend/models"
	"benefits-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BenefitHandler struct {
	DB *gorm.DB
}

// GetBenefits returns the active catalog, for collaborators browsing what
// they can redeem.
func (h *BenefitHandler) GetBenefits(c *gin.Context) {
	var benefits []models.Benefit
	if err := h.DB.Where("is_active = ?", true).Order("name ASC").Find(&benefits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch benefits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"benefits": benefits, "count": len(benefits)})
}

func (h *BenefitHandler) GetBenefit(c *gin.Context) {
	id := c.Param("id")

	var benefit models.Benefit
	if err := h.DB.Where("id = ? AND is_active = ?", id, true).First(&benefit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit not found"})
		return
	}

	c.JSON(http.StatusOK, benefit)
}

// ListBenefits is the admin view: includes inactive entries and paginates.
func (h *BenefitHandler) ListBenefits(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	query := h.DB.Model(&models.Benefit{})

	if active := c.Query("is_active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	var benefits []models.Benefit
	if err := query.Order("name ASC").Offset(offset).Limit(limit).Find(&benefits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch benefits"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"benefits": benefits,
		"total":    total,
		"page":     page,
		"limit":    limit,
		"pages":    int(math.Ceil(float64(total) / float64(limit))),
	})
}

func (h *BenefitHandler) CreateBenefit(c *gin.Context) {
	var req struct {
		Name            string `json:"name" binding:"required"`
		Detail          string `json:"detail"`
		Image           string `json:"image"`
		Rule1           string `json:"rule1"`
		Rule2           string `json:"rule2"`
		Value           int    `json:"value" binding:"required,gt=0"`
		RequiresJourney bool   `json:"requires_journey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var existing models.Benefit
	if err := h.DB.Where("name = ?", req.Name).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A benefit with this name already exists"})
		return
	}

	benefit := models.Benefit{
		ID:              uuid.New(),
		Name:            req.Name,
		Detail:          req.Detail,
		Image:           req.Image,
		Rule1:           req.Rule1,
		Rule2:           req.Rule2,
		Value:           req.Value,
		RequiresJourney: req.RequiresJourney,
		IsActive:        true,
	}

	if err := h.DB.Create(&benefit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create benefit"})
		return
	}

	c.JSON(http.StatusCreated, benefit)
}

func (h *BenefitHandler) UpdateBenefit(c *gin.Context) {
	id := c.Param("id")

	var benefit models.Benefit
	if err := h.DB.Where("id = ?", id).First(&benefit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit not found"})
		return
	}

	var req struct {
		Name            *string `json:"name"`
		Detail          *string `json:"detail"`
		Image           *string `json:"image"`
		Rule1           *string `json:"rule1"`
		Rule2           *string `json:"rule2"`
		Value           *int    `json:"value"`
		RequiresJourney *bool   `json:"requires_journey"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.Name != nil && *req.Name != benefit.Name {
		var existing models.Benefit
		if err := h.DB.Where("name = ? AND id <> ?", *req.Name, benefit.ID).First(&existing).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"error": "A benefit with this name already exists"})
			return
		}
		benefit.Name = *req.Name
	}
	if req.Detail != nil {
		benefit.Detail = *req.Detail
	}
	if req.Image != nil {
		benefit.Image = *req.Image
	}
	if req.Rule1 != nil {
		benefit.Rule1 = *req.Rule1
	}
	if req.Rule2 != nil {
		benefit.Rule2 = *req.Rule2
	}
	if req.Value != nil {
		if *req.Value <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Value must be greater than zero"})
			return
		}
		benefit.Value = *req.Value
	}
	if req.RequiresJourney != nil {
		benefit.RequiresJourney = *req.RequiresJourney
	}

	if err := h.DB.Save(&benefit).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update benefit"})
		return
	}

	c.JSON(http.StatusOK, benefit)
}

func (h *BenefitHandler) ActivateBenefit(c *gin.Context) {
	h.setActive(c, true, "Benefit activated")
}

// DeactivateBenefit hides the benefit from the catalog. Existing redemptions
// against it are untouched.
func (h *BenefitHandler) DeactivateBenefit(c *gin.Context) {
	h.setActive(c, false, "Benefit deactivated")
}

func (h *BenefitHandler) setActive(c *gin.Context, active bool, message string) {
	id := c.Param("id")

	var benefit models.Benefit
	if err := h.DB.Where("id = ?", id).First(&benefit).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Benefit not found"})
		return
	}

	if err := h.DB.Model(&benefit).Update("is_active", active).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update benefit"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}
