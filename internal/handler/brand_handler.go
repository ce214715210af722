package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/database"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
)

// BrandRequest defines the structure for brand creation/update requests
type BrandRequest struct {
	Name string `json:"name" validate:"required"`
}

// ListBrands retrieves all brands
func ListBrands(c echo.Context) error {
	log := logger.FromContext(c)

	var brands []model.Brand
	result := database.GetDB().Find(&brands)
	if result.Error != nil {
		log.Error("Failed to retrieve brands", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve brands",
		})
	}

	return c.JSON(http.StatusOK, brands)
}

// GetBrand retrieves a single brand by ID
func GetBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var brand model.Brand
	result := database.GetDB().First(&brand, id)
	if result.Error != nil {
		log.Warn("Brand not found", zap.String("brand_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Brand not found",
		})
	}

	return c.JSON(http.StatusOK, brand)
}

// CreateBrand creates a new brand
func CreateBrand(c echo.Context) error {
	log := logger.FromContext(c)

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	brand := model.Brand{Name: req.Name}

	result := database.GetDB().Create(&brand)
	if result.Error != nil {
		log.Error("Failed to create brand", zap.String("name", req.Name), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to create brand",
		})
	}

	log.Info("Brand created successfully", zap.Uint("brand_id", brand.ID), zap.String("name", brand.Name))
	return c.JSON(http.StatusCreated, brand)
}

// UpdateBrand updates an existing brand
func UpdateBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	var req BrandRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid request data", zap.String("brand_id", id), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	var brand model.Brand
	result := database.GetDB().First(&brand, id)
	if result.Error != nil {
		log.Warn("Brand not found for update", zap.String("brand_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Brand not found",
		})
	}

	brand.Name = req.Name

	result = database.GetDB().Save(&brand)
	if result.Error != nil {
		log.Error("Failed to update brand", zap.String("brand_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to update brand",
		})
	}

	log.Info("Brand updated successfully", zap.String("brand_id", id))
	return c.JSON(http.StatusOK, brand)
}

// DeleteBrand deletes a brand (soft delete)
func DeleteBrand(c echo.Context) error {
	log := logger.FromContext(c)
	id := c.Param("id")

	result := database.GetDB().Delete(&model.Brand{}, id)
	if result.Error != nil {
		log.Error("Failed to delete brand", zap.String("brand_id", id), zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to delete brand",
		})
	}

	if result.RowsAffected == 0 {
		log.Warn("Brand not found for deletion", zap.String("brand_id", id))
		return c.JSON(http.StatusNotFound, echo.Map{
			"error": "Brand not found",
		})
	}

	log.Info("Brand deleted successfully", zap.String("brand_id", id))
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Brand deleted successfully",
	})
}
