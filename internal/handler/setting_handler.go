package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/internal/model"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/database"
	"github.com/G0J0-Satoru/Quoting-System-with-Management-workflow-sub000/pkg/logger"
)

// GetSettings returns all store settings as a key/value map
func GetSettings(c echo.Context) error {
	log := logger.FromContext(c)

	var settings []model.Setting
	result := database.GetDB().Find(&settings)
	if result.Error != nil {
		log.Error("Failed to retrieve settings", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"error": "Failed to retrieve settings",
		})
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}
	return c.JSON(http.StatusOK, echo.Map{"settings": values})
}

// UpdateSettings upserts the submitted key/value pairs
func UpdateSettings(c echo.Context) error {
	log := logger.FromContext(c)

	var values map[string]string
	if err := c.Bind(&values); err != nil {
		log.Error("Invalid settings data", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "Invalid request data",
		})
	}

	db := database.GetDB()
	for key, value := range values {
		setting := model.Setting{Key: key, Value: value}
		result := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&setting)
		if result.Error != nil {
			log.Error("Failed to save setting", zap.String("key", key), zap.Error(result.Error))
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"error": "Failed to save settings",
			})
		}
	}

	log.Info("Settings updated", zap.Int("count", len(values)))
	return c.JSON(http.StatusOK, echo.Map{"message": "Settings updated successfully"})
}

// ResolveTaxRate reads the store tax rate setting, falling back to the
// configured default when the setting is absent or unparseable.
func ResolveTaxRate(db *gorm.DB, fallback float64) float64 {
	var setting model.Setting
	if err := db.Where("key = ?", model.SettingTaxRate).First(&setting).Error; err != nil {
		return fallback
	}
	rate, err := strconv.ParseFloat(setting.Value, 64)
	if err != nil || rate < 0 {
		return fallback
	}
	return rate
}
