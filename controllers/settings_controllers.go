package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingController struct {
	DB *gorm.DB
}

func NewSettingController(db *gorm.DB) *SettingController {
	return &SettingController{DB: db}
}

// GetSettings returns a key->value map, optionally filtered with
// ?keys=a,b,c. Defaults to all keys.
func (sc *SettingController) GetSettings(c *gin.Context) {
	query := sc.DB.Model(&models.Setting{})
	if keys := c.Query("keys"); keys != "" {
		query = query.Where("`key` IN ?", strings.Split(keys, ","))
	}

	var settings []models.Setting
	if err := query.Find(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	values := make(map[string]string, len(settings))
	for _, s := range settings {
		values[s.Key] = s.Value
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "settings": values})
}

// PutSettings upserts the given key/value pairs with a server-stamped
// update timestamp.
func (sc *SettingController) PutSettings(c *gin.Context) {
	type reqBody struct {
		Settings map[string]string `json:"settings" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if len(body.Settings) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("settings must not be empty"))
		return
	}

	now := time.Now()
	for key, value := range body.Settings {
		setting := models.Setting{Key: key, Value: value, UpdatedAt: now}
		if err := sc.DB.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).Create(&setting).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.InfoLogger.Printf("Updated %d settings", len(body.Settings))

	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": len(body.Settings)})
}

// TestWhatsApp exercises the stored WhatsApp credentials against the
// Graph API regardless of which outbound transport is active.
func (sc *SettingController) TestWhatsApp(c *gin.Context) {
	provider := services.NewMetaWhatsAppProvider(sc.DB)
	metadata, err := provider.TestConnection()
	if err != nil {
		utils.ErrorLogger.Printf("WhatsApp connectivity test failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("whatsapp connectivity test failed"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "result": metadata})
}
