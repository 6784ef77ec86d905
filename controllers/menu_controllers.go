package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetCatalog returns the full menu catalog as a plain array
func (mc *MenuController) GetCatalog(c *gin.Context) {
	var items []models.MenuItem
	if err := mc.DB.Order("category, name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, items)
}

// GetSelectionSummary returns the aggregated menu selection of a
// reservation as JSON.
func (mc *MenuController) GetSelectionSummary(c *gin.Context) {
	reservation, ok := mc.reservationFromQuery(c)
	if !ok {
		return
	}

	summary, err := services.BuildMenuSummary(reservation)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to build menu summary for reservation %d: %v", reservation.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to build summary"))
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSelectionPDF renders the selection as a downloadable PDF
func (mc *MenuController) GetSelectionPDF(c *gin.Context) {
	reservation, ok := mc.reservationFromQuery(c)
	if !ok {
		return
	}

	summary, err := services.BuildMenuSummary(reservation)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to build menu summary for reservation %d: %v", reservation.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to build summary"))
		return
	}

	pdfBytes, err := services.RenderMenuPDF(summary)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to render PDF for reservation %d: %v", reservation.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to render pdf"))
		return
	}

	filename := fmt.Sprintf("menu-reserva-%d.pdf", reservation.ID)
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}

func (mc *MenuController) reservationFromQuery(c *gin.Context) (models.Reservation, bool) {
	idStr := c.Query("reservation_id")
	if idStr == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("reservation_id is required"))
		return models.Reservation{}, false
	}
	id, err := strconv.Atoi(idStr)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid reservation_id"))
		return models.Reservation{}, false
	}

	var reservation models.Reservation
	if err := mc.DB.First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return models.Reservation{}, false
	}
	return reservation, true
}
