package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/live"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReservationController struct {
	DB *gorm.DB
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db}
}

// CreateReservation
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	type reqBody struct {
		CustomerName  string         `json:"customer_name" binding:"required"`
		CustomerPhone string         `json:"customer_phone" binding:"required"`
		Date          time.Time      `json:"date" binding:"required"`
		PartySize     int            `json:"party_size"`
		Status        string         `json:"status"`
		DepositAmount float64        `json:"deposit_amount"`
		MenuSelection datatypes.JSON `json:"menu_selection"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation := models.Reservation{
		CustomerName:  body.CustomerName,
		CustomerPhone: body.CustomerPhone,
		Date:          body.Date,
		PartySize:     body.PartySize,
		Status:        models.ReservationHoldBlocked,
		DepositAmount: body.DepositAmount,
		MenuSelection: body.MenuSelection,
	}
	if reservation.PartySize <= 0 {
		reservation.PartySize = 2
	}
	if body.Status != "" {
		if !models.ValidStatus(body.Status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status"))
			return
		}
		reservation.Status = body.Status
	}

	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	go live.BroadcastReservationUpdate(reservation)

	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

// GetAllReservations supports simple filters: date lower-bound, status,
// limit. Most recent first.
func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	limit := 100
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	query := rc.DB.Order("created_at DESC").Limit(limit)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("date"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid date, expected YYYY-MM-DD"))
			return
		}
		query = query.Where("date >= ?", fromDate)
	}

	var reservations []models.Reservation
	if err := query.Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All reservations", reservations)
}

// GetReservationByID returns the reservation with its messages, calls and
// payments. The three sub-queries run concurrently; none depends on
// another, the request just waits for all of them.
func (rc *ReservationController) GetReservationByID(c *gin.Context) {
	idStr := c.Param("reservation_id")
	id, _ := strconv.Atoi(idStr)

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	var (
		messages []models.Message
		calls    []models.CallLog
		payments []models.Payment
		errs     [3]error
		wg       sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		errs[0] = rc.DB.Where("reservation_id = ?", reservation.ID).
			Order("created_at DESC").Find(&messages).Error
	}()
	go func() {
		defer wg.Done()
		errs[1] = rc.DB.Where("reservation_id = ?", reservation.ID).
			Order("created_at DESC").Find(&calls).Error
	}()
	go func() {
		defer wg.Done()
		errs[2] = rc.DB.Where("reservation_id = ?", reservation.ID).
			Order("created_at DESC").Find(&payments).Error
	}()
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Reservation detail", gin.H{
		"reservation": reservation,
		"messages":    messages,
		"calls":       calls,
		"payments":    payments,
	})
}

// UpdateReservation applies a partial update over a constrained field
// set. An empty body is rejected and nothing is written. Status values
// are checked against the enum but transitions are not constrained.
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	idStr := c.Param("reservation_id")
	id, _ := strconv.Atoi(idStr)

	type reqBody struct {
		CustomerName  *string         `json:"customer_name"`
		CustomerPhone *string         `json:"customer_phone"`
		Date          *time.Time      `json:"date"`
		PartySize     *int            `json:"party_size"`
		Status        *string         `json:"status"`
		DepositAmount *float64        `json:"deposit_amount"`
		DepositPaid   *bool           `json:"deposit_paid"`
		MenuSelection *datatypes.JSON `json:"menu_selection"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if body.CustomerName == nil && body.CustomerPhone == nil && body.Date == nil &&
		body.PartySize == nil && body.Status == nil && body.DepositAmount == nil &&
		body.DepositPaid == nil && body.MenuSelection == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("empty update body"))
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if body.CustomerName != nil {
		reservation.CustomerName = *body.CustomerName
	}
	if body.CustomerPhone != nil {
		reservation.CustomerPhone = *body.CustomerPhone
	}
	if body.Date != nil {
		reservation.Date = *body.Date
	}
	if body.PartySize != nil {
		reservation.PartySize = *body.PartySize
	}
	if body.Status != nil {
		if !models.ValidStatus(*body.Status) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid status"))
			return
		}
		reservation.Status = *body.Status
	}
	if body.DepositAmount != nil {
		reservation.DepositAmount = *body.DepositAmount
	}
	if body.DepositPaid != nil {
		reservation.DepositPaid = *body.DepositPaid
	}
	if body.MenuSelection != nil {
		reservation.MenuSelection = *body.MenuSelection
	}

	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	go live.BroadcastReservationUpdate(reservation)

	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}
