package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/live"
	"github.com/juanmircheva/reservas-app/metrics"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CallController struct {
	DB       *gorm.DB
	Provider services.CallProvider
}

func NewCallController(db *gorm.DB, provider services.CallProvider) *CallController {
	return &CallController{DB: db, Provider: provider}
}

// TriggerCall dispatches an outbound call and records one log row for it.
// The two steps are not transactional: once the provider accepted the
// call, a failed insert cannot unwind it.
func (cc *CallController) TriggerCall(c *gin.Context) {
	type reqBody struct {
		ReservationID *uint  `json:"reservation_id"`
		Phone         string `json:"phone"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	phone := body.Phone
	if phone == "" {
		if body.ReservationID == nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("phone or reservation_id is required"))
			return
		}
		var reservation models.Reservation
		if err := cc.DB.First(&reservation, *body.ReservationID).Error; err != nil {
			utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
			return
		}
		phone = reservation.CustomerPhone
	}

	if err := cc.Provider.MakeCall(phone); err != nil {
		metrics.DispatchTotal.WithLabelValues("call", "error").Inc()
		utils.ErrorLogger.Printf("Failed to dispatch call to %s: %v", phone, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to trigger call"))
		return
	}
	metrics.DispatchTotal.WithLabelValues("call", "ok").Inc()

	callLog := models.CallLog{
		ReservationID: body.ReservationID,
		Phone:         phone,
		Status:        "initiated",
	}
	if err := cc.DB.Create(&callLog).Error; err != nil {
		// The call went out; only the record is missing.
		utils.ErrorLogger.Printf("Call dispatched but log insert failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("call dispatched but not recorded"))
		return
	}

	go live.BroadcastCallUpdate(callLog)

	c.JSON(http.StatusOK, gin.H{"called": true, "call_id": callLog.ID})
}

// GetCalls lists call logs, latest first
func (cc *CallController) GetCalls(c *gin.Context) {
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	query := cc.DB.Preload("Reservation").Order("created_at DESC").Limit(limit)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if from := c.Query("from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid from date, expected YYYY-MM-DD"))
			return
		}
		query = query.Where("created_at >= ?", fromDate)
	}

	var calls []models.CallLog
	if err := query.Find(&calls).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "calls": calls})
}

// BapiWebhook receives asynchronous call-status callbacks. Deliveries are
// treated as always-succeeding; repeated deliveries overwrite the same
// row, and unknown call IDs are acknowledged without effect.
func (cc *CallController) BapiWebhook(c *gin.Context) {
	metrics.WebhookTotal.WithLabelValues("bapi").Inc()

	rawBody, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	type reqBody struct {
		CallID     uint   `json:"call_id"`
		Status     string `json:"status"`
		Transcript string `json:"transcript"`
	}
	var body reqBody
	if err := json.Unmarshal(rawBody, &body); err != nil || body.CallID == 0 {
		utils.InfoLogger.Printf("BAPI webhook without usable call_id: %v", err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var callLog models.CallLog
	if err := cc.DB.First(&callLog, body.CallID).Error; err != nil {
		utils.InfoLogger.Printf("BAPI webhook for unknown call %d", body.CallID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if body.Status != "" {
		callLog.Status = body.Status
	}
	if body.Transcript != "" {
		callLog.Transcript = body.Transcript
	}
	callLog.RawPayload = datatypes.JSON(rawBody)

	if err := cc.DB.Save(&callLog).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to update call %d from webhook: %v", callLog.ID, err)
	}

	go live.BroadcastCallUpdate(callLog)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
