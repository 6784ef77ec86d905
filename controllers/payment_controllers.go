package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/juanmircheva/reservas-app/live"
	"github.com/juanmircheva/reservas-app/metrics"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
)

type PaymentController struct {
	DB *gorm.DB
}

func NewPaymentController(db *gorm.DB) *PaymentController {
	return &PaymentController{DB: db}
}

// CreateManualPayment records a deposit collected by hand (bank transfer
// or cash). As a side effect the reservation is confirmed and marked as
// deposit-paid, whatever its previous status.
func (pc *PaymentController) CreateManualPayment(c *gin.Context) {
	type reqBody struct {
		ReservationID uint    `json:"reservation_id" binding:"required"`
		Method        string  `json:"method" binding:"required,oneof=transferencia efectivo"`
		Amount        float64 `json:"amount" binding:"required,gt=0"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := pc.DB.First(&reservation, body.ReservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	now := time.Now()
	payment := models.Payment{
		ReservationID: reservation.ID,
		Method:        body.Method,
		Amount:        body.Amount,
		Status:        "paid",
		ReferenceID:   "MAN-" + uuid.New().String(),
		PaymentTime:   &now,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	reservation.Status = models.ReservationConfirmed
	reservation.DepositPaid = true
	if err := pc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Manual payment %d recorded for reservation %d (%s, %.2f)",
		payment.ID, reservation.ID, payment.Method, payment.Amount)

	go live.BroadcastPaymentUpdate(payment)
	go live.BroadcastReservationUpdate(reservation)

	c.JSON(http.StatusOK, gin.H{
		"payment_id": payment.ID,
		"status":     payment.Status,
	})
}

// GetPayments lists the latest 200 payments with their reservations
func (pc *PaymentController) GetPayments(c *gin.Context) {
	var payments []models.Payment
	if err := pc.DB.Preload("Reservation").
		Order("created_at DESC").Limit(200).Find(&payments).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "All payments", payments)
}

// CreateCheckout opens a Stripe-hosted checkout session for the
// reservation deposit and records a pending card payment.
func (pc *PaymentController) CreateCheckout(c *gin.Context) {
	type reqBody struct {
		ReservationID uint `json:"reservation_id" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := pc.DB.First(&reservation, body.ReservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	stripeService := services.GetStripeService()
	session, err := stripeService.CreateCheckoutSession(reservation)
	if err != nil {
		utils.ErrorLogger.Printf("Failed to create checkout session for reservation %d: %v", reservation.ID, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to create checkout session"))
		return
	}

	payment := models.Payment{
		ReservationID: reservation.ID,
		Method:        "tarjeta",
		Amount:        reservation.DepositAmount,
		Status:        "pending",
		ReferenceID:   session.ID,
		CheckoutURL:   session.URL,
	}
	if err := pc.DB.Create(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	go live.BroadcastPaymentUpdate(payment)

	c.JSON(http.StatusOK, gin.H{
		"payment_id":   payment.ID,
		"checkout_url": session.URL,
	})
}

// StripeWebhook handles checkout completion callbacks. The signature is
// verified against the webhook secret before anything is touched.
func (pc *PaymentController) StripeWebhook(c *gin.Context) {
	metrics.WebhookTotal.WithLabelValues("stripe").Inc()

	payload, err := c.GetRawData()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to read request body"))
		return
	}

	stripeService := services.GetStripeService()
	if !stripeService.ValidateSignature(payload, c.GetHeader("Stripe-Signature")) {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid signature"))
		return
	}

	var event struct {
		Type string `json:"type"`
		Data struct {
			Object struct {
				ID            string `json:"id"`
				PaymentStatus string `json:"payment_status"`
			} `json:"object"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &event); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("failed to parse event"))
		return
	}

	if event.Type != "checkout.session.completed" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var payment models.Payment
	if err := pc.DB.Where("reference_id = ?", event.Data.Object.ID).First(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("payment not found"))
		return
	}

	now := time.Now()
	payment.Status = "paid"
	payment.PaymentTime = &now
	if err := pc.DB.Save(&payment).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var reservation models.Reservation
	if err := pc.DB.First(&reservation, payment.ReservationID).Error; err == nil {
		reservation.Status = models.ReservationConfirmed
		reservation.DepositPaid = true
		if err := pc.DB.Save(&reservation).Error; err != nil {
			utils.ErrorLogger.Printf("Payment %d confirmed but reservation update failed: %v", payment.ID, err)
		} else {
			go live.BroadcastReservationUpdate(reservation)
		}
	}

	utils.InfoLogger.Printf("Checkout completed for payment %d (session %s)", payment.ID, event.Data.Object.ID)
	go live.BroadcastPaymentUpdate(payment)

	c.JSON(http.StatusOK, gin.H{"received": true})
}
