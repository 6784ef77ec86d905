package controllers

import (
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/live"
	"github.com/juanmircheva/reservas-app/metrics"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
)

type WhatsAppController struct {
	DB       *gorm.DB
	Provider services.WhatsAppProvider
}

func NewWhatsAppController(db *gorm.DB, provider services.WhatsAppProvider) *WhatsAppController {
	return &WhatsAppController{DB: db, Provider: provider}
}

// SendToReservation sends a WhatsApp message to the phone of the owning
// reservation and appends the outbound message row. Not transactional:
// a sent message is never unwound if the insert fails.
func (wc *WhatsAppController) SendToReservation(c *gin.Context) {
	type reqBody struct {
		ReservationID uint   `json:"reservation_id" binding:"required"`
		Message       string `json:"message" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := wc.DB.First(&reservation, body.ReservationID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("reservation not found"))
		return
	}

	if err := wc.Provider.SendMessage(reservation.CustomerPhone, body.Message); err != nil {
		metrics.DispatchTotal.WithLabelValues("whatsapp", "error").Inc()
		utils.ErrorLogger.Printf("Failed to send WhatsApp to %s: %v", reservation.CustomerPhone, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to send message"))
		return
	}
	metrics.DispatchTotal.WithLabelValues("whatsapp", "ok").Inc()

	message := models.Message{
		ReservationID: &reservation.ID,
		Phone:         reservation.CustomerPhone,
		Direction:     "outbound",
		Channel:       "whatsapp",
		Body:          body.Message,
	}
	if err := wc.DB.Create(&message).Error; err != nil {
		utils.ErrorLogger.Printf("Message sent but log insert failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("message sent but not recorded"))
		return
	}

	go live.BroadcastMessageEvent(message)

	c.JSON(http.StatusOK, gin.H{"sent": true})
}

// GetConversation lists the message history for a phone number
func (wc *WhatsAppController) GetConversation(c *gin.Context) {
	phone := c.Query("phone")
	if phone == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("phone is required"))
		return
	}

	limit := 100
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}

	var messages []models.Message
	if err := wc.DB.Where("phone = ?", phone).
		Order("created_at DESC").Limit(limit).Find(&messages).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "messages": messages})
}

// PostConversationMessage sends to an arbitrary phone and logs it,
// linked to the latest reservation owning that phone when there is one.
func (wc *WhatsAppController) PostConversationMessage(c *gin.Context) {
	type reqBody struct {
		Phone   string `json:"phone" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	var body reqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := wc.Provider.SendMessage(body.Phone, body.Message); err != nil {
		metrics.DispatchTotal.WithLabelValues("whatsapp", "error").Inc()
		utils.ErrorLogger.Printf("Failed to send WhatsApp to %s: %v", body.Phone, err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("failed to send message"))
		return
	}
	metrics.DispatchTotal.WithLabelValues("whatsapp", "ok").Inc()

	message := models.Message{
		ReservationID: wc.findReservationID(body.Phone),
		Phone:         body.Phone,
		Direction:     "outbound",
		Channel:       "whatsapp",
		Body:          body.Message,
	}
	if err := wc.DB.Create(&message).Error; err != nil {
		utils.ErrorLogger.Printf("Message sent but log insert failed: %v", err)
		utils.RespondError(c, http.StatusInternalServerError, errors.New("message sent but not recorded"))
		return
	}

	go live.BroadcastMessageEvent(message)

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// MetaWebhookVerify answers the Graph API subscription handshake.
func (wc *WhatsAppController) MetaWebhookVerify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	verifyToken := os.Getenv("WHATSAPP_VERIFY_TOKEN")
	if mode == "subscribe" && verifyToken != "" && token == verifyToken {
		c.String(http.StatusOK, challenge)
		return
	}
	c.AbortWithStatus(http.StatusForbidden)
}

// MetaWebhook receives inbound WhatsApp messages from the Graph API and
// appends them to the conversation log. Always acknowledged with 200.
func (wc *WhatsAppController) MetaWebhook(c *gin.Context) {
	metrics.WebhookTotal.WithLabelValues("whatsapp").Inc()

	type metaEnvelope struct {
		Entry []struct {
			Changes []struct {
				Value struct {
					Messages []struct {
						From string `json:"from"`
						Text struct {
							Body string `json:"body"`
						} `json:"text"`
					} `json:"messages"`
				} `json:"value"`
			} `json:"changes"`
		} `json:"entry"`
	}

	var envelope metaEnvelope
	if err := c.ShouldBindJSON(&envelope); err != nil {
		c.String(http.StatusOK, "EVENT_RECEIVED")
		return
	}

	for _, entry := range envelope.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				message := models.Message{
					ReservationID: wc.findReservationID(msg.From),
					Phone:         msg.From,
					Direction:     "inbound",
					Channel:       "whatsapp",
					Body:          msg.Text.Body,
				}
				if err := wc.DB.Create(&message).Error; err != nil {
					utils.ErrorLogger.Printf("Failed to store inbound message from %s: %v", msg.From, err)
					continue
				}
				go live.BroadcastMessageEvent(message)
				if message.ReservationID == nil {
					go live.BroadcastStaffNotification("Mensaje de un número sin reserva: " + msg.From)
				}
			}
		}
	}

	c.String(http.StatusOK, "EVENT_RECEIVED")
}

// findReservationID resolves the latest reservation for a phone, nil when
// the phone is unknown.
func (wc *WhatsAppController) findReservationID(phone string) *uint {
	var reservation models.Reservation
	if err := wc.DB.Where("customer_phone = ?", phone).
		Order("created_at DESC").First(&reservation).Error; err != nil {
		return nil
	}
	return &reservation.ID
}
