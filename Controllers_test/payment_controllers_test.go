package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/juanmircheva/reservas-app/controllers"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
)

func setupTestDBForPayments(t *testing.T) *gorm.DB {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Reservation{}, &models.Payment{}); err != nil {
		t.Fatal(err)
	}
	// the shared in-memory database survives between tests
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM payments")
	return db
}

func setupPaymentRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	ctrl := controllers.NewPaymentController(db)
	router.POST("/payments/manual", ctrl.CreateManualPayment)
	router.GET("/payments", ctrl.GetPayments)
	return router
}

func seedPendingReservation(db *gorm.DB) models.Reservation {
	reservation := models.Reservation{
		CustomerName:  "Ana García",
		CustomerPhone: "+34655443322",
		Date:          time.Now().Add(48 * time.Hour),
		PartySize:     4,
		Status:        models.ReservationHoldBlocked,
		DepositAmount: 40,
	}
	db.Create(&reservation)
	return reservation
}

func TestManualPaymentConfirmsReservation(t *testing.T) {
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)
	reservation := seedPendingReservation(db)

	payload := map[string]interface{}{
		"reservation_id": reservation.ID,
		"method":         "transferencia",
		"amount":         40.0,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/payments/manual", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "paid", resp["status"])
	assert.NotNil(t, resp["payment_id"])

	var payment models.Payment
	assert.NoError(t, db.First(&payment).Error)
	assert.Equal(t, "transferencia", payment.Method)
	assert.Equal(t, "paid", payment.Status)
	assert.Contains(t, payment.ReferenceID, "MAN-")
	assert.NotNil(t, payment.PaymentTime)

	var updated models.Reservation
	db.First(&updated, reservation.ID)
	assert.Equal(t, models.ReservationConfirmed, updated.Status)
	assert.True(t, updated.DepositPaid)
}

func TestManualPaymentRejectsInvalidAmount(t *testing.T) {
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)
	reservation := seedPendingReservation(db)

	payload := map[string]interface{}{
		"reservation_id": reservation.ID,
		"method":         "efectivo",
		"amount":         0,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/payments/manual", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestManualPaymentRejectsCardMethod(t *testing.T) {
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)
	reservation := seedPendingReservation(db)

	// card deposits go through checkout, never through the manual route
	payload := map[string]interface{}{
		"reservation_id": reservation.ID,
		"method":         "tarjeta",
		"amount":         40.0,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/payments/manual", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestManualPaymentUnknownReservation(t *testing.T) {
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)

	payload := map[string]interface{}{
		"reservation_id": 424242,
		"method":         "efectivo",
		"amount":         25.0,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/payments/manual", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestGetPaymentsIncludesReservation(t *testing.T) {
	db := setupTestDBForPayments(t)
	router := setupPaymentRouter(db)
	reservation := seedPendingReservation(db)

	db.Create(&models.Payment{
		ReservationID: reservation.ID,
		Method:        "efectivo",
		Amount:        25,
		Status:        "paid",
		ReferenceID:   "MAN-test",
	})

	req, _ := http.NewRequest("GET", "/payments", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status bool             `json:"status"`
		Data   []models.Payment `json:"data"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, reservation.CustomerName, resp.Data[0].Reservation.CustomerName)
}
