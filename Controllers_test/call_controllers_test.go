package Controllers_test

import (
	"bytes"
	"encoding/json"
	"errors"
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

// fakeCallProvider records calls and can be told to fail.
type fakeCallProvider struct {
	fail  bool
	calls []string
}

func (f *fakeCallProvider) MakeCall(phone string) error {
	if f.fail {
		return errors.New("provider rejected the call")
	}
	f.calls = append(f.calls, phone)
	return nil
}

func setupTestDBForCalls(t *testing.T) *gorm.DB {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.Reservation{}, &models.CallLog{}); err != nil {
		t.Fatal(err)
	}
	// the shared in-memory database survives between tests
	db.Exec("DELETE FROM reservations")
	db.Exec("DELETE FROM call_logs")
	return db
}

func setupCallRouter(db *gorm.DB, provider *fakeCallProvider) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	callCtrl := controllers.NewCallController(db, provider)
	router.POST("/actions/call", callCtrl.TriggerCall)
	router.GET("/calls", callCtrl.GetCalls)
	router.POST("/webhooks/bapi", callCtrl.BapiWebhook)
	return router
}

func TestTriggerCallCreatesOneLogRow(t *testing.T) {
	db := setupTestDBForCalls(t)
	provider := &fakeCallProvider{}
	router := setupCallRouter(db, provider)

	payload := map[string]interface{}{
		"reservation_id": nil,
		"phone":          "+34911222333",
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/actions/call", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["called"])

	var count int64
	db.Model(&models.CallLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
	assert.Equal(t, []string{"+34911222333"}, provider.calls)
}

func TestTriggerCallProviderFailureCreatesNoRow(t *testing.T) {
	db := setupTestDBForCalls(t)
	provider := &fakeCallProvider{fail: true}
	router := setupCallRouter(db, provider)

	payload := map[string]interface{}{"phone": "+34911222333"}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/actions/call", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	db.Model(&models.CallLog{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestTriggerCallResolvesPhoneFromReservation(t *testing.T) {
	db := setupTestDBForCalls(t)
	provider := &fakeCallProvider{}
	router := setupCallRouter(db, provider)

	reservation := models.Reservation{
		CustomerName:  "Marta López",
		CustomerPhone: "+34600111222",
		Date:          time.Now().Add(48 * time.Hour),
		PartySize:     4,
		Status:        models.ReservationConfirmed,
	}
	db.Create(&reservation)

	payload := map[string]interface{}{"reservation_id": reservation.ID}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/actions/call", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"+34600111222"}, provider.calls)

	var callLog models.CallLog
	assert.NoError(t, db.First(&callLog).Error)
	assert.NotNil(t, callLog.ReservationID)
	assert.Equal(t, reservation.ID, *callLog.ReservationID)
}

func TestGetCallsLimitAndOrdering(t *testing.T) {
	db := setupTestDBForCalls(t)
	router := setupCallRouter(db, &fakeCallProvider{})

	base := time.Now().Add(-1 * time.Hour)
	for i := 0; i < 8; i++ {
		db.Create(&models.CallLog{
			Phone:     "+34600000000",
			Status:    "completed",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	req, _ := http.NewRequest("GET", "/calls?limit=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		OK    bool             `json:"ok"`
		Calls []models.CallLog `json:"calls"`
	}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Len(t, resp.Calls, 5)
	for i := 1; i < len(resp.Calls); i++ {
		assert.False(t, resp.Calls[i].CreatedAt.After(resp.Calls[i-1].CreatedAt),
			"calls must be ordered by created_at descending")
	}
}

func TestBapiWebhookOverwritesCallRow(t *testing.T) {
	db := setupTestDBForCalls(t)
	router := setupCallRouter(db, &fakeCallProvider{})

	callLog := models.CallLog{Phone: "+34600111222", Status: "initiated"}
	db.Create(&callLog)

	payload := map[string]interface{}{
		"call_id":    callLog.ID,
		"status":     "completed",
		"transcript": "Reserva confirmada para el sábado",
		"duration":   42,
	}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/webhooks/bapi", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.CallLog
	assert.NoError(t, db.First(&updated, callLog.ID).Error)
	assert.Equal(t, "completed", updated.Status)
	assert.Equal(t, "Reserva confirmada para el sábado", updated.Transcript)
	assert.Contains(t, string(updated.RawPayload), `"duration":42`)
}

func TestBapiWebhookUnknownCallStillAcknowledged(t *testing.T) {
	db := setupTestDBForCalls(t)
	router := setupCallRouter(db, &fakeCallProvider{})

	payload := map[string]interface{}{"call_id": 9999, "status": "failed"}
	payloadBytes, _ := json.Marshal(payload)

	req, _ := http.NewRequest("POST", "/webhooks/bapi", bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
