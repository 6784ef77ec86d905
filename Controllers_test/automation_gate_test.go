package Controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/juanmircheva/reservas-app/middlewares"
)

func setupGatedRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	group := router.Group("/")
	group.Use(middlewares.AutomationGate(secret))
	group.POST("/actions/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func TestAutomationGateOpenWithoutSecret(t *testing.T) {
	router := setupGatedRouter("")

	req, _ := http.NewRequest("POST", "/actions/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAutomationGateRejectsMissingToken(t *testing.T) {
	router := setupGatedRouter("n8n-shared-secret")

	req, _ := http.NewRequest("POST", "/actions/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAutomationGateRejectsWrongToken(t *testing.T) {
	router := setupGatedRouter("n8n-shared-secret")

	req, _ := http.NewRequest("POST", "/actions/ping", nil)
	req.Header.Set("Authorization", "Bearer guessing")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAutomationGateAcceptsSecret(t *testing.T) {
	router := setupGatedRouter("n8n-shared-secret")

	req, _ := http.NewRequest("POST", "/actions/ping", nil)
	req.Header.Set("Authorization", "Bearer n8n-shared-secret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
