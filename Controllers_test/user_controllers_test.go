package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/juanmircheva/reservas-app/controllers"
	"github.com/juanmircheva/reservas-app/middlewares"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/utils"
)

func setupTestDBForUsers(t *testing.T) *gorm.DB {
	utils.InitLogger()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect database: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}); err != nil {
		t.Fatal(err)
	}
	// the shared in-memory database survives between tests
	db.Exec("DELETE FROM users")
	return db
}

func setupUserRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	ctrl := controllers.NewUserController(db)
	router.POST("/register", ctrl.Register)
	router.POST("/login", ctrl.Login)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", ctrl.GetProfile)
		auth.POST("/logout", ctrl.Logout)
	}
	return router
}

func postJSON(router *gin.Engine, path string, payload interface{}) *httptest.ResponseRecorder {
	payloadBytes, _ := json.Marshal(payload)
	req, _ := http.NewRequest("POST", path, bytes.NewBuffer(payloadBytes))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterAndLogin(t *testing.T) {
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	w := postJSON(router, "/register", map[string]string{
		"name":     "Marina Vidal",
		"email":    "marina@reservas.test",
		"password": "superseguro1",
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	// passwords are stored hashed
	var user models.User
	assert.NoError(t, db.First(&user).Error)
	assert.NotEqual(t, "superseguro1", user.Password)
	assert.Equal(t, "staff", user.Role)

	w = postJSON(router, "/login", map[string]string{
		"email":    "marina@reservas.test",
		"password": "superseguro1",
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.NotEmpty(t, data["token"])
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	postJSON(router, "/register", map[string]string{
		"name":     "Marina Vidal",
		"email":    "marina@reservas.test",
		"password": "superseguro1",
	})

	w := postJSON(router, "/login", map[string]string{
		"email":    "marina@reservas.test",
		"password": "incorrecta99",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterShortPasswordRejected(t *testing.T) {
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	w := postJSON(router, "/register", map[string]string{
		"name":     "Marina Vidal",
		"email":    "marina@reservas.test",
		"password": "corta",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProfileRequiresToken(t *testing.T) {
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	req, _ := http.NewRequest("GET", "/profile", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProfileWithTokenAndLogout(t *testing.T) {
	db := setupTestDBForUsers(t)
	router := setupUserRouter(db)

	postJSON(router, "/register", map[string]string{
		"name":     "Marina Vidal",
		"email":    "marina@reservas.test",
		"password": "superseguro1",
	})
	w := postJSON(router, "/login", map[string]string{
		"email":    "marina@reservas.test",
		"password": "superseguro1",
	})

	var resp utils.JSONResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	token := resp.Data.(map[string]interface{})["token"].(string)

	req, _ := http.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("POST", "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// blacklisted token no longer works
	req, _ = http.NewRequest("GET", "/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
