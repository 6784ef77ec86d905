package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/juanmircheva/reservas-app/config"
	"github.com/juanmircheva/reservas-app/middlewares"
	"github.com/juanmircheva/reservas-app/models"
	"github.com/juanmircheva/reservas-app/router"
	"github.com/juanmircheva/reservas-app/utils"
	"gorm.io/gorm"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}

	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	seedMenuCatalog()

	rateLimiter := middlewares.NewRateLimiter(50, 1)

	r := router.SetupRouter(db)
	r.Use(rateLimiter.RateLimit())

	r.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Listening on port %s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Reservation{},
		&models.Message{},
		&models.CallLog{},
		&models.Payment{},
		&models.Setting{},
		&models.Shift{},
		&models.MenuItem{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}

// seedMenuCatalog fills the read-only catalog on first boot.
func seedMenuCatalog() {
	db := utils.GetDB()

	var count int64
	db.Model(&models.MenuItem{}).Count(&count)
	if count > 0 {
		return
	}

	items := []models.MenuItem{
		{Name: "Croquetas de jamón", Category: "Entrantes", Price: 9.50},
		{Name: "Ensaladilla rusa", Category: "Entrantes", Price: 8.00},
		{Name: "Pulpo a la brasa", Category: "Entrantes", Price: 18.50},
		{Name: "Arroz meloso de carabineros", Category: "Principales", Price: 26.00},
		{Name: "Chuletón de vaca madurada", Category: "Principales", Price: 32.00},
		{Name: "Lubina salvaje al horno", Category: "Principales", Price: 28.00},
		{Name: "Menú degustación", Category: "Menús", Price: 55.00},
		{Name: "Tarta de queso", Category: "Postres", Price: 7.00},
		{Name: "Torrija caramelizada", Category: "Postres", Price: 7.50},
	}
	if err := db.Create(&items).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to seed menu catalog: %v", err)
		return
	}
	utils.InfoLogger.Printf("Seeded menu catalog with %d items", len(items))
}
