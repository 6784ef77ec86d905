package router

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/juanmircheva/reservas-app/controllers"
	"github.com/juanmircheva/reservas-app/middlewares"
	"github.com/juanmircheva/reservas-app/services"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	services.InitProviders(db)

	userCtrl := controllers.NewUserController(db)
	reservationCtrl := controllers.NewReservationController(db)
	paymentCtrl := controllers.NewPaymentController(db)
	callCtrl := controllers.NewCallController(db, services.GetCallProvider())
	whatsappCtrl := controllers.NewWhatsAppController(db, services.GetWhatsAppProvider())
	menuCtrl := controllers.NewMenuController(db)
	settingCtrl := controllers.NewSettingController(db)
	shiftCtrl := controllers.NewShiftController(db)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// Dashboard event stream
	r.GET("/ws", controllers.LiveHandler)

	// Catalog is public so the booking front-end can render the menu
	r.GET("/menu_catalog", menuCtrl.GetCatalog)

	// Provider callbacks; Stripe verifies its own signature
	r.POST("/payments/stripe/webhook", paymentCtrl.StripeWebhook)
	r.GET("/webhooks/whatsapp", whatsappCtrl.MetaWebhookVerify)
	r.POST("/webhooks/whatsapp", whatsappCtrl.MetaWebhook)

	// ----------------------------------------------------------------
	//                      AUTOMATION ROUTES
	// ----------------------------------------------------------------
	automation := r.Group("/")
	automation.Use(middlewares.AutomationGate(os.Getenv("AUTOMATION_SECRET")))
	{
		automation.POST("/actions/call", callCtrl.TriggerCall)
		automation.POST("/actions/whatsapp/send", whatsappCtrl.SendToReservation)
		automation.POST("/conversations/messages", whatsappCtrl.PostConversationMessage)
		automation.POST("/webhooks/bapi", callCtrl.BapiWebhook)
	}

	// ----------------------------------------------------------------
	//                      DASHBOARD ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)
		auth.POST("/logout", userCtrl.Logout)

		auth.GET("/reservations", reservationCtrl.GetAllReservations)
		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.GET("/reservations/:reservation_id", reservationCtrl.GetReservationByID)
		auth.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservation)

		auth.GET("/payments", paymentCtrl.GetPayments)
		auth.POST("/payments/manual", paymentCtrl.CreateManualPayment)
		auth.POST("/payments/checkout", paymentCtrl.CreateCheckout)

		auth.GET("/calls", callCtrl.GetCalls)
		auth.GET("/conversations/messages", whatsappCtrl.GetConversation)

		auth.GET("/menu-selection/summary", menuCtrl.GetSelectionSummary)
		auth.GET("/menu-selection/pdf", menuCtrl.GetSelectionPDF)

		auth.GET("/settings", settingCtrl.GetSettings)
		auth.PUT("/settings", settingCtrl.PutSettings)
		auth.POST("/settings/whatsapp-test", settingCtrl.TestWhatsApp)

		auth.GET("/shifts", shiftCtrl.GetShifts)
		auth.POST("/shifts", shiftCtrl.UpsertShift)
		auth.DELETE("/shifts/:shift_id", shiftCtrl.DeleteShift)
		auth.GET("/shifts/export", shiftCtrl.ExportShifts)
	}

	return r
}
