package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/carebridge/carebridge-be/internal/api"
	"github.com/carebridge/carebridge-be/internal/api/middleware"
	"github.com/carebridge/carebridge-be/internal/booking"
	"github.com/carebridge/carebridge-be/internal/chat"
	"github.com/carebridge/carebridge-be/internal/db"
	"github.com/carebridge/carebridge-be/internal/emergency"
	"github.com/carebridge/carebridge-be/internal/notify"
	"github.com/carebridge/carebridge-be/internal/recommend"
	"github.com/carebridge/carebridge-be/internal/reminder"
	"github.com/carebridge/carebridge-be/internal/triage"
	"github.com/carebridge/carebridge-be/internal/ws"
	"github.com/carebridge/carebridge-be/pkg/gemini"
	"github.com/carebridge/carebridge-be/pkg/pushover"
	"github.com/carebridge/carebridge-be/pkg/twilio"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	// Get configuration from environment
	port := getEnv("PORT", "8080")
	jwtSecret := getEnv("JWT_SECRET", "")
	geminiAPIKey := getEnv("GEMINI_API_KEY", "")
	geminiModel := getEnv("GEMINI_MODEL", "")
	doctorCSVPath := getEnv("DOCTOR_CSV_PATH", "doctors.csv")
	reminderOffset := getEnvDuration("REMINDER_OFFSET", booking.DefaultReminderOffset)

	pushoverToken := getEnv("PUSHOVER_TOKEN", "")
	pushoverUser := getEnv("PUSHOVER_USER", "")
	twilioAccountSID := getEnv("TWILIO_ACCOUNT_SID", "")
	twilioAuthToken := getEnv("TWILIO_AUTH_TOKEN", "")
	twilioPhoneNumber := getEnv("TWILIO_PHONE_NUMBER", "")
	dispatchPhone := getEnv("DISPATCH_PHONE_NUMBER", "")
	sendgridAPIKey := getEnv("SENDGRID_API_KEY", "")
	sendgridFrom := getEnv("SENDGRID_FROM_EMAIL", "")

	if jwtSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if geminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY is required")
	}

	// Initialize database
	database, err := db.New(db.Config{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "carebridge"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "carebridge"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxConnections:  25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 5 * time.Minute,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	log.Println("✅ Database connected")

	// LLM client
	llmClient := gemini.NewHTTPClient(gemini.Config{
		APIKey: geminiAPIKey,
		Model:  geminiModel,
	})

	// Notification channels
	var channels []notify.Notifier
	if pushoverToken != "" && pushoverUser != "" {
		channels = append(channels, notify.NewPushoverNotifier(pushover.NewClient(pushover.Config{
			Token: pushoverToken,
			User:  pushoverUser,
		})))
		log.Println("✅ Pushover notifications enabled")
	}
	if twilioAccountSID != "" && twilioAuthToken != "" {
		channels = append(channels, notify.NewSMSNotifier(notify.SMSConfig{
			AccountSID:  twilioAccountSID,
			AuthToken:   twilioAuthToken,
			PhoneNumber: twilioPhoneNumber,
		}))
		log.Println("✅ SMS notifications enabled")
	}
	if sendgridAPIKey != "" && sendgridFrom != "" {
		channels = append(channels, notify.NewEmailNotifier(notify.EmailConfig{
			APIKey:    sendgridAPIKey,
			FromName:  "CareBridge",
			FromEmail: sendgridFrom,
		}))
		log.Println("✅ Email notifications enabled")
	}
	sender := notify.NewMultiSender(channels...)

	// Ambulance dispatch (optional - only if Twilio credentials provided)
	var dispatcher emergency.Dispatcher
	if twilioAccountSID != "" && twilioAuthToken != "" && dispatchPhone != "" {
		dispatcher = twilio.NewVoiceClient(twilio.VoiceConfig{
			AccountSID:  twilioAccountSID,
			AuthToken:   twilioAuthToken,
			PhoneNumber: twilioPhoneNumber,
			TargetPhone: dispatchPhone,
		})
		log.Println("✅ Ambulance dispatch line initialized")
	}

	// Core services
	triager := triage.NewLLMClassifier(llmClient, geminiModel)
	recommender := recommend.NewService(recommend.FileRoster{Path: doctorCSVPath}, nil)
	coordinator := emergency.NewCoordinator(dispatcher, llmClient, geminiModel)
	monitor := emergency.NewMonitor()

	reminderDispatcher := reminder.NewDispatcher(database, sender)
	if err := reminderDispatcher.Start(); err != nil {
		log.Fatalf("Failed to start reminder dispatcher: %v", err)
	}
	defer reminderDispatcher.Stop()

	bookingService := booking.NewService(database, reminderDispatcher, sender, reminderOffset)

	// Chat engine (shared by any transport)
	chatEngine := chat.NewEngine(triager, recommender, coordinator, monitor, database)

	// Handlers
	authHandler := api.NewAuthHandler(database, jwtSecret)
	bookingHandler := api.NewBookingHandler(bookingService)
	recommendHandler := api.NewRecommendHandler(recommender)
	chatHandler := ws.NewChatHandler(chatEngine, jwtSecret)

	// Setup Gin router
	router := gin.Default()

	router.Use(middleware.CORS())
	router.Use(middleware.SecurityHeaders())

	// Global rate limiting (100 req/min per IP, burst of 200)
	router.Use(middleware.PerIP(100.0/60.0, 200))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	// Auth routes (public)
	auth := router.Group("/api/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", middleware.Auth(jwtSecret), authHandler.Me)
	}

	// Appointment routes (protected + per-user rate limiting)
	appointments := router.Group("/api/appointments")
	appointments.Use(middleware.Auth(jwtSecret))
	appointments.Use(middleware.PerUser(500.0/3600.0, 100)) // 500/hour per user
	{
		appointments.POST("", bookingHandler.Create)
		appointments.GET("", bookingHandler.List)
		appointments.GET("/:id", bookingHandler.Get)
		appointments.DELETE("/:id", bookingHandler.Cancel)
	}

	// Direct recommendation queries (protected)
	recommendations := router.Group("/api/recommendations")
	recommendations.Use(middleware.Auth(jwtSecret))
	{
		recommendations.POST("", recommendHandler.Recommend)
	}

	// WebSocket chat route (protected via query param/header)
	router.GET("/ws/chat", chatHandler.HandleChat)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%s", port)
		log.Printf("📝 API endpoints:")
		log.Printf("   POST   /api/auth/register")
		log.Printf("   POST   /api/auth/login")
		log.Printf("   GET    /api/auth/me")
		log.Printf("   POST   /api/appointments")
		log.Printf("   GET    /api/appointments")
		log.Printf("   GET    /api/appointments/:id")
		log.Printf("   DELETE /api/appointments/:id")
		log.Printf("   POST   /api/recommendations")
		log.Printf("   WS     /ws/chat")
		log.Printf("")
		log.Printf("Press Ctrl+C to stop")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
		log.Printf("Warning: invalid %s=%q, using default %d", key, value, defaultValue)
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		log.Printf("Warning: invalid %s=%q, using default %s", key, value, defaultValue)
	}
	return defaultValue
}
