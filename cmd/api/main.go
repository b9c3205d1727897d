package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/renthub-cl/renthub/internal/admin"
	"github.com/renthub-cl/renthub/internal/alerts"
	"github.com/renthub-cl/renthub/internal/auth"
	"github.com/renthub-cl/renthub/internal/db"
	"github.com/renthub-cl/renthub/internal/maintenance"
	"github.com/renthub-cl/renthub/internal/messaging"
	mware "github.com/renthub-cl/renthub/internal/middleware"
	"github.com/renthub-cl/renthub/internal/provider"
	"github.com/renthub-cl/renthub/internal/user"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	// Initialize subsystems
	db.Init()
	alerts.Init()
	defer alerts.Close()

	maintenance.Init(maintenance.NewPostgresStore(db.Conn), provider.Directory{}, alerts.VisitNotifier{})

	e := echo.New()
	e.HideBanner = true

	// Basic middleware
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// Health and root routes
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "service": "renthub"})
	})
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/ready", func(c echo.Context) error {
		if db.Conn == nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db not initialized"})
		}
		if err := db.Conn.Ping(context.Background()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "not_ready", "error": "db unreachable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ready"})
	})

	// Auth routes with per-IP rate limiting to protect signup/login from abuse
	authGroup := e.Group("/auth")
	authGroup.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(20)))
	authGroup.POST("/signup", auth.Signup)
	authGroup.POST("/login", auth.Login)

	// Protected routes
	api := e.Group("")
	api.Use(mware.JWTMiddleware)

	api.GET("/auth/me", auth.Me)

	e.GET("/user/:id/profile", user.GetPublicProfile)
	api.PATCH("/user/profile", user.UpdateProfile)

	// Maintenance requests and visit negotiation
	api.POST("/maintenance", maintenance.CreateRequest, mware.RequireRoles("owner", "broker", "admin", "tenant"))
	api.GET("/maintenance", maintenance.ListRequests, mware.RequireRoles("admin"))
	api.GET("/maintenance/:id", maintenance.GetRequest)
	api.POST("/maintenance/:id/assign", maintenance.AssignProvider, mware.RequireRoles("owner", "broker", "admin"))
	api.POST("/maintenance/:id/visit/propose", maintenance.ProposeVisit)
	api.POST("/maintenance/:id/visit/accept", maintenance.AcceptVisit)
	api.POST("/maintenance/:id/start", maintenance.StartWork, mware.RequireRoles("provider"))
	api.POST("/maintenance/:id/complete", maintenance.CompleteWork, mware.RequireRoles("provider"))
	api.POST("/maintenance/:id/cancel", maintenance.CancelRequest, mware.RequireRoles("owner", "broker", "admin"))
	api.POST("/maintenance/:id/reject", maintenance.RejectRequest, mware.RequireRoles("admin"))

	// Per-request negotiation thread
	api.POST("/maintenance/:id/messages", messaging.SendMessage)
	api.GET("/maintenance/:id/messages", messaging.ListMessages)
	api.GET("/maintenance/:id/messages/unread", messaging.UnreadCount)
	api.POST("/maintenance/:id/messages/:message_id/read", messaging.MarkMessageRead)
	api.GET("/maintenance/:id/ws", messaging.RequestWS)

	// Provider directory
	api.GET("/providers", provider.List)
	api.GET("/providers/:id", provider.Get)
	api.POST("/providers", provider.Register, mware.RequireRoles("admin"))

	// Notifications
	api.GET("/notifications", alerts.ListNotifications)
	api.POST("/notifications/:id/read", alerts.MarkNotificationRead)

	// Admin routes
	adminGroup := e.Group("/admin")
	adminGroup.Use(mware.JWTMiddleware)
	adminGroup.Use(mware.AdminGuard)

	adminGroup.GET("/stats", admin.Stats)
	adminGroup.GET("/requests", admin.ListRequests)
	adminGroup.GET("/users", admin.ListUsers)
	adminGroup.POST("/users/:id/suspend", admin.SuspendUser)
	adminGroup.POST("/users/:id/activate", admin.ActivateUser)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("API server listening on :%s", port)
	if err := e.Start(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
