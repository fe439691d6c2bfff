package routes

import (
	"absensi_go/controllers"
	"absensi_go/middleware"
	"absensi_go/services"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
)

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, wsHub *websocket.Hub, lineService *services.LineMessagingService) {
	authController := &controllers.AuthController{}
	userController := &controllers.UserController{}
	batchController := &controllers.BatchController{}
	divisionController := &controllers.DivisionController{}
	sessionTypeController := &controllers.SessionTypeController{}
	sessionController := &controllers.SessionController{}
	attendanceController := controllers.NewAttendanceController(wsHub, lineService)
	logController := &controllers.LogController{}
	healthController := controllers.NewHealthController(services.NewHealthService("", ""))
	wsController := controllers.NewWebSocketController(wsHub)

	app.Get("/health", healthController.GetHealthStatus)

	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)
	auth.Post("/register", authController.Register)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Get("/auth/me", authController.GetMe)
	protected.Post("/auth/logout", authController.Logout)

	// User management routes
	users := protected.Group("/users")
	users.Get("/", middleware.RequireStaffOrAdmin(), userController.GetUsers)
	users.Post("/", middleware.RequireAdmin(), authController.Register)
	users.Get("/:id", middleware.RequireStaffOrAdmin(), userController.GetUser)
	users.Put("/:id", middleware.RequireAdmin(), userController.UpdateUser)
	users.Delete("/:id", middleware.RequireAdmin(), userController.DeleteUser)
	users.Get("/:userId/attendance", userController.GetUserAttendance)
	users.Post("/:id/avatar", userController.UploadAvatar)

	// Batch management routes
	batches := protected.Group("/batches")
	batches.Get("/", batchController.GetBatches)
	batches.Get("/:id", batchController.GetBatch)
	batches.Post("/", middleware.RequireAdmin(), batchController.CreateBatch)
	batches.Put("/:id", middleware.RequireAdmin(), batchController.UpdateBatch)
	batches.Delete("/:id", middleware.RequireAdmin(), batchController.DeleteBatch)

	// Division management routes
	divisions := protected.Group("/divisions")
	divisions.Get("/", divisionController.GetDivisions)
	divisions.Get("/:id", divisionController.GetDivision)
	divisions.Post("/", middleware.RequireAdmin(), divisionController.CreateDivision)
	divisions.Put("/:id", middleware.RequireAdmin(), divisionController.UpdateDivision)
	divisions.Delete("/:id", middleware.RequireAdmin(), divisionController.DeleteDivision)

	// Session type management routes
	sessionTypes := protected.Group("/session-types")
	sessionTypes.Get("/", sessionTypeController.GetSessionTypes)
	sessionTypes.Get("/:id", sessionTypeController.GetSessionType)
	sessionTypes.Post("/", middleware.RequireAdmin(), sessionTypeController.CreateSessionType)
	sessionTypes.Put("/:id", middleware.RequireAdmin(), sessionTypeController.UpdateSessionType)
	sessionTypes.Delete("/:id", middleware.RequireAdmin(), sessionTypeController.DeleteSessionType)

	// Session management routes
	sessions := protected.Group("/sessions")
	sessions.Get("/", sessionController.GetSessions)
	sessions.Get("/:id", sessionController.GetSession)
	sessions.Post("/", middleware.RequireStaffOrAdmin(), sessionController.CreateSession)
	sessions.Put("/:id", middleware.RequireStaffOrAdmin(), sessionController.UpdateSession)
	sessions.Delete("/:id", middleware.RequireAdmin(), sessionController.DeleteSession)

	// Attendance routes scoped to a session
	sessions.Get("/:sessionId/attendance", attendanceController.GetSessionAttendance)
	sessions.Post("/:sessionId/attendance", middleware.RequireStaffOrAdmin(), attendanceController.CreateSessionAttendance)
	sessions.Put("/:sessionId/attendance", middleware.RequireStaffOrAdmin(), attendanceController.BulkUpdateSessionAttendance)
	sessions.Post("/:sessionId/generate-attendance", middleware.RequireStaffOrAdmin(), attendanceController.GenerateAttendance)
	sessions.Get("/:sessionId/users-for-attendance", middleware.RequireStaffOrAdmin(), attendanceController.GetUsersForAttendance)
	sessions.Post("/:sessionId/filtered-attendance", middleware.RequireStaffOrAdmin(), attendanceController.FilteredAttendance)

	// Attendance routes across sessions
	attendance := protected.Group("/attendance")
	attendance.Put("/:id", middleware.RequireStaffOrAdmin(), attendanceController.UpdateAttendance)
	attendance.Get("/stats", middleware.RequireStaffOrAdmin(), attendanceController.GetAttendanceStats)
	attendance.Get("/reports", middleware.RequireStaffOrAdmin(), attendanceController.GetAttendanceReports)
	attendance.Get("/reports/export", middleware.RequireStaffOrAdmin(), attendanceController.ExportAttendanceReports)

	// Log management routes (admin only)
	logs := protected.Group("/logs", middleware.RequireAdmin())
	logs.Get("/", logController.GetLogs)
	logs.Get("/stats", logController.GetLogStats)

	// WebSocket routes
	ws := protected.Group("/ws")
	ws.Get("/stats", middleware.RequireAdmin(), wsController.GetWebSocketStats)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			c.Locals("allowed", true)
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", wsController.WebSocketHandler())
}
