package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akhilrajps/sahara-mess/internal/server/handlers"
)

// Handlers groups the HTTP adapters wired into the engine.
type Handlers struct {
	Students   *handlers.StudentsHandler
	MessCuts   *handlers.MessCutHandler
	Attendance *handlers.AttendanceHandler
	Billing    *handlers.BillingHandler
	Payments   *handlers.PaymentsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/students", h.Students.Register)
		api.POST("/students/:messNo/approval", h.Students.Decide)

		api.POST("/mess-cuts", h.MessCuts.Apply)
		api.GET("/mess-cuts/:messNo/usage", h.MessCuts.Usage)

		api.POST("/attendance/scans", h.Attendance.Scan)
		api.POST("/identifiers/resolve", h.Attendance.ResolveIdentifier)

		api.POST("/bills/generate", h.Billing.Generate)
		api.POST("/bills/publish", h.Billing.Publish)
		api.GET("/bills/:messNo/:month", h.Billing.Get)

		api.POST("/bills/:id/payments", h.Payments.Submit)
		api.POST("/bills/:id/verification", h.Payments.Verify)
		api.POST("/bills/:id/fines", h.Payments.ApplyFine)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
