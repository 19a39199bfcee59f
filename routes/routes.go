package routes

import (
	"net/http"
	"time"

	"reservo/database/repository"
	"reservo/handlers"
	"reservo/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes registers the read-only availability queries.
func RegisterAvailabilityRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	av := api.Group("/availability/professionals")
	{
		av.GET("", hb.GetAvailabilityForManyHandler)
		av.GET("/:professionalId", hb.GetAvailabilityHandler)
		av.GET("/:professionalId/range", hb.GetAvailabilityRangeHandler)
		av.GET("/:professionalId/next-slots", hb.GetNextAvailableSlotsHandler)
		av.GET("/:professionalId/check", hb.CheckAvailabilityHandler)
	}
}

// RegisterBookingRoutes registers booking CRUD and lifecycle endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bk := api.Group("/bookings")
	{
		bk.POST("", hb.CreateBookingHandler)
		bk.GET("", hb.ListBookingsHandler)
		bk.GET("/:id", hb.GetBookingHandler)
		bk.PATCH("/:id", hb.UpdateBookingHandler)

		// Status transitions
		bk.POST("/:id/confirm", hb.ConfirmBookingHandler)
		bk.POST("/:id/complete", hb.CompleteBookingHandler)
		bk.POST("/:id/cancel", hb.CancelBookingHandler)
		bk.POST("/:id/no-show", hb.NoShowBookingHandler)
	}
}

// RegisterScheduleRoutes registers weekly schedule endpoints.
func RegisterScheduleRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	sc := api.Group("/schedules")
	{
		sc.POST("", hb.CreateScheduleHandler)
		sc.GET("/:id", hb.GetScheduleHandler)
		sc.PATCH("/:id", hb.UpdateScheduleHandler)
		sc.DELETE("/:id", hb.DeleteScheduleHandler)
	}

	pro := api.Group("/professionals/:professionalId")
	{
		pro.GET("/schedule", hb.GetActiveScheduleHandler)
		pro.GET("/working-days", hb.WorkingDaysHandler)
		pro.GET("/available-hours", hb.AvailableHoursHandler)
	}
}

// RegisterUnavailableRoutes registers unavailable block endpoints.
func RegisterUnavailableRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	ub := api.Group("/unavailable-blocks")
	{
		ub.POST("", hb.CreateUnavailableBlockHandler)
		ub.GET("", hb.ListUnavailableBlocksHandler)
		ub.GET("/expanded", hb.ExpandUnavailableBlocksHandler)
		ub.GET("/:id", hb.GetUnavailableBlockHandler)
		ub.PATCH("/:id", hb.UpdateUnavailableBlockHandler)
		ub.DELETE("/:id", hb.DeleteUnavailableBlockHandler)
	}
}

// RegisterRoutes sets up CORS, the health check and every tenant-scoped group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, tenants repository.TenantResolver) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID", middleware.TenantHeader},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.HealthHandler)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found", "code": "not_found"})
	})

	api := r.Group("/api")
	api.Use(middleware.TenantMiddleware(tenants))

	RegisterAvailabilityRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterScheduleRoutes(api, hb)
	RegisterUnavailableRoutes(api, hb)
}
