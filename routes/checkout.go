package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	checkoutControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/checkout"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/middleware"
)

func SetupCheckoutRoutes(r *gin.Engine, db *gorm.DB, rdb *redis.Client) {
	orchestrator := buildOrchestrator(db, rdb)

	checkoutGroup := r.Group("/checkout")
	{
		// The gateway redirect lands here with only the session id; the buyer
		// may arrive without an Authorization header.
		checkoutGroup.GET("/resume", checkoutControllers.ResumeCheckoutHandler(orchestrator))

		protected := checkoutGroup.Group("")
		protected.Use(middleware.ValidateToken)
		{
			protected.POST("/start", checkoutControllers.StartCheckoutHandler(orchestrator))
			protected.POST("/:session_id/cancel", checkoutControllers.CancelCheckoutHandler(orchestrator))
		}
	}
}
