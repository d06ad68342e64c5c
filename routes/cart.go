package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/cart"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/middleware"
)

func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cartGroup := r.Group("/user/cart")
	cartGroup.Use(middleware.ValidateToken)
	{
		cartGroup.GET("/", cartControllers.GetUserCart(db))                  // GET /user/cart
		cartGroup.POST("/", cartControllers.UpdateCartItem(db))              // POST /user/cart
		cartGroup.DELETE("/:product_id", cartControllers.DeleteCartItem(db)) // DELETE /user/cart/:product_id
	}
}
