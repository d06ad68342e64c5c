package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/auth"
)

func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.RegisterUser(db))
		authGroup.POST("/login", auth.LoginUser(db))
	}
}
