package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"admin_codegen/internal/handlers"
)

func RegisterRoutes(router *gin.Engine, genHandler *handlers.GenHandler, sqlHandler *handlers.SQLHandler, secret []byte) {
	api := router.Group("/api/v1")

	genRoutes := NewGenRoutes(genHandler, sqlHandler, secret)
	genRoutes.RegisterRoutes(api)

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
