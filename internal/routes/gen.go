package routes

import (
	"github.com/gin-gonic/gin"

	"admin_codegen/internal/handlers"
	"admin_codegen/internal/middlewares"
)

type GenRoutes struct {
	genHandler *handlers.GenHandler
	sqlHandler *handlers.SQLHandler
	secret     []byte
}

func NewGenRoutes(genHandler *handlers.GenHandler, sqlHandler *handlers.SQLHandler, secret []byte) *GenRoutes {
	return &GenRoutes{
		genHandler: genHandler,
		sqlHandler: sqlHandler,
		secret:     secret,
	}
}

func (r *GenRoutes) RegisterRoutes(router *gin.RouterGroup) {
	gen := router.Group("/tool/gen")
	gen.Use(middlewares.Authenticate(r.secret))
	{
		gen.GET("/db/list", middlewares.RequirePermission("tool:gen:list"), r.genHandler.ListDBTables)
		gen.GET("/list", middlewares.RequirePermission("tool:gen:list"), r.genHandler.List)
		gen.POST("/importTable", middlewares.RequirePermission("tool:gen:import"), r.genHandler.ImportTables)
		gen.GET("/:id", middlewares.RequirePermission("tool:gen:query"), r.genHandler.Detail)
		gen.PUT("", middlewares.RequirePermission("tool:gen:edit"), r.genHandler.Update)
		gen.DELETE("/:ids", middlewares.RequirePermission("tool:gen:remove"), r.genHandler.Delete)
		gen.GET("/synchDb/:tableName", middlewares.RequirePermission("tool:gen:edit"), r.genHandler.Synchronize)
		gen.GET("/batchGenCode", middlewares.RequirePermission("tool:gen:code"), r.genHandler.BatchGenCode)
		gen.GET("/preview/:tableId", middlewares.RequirePermission("tool:gen:preview"), r.genHandler.Preview)
		gen.POST("/execute", middlewares.RequireAdmin, r.sqlHandler.Execute)
	}
}
