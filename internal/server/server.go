package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"admin_codegen/internal/config"
	"admin_codegen/internal/handlers"
	"admin_codegen/internal/routes"
)

// NewServer wires the HTTP server. The returned func releases its connections.
func NewServer(ctx context.Context, cfg *config.Config) (*http.Server, func(), error) {
	deps, err := Open(ctx, cfg, true)
	if err != nil {
		return nil, nil, err
	}

	genHandler := handlers.NewGenHandler(deps.Gen)
	sqlHandler := handlers.NewSQLHandler(deps.SQL)

	router := NewRouter(cfg, genHandler, sqlHandler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return server, deps.Close, nil
}

// NewRouter builds the gin engine with CORS and every route registered.
func NewRouter(cfg *config.Config, genHandler *handlers.GenHandler, sqlHandler *handlers.SQLHandler) *gin.Engine {
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(router, genHandler, sqlHandler, cfg.AccessTokenSecret)
	return router
}
