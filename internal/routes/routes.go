package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"eventcrm/internal/authz"
	"eventcrm/internal/handlers"
	"eventcrm/internal/middleware"
)

func SetupRoutes(
	r *gin.Engine,
	jwtSecret []byte,
	boardHandler *handlers.BoardHandler,
	auditHandler *handlers.AuditHandler, // может быть nil, если журнал не настроен
) *gin.Engine {

	// ---- public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ---- protected
	r.Use(middleware.AuthMiddleware(jwtSecret))
	r.Use(middleware.ReadOnlyGuard())

	// BOARD
	b := r.Group("/board")
	{
		b.GET("/", boardHandler.Board)
		b.POST("/refresh", boardHandler.Refresh)
		b.POST("/drag/:id", boardHandler.DragStart)
		b.POST("/drag/:id/cancel", boardHandler.DragCancel)
		b.POST("/move/:id", boardHandler.Move)
	}

	// LEADS (read-only view поверх кэша доски)
	leads := r.Group("/leads")
	{
		leads.GET("/:id/allowed", boardHandler.AllowedTargets)
		if auditHandler != nil {
			leads.GET("/:id/history", middleware.RequireRoles(authz.RoleAdmin, authz.RoleAudit), auditHandler.History)
		}
	}

	return r
}
