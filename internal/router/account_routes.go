package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/handler"
	"github.com/mabarin/mabarin-web/internal/middleware"
	"github.com/mabarin/mabarin-web/internal/session"
)

// RegisterAccount registers the signed-in area under /profile.  Anonymous
// visitors are sent to the login page and come back afterwards.
func RegisterAccount(e *echo.Echo, p *handler.ProfileHandler, t *handler.TransactionHandler, sm *session.Manager) {
	g := e.Group("/profile", middleware.RequireAuth(sm))

	g.GET("", p.Show)
	g.POST("", p.Update)
	g.POST("/password", p.ChangePassword)

	g.GET("/transactions", t.List)
	g.GET("/transactions/:id", t.Detail)
	g.POST("/transactions/:id/proof", t.Proof)
}
