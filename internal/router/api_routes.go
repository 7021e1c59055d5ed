package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/handler"
)

// RegisterAPI registers the JSON endpoints behind the explore page.  cache,
// when non-nil, wraps the read-only directory and activity lookups.
func RegisterAPI(e *echo.Echo, l *handler.LiveHandler, d *handler.DirectoryHandler, a *handler.ActivityHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/api")

	ex := g.Group("/explore")
	ex.GET("", l.State)
	ex.POST("/search", l.Search)
	ex.POST("/search/clear", l.ClearSearch)
	ex.POST("/filters", l.Filters)
	ex.POST("/page", l.Page)
	ex.POST("/reset", l.Reset)

	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	dir := g.Group("/directory", mw...)
	dir.GET("/categories", d.Categories)
	dir.GET("/provinces", d.Provinces)
	dir.GET("/provinces/:id/cities", d.Cities)
	dir.GET("/payment-methods", d.PaymentMethods)

	g.GET("/activities/:id", a.JSON, mw...)
}
