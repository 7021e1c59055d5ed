package router

import (
	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/handler"
)

// RegisterPublic registers the pages anyone can open: the home page, the
// explore list and activity details.  The booking dialog lives on the
// detail page; its handlers check the session themselves so an anonymous
// visitor gets the booking-specific login message.
func RegisterPublic(e *echo.Echo, ex *handler.ExploreHandler, a *handler.ActivityHandler) {
	e.GET("/", ex.Home)
	e.GET("/explore", ex.Explore)
	e.GET("/explore/:id", a.Detail)
	e.GET("/explore/:id/booking", a.OpenBooking)
	e.POST("/explore/:id/booking", a.BookingAction)
}
