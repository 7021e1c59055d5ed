package router // package router registers the HTTP routes of the web front end

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/handler"
	"github.com/mabarin/mabarin-web/internal/session"
	"github.com/mabarin/mabarin-web/internal/web"
)

// RegisterRoutes registers the operational endpoints and installs the error
// handler shared by pages and the JSON API.
func RegisterRoutes(e *echo.Echo) {
	e.HTTPErrorHandler = ErrorHandler(e.Logger)
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers login, registration and logout.  The forms post
// back to the page that rendered them.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	e.GET("/login", a.LoginPage)
	e.POST("/login", a.Login)
	e.GET("/register", a.RegisterPage)
	e.POST("/register", a.Register)
	e.POST("/logout", a.Logout)
}

type errorPage struct {
	Status  int
	Message string
}

const msgInternal = "Something went wrong. Please try again."

// ErrorHandler answers JSON under /api and renders the error page
// elsewhere.  Only *echo.HTTPError messages reach the visitor; anything else
// is logged and shown as a generic failure.
func ErrorHandler(log echo.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		status, msg := http.StatusInternalServerError, msgInternal
		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			if m, ok := he.Message.(string); ok && m != "" {
				msg = m
			} else {
				msg = http.StatusText(status)
			}
		} else {
			log.Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		}

		var rerr error
		switch {
		case c.Request().Method == http.MethodHead:
			rerr = c.NoContent(status)
		case strings.HasPrefix(c.Request().URL.Path, "/api/"):
			code := strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
			rerr = c.JSON(status, echo.Map{"error": code, "message": msg})
		default:
			rerr = c.Render(status, "error", web.Page{
				Title:   http.StatusText(status),
				Path:    c.Request().URL.Path,
				Session: session.From(c),
				Data:    errorPage{Status: status, Message: msg},
			})
		}
		if rerr != nil {
			log.Errorf("error handler: %v", rerr)
		}
	}
}
