package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/mabarin"
)

// DirectoryHandler proxies the reference lists used by the filter selects.
// Responses are cached by the route middleware.
type DirectoryHandler struct {
	API *mabarin.Client
}

func NewDirectoryHandler(api *mabarin.Client) *DirectoryHandler {
	return &DirectoryHandler{API: api}
}

func (h *DirectoryHandler) Categories(c echo.Context) error {
	items, err := h.API.Categories(c.Request().Context())
	if err != nil {
		return upstreamAPIError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

func (h *DirectoryHandler) Provinces(c echo.Context) error {
	items, err := h.API.Provinces(c.Request().Context())
	if err != nil {
		return upstreamAPIError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Cities lists the cities of one province.
func (h *DirectoryHandler) Cities(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "bad_request", "Invalid province id.")
	}
	items, err := h.API.Cities(c.Request().Context(), id)
	if err != nil {
		return upstreamAPIError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// PaymentMethods lists the payment methods offered in the booking dialog.
func (h *DirectoryHandler) PaymentMethods(c echo.Context) error {
	items, err := h.API.PaymentMethods(c.Request().Context())
	if err != nil {
		return upstreamAPIError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
