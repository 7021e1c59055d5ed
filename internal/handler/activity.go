package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mabarin/mabarin-web/internal/booking"
	"github.com/mabarin/mabarin-web/internal/explore"
	"github.com/mabarin/mabarin-web/internal/mabarin"
	"github.com/mabarin/mabarin-web/internal/middleware"
	"github.com/mabarin/mabarin-web/internal/model"
	"github.com/mabarin/mabarin-web/internal/session"
)

// ActivityHandler serves the activity detail page and its booking dialog.
type ActivityHandler struct {
	Base
	Dialogs  *booking.Service
	Location *time.Location
	now      func() time.Time
}

func NewActivityHandler(b Base, svc *booking.Service, loc *time.Location) *ActivityHandler {
	return &ActivityHandler{Base: b, Dialogs: svc, Location: loc, now: time.Now}
}

type activityData struct {
	Activity    model.SportActivity
	Eligibility explore.Eligibility
	Dialog      booking.Dialog
	LoginURL    string
}

func detailURL(id int64) string { return "/explore/" + strconv.FormatInt(id, 10) }

func (h *ActivityHandler) load(c echo.Context) (activityData, error) {
	id, ok := pathID(c, "id")
	if !ok {
		return activityData{}, echo.NewHTTPError(http.StatusNotFound, "activity not found")
	}
	a, err := h.API.Activity(c.Request().Context(), id)
	if err != nil {
		return activityData{}, err
	}
	return activityData{
		Activity:    a,
		Eligibility: explore.Check(a, h.now(), h.Location),
		LoginURL:    middleware.LoginURL(detailURL(id)),
	}, nil
}

func (h *ActivityHandler) render(c echo.Context, status int, d activityData) error {
	return h.page(c, status, "activity", d.Activity.Title, d)
}

func (h *ActivityHandler) failLoad(c echo.Context, err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return err
	}
	return h.fail(c, err, "Failed to load activity.")
}

// Detail shows one activity.  An open booking dialog of this visitor is
// shown on top.
func (h *ActivityHandler) Detail(c echo.Context) error {
	d, err := h.load(c)
	if err != nil {
		return h.failLoad(c, err)
	}
	if dlg, err := h.Dialogs.View(c.Request().Context(), session.From(c), d.Activity.ID); err == nil {
		d.Dialog = dlg
	} else {
		h.Log.Warnf("booking dialog: %v", err)
	}
	return h.render(c, http.StatusOK, d)
}

// OpenBooking opens the dialog.  Anonymous visitors are sent to the login
// page; activities that ended or are full cannot be booked.
func (h *ActivityHandler) OpenBooking(c echo.Context) error {
	s := session.From(c)
	if !s.Authenticated() {
		return h.redirect(c, "error", booking.MsgLoginRequired, middleware.LoginURL(c.Request().URL.Path))
	}
	d, err := h.load(c)
	if err != nil {
		return h.failLoad(c, err)
	}
	if !d.Eligibility.CanBook() {
		return h.redirect(c, "error", d.Eligibility.Label(), detailURL(d.Activity.ID))
	}
	d.Dialog, err = h.Dialogs.Open(c.Request().Context(), s, d.Activity.ID)
	if err != nil {
		return h.bookingError(c, d, err)
	}
	return h.render(c, http.StatusOK, d)
}

type bookingForm struct {
	Action          string `form:"action"`
	PaymentMethodID int64  `form:"payment_method_id"`
}

// BookingAction handles the dialog buttons: select, confirm and cancel.
func (h *ActivityHandler) BookingAction(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "activity not found")
	}
	var f bookingForm
	if err := c.Bind(&f); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}
	ctx := c.Request().Context()
	s := session.From(c)

	switch f.Action {
	case "cancel":
		if err := h.Dialogs.Cancel(ctx, s, id); err != nil {
			if errors.Is(err, booking.ErrSubmitting) {
				return h.redirect(c, "error", "Your booking is still being processed.", detailURL(id))
			}
			return err
		}
		return c.Redirect(http.StatusSeeOther, detailURL(id))

	case "select":
		if _, err := h.Dialogs.Select(ctx, s, id, f.PaymentMethodID); err != nil && !errors.Is(err, booking.ErrNoPaymentMethod) {
			return h.bookingErrorRedirect(c, id, err)
		}
		return c.Redirect(http.StatusSeeOther, detailURL(id))

	default: // confirm
		out, dlg, err := h.Dialogs.Confirm(ctx, s, id, f.PaymentMethodID)
		if err == nil {
			return h.redirect(c, "success", out.Message, "/profile/transactions")
		}
		d, loadErr := h.load(c)
		if loadErr != nil {
			return h.bookingErrorRedirect(c, id, err)
		}
		d.Dialog = dlg
		return h.bookingError(c, d, err)
	}
}

// bookingError re-renders the page with the dialog, or leaves it for the
// login page when the session is gone.
func (h *ActivityHandler) bookingError(c echo.Context, d activityData, err error) error {
	switch {
	case errors.Is(err, booking.ErrLoginRequired):
		return h.redirect(c, "error", booking.MsgLoginRequired, d.LoginURL)
	case errors.Is(err, mabarin.ErrUnauthorized):
		return h.fail(c, err, booking.MsgError)
	case errors.Is(err, booking.ErrNotOpen):
		return c.Redirect(http.StatusSeeOther, detailURL(d.Activity.ID))
	case errors.Is(err, booking.ErrNoPaymentMethod):
		return h.render(c, http.StatusUnprocessableEntity, d)
	case errors.Is(err, booking.ErrSubmitting):
		return h.render(c, http.StatusConflict, d)
	}
	if d.Dialog.Open() {
		h.Log.Warnf("booking %d: %v", d.Activity.ID, err)
		return h.render(c, http.StatusOK, d)
	}
	return h.fail(c, err, booking.MsgError)
}

func (h *ActivityHandler) bookingErrorRedirect(c echo.Context, id int64, err error) error {
	if errors.Is(err, booking.ErrLoginRequired) {
		return h.redirect(c, "error", booking.MsgLoginRequired, middleware.LoginURL(detailURL(id)))
	}
	if errors.Is(err, mabarin.ErrUnauthorized) {
		return h.fail(c, err, booking.MsgError)
	}
	h.Log.Warnf("booking %d: %v", id, err)
	return h.redirect(c, "error", booking.MsgError, detailURL(id))
}

// JSON returns one activity with its booking state for scripts.
func (h *ActivityHandler) JSON(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return apiError(c, http.StatusBadRequest, "bad_request", "Invalid activity id.")
	}
	a, err := h.API.Activity(c.Request().Context(), id)
	if err != nil {
		return upstreamAPIError(c, err)
	}
	e := explore.Check(a, h.now(), h.Location)
	return c.JSON(http.StatusOK, echo.Map{"activity": a, "eligibility": e, "label": e.Label()})
}
