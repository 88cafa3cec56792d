package rental

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"quickrent/app/echoServer/jwtx"
	"quickrent/app/echoServer/validation"
	"quickrent/model"
	rs "quickrent/service/rental"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type Controller struct {
	Svc         rs.Service
	V           *validator.Validate
	Log         *slog.Logger
	Transitions *prometheus.CounterVec
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Controller) mapErr(c echo.Context, op string, err error) error {
	switch rs.Code(err) {
	case rs.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
	case rs.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case rs.ErrInvalidInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid input"})
	case rs.ErrInvalidTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "invalid status transition"})
	case rs.ErrItemUnavailable:
		return c.JSON(http.StatusConflict, echo.Map{"message": "item not available"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /v1/rentals
func (h *Controller) Create(c echo.Context) error {
	var req CreateRentalReq
	if err := validation.BindStrict(c, &req); err != nil {
		return err
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid start_date"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rn, err := h.Svc.Create(c.Request().Context(), uid, req.ItemID, req.DurationDays, start, model.DeliveryOption(req.DeliveryOption))
	if err != nil {
		if rs.Code(err) == rs.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		}
		return h.mapErr(c, "rental create", err)
	}

	return c.JSON(http.StatusCreated, echo.Map{"data": rn})
}

// PATCH /v1/rentals/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := validation.BindStrict(c, &req); err != nil {
		return err
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rn, err := h.Svc.UpdateStatus(c.Request().Context(), uid, id, model.RentalStatus(req.Status), req.Reason)
	if err != nil {
		return h.mapErr(c, "rental update status", err)
	}

	if h.Transitions != nil {
		h.Transitions.WithLabelValues(string(rn.Status)).Inc()
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rn})
}

// POST /v1/rentals/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	rn, err := h.Svc.Cancel(c.Request().Context(), uid, id)
	if err != nil {
		return h.mapErr(c, "rental cancel", err)
	}

	if h.Transitions != nil {
		h.Transitions.WithLabelValues(string(model.RentalCancelled)).Inc()
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rn})
}

// DELETE /v1/rentals/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Delete(c.Request().Context(), uid, id); err != nil {
		return h.mapErr(c, "rental delete", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "deleted"})
}

// GET /v1/rentals/my
func (h *Controller) MyRentals(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListMine(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental list mine", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/rentals/owned
func (h *Controller) OwnedRentals(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListForOwner(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("rental list owned", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
