package payment

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"quickrent/app/echoServer/jwtx"
	"quickrent/app/echoServer/validation"
	"quickrent/model"
	paymentsvc "quickrent/service/payment"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

// HandleCallback is the endpoint the simulated gateway posts to.
// POST /v1/payments/callback
func (h *Controller) HandleCallback(c echo.Context) error {
	tok := c.Request().Header.Get("X-Callback-Token")
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable body"})
	}

	pay, err := h.Svc.HandleCallback(c.Request().Context(), tok, raw)
	if err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrBadCallback:
			return c.JSON(http.StatusUnauthorized, echo.Map{"message": "callback rejected"})
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case paymentsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment already recorded"})
		case paymentsvc.ErrInvalidInput, paymentsvc.ErrInvalidTransition:
			return c.JSON(http.StatusConflict, echo.Map{"message": "payment rejected"})
		default:
			h.Log.Error("payment callback error", "err", err)
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "payment rejected"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": pay})
}

type updateStatusReq struct {
	Status string `json:"status" validate:"required"`
}

// PATCH /v1/payments/:id/status (admin)
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if !jwtx.IsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	}
	var req updateStatusReq
	if err := validation.BindStrict(c, &req); err != nil {
		return err
	}

	if err := h.Svc.UpdateStatus(c.Request().Context(), id, model.PaymentStatus(req.Status)); err != nil {
		switch paymentsvc.Code(err) {
		case paymentsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "payment not found"})
		case paymentsvc.ErrInvalidInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "unknown payment status"})
		default:
			h.Log.Error("payment update status", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// GET /v1/payments/my
func (h *Controller) MyEarnings(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.ListForOwner(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("payment list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
