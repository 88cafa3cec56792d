package moderation

import (
	"log/slog"
	"net/http"
	"strconv"

	"quickrent/app/echoServer/jwtx"
	"quickrent/app/echoServer/validation"
	"quickrent/model"
	moderationsvc "quickrent/service/moderation"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc moderationsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func parseID(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// POST /v1/reports
func (h *Controller) FileReport(c echo.Context) error {
	var req FileReportReq
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

	rep, err := h.Svc.FileReport(c.Request().Context(), uid, model.ReportTarget(req.Target), req.TargetID, req.Reason)
	if err != nil {
		if moderationsvc.Code(err) == moderationsvc.ErrInvalidInput {
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid input"})
		}
		h.Log.Error("report create", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": rep})
}

// GET /v1/admin/reports
func (h *Controller) ListOpenReports(c echo.Context) error {
	rows, err := h.Svc.ListOpenReports(c.Request().Context())
	if err != nil {
		h.Log.Error("report list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/admin/reports/:id
func (h *Controller) ResolveReport(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ResolveReportReq
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

	if err := h.Svc.ResolveReport(c.Request().Context(), uid, id, model.ReportStatus(req.Status), req.Note); err != nil {
		switch moderationsvc.Code(err) {
		case moderationsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "report not found or already closed"})
		case moderationsvc.ErrInvalidInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid input"})
		default:
			h.Log.Error("report resolve", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// SubmitVerification uploads an identity document for a rental.
// POST /v1/rentals/:id/verification  (multipart: file)
func (h *Controller) SubmitVerification(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "missing file"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "unreadable file"})
	}
	defer src.Close()

	v, err := h.Svc.SubmitVerification(c.Request().Context(), uid, id, fh.Filename, src)
	if err != nil {
		switch moderationsvc.Code(err) {
		case moderationsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "rental not found"})
		case moderationsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case moderationsvc.ErrInvalidInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid input"})
		default:
			h.Log.Error("verification submit", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"data": v})
}

// GET /v1/admin/verifications
func (h *Controller) ListPendingVerifications(c echo.Context) error {
	rows, err := h.Svc.ListPendingVerifications(c.Request().Context())
	if err != nil {
		h.Log.Error("verification list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// PATCH /v1/admin/verifications/:id
func (h *Controller) ReviewVerification(c echo.Context) error {
	id, ok := parseID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReviewVerificationReq
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

	if err := h.Svc.ReviewVerification(c.Request().Context(), uid, id, model.VerificationStatus(req.Status), req.Note); err != nil {
		switch moderationsvc.Code(err) {
		case moderationsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "verification not found or already reviewed"})
		case moderationsvc.ErrInvalidInput:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid input"})
		default:
			h.Log.Error("verification review", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "updated"})
}

// GET /v1/admin/activity
func (h *Controller) ListActivity(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := h.Svc.ListActivity(c.Request().Context(), limit)
	if err != nil {
		h.Log.Error("activity list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
