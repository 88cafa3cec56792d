package wishlist

import (
	"log/slog"
	"net/http"
	"strconv"

	"quickrent/app/echoServer/jwtx"
	wishlistsvc "quickrent/service/wishlist"

	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc wishlistsvc.Service
	Log *slog.Logger
}

func itemID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// POST /v1/wishlist/:itemId
func (h *Controller) Add(c echo.Context) error {
	id, ok := itemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Add(c.Request().Context(), uid, id); err != nil {
		switch wishlistsvc.Code(err) {
		case wishlistsvc.ErrNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "item not found"})
		case wishlistsvc.ErrDuplicate:
			return c.JSON(http.StatusConflict, echo.Map{"message": "already in wishlist"})
		default:
			h.Log.Error("wishlist add", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "added"})
}

// DELETE /v1/wishlist/:itemId
func (h *Controller) Remove(c echo.Context) error {
	id, ok := itemID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	if err := h.Svc.Remove(c.Request().Context(), uid, id); err != nil {
		if wishlistsvc.Code(err) == wishlistsvc.ErrNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "not in wishlist"})
		}
		h.Log.Error("wishlist remove", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "removed"})
}

// GET /v1/wishlist
func (h *Controller) List(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	rows, err := h.Svc.List(c.Request().Context(), uid)
	if err != nil {
		h.Log.Error("wishlist list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
