package payment

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

type brokenBody struct{}

func (brokenBody) Read([]byte) (int, error) { return 0, errors.New("read: connection reset") }

func TestHandleCallback_UnreadableBody(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/v1/payments/callback", brokenBody{})
	req.Header.Set("X-Callback-Token", "sekret")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	h := &Controller{Log: slog.New(slog.NewTextHandler(io.Discard, nil))}
	require.NoError(t, h.HandleCallback(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
