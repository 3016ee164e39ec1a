package common

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(h *HealthHandler) (*httptest.ResponseRecorder, HealthResponse) {
	r := gin.New()
	r.GET("/health", h.Health)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return w, resp
}

func TestHealth_Up(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	w, resp := serve(NewHealthHandler(map[string]Pinger{"database": ok, "redis": ok}, time.Second))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Equal(t, StatusUp, resp.Components["redis"])
}

func TestHealth_Down(t *testing.T) {
	ok := PingFunc(func(ctx context.Context) error { return nil })
	down := PingFunc(func(ctx context.Context) error { return errors.New("connection refused") })
	w, resp := serve(NewHealthHandler(map[string]Pinger{"database": ok, "redis": down}, 0))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, StatusDown, resp.Status)
	assert.Equal(t, StatusUp, resp.Components["database"])
	assert.Equal(t, StatusDown, resp.Components["redis"])
}
