package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/pkg/response"
)

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var payload response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.NotNil(t, payload.Error)
	return payload
}

func TestRecoveryTurnsPanicIntoErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorded := observeLogs(t)

	r := gin.New()
	r.Use(Recovery())
	r.POST("/api/swipes", func(c *gin.Context) {
		panic("nil swipe")
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/swipes", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "INTERNAL_SERVER_ERROR", decodeEnvelope(t, w).Error.Code)

	panics := recorded.FilterMessage("panic").All()
	require.Len(t, panics, 1)
	require.Equal(t, "/api/swipes", panics[0].ContextMap()["path"])
}

func TestNotFoundHandlerNamesRoute(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.NoRoute(NotFoundHandler)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nowhere", nil))

	require.Equal(t, http.StatusNotFound, w.Code)
	payload := decodeEnvelope(t, w)
	require.Equal(t, "ROUTE_NOT_FOUND", payload.Error.Code)
	require.Equal(t, "route /api/nowhere not found", payload.Error.Message)
}
