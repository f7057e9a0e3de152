package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/teamforge/internal/models"
)

func TestRequireRoleWithoutAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/admin", RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	codec := newTestCodec(t)
	r := gin.New()
	r.GET("/admin", Auth(codec, nil), RequireRole(models.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusOK) })

	for role, want := range map[models.AccountRole]int{
		models.RoleUser:      http.StatusForbidden,
		models.RoleOrganizer: http.StatusForbidden,
		models.RoleAdmin:     http.StatusOK,
	} {
		token, err := codec.Issue("subject", role)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		r.ServeHTTP(w, req)
		require.Equal(t, want, w.Code, string(role))
	}
}
