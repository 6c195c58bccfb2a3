package identity

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatic(t *testing.T) {
	id, err := Static("owner-1").CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "owner-1", id)

	_, err = Static("").CurrentUserID(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestHeaderProviderFallback(t *testing.T) {
	p := HeaderProvider{Fallback: Static("config-owner")}

	id, err := p.CurrentUserID(WithUserID(context.Background(), "header-owner"))
	require.NoError(t, err)
	assert.Equal(t, "header-owner", id)

	id, err = p.CurrentUserID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "config-owner", id)

	_, err = HeaderProvider{}.CurrentUserID(context.Background())
	assert.ErrorIs(t, err, ErrNoIdentity)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	p := HeaderProvider{}

	r := gin.New()
	r.Use(Middleware())
	r.GET("/whoami", func(c *gin.Context) {
		id, err := p.CurrentUserID(c.Request.Context())
		if err != nil {
			c.String(http.StatusUnauthorized, err.Error())
			return
		}
		c.String(http.StatusOK, id)
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set(HeaderUserID, "  u-7 ")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-7", w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/whoami", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
