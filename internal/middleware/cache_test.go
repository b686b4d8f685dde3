package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetfilm/fleetfilm-api/internal/config"
	"github.com/fleetfilm/fleetfilm-api/internal/utils"
)

const cacheTestSecret = "cache-test-secret"

// newCachedEcho wires the cache globally ahead of a JWT-protected group,
// matching how the server composes its middleware.
func newCachedEcho(t *testing.T) *echo.Echo {
	srv := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { rdb.Close() })

	e := echo.New()
	e.Use(NewRedisCache(config.CacheConfig{
		Enabled:      true,
		TTL:          time.Minute,
		Prefix:       "cache",
		MaxBodyBytes: 1 << 20,
	}, rdb))
	return e
}

func TestCacheNeverServesAuthenticatedResponses(t *testing.T) {
	e := newCachedEcho(t)
	g := e.Group("/v1")
	g.Use(JWTAuth(cacheTestSecret))
	g.GET("/me", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"id": c.Get("user_id")})
	})

	tok, err := utils.NewAccessToken(cacheTestSecret, 7, "MEMBER", 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Header().Get("X-Cache"), "credentialed requests bypass the cache")

	// The same path without a token must reach auth, not a cached copy of
	// member 7's response.
	req = httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"id":7`)
	assert.NotEqual(t, "HIT", rec.Header().Get("X-Cache"))
}

func TestCacheServesRepeatedAnonymousGets(t *testing.T) {
	e := newCachedEcho(t)
	calls := 0
	e.GET("/healthz", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	first := httptest.NewRecorder()
	e.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "MISS", first.Header().Get("X-Cache"))

	second := httptest.NewRecorder()
	e.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, "HIT", second.Header().Get("X-Cache"))
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, 1, calls)
}

func TestCacheSkipsNonGet(t *testing.T) {
	e := newCachedEcho(t)
	e.POST("/films", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"ok": true})
	})

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/films", nil))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("X-Cache"))
	}
}
