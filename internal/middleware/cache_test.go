package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/config"
)

func TestEncodeDecodePayload(t *testing.T) {
    hdr := http.Header{"Content-Type": {"application/json"}}
    body := []byte(`{"campaigns":[]}`)

    bs, err := encodePayload(http.StatusOK, hdr, body)
    require.NoError(t, err)

    status, gotHdr, gotBody, ok := decodePayload(bs)
    require.True(t, ok)
    assert.Equal(t, http.StatusOK, status)
    assert.Equal(t, "application/json", gotHdr.Get("Content-Type"))
    assert.Equal(t, body, gotBody)
}

func TestDecodePayloadGarbage(t *testing.T) {
    _, _, _, ok := decodePayload([]byte{1, 2, 3})
    assert.False(t, ok)
}

func cacheCtx(userID interface{}, target string) echo.Context {
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, target, nil)
    c := e.NewContext(req, httptest.NewRecorder())
    c.SetPath("/v1/campaigns/:id/report")
    if userID != nil {
        c.Set("user_id", userID)
    }
    return c
}

func TestCacheKeySeparatesUsers(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "user_route_query"}
    a := cacheKeyFrom(cfg, cacheCtx(float64(1), "/v1/campaigns/3/report"))
    b := cacheKeyFrom(cfg, cacheCtx(float64(2), "/v1/campaigns/3/report"))
    anon := cacheKeyFrom(cfg, cacheCtx(nil, "/v1/campaigns/3/report"))
    assert.NotEqual(t, a, b)
    assert.NotEqual(t, a, anon)
}

func TestCacheKeyRouteStrategyIgnoresUser(t *testing.T) {
    cfg := config.CacheConfig{Prefix: "cache", KeyStrategy: "route"}
    a := cacheKeyFrom(cfg, cacheCtx(float64(1), "/v1/campaigns/3/report"))
    b := cacheKeyFrom(cfg, cacheCtx(float64(2), "/v1/campaigns/3/report"))
    assert.Equal(t, a, b)
}

func TestCurrentUserID(t *testing.T) {
    assert.Equal(t, "anon", currentUserID(cacheCtx(nil, "/")))
    assert.Equal(t, "5", currentUserID(cacheCtx(float64(5), "/")))
    assert.Equal(t, "6", currentUserID(cacheCtx(uint64(6), "/")))
    assert.Equal(t, "7", currentUserID(cacheCtx("7", "/")))
}
