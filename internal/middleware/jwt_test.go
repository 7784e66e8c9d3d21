package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/brandloop/creator-campaigns/internal/utils"
)

const testSecret = "test-secret"

func runJWT(t *testing.T, mw echo.MiddlewareFunc, decorate func(*http.Request)) (*httptest.ResponseRecorder, echo.Context) {
    t.Helper()
    e := echo.New()
    req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
    if decorate != nil {
        decorate(req)
    }
    rec := httptest.NewRecorder()
    c := e.NewContext(req, rec)
    var captured echo.Context
    handler := mw(func(c echo.Context) error {
        captured = c
        return c.NoContent(http.StatusOK)
    })
    require.NoError(t, handler(c))
    return rec, captured
}

func TestJWTAuthMissingToken(t *testing.T) {
    rec, captured := runJWT(t, JWTAuth(testSecret), nil)
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Nil(t, captured)
}

func TestJWTAuthFromCookie(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 42, "CREATOR", false, 1)
    require.NoError(t, err)

    rec, captured := runJWT(t, JWTAuth(testSecret), func(r *http.Request) {
        r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tok.Token})
    })
    assert.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, captured)
    assert.Equal(t, float64(42), captured.Get("user_id"))
    assert.Equal(t, "CREATOR", captured.Get("role"))
    assert.Equal(t, false, captured.Get("admin"))
}

func TestJWTAuthFromBearerHeader(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 7, "BRAND", true, 1)
    require.NoError(t, err)

    rec, captured := runJWT(t, JWTAuth(testSecret), func(r *http.Request) {
        r.Header.Set("Authorization", "Bearer "+tok.Token)
    })
    assert.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, captured)
    assert.Equal(t, "BRAND", captured.Get("role"))
    assert.Equal(t, true, captured.Get("admin"))
}

func TestJWTAuthWrongSecret(t *testing.T) {
    tok, err := utils.NewAccessToken("other-secret", 7, "BRAND", false, 1)
    require.NoError(t, err)

    rec, captured := runJWT(t, JWTAuth(testSecret), func(r *http.Request) {
        r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tok.Token})
    })
    assert.Equal(t, http.StatusUnauthorized, rec.Code)
    assert.Nil(t, captured)
}

func TestOptionalJWTWithoutToken(t *testing.T) {
    rec, captured := runJWT(t, OptionalJWT(testSecret), nil)
    assert.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, captured)
    assert.Nil(t, captured.Get("user_id"))
}

func TestOptionalJWTWithToken(t *testing.T) {
    tok, err := utils.NewAccessToken(testSecret, 9, "CREATOR", false, 1)
    require.NoError(t, err)

    rec, captured := runJWT(t, OptionalJWT(testSecret), func(r *http.Request) {
        r.AddCookie(&http.Cookie{Name: AccessCookieName, Value: tok.Token})
    })
    assert.Equal(t, http.StatusOK, rec.Code)
    require.NotNil(t, captured)
    assert.Equal(t, float64(9), captured.Get("user_id"))
}

func TestRequireUserType(t *testing.T) {
    e := echo.New()
    mw := RequireUserType("BRAND", "AGENCY")
    next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

    run := func(role interface{}, admin interface{}) int {
        req := httptest.NewRequest(http.MethodPost, "/v1/campaigns", nil)
        rec := httptest.NewRecorder()
        c := e.NewContext(req, rec)
        if role != nil {
            c.Set("role", role)
        }
        if admin != nil {
            c.Set("admin", admin)
        }
        require.NoError(t, mw(next)(c))
        return rec.Code
    }

    assert.Equal(t, http.StatusOK, run("BRAND", nil))
    assert.Equal(t, http.StatusOK, run("AGENCY", nil))
    assert.Equal(t, http.StatusForbidden, run("CREATOR", nil))
    assert.Equal(t, http.StatusForbidden, run(nil, nil))
    // Platform admins bypass the gate regardless of account type.
    assert.Equal(t, http.StatusOK, run("CREATOR", true))
}
