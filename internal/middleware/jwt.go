package middleware // middleware contains reusable HTTP middleware functions

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// AccessCookieName is the httpOnly cookie the browser client carries the
// access token in. API clients may send the same token as a Bearer header
// instead; the cookie wins when both are present.
const AccessCookieName = "access_token"

// JWTAuth returns an Echo middleware that validates the access token from
// the `access_token` cookie (or an Authorization Bearer header) and injects
// the subject, account type and admin flag into the request context. The
// provided secret must match the one used when issuing tokens. Handlers
// read the values via `c.Get("user_id")`, `c.Get("role")` and
// `c.Get("admin")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := tokenFromRequest(c)
            if raw == "" {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing access token"})
            }

            // Parse with HS256 and our secret. The callback supplies the
            // signing key and rejects tokens signed with anything else.
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            claims, ok := tok.Claims.(jwt.MapClaims)
            if !ok {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid claims"})
            }

            c.Set("user_id", claims["sub"])
            c.Set("role", claims["role"])
            c.Set("admin", claims["admin"])
            return next(c)
        }
    }
}

// OptionalJWT is JWTAuth that lets unauthenticated requests through with no
// context values set. The public invitation preview uses it so an invitee
// without a session can still see the campaign summary.
func OptionalJWT(secret string) echo.MiddlewareFunc {
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            raw := tokenFromRequest(c)
            if raw == "" {
                return next(c)
            }
            tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
                if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
                    return nil, echo.ErrUnauthorized
                }
                return []byte(secret), nil
            })
            if err == nil && tok.Valid {
                if claims, ok := tok.Claims.(jwt.MapClaims); ok {
                    c.Set("user_id", claims["sub"])
                    c.Set("role", claims["role"])
                    c.Set("admin", claims["admin"])
                }
            }
            return next(c)
        }
    }
}

// tokenFromRequest extracts the raw token, preferring the cookie.
func tokenFromRequest(c echo.Context) string {
    if ck, err := c.Cookie(AccessCookieName); err == nil && ck.Value != "" {
        return ck.Value
    }
    auth := c.Request().Header.Get("Authorization")
    if strings.HasPrefix(auth, "Bearer ") {
        return strings.TrimPrefix(auth, "Bearer ")
    }
    return ""
}
