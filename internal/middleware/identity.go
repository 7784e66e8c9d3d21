package middleware

// identity.go defines helper functions shared across middleware files. The
// rate limiter keys on the authenticated user when one is present; this
// helper normalizes whatever JWTAuth stored into a string and falls back to
// "anon" for guests.

import (
    "strconv"

    "github.com/labstack/echo/v4"
)

// currentUserID renders the authenticated user's ID as a string for cache
// and rate-limit keys. Returns "anon" when no user is authenticated.
func currentUserID(c echo.Context) string {
    switch v := c.Get("user_id").(type) {
    case string:
        if v != "" {
            return v
        }
    case float64:
        return strconv.FormatUint(uint64(v), 10)
    case uint64:
        return strconv.FormatUint(v, 10)
    case int64:
        return strconv.FormatInt(v, 10)
    }
    return "anon"
}
