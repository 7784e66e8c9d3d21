package middleware // middleware provides shared request processing for handlers

import (
    "net/http" // http package defines standard HTTP status codes

    "github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireUserType returns a middleware that enforces that the authenticated
// account is one of the specified user types (BRAND, AGENCY, CREATOR). The
// values correspond to the JWT's "role" claim. Campaign-level permissions
// are a separate concern handled by the policy table in handlers; this gate
// only keeps, say, creator accounts off brand-side surfaces. It assumes
// JWTAuth already stored the claim under "role".
func RequireUserType(types ...string) echo.MiddlewareFunc {
    allowed := make(map[string]bool, len(types))
    for _, t := range types {
        allowed[t] = true
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            v := c.Get("role")
            role, ok := v.(string)
            if !ok || !allowed[role] {
                // Platform admins pass every user-type gate.
                if isAdmin, _ := c.Get("admin").(bool); !isAdmin {
                    return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
                }
            }
            return next(c)
        }
    }
}
