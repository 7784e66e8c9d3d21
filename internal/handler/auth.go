package handler

import (
    "database/sql"
    "errors"
    "log"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/config"
    "github.com/brandloop/creator-campaigns/internal/middleware"
    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/queue"
    "github.com/brandloop/creator-campaigns/internal/repository"
    queue_publisher "github.com/brandloop/creator-campaigns/internal/service"
    "github.com/brandloop/creator-campaigns/internal/utils"
)

// AuthHandler serves registration, login, token refresh, logout and the
// password-reset flow.
type AuthHandler struct {
    Cfg    config.Config
    Users  *repository.UserRepo
    Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, users *repository.UserRepo, tokens *repository.TokenRepo) *AuthHandler {
    return &AuthHandler{Cfg: cfg, Users: users, Tokens: tokens}
}

// setAccessCookie writes the signed JWT into the httpOnly session cookie.
func (h *AuthHandler) setAccessCookie(c echo.Context, tok utils.AccessToken) {
    c.SetCookie(&http.Cookie{
        Name:     middleware.AccessCookieName,
        Value:    tok.Token,
        Path:     "/",
        Expires:  tok.Exp,
        HttpOnly: true,
        Secure:   h.Cfg.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    })
}

// clearAccessCookie expires the session cookie immediately.
func (h *AuthHandler) clearAccessCookie(c echo.Context) {
    c.SetCookie(&http.Cookie{
        Name:     middleware.AccessCookieName,
        Value:    "",
        Path:     "/",
        Expires:  time.Unix(0, 0),
        MaxAge:   -1,
        HttpOnly: true,
        Secure:   h.Cfg.CookieSecure,
        SameSite: http.SameSiteLaxMode,
    })
}

// issueSession creates both tokens for the user, persists the refresh hash
// and sets the access cookie. Returns the body fields common to register,
// login and refresh responses.
func (h *AuthHandler) issueSession(c echo.Context, u model.User) (echo.Map, error) {
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.UserType, u.IsAdmin, h.Cfg.AccessTTLDays)
    if err != nil {
        return nil, err
    }
    refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
    if err != nil {
        return nil, err
    }
    if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
        return nil, err
    }
    h.setAccessCookie(c, access)
    return echo.Map{
        "user": echo.Map{
            "id":        u.ID,
            "email":     u.Email,
            "username":  u.Username,
            "user_type": u.UserType,
        },
        "refresh_token": refresh.Raw,
    }, nil
}

// Register creates an account. Email must be well formed and unused; the
// user type selects which side of the platform the account belongs to.
func (h *AuthHandler) Register(c echo.Context) error {
    var req struct {
        Email    string `json:"email"`
        Username string `json:"username"`
        Password string `json:"password"`
        UserType string `json:"user_type"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if !model.ValidEmail(req.Email) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
    }
    if len(req.Password) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
    }
    if req.Username == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "username is required"})
    }
    if !model.ValidUserType(req.UserType) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_type must be BRAND, AGENCY or CREATOR"})
    }

    ctx := c.Request().Context()
    id, err := h.Users.Create(ctx, req.Email, req.Username, req.Password, req.UserType, h.Cfg.BcryptCost)
    if err != nil {
        if errors.Is(err, repository.ErrEmailExists) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    u, err := h.Users.GetByID(ctx, id)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    body, err := h.issueSession(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
    }
    return c.JSON(http.StatusCreated, body)
}

// Login verifies credentials and opens a session. Unknown email and wrong
// password answer the same way.
func (h *AuthHandler) Login(c echo.Context) error {
    var req struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
    if err != nil {
        if errors.Is(err, sql.ErrNoRows) {
            return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if !utils.VerifyPassword(u.PasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
    }
    body, err := h.issueSession(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
    }
    return c.JSON(http.StatusOK, body)
}

// Refresh rotates the refresh token: the presented token is revoked and a
// fresh pair is issued. Invalid or revoked tokens answer 401.
func (h *AuthHandler) Refresh(c echo.Context) error {
    var req struct {
        RefreshToken string `json:"refresh_token"`
    }
    if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token is required"})
    }
    ctx := c.Request().Context()
    hash := utils.HashRefreshRaw(req.RefreshToken)
    userID, err := h.Tokens.ValidateRefresh(ctx, hash)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    if err := h.Tokens.RevokeByHash(ctx, hash); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    u, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
    }
    body, err := h.issueSession(c, u)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create session"})
    }
    return c.JSON(http.StatusOK, body)
}

// Logout revokes every refresh token for the caller and clears the cookie.
func (h *AuthHandler) Logout(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    if err := h.Tokens.RevokeAllForUser(c.Request().Context(), userID); err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    h.clearAccessCookie(c)
    return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Me returns the authenticated account's profile.
func (h *AuthHandler) Me(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    u, err := h.Users.GetByID(c.Request().Context(), userID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "id":        u.ID,
        "email":     u.Email,
        "username":  u.Username,
        "user_type": u.UserType,
        "is_admin":  u.IsAdmin,
    })
}

// ForgotPassword stores a reset code on the account and hands it to the
// notification pipeline. The response is identical whether or not the email
// exists so the endpoint cannot be used to enumerate accounts.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
    var req struct {
        Email string `json:"email"`
    }
    if err := c.Bind(&req); err != nil || !model.ValidEmail(req.Email) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
    }
    code, err := utils.RandomHex(16)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not generate reset code"})
    }
    expires := time.Now().UTC().Add(30 * time.Minute)
    if err := h.Users.SetResetCode(c.Request().Context(), req.Email, code, expires); err != nil {
        if !errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
        }
        log.Printf("forgot-password for unknown email %q", model.NormalizeEmail(req.Email))
        return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists, a reset code has been sent"})
    }
    _ = queue_publisher.PublishNotification(c.Request().Context(), queue.NotificationEvent{
        Kind:      queue.KindPasswordReset,
        Recipient: model.NormalizeEmail(req.Email),
        ResetCode: code,
    })
    return c.JSON(http.StatusOK, echo.Map{"message": "if the account exists, a reset code has been sent"})
}

// ResetPassword consumes a reset code and swaps the password. All sessions
// for the account are revoked.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
    var req struct {
        Email       string `json:"email"`
        Code        string `json:"code"`
        NewPassword string `json:"new_password"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Code == "" || len(req.NewPassword) < 8 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and a password of at least 8 characters are required"})
    }
    ctx := c.Request().Context()
    if err := h.Users.ResetPassword(ctx, req.Email, req.Code, req.NewPassword, h.Cfg.BcryptCost); err != nil {
        if errors.Is(err, repository.ErrExpired) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired reset code"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    if u, err := h.Users.GetByEmail(ctx, req.Email); err == nil {
        _ = h.Tokens.RevokeAllForUser(ctx, u.ID)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}
