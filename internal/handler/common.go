package handler // handler defines http handlers

import (
    "context"
    "errors"
    "net/http"
    "strconv"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// getUserID extracts the user_id from echo.Context and converts it to uint64.
func getUserID(c echo.Context) (uint64, error) {
    v := c.Get("user_id")
    switch t := v.(type) {
    case uint64:
        return t, nil
    case int:
        return uint64(t), nil
    case int64:
        return uint64(t), nil
    case float64:
        return uint64(t), nil
    case string:
        if n, err := strconv.ParseUint(t, 10, 64); err == nil {
            return n, nil
        }
    }
    return 0, errors.New("invalid user_id in context")
}

// isAdmin reports whether the authenticated account carries the admin claim.
func isAdmin(c echo.Context) bool {
    v, _ := c.Get("admin").(bool)
    return v
}

// parseID parses a positive numeric path parameter.
func parseID(c echo.Context, name string) (uint64, error) {
    id, err := strconv.ParseUint(c.Param(name), 10, 64)
    if err != nil || id == 0 {
        return 0, errors.New("invalid id")
    }
    return id, nil
}

// requireAction resolves the caller's campaign role and checks it against
// the policy table. Platform admins act as OWNER on every campaign. Returns
// the effective role on success; repository.ErrForbidden when the caller has
// no relationship to the campaign or the role is insufficient;
// repository.ErrNotFound when the campaign does not exist.
func requireAction(ctx context.Context, c echo.Context, campaigns *repository.CampaignRepo, campaignID uint64, action policy.Action) (string, error) {
    userID, err := getUserID(c)
    if err != nil {
        return "", err
    }
    if isAdmin(c) {
        return model.RoleOwner, nil
    }
    role, err := campaigns.RoleFor(ctx, campaignID, userID)
    if err != nil {
        return "", err
    }
    if !policy.Allows(action, role) {
        return "", repository.ErrForbidden
    }
    return role, nil
}

// requireViewer is requireAction for read access, widened to assigned
// creators: anyone on the team may view per the policy table, and so may a
// creator on the assignment ledger.
func requireViewer(ctx context.Context, c echo.Context, campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo, campaignID uint64) error {
    _, err := requireAction(ctx, c, campaigns, campaignID, policy.ActionViewCampaign)
    if err == nil {
        return nil
    }
    if !errors.Is(err, repository.ErrForbidden) {
        return err
    }
    userID, uerr := getUserID(c)
    if uerr != nil {
        return repository.ErrForbidden
    }
    assigned, aerr := assignments.IsAssigned(ctx, campaignID, userID)
    if aerr != nil {
        return aerr
    }
    if !assigned {
        return repository.ErrForbidden
    }
    return nil
}

// respondErr maps repository sentinel errors onto the HTTP error taxonomy.
// Anything unrecognized is a storage failure and surfaces as a 500 with a
// generic message.
func respondErr(c echo.Context, err error) error {
    switch {
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrForbidden):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
    case errors.Is(err, repository.ErrEmailMismatch):
        return c.JSON(http.StatusForbidden, echo.Map{"error": "invitation email does not match your account"})
    case errors.Is(err, repository.ErrExpired):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation is invalid or expired"})
    case errors.Is(err, repository.ErrAlreadyAssigned):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator already assigned"})
    case errors.Is(err, repository.ErrNotAssigned):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator is not assigned to this campaign"})
    case errors.Is(err, repository.ErrNotReady):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverables not ready for payment"})
    case errors.Is(err, repository.ErrConflict):
        return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
    }
    return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
}
