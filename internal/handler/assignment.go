package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// AssignmentHandler serves the campaign's creator ledger: listing, creator
// acknowledgment and removal. Entries are only ever created by invitation
// acceptance.
type AssignmentHandler struct {
    Campaigns   *repository.CampaignRepo
    Assignments *repository.AssignmentRepo
    Users       *repository.UserRepo
}

func NewAssignmentHandler(campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo, users *repository.UserRepo) *AssignmentHandler {
    return &AssignmentHandler{Campaigns: campaigns, Assignments: assignments, Users: users}
}

// List returns the assignment ledger of a campaign.
func (h *AssignmentHandler) List(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionViewCampaign); err != nil {
        return respondErr(c, err)
    }
    list, err := h.Assignments.ListByCampaign(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, ac := range list {
        entry := echo.Map{
            "creator_id":      ac.CreatorID,
            "ack_status":      ac.AckStatus,
            "acknowledged_at": ac.AcknowledgedAt,
            "assigned_at":     ac.CreatedAt,
        }
        if u, err := h.Users.GetByID(ctx, ac.CreatorID); err == nil {
            entry["username"] = u.Username
        }
        out = append(out, entry)
    }
    return c.JSON(http.StatusOK, echo.Map{"creators": out})
}

// Acknowledge records the creator's confirmation (or decline) of their
// assignment. Only the assigned creator may acknowledge their own row.
func (h *AssignmentHandler) Acknowledge(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        Decline bool `json:"decline"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    status := model.AckAcknowledged
    if req.Decline {
        status = model.AckDeclined
    }
    if err := h.Assignments.Acknowledge(c.Request().Context(), campaignID, userID, status); err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"ack_status": status})
}

// Remove takes a creator off the campaign. Removal is silent; no
// notification goes out.
func (h *AssignmentHandler) Remove(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        CreatorID uint64 `json:"creator_id"`
    }
    if err := c.Bind(&req); err != nil || req.CreatorID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator_id is required"})
    }
    creatorID := req.CreatorID
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionRemoveCreator); err != nil {
        return respondErr(c, err)
    }
    if err := h.Assignments.Remove(ctx, campaignID, creatorID); err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "creator removed"})
}
