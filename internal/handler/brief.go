package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// BriefHandler serves the campaign content brief. Each campaign carries at
// most one; writing replaces.
type BriefHandler struct {
    Campaigns   *repository.CampaignRepo
    Assignments *repository.AssignmentRepo
    Briefs      *repository.BriefRepo
}

func NewBriefHandler(campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo, briefs *repository.BriefRepo) *BriefHandler {
    return &BriefHandler{Campaigns: campaigns, Assignments: assignments, Briefs: briefs}
}

func briefView(b model.Brief) echo.Map {
    return echo.Map{
        "campaign_id": b.CampaignID,
        "objective":   b.Objective,
        "messaging":   b.Messaging,
        "hashtags":    b.Hashtags,
        "dos_donts":   b.DosDonts,
        "updated_at":  b.UpdatedAt,
    }
}

// Put creates or replaces the campaign's brief.
func (h *BriefHandler) Put(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        Objective string `json:"objective"`
        Messaging string `json:"messaging"`
        Hashtags  string `json:"hashtags"`
        DosDonts  string `json:"dos_donts"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Objective == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "objective is required"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionManageBrief); err != nil {
        return respondErr(c, err)
    }
    b := model.Brief{
        CampaignID: campaignID,
        Objective:  req.Objective,
        Messaging:  req.Messaging,
        Hashtags:   req.Hashtags,
        DosDonts:   req.DosDonts,
    }
    if err := h.Briefs.Upsert(ctx, b); err != nil {
        return respondErr(c, err)
    }
    saved, err := h.Briefs.GetByCampaign(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, briefView(saved))
}

// Get returns the campaign's brief. Assigned creators see it too.
func (h *BriefHandler) Get(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if err := requireViewer(ctx, c, h.Campaigns, h.Assignments, campaignID); err != nil {
        return respondErr(c, err)
    }
    b, err := h.Briefs.GetByCampaign(ctx, campaignID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "no brief for this campaign"})
        }
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, briefView(b))
}
