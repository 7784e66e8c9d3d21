package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// ReportHandler serves the aggregated campaign report. The route sits behind
// the Redis response cache; the aggregation itself is a handful of read-only
// queries.
type ReportHandler struct {
    Campaigns *repository.CampaignRepo
    Reports   *repository.ReportRepo
}

func NewReportHandler(campaigns *repository.CampaignRepo, reports *repository.ReportRepo) *ReportHandler {
    return &ReportHandler{Campaigns: campaigns, Reports: reports}
}

// Campaign returns the aggregate view of one campaign.
func (h *ReportHandler) Campaign(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionViewCampaign); err != nil {
        return respondErr(c, err)
    }
    rep, err := h.Reports.CampaignReport(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, rep)
}
