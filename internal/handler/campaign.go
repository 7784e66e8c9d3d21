package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// CampaignHandler serves campaign CRUD and team management.
type CampaignHandler struct {
    Campaigns   *repository.CampaignRepo
    Assignments *repository.AssignmentRepo
    Users       *repository.UserRepo
}

func NewCampaignHandler(campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo, users *repository.UserRepo) *CampaignHandler {
    return &CampaignHandler{Campaigns: campaigns, Assignments: assignments, Users: users}
}

func campaignView(cp model.Campaign) echo.Map {
    return echo.Map{
        "id":          cp.ID,
        "brand_id":    cp.BrandID,
        "agency_id":   cp.AgencyID,
        "name":        cp.Name,
        "description": cp.Description,
        "status":      cp.Status,
        "created_at":  cp.CreatedAt,
        "updated_at":  cp.UpdatedAt,
    }
}

func teamMemberView(tm model.TeamMember) echo.Map {
    return echo.Map{
        "user_id":    tm.UserID,
        "role":       tm.Role,
        "created_at": tm.CreatedAt,
    }
}

// Create opens a new campaign in DRAFT with the caller as brand owner.
// Restricted to BRAND and AGENCY accounts by router middleware.
func (h *CampaignHandler) Create(c echo.Context) error {
    var req struct {
        Name        string  `json:"name"`
        Description string  `json:"description"`
        AgencyID    *uint64 `json:"agency_id"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.Name == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    id, err := h.Campaigns.Create(ctx, userID, req.AgencyID, req.Name, req.Description)
    if err != nil {
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusCreated, campaignView(cp))
}

// List returns the campaigns visible to the caller: team campaigns for
// brand-side accounts, assigned campaigns for creators.
func (h *CampaignHandler) List(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    role, _ := c.Get("role").(string)
    var list []model.Campaign
    if role == model.UserTypeCreator {
        list, err = h.Campaigns.ListForCreator(ctx, userID)
    } else {
        list, err = h.Campaigns.ListForTeamUser(ctx, userID)
    }
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, cp := range list {
        out = append(out, campaignView(cp))
    }
    return c.JSON(http.StatusOK, echo.Map{"campaigns": out})
}

// Get returns a single campaign the caller is allowed to see. Assigned
// creators may view it too.
func (h *CampaignHandler) Get(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if err := requireViewer(ctx, c, h.Campaigns, h.Assignments, id); err != nil {
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, campaignView(cp))
}

// Update changes name, description and status. OWNER or ADMIN only.
func (h *CampaignHandler) Update(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        Name        string `json:"name"`
        Description string `json:"description"`
        Status      string `json:"status"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, id, policy.ActionUpdateCampaign); err != nil {
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    if req.Name == "" {
        req.Name = cp.Name
    }
    if req.Description == "" {
        req.Description = cp.Description
    }
    if req.Status == "" {
        req.Status = cp.Status
    } else if !model.ValidCampaignStatus(req.Status) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign status"})
    }
    if err := h.Campaigns.Update(ctx, id, req.Name, req.Description, req.Status); err != nil {
        return respondErr(c, err)
    }
    cp, err = h.Campaigns.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, campaignView(cp))
}

// Delete removes a campaign with no dependents. 409 when invitations,
// deliverables or payments still reference it.
func (h *CampaignHandler) Delete(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, id, policy.ActionDeleteCampaign); err != nil {
        return respondErr(c, err)
    }
    if err := h.Campaigns.Delete(ctx, id); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "campaign has invitations, deliverables or payments; remove them first"})
        }
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "campaign deleted"})
}

// ListTeam returns the campaign's team members.
func (h *CampaignHandler) ListTeam(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, id, policy.ActionViewCampaign); err != nil {
        return respondErr(c, err)
    }
    team, err := h.Campaigns.ListTeam(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(team))
    for _, tm := range team {
        out = append(out, teamMemberView(tm))
    }
    return c.JSON(http.StatusOK, echo.Map{"team": out})
}

// AddTeamMember adds a brand-side collaborator with a role. The target must
// be an existing non-creator account.
func (h *CampaignHandler) AddTeamMember(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        UserID uint64 `json:"user_id"`
        Role   string `json:"role"`
    }
    if err := c.Bind(&req); err != nil || req.UserID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
    }
    if !model.ValidTeamRole(req.Role) || req.Role == model.RoleOwner {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "role must be ADMIN, MEMBER or VIEWER"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, id, policy.ActionManageTeam); err != nil {
        return respondErr(c, err)
    }
    u, err := h.Users.GetByID(ctx, req.UserID)
    if err != nil {
        return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
    }
    if u.UserType == model.UserTypeCreator {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creators join through invitations, not the team"})
    }
    if err := h.Campaigns.AddTeamMember(ctx, id, req.UserID, req.Role); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "user is already on the team"})
        }
        return respondErr(c, err)
    }
    return c.JSON(http.StatusCreated, echo.Map{"message": "team member added"})
}

// RemoveTeamMember drops a collaborator. The brand owner cannot be removed.
func (h *CampaignHandler) RemoveTeamMember(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    memberID, err := parseID(c, "user_id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid user id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, id, policy.ActionManageTeam); err != nil {
        return respondErr(c, err)
    }
    if err := h.Campaigns.RemoveTeamMember(ctx, id, memberID); err != nil {
        if err == repository.ErrConflict {
            return c.JSON(http.StatusConflict, echo.Map{"error": "the campaign owner cannot be removed"})
        }
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "team member removed"})
}
