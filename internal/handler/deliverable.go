package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/repository"
)

// DeliverableHandler serves deliverable creation, the creator's draft and
// posting flow, and the performance metrics update.
type DeliverableHandler struct {
    DB           *sql.DB
    Campaigns    *repository.CampaignRepo
    Assignments  *repository.AssignmentRepo
    Deliverables *repository.DeliverableRepo
}

func NewDeliverableHandler(db *sql.DB, campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo, deliverables *repository.DeliverableRepo) *DeliverableHandler {
    return &DeliverableHandler{DB: db, Campaigns: campaigns, Assignments: assignments, Deliverables: deliverables}
}

func deliverableView(d model.Deliverable) echo.Map {
    return echo.Map{
        "id":                d.ID,
        "campaign_id":       d.CampaignID,
        "creator_id":        d.CreatorID,
        "title":             d.Title,
        "content_type":      d.ContentType,
        "status":            d.Status,
        "current_version":   d.CurrentVersion,
        "approved_version":  d.ApprovedVersion,
        "due_date":          d.DueDate,
        "revision_due_date": d.RevisionDueDate,
        "posting": echo.Map{
            "url":         d.Posting.URL,
            "posted_at":   d.Posting.PostedAt,
            "verified":    d.Posting.Verified,
            "verified_at": d.Posting.VerifiedAt,
            "verified_by": d.Posting.VerifiedBy,
        },
        "performance": echo.Map{
            "impressions": d.Performance.Impressions,
            "likes":       d.Performance.Likes,
            "comments":    d.Performance.Comments,
            "shares":      d.Performance.Shares,
        },
        "created_at": d.CreatedAt,
        "updated_at": d.UpdatedAt,
    }
}

func draftView(dr model.Draft) echo.Map {
    return echo.Map{
        "version":       dr.Version,
        "content_links": dr.ContentLinks,
        "notes":         dr.Notes,
        "status":        dr.Status,
        "submitted_at":  dr.SubmittedAt,
    }
}

// access loads a deliverable and checks the caller may see it: any team
// member of the campaign, or the assigned creator themself.
func (h *DeliverableHandler) access(c echo.Context) (model.Deliverable, error) {
    id, err := parseID(c, "id")
    if err != nil {
        return model.Deliverable{}, repository.ErrNotFound
    }
    ctx := c.Request().Context()
    d, err := h.Deliverables.GetByID(ctx, id)
    if err != nil {
        return model.Deliverable{}, err
    }
    userID, err := getUserID(c)
    if err != nil {
        return model.Deliverable{}, repository.ErrForbidden
    }
    if userID == d.CreatorID || isAdmin(c) {
        return d, nil
    }
    if _, err := requireAction(ctx, c, h.Campaigns, d.CampaignID, policy.ActionViewCampaign); err != nil {
        return model.Deliverable{}, err
    }
    return d, nil
}

// Create adds a PENDING deliverable for an assigned creator. Owner/admin only.
func (h *DeliverableHandler) Create(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        CreatorID   uint64     `json:"creator_id"`
        Title       string     `json:"title"`
        ContentType string     `json:"content_type"`
        DueDate     *time.Time `json:"due_date"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.CreatorID == 0 || req.Title == "" || req.ContentType == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator_id, title and content_type are required"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionCreateDeliv); err != nil {
        return respondErr(c, err)
    }
    assigned, err := h.Assignments.IsAssigned(ctx, campaignID, req.CreatorID)
    if err != nil {
        return respondErr(c, err)
    }
    if !assigned {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator is not assigned to this campaign"})
    }
    id, err := h.Deliverables.Create(ctx, campaignID, req.CreatorID, req.Title, req.ContentType, req.DueDate)
    if err != nil {
        return respondErr(c, err)
    }
    d, err := h.Deliverables.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusCreated, deliverableView(d))
}

// ListByCampaign returns a campaign's deliverables. Team members see all of
// them; an assigned creator sees only their own.
func (h *DeliverableHandler) ListByCampaign(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    onTeam := true
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionViewCampaign); err != nil {
        if !errors.Is(err, repository.ErrForbidden) {
            return respondErr(c, err)
        }
        onTeam = false
        assigned, aerr := h.Assignments.IsAssigned(ctx, campaignID, userID)
        if aerr != nil {
            return respondErr(c, aerr)
        }
        if !assigned {
            return respondErr(c, repository.ErrForbidden)
        }
    }
    list, err := h.Deliverables.ListByCampaign(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, d := range list {
        if !onTeam && d.CreatorID != userID {
            continue
        }
        out = append(out, deliverableView(d))
    }
    return c.JSON(http.StatusOK, echo.Map{"deliverables": out})
}

// ListMine returns all deliverables assigned to the calling creator across
// campaigns.
func (h *DeliverableHandler) ListMine(c echo.Context) error {
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    list, err := h.Deliverables.ListByCreator(c.Request().Context(), userID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, d := range list {
        out = append(out, deliverableView(d))
    }
    return c.JSON(http.StatusOK, echo.Map{"deliverables": out})
}

// Get returns one deliverable.
func (h *DeliverableHandler) Get(c echo.Context) error {
    d, err := h.access(c)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, deliverableView(d))
}

// ListDrafts returns the full version history of a deliverable.
func (h *DeliverableHandler) ListDrafts(c echo.Context) error {
    d, err := h.access(c)
    if err != nil {
        return respondErr(c, err)
    }
    drafts, err := h.Deliverables.ListDrafts(c.Request().Context(), d.ID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(drafts))
    for _, dr := range drafts {
        out = append(out, draftView(dr))
    }
    return c.JSON(http.StatusOK, echo.Map{"drafts": out})
}

// SubmitDraft appends a new content version. Only the assigned creator may
// submit; the row lock keeps two concurrent submissions from sharing a
// version number, and the unique key on (deliverable, version) backstops it.
func (h *DeliverableHandler) SubmitDraft(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deliverable id"})
    }
    var req struct {
        ContentLinks string `json:"content_links"`
        Notes        string `json:"notes"`
    }
    if err := c.Bind(&req); err != nil || req.ContentLinks == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "content_links is required"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()

    tx, err := h.DB.BeginTx(ctx, nil)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    committed := false
    defer func() {
        if !committed {
            _ = tx.Rollback()
        }
    }()

    d, err := h.Deliverables.GetByIDTx(ctx, tx, id)
    if err != nil {
        return respondErr(c, err)
    }
    if d.CreatorID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only the assigned creator may submit drafts"})
    }
    draft, err := d.AppendDraft(req.ContentLinks, req.Notes, time.Now().UTC())
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable is already completed"})
    }
    if err := h.Deliverables.AppendDraftTx(ctx, tx, d, draft); err != nil {
        return respondErr(c, err)
    }
    if err := tx.Commit(); err != nil {
        return respondErr(c, err)
    }
    committed = true
    return c.JSON(http.StatusCreated, draftView(draft))
}

// SubmitPost records the live post URL for an approved deliverable. Creator
// only; an unapproved deliverable answers 400.
func (h *DeliverableHandler) SubmitPost(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deliverable id"})
    }
    var req struct {
        PostURL string `json:"post_url"`
    }
    if err := c.Bind(&req); err != nil || req.PostURL == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "post_url is required"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    d, err := h.Deliverables.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    if d.CreatorID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only the assigned creator may submit post proof"})
    }
    now := time.Now().UTC()
    if err := d.SubmitPost(req.PostURL, now); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable must be approved before posting"})
    }
    if err := h.Deliverables.SavePosting(ctx, d.ID, req.PostURL, now); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable must be approved before posting"})
        }
        return respondErr(c, err)
    }
    d, err = h.Deliverables.GetByID(ctx, d.ID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, deliverableView(d))
}

// UpdatePerformance replaces the self-reported metrics on a posted or
// completed deliverable. Creator only.
func (h *DeliverableHandler) UpdatePerformance(c echo.Context) error {
    id, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deliverable id"})
    }
    var req struct {
        Impressions uint64 `json:"impressions"`
        Likes       uint64 `json:"likes"`
        Comments    uint64 `json:"comments"`
        Shares      uint64 `json:"shares"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    d, err := h.Deliverables.GetByID(ctx, id)
    if err != nil {
        return respondErr(c, err)
    }
    if d.CreatorID != userID {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "only the assigned creator may report performance"})
    }
    if d.Status != model.DeliverablePosted && d.Status != model.DeliverableCompleted {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "performance applies to posted deliverables only"})
    }
    p := model.Performance{Impressions: req.Impressions, Likes: req.Likes, Comments: req.Comments, Shares: req.Shares}
    if err := h.Deliverables.UpdatePerformance(ctx, d.ID, p); err != nil {
        return respondErr(c, err)
    }
    d, err = h.Deliverables.GetByID(ctx, d.ID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, deliverableView(d))
}
