package handler

import (
    "database/sql"
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/brandloop/creator-campaigns/internal/model"
    "github.com/brandloop/creator-campaigns/internal/policy"
    "github.com/brandloop/creator-campaigns/internal/queue"
    "github.com/brandloop/creator-campaigns/internal/repository"
    queue_publisher "github.com/brandloop/creator-campaigns/internal/service"
)

// ReviewHandler serves review decisions on deliverable drafts, comment
// threads and post verification.
type ReviewHandler struct {
    DB           *sql.DB
    Campaigns    *repository.CampaignRepo
    Deliverables *repository.DeliverableRepo
    Reviews      *repository.ReviewRepo
    Users        *repository.UserRepo
}

func NewReviewHandler(db *sql.DB, campaigns *repository.CampaignRepo, deliverables *repository.DeliverableRepo,
    reviews *repository.ReviewRepo, users *repository.UserRepo) *ReviewHandler {
    return &ReviewHandler{DB: db, Campaigns: campaigns, Deliverables: deliverables, Reviews: reviews, Users: users}
}

func commentView(cm model.ReviewComment) echo.Map {
    return echo.Map{
        "id":         cm.ID,
        "author_id":  cm.AuthorID,
        "body":       cm.Body,
        "visibility": cm.Visibility,
        "video_ts":   cm.VideoTS,
        "created_at": cm.CreatedAt,
    }
}

func reviewView(rev model.Review, comments []model.ReviewComment) echo.Map {
    cs := make([]echo.Map, 0, len(comments))
    for _, cm := range comments {
        cs = append(cs, commentView(cm))
    }
    return echo.Map{
        "id":             rev.ID,
        "deliverable_id": rev.DeliverableID,
        "draft_version":  rev.DraftVersion,
        "reviewer_id":    rev.ReviewerID,
        "decision":       rev.Decision,
        "decision_at":    rev.DecisionAt,
        "comments":       cs,
    }
}

// Create records a decision on a draft version. The decision's effects on the
// deliverable and the review row itself commit together; a best-effort
// notification to the creator follows. Every team role may review.
func (h *ReviewHandler) Create(c echo.Context) error {
    var req struct {
        DeliverableID uint64  `json:"deliverable_id"`
        DraftVersion  uint32  `json:"draft_version"`
        Decision      string  `json:"decision"`
        Comment       string  `json:"comment"`
        Visibility    string  `json:"visibility"`
        VideoTS       *uint32 `json:"video_ts"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.DeliverableID == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable_id is required"})
    }
    deliverableID := req.DeliverableID
    if !model.ValidDecision(req.Decision) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "decision must be APPROVE, REQUEST_REVISION or REJECT"})
    }
    if req.Visibility == "" {
        req.Visibility = model.VisibilityExternal
    }
    if req.Visibility != model.VisibilityInternal && req.Visibility != model.VisibilityExternal {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be INTERNAL or EXTERNAL"})
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

    d, err := h.Deliverables.GetByIDTx(ctx, tx, deliverableID)
    if err != nil {
        return respondErr(c, err)
    }
    if _, err := requireAction(ctx, c, h.Campaigns, d.CampaignID, policy.ActionReviewDraft); err != nil {
        return respondErr(c, err)
    }
    if req.DraftVersion == 0 {
        req.DraftVersion = d.CurrentVersion
    }
    now := time.Now().UTC()
    draftStatus, err := d.ApplyDecision(req.Decision, req.DraftVersion, now)
    if err != nil {
        if errors.Is(err, model.ErrNoSuchVersion) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "draft version does not exist"})
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if err := h.Deliverables.SaveDecisionTx(ctx, tx, d, req.DraftVersion, draftStatus); err != nil {
        if errors.Is(err, model.ErrNoSuchVersion) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "draft version does not exist"})
        }
        return respondErr(c, err)
    }
    rev := model.Review{
        DeliverableID: d.ID,
        DraftVersion:  req.DraftVersion,
        ReviewerID:    userID,
        Decision:      req.Decision,
        DecisionAt:    now,
    }
    if err := h.Reviews.CreateTx(ctx, tx, &rev); err != nil {
        return respondErr(c, err)
    }
    var comments []model.ReviewComment
    if req.Comment != "" {
        cm := model.ReviewComment{
            ReviewID:   rev.ID,
            AuthorID:   userID,
            Body:       req.Comment,
            Visibility: req.Visibility,
            VideoTS:    req.VideoTS,
        }
        // Same commit as the decision: the response never claims a comment
        // that was not recorded.
        if err := h.Reviews.AddCommentTx(ctx, tx, &cm); err != nil {
            return respondErr(c, err)
        }
        comments = append(comments, cm)
    }
    if err := tx.Commit(); err != nil {
        return respondErr(c, err)
    }
    committed = true

    if creator, err := h.Users.GetByID(ctx, d.CreatorID); err == nil {
        if cp, err := h.Campaigns.GetByID(ctx, d.CampaignID); err == nil {
            _ = queue_publisher.PublishNotification(ctx, queue.NotificationEvent{
                Kind:          queue.KindReviewDecision,
                Recipient:     creator.Email,
                CampaignID:    cp.ID,
                CampaignName:  cp.Name,
                DeliverableID: d.ID,
                DraftVersion:  req.DraftVersion,
                Decision:      req.Decision,
            })
        }
    }
    return c.JSON(http.StatusCreated, reviewView(rev, comments))
}

// List returns the review history of a deliverable; the path id is the
// deliverable's. The assigned creator gets external comments only; team
// members see everything.
func (h *ReviewHandler) List(c echo.Context) error {
    deliverableID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deliverable id"})
    }
    ctx := c.Request().Context()
    d, err := h.Deliverables.GetByID(ctx, deliverableID)
    if err != nil {
        return respondErr(c, err)
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    external := false
    if userID == d.CreatorID && !isAdmin(c) {
        external = true
    } else if userID != d.CreatorID {
        if _, err := requireAction(ctx, c, h.Campaigns, d.CampaignID, policy.ActionViewCampaign); err != nil {
            return respondErr(c, err)
        }
    }
    reviews, err := h.Reviews.ListByDeliverable(ctx, deliverableID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(reviews))
    for _, rev := range reviews {
        comments := rev.Comments
        if external {
            comments = rev.FilterComments()
        }
        out = append(out, reviewView(rev, comments))
    }
    return c.JSON(http.StatusOK, echo.Map{"reviews": out})
}

// AddComment appends to an existing review thread. Team members may post
// internal or external comments; the assigned creator posts external only.
func (h *ReviewHandler) AddComment(c echo.Context) error {
    reviewID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid review id"})
    }
    var req struct {
        Body       string  `json:"body"`
        Visibility string  `json:"visibility"`
        VideoTS    *uint32 `json:"video_ts"`
    }
    if err := c.Bind(&req); err != nil || req.Body == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "body is required"})
    }
    if req.Visibility == "" {
        req.Visibility = model.VisibilityExternal
    }
    if req.Visibility != model.VisibilityInternal && req.Visibility != model.VisibilityExternal {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "visibility must be INTERNAL or EXTERNAL"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    rev, err := h.Reviews.GetByID(ctx, reviewID)
    if err != nil {
        return respondErr(c, err)
    }
    d, err := h.Deliverables.GetByID(ctx, rev.DeliverableID)
    if err != nil {
        return respondErr(c, err)
    }
    if userID == d.CreatorID {
        if req.Visibility == model.VisibilityInternal {
            return c.JSON(http.StatusForbidden, echo.Map{"error": "creators may not post internal comments"})
        }
    } else {
        if _, err := requireAction(ctx, c, h.Campaigns, d.CampaignID, policy.ActionReviewDraft); err != nil {
            return respondErr(c, err)
        }
    }
    cm := model.ReviewComment{
        ReviewID:   rev.ID,
        AuthorID:   userID,
        Body:       req.Body,
        Visibility: req.Visibility,
        VideoTS:    req.VideoTS,
    }
    if err := h.Reviews.AddComment(ctx, &cm); err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusCreated, commentView(cm))
}

// VerifyPost confirms a creator's live post and completes the deliverable.
// Owner/admin only.
func (h *ReviewHandler) VerifyPost(c echo.Context) error {
    deliverableID, err := parseID(c, "deliverable_id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid deliverable id"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    d, err := h.Deliverables.GetByID(ctx, deliverableID)
    if err != nil {
        return respondErr(c, err)
    }
    if _, err := requireAction(ctx, c, h.Campaigns, d.CampaignID, policy.ActionVerifyPost); err != nil {
        return respondErr(c, err)
    }
    now := time.Now().UTC()
    if err := d.VerifyPost(userID, now); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable has no post to verify"})
    }
    if err := h.Deliverables.SaveVerification(ctx, d.ID, userID, now); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable has no post to verify"})
        }
        return respondErr(c, err)
    }
    d, err = h.Deliverables.GetByID(ctx, d.ID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, deliverableView(d))
}
