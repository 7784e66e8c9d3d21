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

// PaymentHandler serves manually recorded creator payments: creation,
// triggering once every linked deliverable is complete, and settlement.
type PaymentHandler struct {
    DB           *sql.DB
    Campaigns    *repository.CampaignRepo
    Assignments  *repository.AssignmentRepo
    Deliverables *repository.DeliverableRepo
    Payments     *repository.PaymentRepo
    Users        *repository.UserRepo
}

func NewPaymentHandler(db *sql.DB, campaigns *repository.CampaignRepo, assignments *repository.AssignmentRepo,
    deliverables *repository.DeliverableRepo, payments *repository.PaymentRepo, users *repository.UserRepo) *PaymentHandler {
    return &PaymentHandler{DB: db, Campaigns: campaigns, Assignments: assignments,
        Deliverables: deliverables, Payments: payments, Users: users}
}

func paymentView(p model.Payment) echo.Map {
    return echo.Map{
        "id":              p.ID,
        "campaign_id":     p.CampaignID,
        "creator_id":      p.CreatorID,
        "amount_cents":    p.AmountCents,
        "currency":        p.Currency,
        "status":          p.Status,
        "triggered_at":    p.TriggeredAt,
        "paid_at":         p.PaidAt,
        "deliverable_ids": p.DeliverableIDs,
        "created_at":      p.CreatedAt,
    }
}

// Create records a PENDING payment linked to a set of the creator's
// deliverables on the campaign. Owner/admin only.
func (h *PaymentHandler) Create(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        CreatorID      uint64   `json:"creator_id"`
        AmountCents    uint64   `json:"amount_cents"`
        Currency       string   `json:"currency"`
        DeliverableIDs []uint64 `json:"deliverable_ids"`
    }
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
    }
    if req.CreatorID == 0 || req.AmountCents == 0 || len(req.DeliverableIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator_id, amount_cents and deliverable_ids are required"})
    }
    if req.Currency == "" {
        req.Currency = "USD"
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionManagePayments); err != nil {
        return respondErr(c, err)
    }
    assigned, err := h.Assignments.IsAssigned(ctx, campaignID, req.CreatorID)
    if err != nil {
        return respondErr(c, err)
    }
    if !assigned {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator is not assigned to this campaign"})
    }
    // Every linked deliverable must belong to this campaign and this creator.
    for _, did := range req.DeliverableIDs {
        d, err := h.Deliverables.GetByID(ctx, did)
        if err != nil {
            if errors.Is(err, repository.ErrNotFound) {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable does not exist"})
            }
            return respondErr(c, err)
        }
        if d.CampaignID != campaignID || d.CreatorID != req.CreatorID {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverable does not belong to this campaign and creator"})
        }
    }

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
    p := model.Payment{
        CampaignID:     campaignID,
        CreatorID:      req.CreatorID,
        AmountCents:    req.AmountCents,
        Currency:       req.Currency,
        CreatedBy:      userID,
        DeliverableIDs: req.DeliverableIDs,
    }
    if err := h.Payments.CreateTx(ctx, tx, &p); err != nil {
        return respondErr(c, err)
    }
    if err := tx.Commit(); err != nil {
        return respondErr(c, err)
    }
    committed = true
    return c.JSON(http.StatusCreated, paymentView(p))
}

// Trigger releases a pending payment. Every linked deliverable is re-checked
// under row locks: all must be COMPLETED with a verified post, otherwise 400
// and nothing changes.
func (h *PaymentHandler) Trigger(c echo.Context) error {
    paymentID, err := parseID(c, "payment_id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
    }
    ctx := c.Request().Context()
    p, err := h.Payments.GetByID(ctx, paymentID)
    if err != nil {
        return respondErr(c, err)
    }
    if _, err := requireAction(ctx, c, h.Campaigns, p.CampaignID, policy.ActionManagePayments); err != nil {
        return respondErr(c, err)
    }

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
    ds, err := h.Deliverables.GetManyTx(ctx, tx, p.DeliverableIDs)
    if err != nil {
        return respondErr(c, err)
    }
    for _, d := range ds {
        if !d.PaymentReady() {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "deliverables not ready for payment"})
        }
    }
    now := time.Now().UTC()
    if err := h.Payments.MarkTriggeredTx(ctx, tx, p.ID, now); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment has already been triggered"})
        }
        return respondErr(c, err)
    }
    if err := tx.Commit(); err != nil {
        return respondErr(c, err)
    }
    committed = true

    if creator, err := h.Users.GetByID(ctx, p.CreatorID); err == nil {
        if cp, err := h.Campaigns.GetByID(ctx, p.CampaignID); err == nil {
            _ = queue_publisher.PublishNotification(ctx, queue.NotificationEvent{
                Kind:         queue.KindPaymentTriggered,
                Recipient:    creator.Email,
                CampaignID:   cp.ID,
                CampaignName: cp.Name,
                AmountCents:  p.AmountCents,
                Currency:     p.Currency,
            })
        }
    }
    p, err = h.Payments.GetByID(ctx, p.ID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, paymentView(p))
}

// MarkPaid settles a triggered payment.
func (h *PaymentHandler) MarkPaid(c echo.Context) error {
    paymentID, err := parseID(c, "payment_id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
    }
    ctx := c.Request().Context()
    p, err := h.Payments.GetByID(ctx, paymentID)
    if err != nil {
        return respondErr(c, err)
    }
    if _, err := requireAction(ctx, c, h.Campaigns, p.CampaignID, policy.ActionManagePayments); err != nil {
        return respondErr(c, err)
    }
    if err := h.Payments.MarkPaid(ctx, p.ID, time.Now().UTC()); err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "payment must be triggered before it can be marked paid"})
        }
        return respondErr(c, err)
    }
    p, err = h.Payments.GetByID(ctx, p.ID)
    if err != nil {
        return respondErr(c, err)
    }
    return c.JSON(http.StatusOK, paymentView(p))
}

// List returns all payments on a campaign. A creator sees only their own.
func (h *PaymentHandler) List(c echo.Context) error {
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
    list, err := h.Payments.ListByCampaign(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, p := range list {
        if !onTeam && p.CreatorID != userID {
            continue
        }
        out = append(out, paymentView(p))
    }
    return c.JSON(http.StatusOK, echo.Map{"payments": out})
}
