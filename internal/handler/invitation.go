package handler

import (
    "context"
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

// InvitationHandler serves invitation issuance, the public token preview and
// the acceptance flow that feeds the assignment ledger.
type InvitationHandler struct {
    DB          *sql.DB
    Campaigns   *repository.CampaignRepo
    Invitations *repository.InvitationRepo
    Assignments *repository.AssignmentRepo
    Briefs      *repository.BriefRepo
    Users       *repository.UserRepo
}

func NewInvitationHandler(db *sql.DB, campaigns *repository.CampaignRepo, invitations *repository.InvitationRepo,
    assignments *repository.AssignmentRepo, briefs *repository.BriefRepo, users *repository.UserRepo) *InvitationHandler {
    return &InvitationHandler{DB: db, Campaigns: campaigns, Invitations: invitations,
        Assignments: assignments, Briefs: briefs, Users: users}
}

func invitationView(inv model.Invitation) echo.Map {
    return echo.Map{
        "id":          inv.ID,
        "campaign_id": inv.CampaignID,
        "email":       inv.Email,
        "status":      inv.Status,
        "invited_by":  inv.InvitedBy,
        "accepted_by": inv.AcceptedBy,
        "accepted_at": inv.AcceptedAt,
        "expires_at":  inv.ExpiresAt,
        "created_at":  inv.CreatedAt,
    }
}

// issue creates the invitation row and hands the token to the notification
// pipeline. Publishing is best-effort; the invitation stands either way.
func (h *InvitationHandler) issue(ctx context.Context, cp model.Campaign, email string, inviter model.User) (model.Invitation, error) {
    inv, err := h.Invitations.Create(ctx, cp.ID, email, inviter.ID)
    if err != nil {
        return model.Invitation{}, err
    }
    _ = queue_publisher.PublishNotification(ctx, queue.NotificationEvent{
        Kind:         queue.KindInviteCreated,
        Recipient:    inv.Email,
        CampaignID:   cp.ID,
        CampaignName: cp.Name,
        InviteToken:  inv.Token,
        InviterName:  inviter.Username,
    })
    return inv, nil
}

// Invite issues an invitation to an email address. The address does not need
// an account yet; the token is the bridge until registration.
func (h *InvitationHandler) Invite(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        Email string `json:"email"`
    }
    if err := c.Bind(&req); err != nil || !model.ValidEmail(req.Email) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email is required"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionInviteCreators); err != nil {
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    userID, _ := getUserID(c)
    inviter, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }
    inv, err := h.issue(ctx, cp, req.Email, inviter)
    if err != nil {
        if errors.Is(err, repository.ErrConflict) {
            return c.JSON(http.StatusConflict, echo.Map{"error": "a pending invitation already exists for this email"})
        }
        return respondErr(c, err)
    }
    return c.JSON(http.StatusCreated, invitationView(inv))
}

// InviteCreators issues invitations to a batch of existing creator accounts
// by id. Assignment still goes through acceptance; this endpoint only saves
// the caller from typing known creators' addresses. Each id succeeds or
// fails independently.
func (h *InvitationHandler) InviteCreators(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    var req struct {
        CreatorIDs []uint64 `json:"creator_ids"`
    }
    if err := c.Bind(&req); err != nil || len(req.CreatorIDs) == 0 {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "creator_ids is required"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionInviteCreators); err != nil {
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    userID, _ := getUserID(c)
    inviter, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
    }

    results := make([]echo.Map, 0, len(req.CreatorIDs))
    for _, creatorID := range req.CreatorIDs {
        entry := echo.Map{"creator_id": creatorID}
        u, err := h.Users.GetByID(ctx, creatorID)
        switch {
        case errors.Is(err, sql.ErrNoRows):
            entry["error"] = "no such user"
        case err != nil:
            entry["error"] = "database error"
        case u.UserType != model.UserTypeCreator:
            entry["error"] = "user is not a creator"
        default:
            if assigned, err := h.Assignments.IsAssigned(ctx, campaignID, creatorID); err == nil && assigned {
                entry["error"] = "creator already assigned"
                break
            }
            inv, err := h.issue(ctx, cp, u.Email, inviter)
            switch {
            case errors.Is(err, repository.ErrConflict):
                entry["error"] = "a pending invitation already exists"
            case err != nil:
                entry["error"] = "database error"
            default:
                entry["invitation"] = invitationView(inv)
            }
        }
        results = append(results, entry)
    }
    return c.JSON(http.StatusOK, echo.Map{"results": results})
}

// List returns every invitation on a campaign.
func (h *InvitationHandler) List(c echo.Context) error {
    campaignID, err := parseID(c, "id")
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid campaign id"})
    }
    ctx := c.Request().Context()
    if _, err := requireAction(ctx, c, h.Campaigns, campaignID, policy.ActionInviteCreators); err != nil {
        return respondErr(c, err)
    }
    list, err := h.Invitations.ListByCampaign(ctx, campaignID)
    if err != nil {
        return respondErr(c, err)
    }
    out := make([]echo.Map, 0, len(list))
    for _, inv := range list {
        out = append(out, invitationView(inv))
    }
    return c.JSON(http.StatusOK, echo.Map{"invitations": out})
}

// Preview lets the token holder see what they were invited to before
// deciding. No authentication required; the token itself is the capability.
// The brief stays hidden until the caller has actually joined the campaign.
func (h *InvitationHandler) Preview(c echo.Context) error {
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }
    ctx := c.Request().Context()
    inv, err := h.Invitations.GetByToken(ctx, token)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
        }
        return respondErr(c, err)
    }
    cp, err := h.Campaigns.GetByID(ctx, inv.CampaignID)
    if err != nil {
        return respondErr(c, err)
    }
    body := echo.Map{
        "campaign": echo.Map{
            "id":          cp.ID,
            "name":        cp.Name,
            "description": cp.Description,
            "status":      cp.Status,
        },
        "invitation": echo.Map{
            "status":     inv.Status,
            "expires_at": inv.ExpiresAt,
        },
    }
    // Optional auth: an assigned creator previewing their own invitation also
    // gets the brief.
    if userID, err := getUserID(c); err == nil {
        if assigned, err := h.Assignments.IsAssigned(ctx, cp.ID, userID); err == nil && assigned {
            if b, err := h.Briefs.GetByCampaign(ctx, cp.ID); err == nil {
                body["brief"] = briefView(b)
            }
        }
    }
    return c.JSON(http.StatusOK, body)
}

// Accept redeems an invitation and writes the assignment ledger entry, all in
// one transaction so the invitation and the ledger can never disagree. The
// row lock on the invitation serializes concurrent accepts; the unique key on
// the ledger is the backstop.
func (h *InvitationHandler) Accept(c echo.Context) error {
    token := c.Param("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }
    userID, err := getUserID(c)
    if err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
    }
    ctx := c.Request().Context()
    caller, err := h.Users.GetByID(ctx, userID)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
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

    inv, err := h.Invitations.GetByTokenTx(ctx, tx, token)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "invitation not found"})
        }
        return respondErr(c, err)
    }

    // Re-accepting one's own accepted invitation is a no-op success, so a
    // retried request after a dropped response does not error out.
    if inv.Status == model.InviteAccepted {
        if inv.AcceptedBy != nil && *inv.AcceptedBy == userID {
            return c.JSON(http.StatusOK, echo.Map{"message": "invitation already accepted", "campaign_id": inv.CampaignID})
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation is invalid or expired"})
    }

    now := time.Now().UTC()
    if !inv.Valid(now) {
        // Lazily flip a stale pending row while we hold it.
        if inv.Status == model.InvitePending {
            if err := h.Invitations.ExpireTx(ctx, tx, inv.ID); err != nil {
                return respondErr(c, err)
            }
            if err := tx.Commit(); err != nil {
                return respondErr(c, err)
            }
            committed = true
        }
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invitation is invalid or expired"})
    }

    if !inv.EmailMatches(caller.Email) {
        return c.JSON(http.StatusForbidden, echo.Map{"error": "invitation email does not match your account"})
    }

    cp, err := h.Campaigns.GetByIDTx(ctx, tx, inv.CampaignID)
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "campaign no longer exists"})
        }
        return respondErr(c, err)
    }

    if err := h.Assignments.AssignTx(ctx, tx, cp.ID, userID); err != nil {
        // Already on the ledger: the pending invitation stays pending and the
        // caller gets the conflict. Idempotent success is reserved for an
        // invitation this account already accepted, handled above.
        return respondErr(c, err)
    }
    if err := h.Invitations.MarkAcceptedTx(ctx, tx, inv.ID, userID, now); err != nil {
        return respondErr(c, err)
    }
    if err := tx.Commit(); err != nil {
        return respondErr(c, err)
    }
    committed = true

    if inviter, err := h.Users.GetByID(ctx, inv.InvitedBy); err == nil {
        _ = queue_publisher.PublishNotification(ctx, queue.NotificationEvent{
            Kind:         queue.KindInviteAccepted,
            Recipient:    inviter.Email,
            CampaignID:   cp.ID,
            CampaignName: cp.Name,
            CreatorName:  caller.Username,
        })
    }
    return c.JSON(http.StatusOK, echo.Map{"message": "invitation accepted", "campaign_id": cp.ID})
}
