package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brandloop/creator-campaigns/internal/model"
	"github.com/brandloop/creator-campaigns/internal/utils"
)

// InvitationRepo provides data access to the invitations table. Expiry is
// lazy: rows flip to EXPIRED inside whichever read path first touches them
// after their expires_at has passed. Aggregate queries therefore never count
// a row as pending without also checking the timestamp.
type InvitationRepo struct{ DB *sql.DB }

func NewInvitationRepo(db *sql.DB) *InvitationRepo { return &InvitationRepo{DB: db} }

const invitationCols = "id,campaign_id,email,token,status,invited_by,accepted_by,accepted_at,expires_at,created_at"

func scanInvitation(scan func(dest ...any) error) (model.Invitation, error) {
	var inv model.Invitation
	err := scan(&inv.ID, &inv.CampaignID, &inv.Email, &inv.Token, &inv.Status,
		&inv.InvitedBy, &inv.AcceptedBy, &inv.AcceptedAt, &inv.ExpiresAt, &inv.CreatedAt)
	return inv, err
}

// Create issues a PENDING invitation with a fresh random token and a 30-day
// expiry. The whole check-and-insert runs in one transaction: stale pending
// rows for the same (campaign, email) are expired first, and a live pending
// row makes the call fail with ErrConflict instead of issuing a duplicate.
func (r *InvitationRepo) Create(ctx context.Context, campaignID uint64, email string, invitedBy uint64) (model.Invitation, error) {
	email = model.NormalizeEmail(email)
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.Invitation{}, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx,
		`UPDATE invitations SET status=? WHERE campaign_id=? AND email=? AND status=? AND expires_at <= UTC_TIMESTAMP()`,
		model.InviteExpired, campaignID, email, model.InvitePending); err != nil {
		return model.Invitation{}, err
	}
	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM invitations WHERE campaign_id=? AND email=? AND status=? AND expires_at > UTC_TIMESTAMP() LIMIT 1 FOR UPDATE`,
		campaignID, email, model.InvitePending).Scan(&one)
	if err == nil {
		return model.Invitation{}, ErrConflict
	}
	if err != sql.ErrNoRows {
		return model.Invitation{}, err
	}
	token, err := utils.RandomHex(32)
	if err != nil {
		return model.Invitation{}, err
	}
	expiresAt := time.Now().UTC().Add(model.InviteTTL)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO invitations (campaign_id, email, token, status, invited_by, expires_at) VALUES (?,?,?,?,?,?)",
		campaignID, email, token, model.InvitePending, invitedBy, expiresAt)
	if err != nil {
		return model.Invitation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.Invitation{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Invitation{}, err
	}
	committed = true
	return model.Invitation{
		ID:         uint64(id),
		CampaignID: campaignID,
		Email:      email,
		Token:      token,
		Status:     model.InvitePending,
		InvitedBy:  invitedBy,
		ExpiresAt:  expiresAt,
	}, nil
}

// GetByToken fetches an invitation and lazily expires it when its window has
// passed. The returned struct reflects the post-expiry status.
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (model.Invitation, error) {
	inv, err := scanInvitation(r.DB.QueryRowContext(ctx,
		"SELECT "+invitationCols+" FROM invitations WHERE token=? LIMIT 1", token).Scan)
	if err == sql.ErrNoRows {
		return inv, ErrNotFound
	}
	if err != nil {
		return inv, err
	}
	if inv.Status == model.InvitePending && !time.Now().UTC().Before(inv.ExpiresAt) {
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE invitations SET status=? WHERE id=? AND status=?",
			model.InviteExpired, inv.ID, model.InvitePending); err != nil {
			return inv, err
		}
		inv.Status = model.InviteExpired
	}
	return inv, nil
}

// GetByTokenTx locks and reads an invitation inside the caller's
// transaction. Used by the acceptance flow so concurrent accepts serialize
// on the row.
func (r *InvitationRepo) GetByTokenTx(ctx context.Context, tx *sql.Tx, token string) (model.Invitation, error) {
	inv, err := scanInvitation(tx.QueryRowContext(ctx,
		"SELECT "+invitationCols+" FROM invitations WHERE token=? LIMIT 1 FOR UPDATE", token).Scan)
	if err == sql.ErrNoRows {
		return inv, ErrNotFound
	}
	return inv, err
}

// ExpireTx flips a pending invitation to EXPIRED inside the caller's
// transaction.
func (r *InvitationRepo) ExpireTx(ctx context.Context, tx *sql.Tx, id uint64) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE invitations SET status=? WHERE id=? AND status=?",
		model.InviteExpired, id, model.InvitePending)
	return err
}

// MarkAcceptedTx records a successful acceptance inside the caller's
// transaction, together with the accepting user and timestamp.
func (r *InvitationRepo) MarkAcceptedTx(ctx context.Context, tx *sql.Tx, id, acceptedBy uint64, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE invitations SET status=?, accepted_by=?, accepted_at=? WHERE id=?",
		model.InviteAccepted, acceptedBy, at, id)
	return err
}

// ListByCampaign returns all invitations for a campaign, newest first.
// Stale pending rows are reported as EXPIRED without being rewritten.
func (r *InvitationRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.Invitation, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+invitationCols+" FROM invitations WHERE campaign_id=? ORDER BY created_at DESC", campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	now := time.Now().UTC()
	out := []model.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows.Scan)
		if err != nil {
			return nil, err
		}
		if inv.Status == model.InvitePending && !now.Before(inv.ExpiresAt) {
			inv.Status = model.InviteExpired
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
