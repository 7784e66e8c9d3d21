package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// AssignmentRepo manages the campaign assignment ledger. Rows enter the
// ledger exclusively through invitation acceptance (AssignTx inside that
// transaction); there is no direct assign path.
type AssignmentRepo struct{ DB *sql.DB }

func NewAssignmentRepo(db *sql.DB) *AssignmentRepo { return &AssignmentRepo{DB: db} }

// AssignTx inserts a PENDING-acknowledgment ledger entry within the caller's
// transaction. The (campaign_id, creator_id) unique key is the backstop for
// two accepts racing the same invitation: the loser gets ErrAlreadyAssigned
// instead of duplicating the creator.
func (r *AssignmentRepo) AssignTx(ctx context.Context, tx *sql.Tx, campaignID, creatorID uint64) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO campaign_creators (campaign_id, creator_id, ack_status) VALUES (?,?,?)",
		campaignID, creatorID, model.AckPending)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrAlreadyAssigned
	}
	return err
}

// IsAssigned reports whether the creator appears in the campaign's ledger.
func (r *AssignmentRepo) IsAssigned(ctx context.Context, campaignID, creatorID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM campaign_creators WHERE campaign_id=? AND creator_id=? LIMIT 1",
		campaignID, creatorID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Acknowledge sets the creator's acknowledgment state. The creator must
// already be on the ledger; otherwise ErrNotAssigned. status must be
// ACKNOWLEDGED or DECLINED.
func (r *AssignmentRepo) Acknowledge(ctx context.Context, campaignID, creatorID uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE campaign_creators SET ack_status=?, acknowledged_at=UTC_TIMESTAMP() WHERE campaign_id=? AND creator_id=?",
		status, campaignID, creatorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports zero affected rows when the update changes nothing,
		// so a repeated acknowledgment lands here too. Only a missing ledger
		// row is an error.
		assigned, aerr := r.IsAssigned(ctx, campaignID, creatorID)
		if aerr != nil {
			return aerr
		}
		if !assigned {
			return ErrNotAssigned
		}
	}
	return nil
}

// Remove filters the creator out of the ledger. No notification is sent;
// removal is silent by design.
func (r *AssignmentRepo) Remove(ctx context.Context, campaignID, creatorID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM campaign_creators WHERE campaign_id=? AND creator_id=?",
		campaignID, creatorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotAssigned
	}
	return nil
}

// ListByCampaign returns the full ledger for a campaign in assignment order.
func (r *AssignmentRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.AssignedCreator, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,campaign_id,creator_id,ack_status,acknowledged_at,created_at FROM campaign_creators WHERE campaign_id=? ORDER BY id",
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.AssignedCreator{}
	for rows.Next() {
		var ac model.AssignedCreator
		if err := rows.Scan(&ac.ID, &ac.CampaignID, &ac.CreatorID, &ac.AckStatus, &ac.AcknowledgedAt, &ac.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}
