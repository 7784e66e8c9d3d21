package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// CampaignRepo provides data access to campaigns and their embedded team.
// The brand owner's OWNER team row is written in the same transaction that
// creates the campaign, which is the only place the owner invariant is
// enforced.
type CampaignRepo struct{ DB *sql.DB }

func NewCampaignRepo(db *sql.DB) *CampaignRepo { return &CampaignRepo{DB: db} }

const campaignCols = "id,brand_id,agency_id,name,description,status,created_at,updated_at"

func scanCampaign(scan func(dest ...any) error) (model.Campaign, error) {
	var cp model.Campaign
	err := scan(&cp.ID, &cp.BrandID, &cp.AgencyID, &cp.Name, &cp.Description,
		&cp.Status, &cp.CreatedAt, &cp.UpdatedAt)
	return cp, err
}

// Create inserts a campaign in DRAFT and its OWNER team member atomically.
func (r *CampaignRepo) Create(ctx context.Context, brandID uint64, agencyID *uint64, name, description string) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx,
		"INSERT INTO campaigns (brand_id, agency_id, name, description, status) VALUES (?,?,?,?,?)",
		brandID, agencyID, name, description, model.CampaignDraft)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO campaign_team_members (campaign_id, user_id, role) VALUES (?,?,?)",
		id, brandID, model.RoleOwner); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return uint64(id), nil
}

// GetByID fetches a single campaign.
func (r *CampaignRepo) GetByID(ctx context.Context, id uint64) (model.Campaign, error) {
	cp, err := scanCampaign(r.DB.QueryRowContext(ctx,
		"SELECT "+campaignCols+" FROM campaigns WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return cp, ErrNotFound
	}
	return cp, err
}

// GetByIDTx is GetByID inside a caller-owned transaction.
func (r *CampaignRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Campaign, error) {
	cp, err := scanCampaign(tx.QueryRowContext(ctx,
		"SELECT "+campaignCols+" FROM campaigns WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return cp, ErrNotFound
	}
	return cp, err
}

// ListForTeamUser returns campaigns where the user is the brand, the agency
// or a team member, newest first.
func (r *CampaignRepo) ListForTeamUser(ctx context.Context, userID uint64) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT DISTINCT c.id,c.brand_id,c.agency_id,c.name,c.description,c.status,c.created_at,c.updated_at
		 FROM campaigns c
		 LEFT JOIN campaign_team_members tm ON tm.campaign_id = c.id
		 WHERE c.brand_id = ? OR c.agency_id = ? OR tm.user_id = ?
		 ORDER BY c.created_at DESC`,
		userID, userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCampaigns(rows)
}

// ListForCreator returns campaigns the creator is assigned to.
func (r *CampaignRepo) ListForCreator(ctx context.Context, creatorID uint64) ([]model.Campaign, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT c.id,c.brand_id,c.agency_id,c.name,c.description,c.status,c.created_at,c.updated_at
		 FROM campaigns c
		 JOIN campaign_creators cc ON cc.campaign_id = c.id
		 WHERE cc.creator_id = ?
		 ORDER BY c.created_at DESC`,
		creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectCampaigns(rows)
}

func collectCampaigns(rows *sql.Rows) ([]model.Campaign, error) {
	out := []model.Campaign{}
	for rows.Next() {
		cp, err := scanCampaign(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

// Update sets the mutable campaign fields. Status changes go through the
// same statement; there is no transition table for campaign status.
func (r *CampaignRepo) Update(ctx context.Context, id uint64, name, description, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE campaigns SET name=?, description=?, status=? WHERE id=?",
		name, description, status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Could also be a no-op update to identical values; re-check existence.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a campaign only when nothing references it. Invitations,
// deliverables and payments must be gone first; otherwise ErrConflict.
func (r *CampaignRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	var dependents int
	err = tx.QueryRowContext(ctx,
		`SELECT (SELECT COUNT(*) FROM invitations WHERE campaign_id=?)
		      + (SELECT COUNT(*) FROM deliverables WHERE campaign_id=?)
		      + (SELECT COUNT(*) FROM payments WHERE campaign_id=?)`,
		id, id, id).Scan(&dependents)
	if err != nil {
		return err
	}
	if dependents > 0 {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM campaign_creators WHERE campaign_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM campaign_team_members WHERE campaign_id=?", id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM briefs WHERE campaign_id=?", id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM campaigns WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// RoleFor resolves a user's effective role on a campaign. The brand owner is
// always OWNER even if the team row went missing; a plain team member gets
// their stored role. Users with no relationship get ErrForbidden.
func (r *CampaignRepo) RoleFor(ctx context.Context, campaignID, userID uint64) (string, error) {
	cp, err := r.GetByID(ctx, campaignID)
	if err != nil {
		return "", err
	}
	if cp.BrandID == userID {
		return model.RoleOwner, nil
	}
	var role string
	err = r.DB.QueryRowContext(ctx,
		"SELECT role FROM campaign_team_members WHERE campaign_id=? AND user_id=? LIMIT 1",
		campaignID, userID).Scan(&role)
	if err == sql.ErrNoRows {
		return "", ErrForbidden
	}
	if err != nil {
		return "", err
	}
	return role, nil
}

// AddTeamMember inserts a collaborator; the unique key turns a duplicate
// into ErrConflict.
func (r *CampaignRepo) AddTeamMember(ctx context.Context, campaignID, userID uint64, role string) error {
	_, err := r.DB.ExecContext(ctx,
		"INSERT INTO campaign_team_members (campaign_id, user_id, role) VALUES (?,?,?)",
		campaignID, userID, role)
	if err != nil && strings.Contains(strings.ToLower(err.Error()), "1062") {
		return ErrConflict
	}
	return err
}

// RemoveTeamMember deletes a collaborator row. Removing the brand owner's
// row is refused: the owner invariant must survive team edits.
func (r *CampaignRepo) RemoveTeamMember(ctx context.Context, campaignID, userID uint64) error {
	cp, err := r.GetByID(ctx, campaignID)
	if err != nil {
		return err
	}
	if cp.BrandID == userID {
		return ErrConflict
	}
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM campaign_team_members WHERE campaign_id=? AND user_id=?",
		campaignID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTeam returns all team members of a campaign in insertion order.
func (r *CampaignRepo) ListTeam(ctx context.Context, campaignID uint64) ([]model.TeamMember, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,campaign_id,user_id,role,created_at FROM campaign_team_members WHERE campaign_id=? ORDER BY id",
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TeamMember{}
	for rows.Next() {
		var tm model.TeamMember
		if err := rows.Scan(&tm.ID, &tm.CampaignID, &tm.UserID, &tm.Role, &tm.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, tm)
	}
	return out, rows.Err()
}
