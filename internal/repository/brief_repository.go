package repository

import (
	"context"
	"database/sql"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// BriefRepo persists the single content brief a campaign may carry.
type BriefRepo struct{ DB *sql.DB }

func NewBriefRepo(db *sql.DB) *BriefRepo { return &BriefRepo{DB: db} }

// Upsert writes the campaign's brief, replacing any previous content. The
// unique key on campaign_id keeps it to one row per campaign.
func (r *BriefRepo) Upsert(ctx context.Context, b model.Brief) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO briefs (campaign_id, objective, messaging, hashtags, dos_donts) VALUES (?,?,?,?,?)
		 ON DUPLICATE KEY UPDATE objective=VALUES(objective), messaging=VALUES(messaging),
		 hashtags=VALUES(hashtags), dos_donts=VALUES(dos_donts)`,
		b.CampaignID, b.Objective, b.Messaging, b.Hashtags, b.DosDonts)
	return err
}

// GetByCampaign fetches a campaign's brief.
func (r *BriefRepo) GetByCampaign(ctx context.Context, campaignID uint64) (model.Brief, error) {
	var b model.Brief
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,campaign_id,objective,messaging,hashtags,dos_donts,created_at,updated_at FROM briefs WHERE campaign_id=? LIMIT 1",
		campaignID).Scan(&b.ID, &b.CampaignID, &b.Objective, &b.Messaging, &b.Hashtags, &b.DosDonts, &b.CreatedAt, &b.UpdatedAt)
	if err == sql.ErrNoRows {
		return b, ErrNotFound
	}
	return b, err
}
