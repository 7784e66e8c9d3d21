package repository

import (
	"context"
	"database/sql"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// CampaignReport aggregates a campaign's current state for the reporting
// endpoint. Pending invitation counts check expires_at directly so lazily
// expired rows never inflate the number.
type CampaignReport struct {
	CampaignID         uint64            `json:"campaign_id"`
	AssignedCreators   int               `json:"assigned_creators"`
	AcknowledgedCount  int               `json:"acknowledged_creators"`
	PendingInvitations int               `json:"pending_invitations"`
	DeliverablesByStatus map[string]int  `json:"deliverables_by_status"`
	TotalDrafts        int               `json:"total_drafts"`
	Performance        model.Performance `json:"performance_totals"`
	PaidCents          uint64            `json:"paid_cents"`
	TriggeredCents     uint64            `json:"triggered_cents"`
}

// ReportRepo runs the read-only aggregation queries behind campaign reports.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// CampaignReport computes the aggregate view for one campaign.
func (r *ReportRepo) CampaignReport(ctx context.Context, campaignID uint64) (CampaignReport, error) {
	rep := CampaignReport{CampaignID: campaignID, DeliverablesByStatus: map[string]int{}}

	err := r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(ack_status='ACKNOWLEDGED'),0) FROM campaign_creators WHERE campaign_id=?`,
		campaignID).Scan(&rep.AssignedCreators, &rep.AcknowledgedCount)
	if err != nil {
		return rep, err
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM invitations WHERE campaign_id=? AND status=? AND expires_at > UTC_TIMESTAMP()`,
		campaignID, model.InvitePending).Scan(&rep.PendingInvitations)
	if err != nil {
		return rep, err
	}

	rows, err := r.DB.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM deliverables WHERE campaign_id=? GROUP BY status`, campaignID)
	if err != nil {
		return rep, err
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return rep, err
		}
		rep.DeliverablesByStatus[status] = n
	}
	if err := rows.Close(); err != nil {
		return rep, err
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM deliverable_drafts dd JOIN deliverables d ON d.id = dd.deliverable_id WHERE d.campaign_id=?`,
		campaignID).Scan(&rep.TotalDrafts)
	if err != nil {
		return rep, err
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(impressions),0), COALESCE(SUM(likes),0), COALESCE(SUM(comments),0), COALESCE(SUM(shares),0)
		 FROM deliverables WHERE campaign_id=?`,
		campaignID).Scan(&rep.Performance.Impressions, &rep.Performance.Likes, &rep.Performance.Comments, &rep.Performance.Shares)
	if err != nil {
		return rep, err
	}

	err = r.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(CASE WHEN status='PAID' THEN amount_cents ELSE 0 END),0),
		        COALESCE(SUM(CASE WHEN status='TRIGGERED' THEN amount_cents ELSE 0 END),0)
		 FROM payments WHERE campaign_id=?`,
		campaignID).Scan(&rep.PaidCents, &rep.TriggeredCents)
	return rep, err
}
