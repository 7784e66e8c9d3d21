package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// DeliverableRepo provides data access to deliverables and their draft
// history. Status transitions are guarded with conditional updates (WHERE
// includes the expected prior status) so a stale writer loses cleanly.
type DeliverableRepo struct{ DB *sql.DB }

func NewDeliverableRepo(db *sql.DB) *DeliverableRepo { return &DeliverableRepo{DB: db} }

const deliverableCols = `id,campaign_id,creator_id,title,content_type,status,current_version,approved_version,
due_date,revision_due_date,post_url,posted_at,post_verified,verified_at,verified_by,
impressions,likes,comments,shares,created_at,updated_at`

func scanDeliverable(scan func(dest ...any) error) (model.Deliverable, error) {
	var d model.Deliverable
	err := scan(&d.ID, &d.CampaignID, &d.CreatorID, &d.Title, &d.ContentType, &d.Status,
		&d.CurrentVersion, &d.ApprovedVersion, &d.DueDate, &d.RevisionDueDate,
		&d.Posting.URL, &d.Posting.PostedAt, &d.Posting.Verified, &d.Posting.VerifiedAt, &d.Posting.VerifiedBy,
		&d.Performance.Impressions, &d.Performance.Likes, &d.Performance.Comments, &d.Performance.Shares,
		&d.CreatedAt, &d.UpdatedAt)
	return d, err
}

// Create inserts a PENDING deliverable for an assigned creator.
func (r *DeliverableRepo) Create(ctx context.Context, campaignID, creatorID uint64, title, contentType string, dueDate *time.Time) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO deliverables (campaign_id, creator_id, title, content_type, status, due_date) VALUES (?,?,?,?,?,?)",
		campaignID, creatorID, title, contentType, model.DeliverablePending, dueDate)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches a deliverable by id.
func (r *DeliverableRepo) GetByID(ctx context.Context, id uint64) (model.Deliverable, error) {
	d, err := scanDeliverable(r.DB.QueryRowContext(ctx,
		"SELECT "+deliverableCols+" FROM deliverables WHERE id=? LIMIT 1", id).Scan)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	return d, err
}

// GetByIDTx locks and reads a deliverable inside the caller's transaction so
// concurrent draft submissions and review decisions serialize on the row.
func (r *DeliverableRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (model.Deliverable, error) {
	d, err := scanDeliverable(tx.QueryRowContext(ctx,
		"SELECT "+deliverableCols+" FROM deliverables WHERE id=? LIMIT 1 FOR UPDATE", id).Scan)
	if err == sql.ErrNoRows {
		return d, ErrNotFound
	}
	return d, err
}

// ListByCampaign returns all deliverables of a campaign in creation order.
func (r *DeliverableRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.Deliverable, error) {
	return r.list(ctx, "campaign_id", campaignID)
}

// ListByCreator returns all deliverables assigned to a creator.
func (r *DeliverableRepo) ListByCreator(ctx context.Context, creatorID uint64) ([]model.Deliverable, error) {
	return r.list(ctx, "creator_id", creatorID)
}

func (r *DeliverableRepo) list(ctx context.Context, col string, id uint64) ([]model.Deliverable, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+deliverableCols+" FROM deliverables WHERE "+col+"=? ORDER BY id", id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Deliverable{}
	for rows.Next() {
		d, err := scanDeliverable(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// AppendDraftTx persists a new draft row and the advanced version counter /
// status computed by model.AppendDraft, inside the caller's transaction. The
// (deliverable_id, version) unique key keeps the counter honest even if two
// submissions race past the row lock.
func (r *DeliverableRepo) AppendDraftTx(ctx context.Context, tx *sql.Tx, d model.Deliverable, draft model.Draft) error {
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO deliverable_drafts (deliverable_id, version, content_links, notes, status, submitted_at) VALUES (?,?,?,?,?,?)",
		draft.DeliverableID, draft.Version, draft.ContentLinks, draft.Notes, draft.Status, draft.SubmittedAt); err != nil {
		return err
	}
	_, err := tx.ExecContext(ctx,
		"UPDATE deliverables SET current_version=?, status=? WHERE id=?",
		d.CurrentVersion, d.Status, d.ID)
	return err
}

// SaveDecisionTx persists the outcome of model.ApplyDecision: the
// deliverable's status, approved version and revision deadline, plus the
// reviewed draft row's status.
func (r *DeliverableRepo) SaveDecisionTx(ctx context.Context, tx *sql.Tx, d model.Deliverable, version uint32, draftStatus string) error {
	if _, err := tx.ExecContext(ctx,
		"UPDATE deliverables SET status=?, approved_version=?, revision_due_date=? WHERE id=?",
		d.Status, d.ApprovedVersion, d.RevisionDueDate, d.ID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx,
		"UPDATE deliverable_drafts SET status=? WHERE deliverable_id=? AND version=?",
		draftStatus, d.ID, version)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return model.ErrNoSuchVersion
	}
	return nil
}

// SavePosting records post proof with a conditional update: only an
// APPROVED deliverable transitions to POSTED. Returns ErrConflict when the
// guard fails (status moved under the caller).
func (r *DeliverableRepo) SavePosting(ctx context.Context, id uint64, url string, postedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE deliverables SET status=?, post_url=?, posted_at=? WHERE id=? AND status=?",
		model.DeliverablePosted, url, postedAt, id, model.DeliverableApproved)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// SaveVerification completes a POSTED deliverable. Same conditional-update
// guard as SavePosting.
func (r *DeliverableRepo) SaveVerification(ctx context.Context, id, verifiedBy uint64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE deliverables SET status=?, post_verified=1, verified_at=?, verified_by=? WHERE id=? AND status=?",
		model.DeliverableCompleted, at, verifiedBy, id, model.DeliverablePosted)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// UpdatePerformance replaces the self-reported metrics.
func (r *DeliverableRepo) UpdatePerformance(ctx context.Context, id uint64, p model.Performance) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE deliverables SET impressions=?, likes=?, comments=?, shares=? WHERE id=?",
		p.Impressions, p.Likes, p.Comments, p.Shares, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// ListDrafts returns the full version history of a deliverable, oldest first.
func (r *DeliverableRepo) ListDrafts(ctx context.Context, deliverableID uint64) ([]model.Draft, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,deliverable_id,version,content_links,notes,status,submitted_at FROM deliverable_drafts WHERE deliverable_id=? ORDER BY version",
		deliverableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Draft{}
	for rows.Next() {
		var dr model.Draft
		if err := rows.Scan(&dr.ID, &dr.DeliverableID, &dr.Version, &dr.ContentLinks, &dr.Notes, &dr.Status, &dr.SubmittedAt); err != nil {
			return nil, err
		}
		out = append(out, dr)
	}
	return out, rows.Err()
}

// GetManyTx locks and reads a set of deliverables inside the caller's
// transaction. Used by the payment trigger to check readiness without the
// rows shifting underneath.
func (r *DeliverableRepo) GetManyTx(ctx context.Context, tx *sql.Tx, ids []uint64) ([]model.Deliverable, error) {
	out := make([]model.Deliverable, 0, len(ids))
	for _, id := range ids {
		d, err := r.GetByIDTx(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}
