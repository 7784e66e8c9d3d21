package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// PaymentRepo provides data access to manually recorded payments and their
// deliverable links. Payments are never derived automatically; a brand
// owner/admin records them after deliverables complete.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

// CreateTx inserts a PENDING payment and its deliverable links inside the
// caller's transaction.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Payment) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payments (campaign_id, creator_id, amount_cents, currency, status, created_by) VALUES (?,?,?,?,?,?)",
		p.CampaignID, p.CreatorID, p.AmountCents, p.Currency, model.PaymentPending, p.CreatedBy)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = model.PaymentPending
	for _, did := range p.DeliverableIDs {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO payment_deliverables (payment_id, deliverable_id) VALUES (?,?)",
			p.ID, did); err != nil {
			return err
		}
	}
	return nil
}

// GetByID fetches a payment with its deliverable IDs.
func (r *PaymentRepo) GetByID(ctx context.Context, id uint64) (model.Payment, error) {
	var p model.Payment
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,campaign_id,creator_id,amount_cents,currency,status,triggered_at,paid_at,created_by,created_at FROM payments WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.CampaignID, &p.CreatorID, &p.AmountCents, &p.Currency, &p.Status, &p.TriggeredAt, &p.PaidAt, &p.CreatedBy, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.DeliverableIDs, err = r.deliverableIDs(ctx, p.ID)
	return p, err
}

func (r *PaymentRepo) deliverableIDs(ctx context.Context, paymentID uint64) ([]uint64, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT deliverable_id FROM payment_deliverables WHERE payment_id=? ORDER BY deliverable_id", paymentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// MarkTriggeredTx flips a PENDING payment to TRIGGERED inside the caller's
// transaction. The status guard makes a double trigger fail with
// ErrConflict.
func (r *PaymentRepo) MarkTriggeredTx(ctx context.Context, tx *sql.Tx, id uint64, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE payments SET status=?, triggered_at=? WHERE id=? AND status=?",
		model.PaymentTriggered, at, id, model.PaymentPending)
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

// MarkPaid settles a TRIGGERED payment.
func (r *PaymentRepo) MarkPaid(ctx context.Context, id uint64, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE payments SET status=?, paid_at=? WHERE id=? AND status=?",
		model.PaymentPaid, at, id, model.PaymentTriggered)
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

// ListByCampaign returns all payments recorded for a campaign, newest first.
func (r *PaymentRepo) ListByCampaign(ctx context.Context, campaignID uint64) ([]model.Payment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,campaign_id,creator_id,amount_cents,currency,status,triggered_at,paid_at,created_by,created_at FROM payments WHERE campaign_id=? ORDER BY id DESC",
		campaignID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Payment{}
	for rows.Next() {
		var p model.Payment
		if err := rows.Scan(&p.ID, &p.CampaignID, &p.CreatorID, &p.AmountCents, &p.Currency, &p.Status, &p.TriggeredAt, &p.PaidAt, &p.CreatedBy, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range out {
		ids, err := r.deliverableIDs(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].DeliverableIDs = ids
	}
	return out, nil
}
