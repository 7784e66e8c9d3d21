package repository

import (
	"context"
	"database/sql"

	"github.com/brandloop/creator-campaigns/internal/model"
)

// ReviewRepo provides data access to the append-only review log and its
// comment threads. Reviews are never updated after creation; only comments
// may be appended.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

// CreateTx writes one review row inside the caller's transaction, in the
// same commit that applies the decision's effects to the deliverable.
func (r *ReviewRepo) CreateTx(ctx context.Context, tx *sql.Tx, rev *model.Review) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO reviews (deliverable_id, draft_version, reviewer_id, decision, decision_at) VALUES (?,?,?,?,?)",
		rev.DeliverableID, rev.DraftVersion, rev.ReviewerID, rev.Decision, rev.DecisionAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rev.ID = uint64(id)
	return nil
}

// GetByID fetches a single review without its comments.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (model.Review, error) {
	var rev model.Review
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,deliverable_id,draft_version,reviewer_id,decision,decision_at,created_at FROM reviews WHERE id=? LIMIT 1",
		id).Scan(&rev.ID, &rev.DeliverableID, &rev.DraftVersion, &rev.ReviewerID, &rev.Decision, &rev.DecisionAt, &rev.CreatedAt)
	if err == sql.ErrNoRows {
		return rev, ErrNotFound
	}
	return rev, err
}

// ListByDeliverable returns the review history for a deliverable, oldest
// first, with comment threads attached. Visibility filtering for external
// readers happens in the handler via model.Review.FilterComments.
func (r *ReviewRepo) ListByDeliverable(ctx context.Context, deliverableID uint64) ([]model.Review, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,deliverable_id,draft_version,reviewer_id,decision,decision_at,created_at FROM reviews WHERE deliverable_id=? ORDER BY id",
		deliverableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := []model.Review{}
	for rows.Next() {
		var rev model.Review
		if err := rows.Scan(&rev.ID, &rev.DeliverableID, &rev.DraftVersion, &rev.ReviewerID, &rev.Decision, &rev.DecisionAt, &rev.CreatedAt); err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range reviews {
		comments, err := r.listComments(ctx, reviews[i].ID)
		if err != nil {
			return nil, err
		}
		reviews[i].Comments = comments
	}
	return reviews, nil
}

func (r *ReviewRepo) listComments(ctx context.Context, reviewID uint64) ([]model.ReviewComment, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT id,review_id,author_id,body,visibility,video_ts,created_at FROM review_comments WHERE review_id=? ORDER BY id",
		reviewID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ReviewComment{}
	for rows.Next() {
		var c model.ReviewComment
		if err := rows.Scan(&c.ID, &c.ReviewID, &c.AuthorID, &c.Body, &c.Visibility, &c.VideoTS, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddComment appends a comment to an existing review thread.
func (r *ReviewRepo) AddComment(ctx context.Context, c *model.ReviewComment) error {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO review_comments (review_id, author_id, body, visibility, video_ts) VALUES (?,?,?,?,?)",
		c.ReviewID, c.AuthorID, c.Body, c.Visibility, c.VideoTS)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// AddCommentTx writes the decision's opening comment inside the caller's
// transaction, so the review and its comment land in the same commit.
func (r *ReviewRepo) AddCommentTx(ctx context.Context, tx *sql.Tx, c *model.ReviewComment) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO review_comments (review_id, author_id, body, visibility, video_ts) VALUES (?,?,?,?,?)",
		c.ReviewID, c.AuthorID, c.Body, c.Visibility, c.VideoTS)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}
