package model

import "time"

// Review decisions.
const (
    DecisionApprove         = "APPROVE"
    DecisionRequestRevision = "REQUEST_REVISION"
    DecisionReject          = "REJECT"
)

// Comment visibility. Internal comments are team-only; the assigned creator
// sees external comments only. Both share storage and are filtered on read.
const (
    VisibilityInternal = "INTERNAL"
    VisibilityExternal = "EXTERNAL"
)

// Review is one decision event on a deliverable draft. A row is written for
// every decision, so the table doubles as the audit history. The decision is
// immutable once written; only comment appends are allowed afterwards.
type Review struct {
    ID            uint64    // reviews.id
    DeliverableID uint64    // reviews.deliverable_id
    DraftVersion  uint32    // reviews.draft_version
    ReviewerID    uint64    // reviews.reviewer_id
    Decision      string    // reviews.decision
    DecisionAt    time.Time // reviews.decision_at
    CreatedAt     time.Time // reviews.created_at
    Comments      []ReviewComment
}

// ReviewComment is a single comment on a review thread, optionally anchored
// to a timestamp in the reviewed video.
type ReviewComment struct {
    ID         uint64    // review_comments.id
    ReviewID   uint64    // review_comments.review_id
    AuthorID   uint64    // review_comments.author_id
    Body       string    // review_comments.body
    Visibility string    // review_comments.visibility
    VideoTS    *uint32   // review_comments.video_ts (seconds, nullable)
    CreatedAt  time.Time // review_comments.created_at
}

// ValidDecision reports whether d is a known review decision.
func ValidDecision(d string) bool {
    switch d {
    case DecisionApprove, DecisionRequestRevision, DecisionReject:
        return true
    }
    return false
}

// FilterComments returns only the comments visible to an external reader
// (the assigned creator). Team members see everything and skip this.
func (r Review) FilterComments() []ReviewComment {
    out := make([]ReviewComment, 0, len(r.Comments))
    for _, c := range r.Comments {
        if c.Visibility == VisibilityExternal {
            out = append(out, c)
        }
    }
    return out
}
