package model

import (
    "errors"
    "time"
)

// Deliverable statuses. REVISION_REQUESTED is not terminal: a new draft
// submission returns the deliverable to DRAFT_SUBMITTED. COMPLETED is the
// only terminal state and the single gate that unlocks payment triggering.
const (
    DeliverablePending           = "PENDING"
    DeliverableDraftSubmitted    = "DRAFT_SUBMITTED"
    DeliverableInReview          = "IN_REVIEW"
    DeliverableRevisionRequested = "REVISION_REQUESTED"
    DeliverableApproved          = "APPROVED"
    DeliverablePosted            = "POSTED"
    DeliverableCompleted         = "COMPLETED"
)

// Draft statuses within a deliverable's version history.
const (
    DraftSubmitted         = "SUBMITTED"
    DraftApproved          = "APPROVED"
    DraftRevisionRequested = "REVISION_REQUESTED"
    DraftRejected          = "REJECTED"
)

// RevisionWindow is the fixed window a creator gets after a revision request.
const RevisionWindow = 48 * time.Hour

var (
    // ErrNotApproved is returned when post proof is submitted before the
    // deliverable has an approved draft.
    ErrNotApproved = errors.New("deliverable is not approved")
    // ErrNotPosted is returned when verification is attempted before the
    // creator has submitted post proof.
    ErrNotPosted = errors.New("deliverable is not posted")
    // ErrNoSuchVersion is returned when a review references a draft version
    // that was never submitted.
    ErrNoSuchVersion = errors.New("draft version does not exist")
    // ErrUnknownDecision is returned for decisions outside the review enum.
    ErrUnknownDecision = errors.New("unknown review decision")
    // ErrCompleted is returned when a draft is submitted against a completed
    // deliverable; COMPLETED is terminal and the gate for payment, so it
    // cannot be reopened.
    ErrCompleted = errors.New("deliverable is already completed")
)

// Deliverable is one trackable content unit a creator owes for a campaign.
// Drafts live in their own table; CurrentVersion always equals the number of
// drafts submitted so far.
type Deliverable struct {
    ID              uint64     // deliverables.id
    CampaignID      uint64     // deliverables.campaign_id
    CreatorID       uint64     // deliverables.creator_id
    Title           string     // deliverables.title
    ContentType     string     // deliverables.content_type (e.g. "instagram_reel")
    Status          string     // deliverables.status
    CurrentVersion  uint32     // deliverables.current_version
    ApprovedVersion *uint32    // deliverables.approved_version (nullable)
    DueDate         *time.Time // deliverables.due_date (nullable)
    RevisionDueDate *time.Time // deliverables.revision_due_date (nullable)
    Posting         PostingDetails
    Performance     Performance
    CreatedAt       time.Time // deliverables.created_at
    UpdatedAt       time.Time // deliverables.updated_at
}

// PostingDetails records where and when the approved content went live and
// whether a campaign owner/admin has verified it.
type PostingDetails struct {
    URL        *string    // deliverables.post_url (nullable)
    PostedAt   *time.Time // deliverables.posted_at (nullable)
    Verified   bool       // deliverables.post_verified
    VerifiedAt *time.Time // deliverables.verified_at (nullable)
    VerifiedBy *uint64    // deliverables.verified_by (nullable)
}

// Performance carries self-reported post metrics.
type Performance struct {
    Impressions uint64 // deliverables.impressions
    Likes       uint64 // deliverables.likes
    Comments    uint64 // deliverables.comments
    Shares      uint64 // deliverables.shares
}

// Draft is one versioned submission of a deliverable's content.
type Draft struct {
    ID             uint64    // deliverable_drafts.id
    DeliverableID  uint64    // deliverable_drafts.deliverable_id
    Version        uint32    // deliverable_drafts.version
    ContentLinks   string    // deliverable_drafts.content_links
    Notes          string    // deliverable_drafts.notes
    Status         string    // deliverable_drafts.status
    SubmittedAt    time.Time // deliverable_drafts.submitted_at
}

// AppendDraft advances the deliverable for a new submission and returns the
// draft to persist. The version counter increments by exactly one per call
// regardless of the state the deliverable was in; a rejected deliverable
// resubmits from its existing counter. A completed deliverable refuses new
// drafts.
func (d *Deliverable) AppendDraft(links, notes string, now time.Time) (Draft, error) {
    if d.Status == DeliverableCompleted {
        return Draft{}, ErrCompleted
    }
    d.CurrentVersion++
    d.Status = DeliverableDraftSubmitted
    return Draft{
        DeliverableID: d.ID,
        Version:       d.CurrentVersion,
        ContentLinks:  links,
        Notes:         notes,
        Status:        DraftSubmitted,
        SubmittedAt:   now,
    }, nil
}

// ApplyDecision mutates the deliverable per the review decision on the given
// draft version and returns the status the reviewed draft row should take.
//
// APPROVE records exactly the reviewed version as approved, even when later
// drafts exist; whether approval should be forced onto the newest version is
// an open product question, so the recorded behavior stands.
func (d *Deliverable) ApplyDecision(decision string, version uint32, now time.Time) (string, error) {
    if version == 0 || version > d.CurrentVersion {
        return "", ErrNoSuchVersion
    }
    switch decision {
    case DecisionApprove:
        v := version
        d.ApprovedVersion = &v
        d.Status = DeliverableApproved
        d.RevisionDueDate = nil
        return DraftApproved, nil
    case DecisionRequestRevision:
        due := now.Add(RevisionWindow)
        d.RevisionDueDate = &due
        d.Status = DeliverableRevisionRequested
        return DraftRevisionRequested, nil
    case DecisionReject:
        // Back to square one; the version counter is untouched so the next
        // submission continues the sequence.
        d.Status = DeliverablePending
        d.RevisionDueDate = nil
        return DraftRejected, nil
    }
    return "", ErrUnknownDecision
}

// SubmitPost records post proof. Only an approved deliverable may be posted.
func (d *Deliverable) SubmitPost(url string, now time.Time) error {
    if d.Status != DeliverableApproved {
        return ErrNotApproved
    }
    d.Posting.URL = &url
    d.Posting.PostedAt = &now
    d.Status = DeliverablePosted
    return nil
}

// VerifyPost marks the live post as verified by an owner/admin and completes
// the deliverable.
func (d *Deliverable) VerifyPost(verifierID uint64, now time.Time) error {
    if d.Status != DeliverablePosted {
        return ErrNotPosted
    }
    d.Posting.Verified = true
    d.Posting.VerifiedAt = &now
    d.Posting.VerifiedBy = &verifierID
    d.Status = DeliverableCompleted
    return nil
}

// PaymentReady reports whether this deliverable may be included in a payment
// trigger: completed, with a verified post.
func (d Deliverable) PaymentReady() bool {
    return d.Status == DeliverableCompleted && d.Posting.Verified
}
