package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func newDeliverable() Deliverable {
    return Deliverable{ID: 7, CampaignID: 3, CreatorID: 11, Status: DeliverablePending}
}

func mustAppendDraft(t *testing.T, d *Deliverable, links, notes string, now time.Time) Draft {
    t.Helper()
    dr, err := d.AppendDraft(links, notes, now)
    require.NoError(t, err)
    return dr
}

func TestAppendDraftAdvancesVersion(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()

    first := mustAppendDraft(t, &d, "https://drive/v1", "first cut", now)
    assert.Equal(t, uint32(1), first.Version)
    assert.Equal(t, uint32(1), d.CurrentVersion)
    assert.Equal(t, DeliverableDraftSubmitted, d.Status)
    assert.Equal(t, DraftSubmitted, first.Status)

    second := mustAppendDraft(t, &d, "https://drive/v2", "", now)
    assert.Equal(t, uint32(2), second.Version)
    assert.Equal(t, uint32(2), d.CurrentVersion)
}

func TestAppendDraftAfterRejectContinuesSequence(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()
    mustAppendDraft(t, &d, "v1", "", now)
    _, err := d.ApplyDecision(DecisionReject, 1, now)
    require.NoError(t, err)
    assert.Equal(t, DeliverablePending, d.Status)

    next := mustAppendDraft(t, &d, "v2", "", now)
    assert.Equal(t, uint32(2), next.Version)
}

func TestAppendDraftRefusedAfterCompletion(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()
    mustAppendDraft(t, &d, "v1", "", now)
    _, err := d.ApplyDecision(DecisionApprove, 1, now)
    require.NoError(t, err)
    require.NoError(t, d.SubmitPost("https://instagram.com/p/x", now))
    require.NoError(t, d.VerifyPost(42, now))

    _, err = d.AppendDraft("https://drive/late", "", now)
    assert.ErrorIs(t, err, ErrCompleted)
    assert.Equal(t, DeliverableCompleted, d.Status, "a completed deliverable must not reopen")
    assert.Equal(t, uint32(1), d.CurrentVersion)
    assert.True(t, d.Posting.Verified)
    assert.True(t, d.PaymentReady())
}

func TestApplyDecisionApprove(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()
    mustAppendDraft(t, &d, "v1", "", now)
    mustAppendDraft(t, &d, "v2", "", now)

    // Approving an older version records exactly that version.
    draftStatus, err := d.ApplyDecision(DecisionApprove, 1, now)
    require.NoError(t, err)
    assert.Equal(t, DraftApproved, draftStatus)
    assert.Equal(t, DeliverableApproved, d.Status)
    require.NotNil(t, d.ApprovedVersion)
    assert.Equal(t, uint32(1), *d.ApprovedVersion)
    assert.Nil(t, d.RevisionDueDate)
}

func TestApplyDecisionRequestRevision(t *testing.T) {
    d := newDeliverable()
    now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
    mustAppendDraft(t, &d, "v1", "", now)

    draftStatus, err := d.ApplyDecision(DecisionRequestRevision, 1, now)
    require.NoError(t, err)
    assert.Equal(t, DraftRevisionRequested, draftStatus)
    assert.Equal(t, DeliverableRevisionRequested, d.Status)
    require.NotNil(t, d.RevisionDueDate)
    assert.Equal(t, now.Add(RevisionWindow), *d.RevisionDueDate)
}

func TestApplyDecisionApproveClearsRevisionDeadline(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()
    mustAppendDraft(t, &d, "v1", "", now)
    _, err := d.ApplyDecision(DecisionRequestRevision, 1, now)
    require.NoError(t, err)
    mustAppendDraft(t, &d, "v2", "", now)

    _, err = d.ApplyDecision(DecisionApprove, 2, now)
    require.NoError(t, err)
    assert.Nil(t, d.RevisionDueDate)
}

func TestApplyDecisionRejectsBadVersions(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()
    mustAppendDraft(t, &d, "v1", "", now)

    _, err := d.ApplyDecision(DecisionApprove, 0, now)
    assert.ErrorIs(t, err, ErrNoSuchVersion)
    _, err = d.ApplyDecision(DecisionApprove, 2, now)
    assert.ErrorIs(t, err, ErrNoSuchVersion)
    _, err = d.ApplyDecision("MAYBE", 1, now)
    assert.ErrorIs(t, err, ErrUnknownDecision)
}

func TestSubmitPostRequiresApproval(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()

    err := d.SubmitPost("https://instagram.com/p/x", now)
    assert.ErrorIs(t, err, ErrNotApproved)

    mustAppendDraft(t, &d, "v1", "", now)
    _, err = d.ApplyDecision(DecisionApprove, 1, now)
    require.NoError(t, err)

    require.NoError(t, d.SubmitPost("https://instagram.com/p/x", now))
    assert.Equal(t, DeliverablePosted, d.Status)
    require.NotNil(t, d.Posting.URL)
    assert.Equal(t, "https://instagram.com/p/x", *d.Posting.URL)
}

func TestVerifyPostCompletes(t *testing.T) {
    d := newDeliverable()
    now := time.Now().UTC()

    err := d.VerifyPost(42, now)
    assert.ErrorIs(t, err, ErrNotPosted)

    mustAppendDraft(t, &d, "v1", "", now)
    _, err = d.ApplyDecision(DecisionApprove, 1, now)
    require.NoError(t, err)
    require.NoError(t, d.SubmitPost("https://tiktok.com/v/1", now))

    require.NoError(t, d.VerifyPost(42, now))
    assert.Equal(t, DeliverableCompleted, d.Status)
    assert.True(t, d.Posting.Verified)
    require.NotNil(t, d.Posting.VerifiedBy)
    assert.Equal(t, uint64(42), *d.Posting.VerifiedBy)
}

func TestPaymentReady(t *testing.T) {
    d := newDeliverable()
    assert.False(t, d.PaymentReady())

    d.Status = DeliverableCompleted
    assert.False(t, d.PaymentReady(), "completed but unverified is not payable")

    d.Posting.Verified = true
    assert.True(t, d.PaymentReady())

    d.Status = DeliverablePosted
    assert.False(t, d.PaymentReady())
}
