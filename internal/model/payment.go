package model

import "time"

// Payment statuses. Payments are recorded manually by a brand owner/admin;
// there is no gateway integration. TRIGGERED means the brand released the
// payment for processing outside the platform, PAID that it settled.
const (
    PaymentPending   = "PENDING"
    PaymentTriggered = "TRIGGERED"
    PaymentPaid      = "PAID"
)

// Payment references a campaign, a creator and a set of deliverables. A
// payment may only be triggered once every referenced deliverable is
// completed with a verified post.
type Payment struct {
    ID             uint64     // payments.id
    CampaignID     uint64     // payments.campaign_id
    CreatorID      uint64     // payments.creator_id
    AmountCents    uint64     // payments.amount_cents
    Currency       string     // payments.currency
    Status         string     // payments.status
    TriggeredAt    *time.Time // payments.triggered_at (nullable)
    PaidAt         *time.Time // payments.paid_at (nullable)
    CreatedBy      uint64     // payments.created_by
    CreatedAt      time.Time  // payments.created_at
    DeliverableIDs []uint64
}

// Brief is the structured content guidance attached to a campaign. At most
// one exists per campaign; writes upsert in place.
type Brief struct {
    ID         uint64    // briefs.id
    CampaignID uint64    // briefs.campaign_id
    Objective  string    // briefs.objective
    Messaging  string    // briefs.messaging
    Hashtags   string    // briefs.hashtags
    DosDonts   string    // briefs.dos_donts
    CreatedAt  time.Time // briefs.created_at
    UpdatedAt  time.Time // briefs.updated_at
}
