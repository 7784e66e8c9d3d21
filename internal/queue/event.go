// Package queue defines notification payloads exchanged over the message
// broker. Every state transition that owes someone an email publishes one of
// these; delivery is at-least-once and never blocks or rolls back the
// transition it accompanies.
package queue

// NotificationQueueName is the single durable queue all notification events
// flow through. The Kind field routes each message to a template.
const NotificationQueueName = "notifications.outbound"

// Notification kinds.
const (
    KindInviteCreated   = "invite.created"
    KindInviteAccepted  = "invite.accepted"
    KindReviewDecision  = "review.decision"
    KindPaymentTriggered = "payment.triggered"
    KindPasswordReset   = "password.reset"
)

// NotificationEvent carries enough context for a downstream consumer to
// render and send an email without querying the primary database. Unused
// fields stay zero for kinds they do not apply to.
type NotificationEvent struct {
    Kind         string `json:"kind"`
    Recipient    string `json:"recipient"` // email address
    CampaignID   uint64 `json:"campaign_id"`
    CampaignName string `json:"campaign_name"`
    InviteToken  string `json:"invite_token,omitempty"`
    InviterName  string `json:"inviter_name,omitempty"`
    CreatorName  string `json:"creator_name,omitempty"`
    DeliverableID uint64 `json:"deliverable_id,omitempty"`
    DraftVersion uint32 `json:"draft_version,omitempty"`
    Decision     string `json:"decision,omitempty"`
    AmountCents  uint64 `json:"amount_cents,omitempty"`
    Currency     string `json:"currency,omitempty"`
    ResetCode    string `json:"reset_code,omitempty"`
    OccurredAt   string `json:"occurred_at"`
}
