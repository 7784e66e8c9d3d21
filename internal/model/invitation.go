package model

import (
    "regexp"
    "strings"
    "time"
)

// Invitation statuses. A pending invitation flips to EXPIRED lazily, inside
// whichever transaction first reads it after the expiry has passed; there is
// no background sweep.
const (
    InvitePending  = "PENDING"
    InviteAccepted = "ACCEPTED"
    InviteExpired  = "EXPIRED"
)

// InviteTTL is how long a freshly issued invitation stays acceptable.
const InviteTTL = 30 * 24 * time.Hour

// emailPattern is intentionally minimal: one @, no whitespace, a dot in the
// domain. Anything stricter rejects real-world addresses.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Invitation binds an email address to a campaign through a random token.
// The token is the sole capability granting a not-yet-assigned creator
// visibility into a private campaign; the email match on acceptance keeps an
// intercepted token from being sufficient on its own.
type Invitation struct {
    ID         uint64     // invitations.id
    CampaignID uint64     // invitations.campaign_id
    Email      string     // invitations.email (stored normalized)
    Token      string     // invitations.token
    Status     string     // invitations.status
    InvitedBy  uint64     // invitations.invited_by
    AcceptedBy *uint64    // invitations.accepted_by (nullable)
    AcceptedAt *time.Time // invitations.accepted_at (nullable)
    ExpiresAt  time.Time  // invitations.expires_at
    CreatedAt  time.Time  // invitations.created_at
}

// Valid reports whether the invitation can still be accepted at the given
// instant: it must be pending and not yet expired.
func (i Invitation) Valid(now time.Time) bool {
    return i.Status == InvitePending && now.Before(i.ExpiresAt)
}

// EmailMatches compares a candidate address against the stored one. The
// stored email is already normalized; the candidate is trimmed and lowered
// so " Foo@X.com " and "foo@x.com" are treated as the same mailbox.
func (i Invitation) EmailMatches(candidate string) bool {
    return NormalizeEmail(candidate) == i.Email
}

// NormalizeEmail trims surrounding whitespace and lowercases the address.
// Every email written to storage goes through this first.
func NormalizeEmail(email string) string {
    return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether the normalized address has a plausible shape.
func ValidEmail(email string) bool {
    return emailPattern.MatchString(NormalizeEmail(email))
}
