package model

import (
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
)

func TestInvitationValid(t *testing.T) {
    now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
    inv := Invitation{Status: InvitePending, ExpiresAt: now.Add(time.Hour)}
    assert.True(t, inv.Valid(now))

    // Exactly at the boundary counts as expired.
    inv.ExpiresAt = now
    assert.False(t, inv.Valid(now))

    inv.ExpiresAt = now.Add(time.Hour)
    inv.Status = InviteAccepted
    assert.False(t, inv.Valid(now))

    inv.Status = InviteExpired
    assert.False(t, inv.Valid(now))
}

func TestInvitationEmailMatches(t *testing.T) {
    inv := Invitation{Email: "creator@example.com"}
    assert.True(t, inv.EmailMatches("creator@example.com"))
    assert.True(t, inv.EmailMatches("  Creator@Example.COM  "))
    assert.False(t, inv.EmailMatches("other@example.com"))
}

func TestNormalizeEmail(t *testing.T) {
    assert.Equal(t, "a@b.co", NormalizeEmail("  A@B.Co "))
    assert.Equal(t, "a@b.co", NormalizeEmail("a@b.co"))
}

func TestValidEmail(t *testing.T) {
    assert.True(t, ValidEmail("creator@example.com"))
    assert.True(t, ValidEmail(" Upper@Case.Org "))
    assert.False(t, ValidEmail("no-at-sign.com"))
    assert.False(t, ValidEmail("spaces in@example.com"))
    assert.False(t, ValidEmail("nodot@domain"))
    assert.False(t, ValidEmail(""))
}
