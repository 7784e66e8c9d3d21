package queue

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestRenderLineSubjects(t *testing.T) {
    cases := []struct {
        name string
        ev   NotificationEvent
        want string
    }{
        {
            name: "invite created",
            ev:   NotificationEvent{Kind: KindInviteCreated, CampaignName: "Spring Launch"},
            want: "You're invited to join",
        },
        {
            name: "review decision",
            ev:   NotificationEvent{Kind: KindReviewDecision, CampaignName: "Spring Launch", DraftVersion: 2, Decision: "APPROVE"},
            want: "Draft v2 on",
        },
        {
            name: "password reset carries the code",
            ev:   NotificationEvent{Kind: KindPasswordReset, Recipient: "creator@example.com", ResetCode: "deadbeef"},
            want: "Your password reset code: deadbeef",
        },
        {
            name: "unknown kind falls back",
            ev:   NotificationEvent{Kind: "mystery"},
            want: "Notification",
        },
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            line := renderLine(tc.ev)
            assert.Contains(t, line, tc.want)
            assert.Contains(t, line, "kind="+tc.ev.Kind)
        })
    }
}
