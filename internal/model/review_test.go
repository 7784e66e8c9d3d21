package model

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestFilterComments(t *testing.T) {
    rev := Review{Comments: []ReviewComment{
        {ID: 1, Body: "tighten the intro", Visibility: VisibilityExternal},
        {ID: 2, Body: "budget is already blown", Visibility: VisibilityInternal},
        {ID: 3, Body: "logo at 0:12 please", Visibility: VisibilityExternal},
    }}
    out := rev.FilterComments()
    assert.Len(t, out, 2)
    for _, c := range out {
        assert.Equal(t, VisibilityExternal, c.Visibility)
    }
}

func TestFilterCommentsEmpty(t *testing.T) {
    assert.Empty(t, Review{}.FilterComments())
}

func TestValidDecision(t *testing.T) {
    assert.True(t, ValidDecision(DecisionApprove))
    assert.True(t, ValidDecision(DecisionRequestRevision))
    assert.True(t, ValidDecision(DecisionReject))
    assert.False(t, ValidDecision("approve"))
    assert.False(t, ValidDecision(""))
}
