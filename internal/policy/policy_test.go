package policy

import (
    "testing"

    "github.com/stretchr/testify/assert"

    "github.com/brandloop/creator-campaigns/internal/model"
)

func TestOwnerMayDoEverything(t *testing.T) {
    for _, a := range []Action{
        ActionUpdateCampaign, ActionDeleteCampaign, ActionManageTeam,
        ActionInviteCreators, ActionRemoveCreator, ActionManageBrief,
        ActionCreateDeliv, ActionReviewDraft, ActionVerifyPost,
        ActionManagePayments, ActionViewCampaign,
    } {
        assert.True(t, Allows(a, model.RoleOwner), string(a))
    }
}

func TestDeleteIsOwnerOnly(t *testing.T) {
    assert.True(t, Allows(ActionDeleteCampaign, model.RoleOwner))
    assert.False(t, Allows(ActionDeleteCampaign, model.RoleAdmin))
    assert.False(t, Allows(ActionDeleteCampaign, model.RoleMember))
    assert.False(t, Allows(ActionDeleteCampaign, model.RoleViewer))
}

func TestEveryTeamRoleMayReview(t *testing.T) {
    for _, role := range []string{model.RoleOwner, model.RoleAdmin, model.RoleMember, model.RoleViewer} {
        assert.True(t, Allows(ActionReviewDraft, role), role)
    }
}

func TestViewerIsReadMostly(t *testing.T) {
    assert.True(t, Allows(ActionViewCampaign, model.RoleViewer))
    assert.False(t, Allows(ActionUpdateCampaign, model.RoleViewer))
    assert.False(t, Allows(ActionInviteCreators, model.RoleViewer))
    assert.False(t, Allows(ActionManagePayments, model.RoleViewer))
}

func TestUnknownInputsDenied(t *testing.T) {
    assert.False(t, Allows(Action("campaign.destroy"), model.RoleOwner))
    assert.False(t, Allows(ActionViewCampaign, ""))
    assert.False(t, Allows(ActionViewCampaign, "SUPERUSER"))
}
