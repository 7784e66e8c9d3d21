// Package policy holds the campaign-level authorization table. Every
// role-gated campaign action is listed here and evaluated through Allows, so
// a permission change is a one-line table edit instead of a handler hunt.
package policy

import "github.com/brandloop/creator-campaigns/internal/model"

// Action names one role-gated campaign operation.
type Action string

const (
    ActionUpdateCampaign  Action = "campaign.update"
    ActionDeleteCampaign  Action = "campaign.delete"
    ActionManageTeam      Action = "campaign.manage_team"
    ActionInviteCreators  Action = "campaign.invite_creators"
    ActionRemoveCreator   Action = "campaign.remove_creator"
    ActionManageBrief     Action = "campaign.manage_brief"
    ActionCreateDeliv     Action = "deliverable.create"
    ActionReviewDraft     Action = "deliverable.review"
    ActionVerifyPost      Action = "deliverable.verify_post"
    ActionManagePayments  Action = "payment.manage"
    ActionViewCampaign    Action = "campaign.view"
)

// table maps each action to the set of team roles allowed to perform it.
// Reviewing a draft is deliberately open to every team role, matching the
// product decision that any collaborator may weigh in on content.
var table = map[Action]map[string]bool{
    ActionUpdateCampaign: roles(model.RoleOwner, model.RoleAdmin),
    ActionDeleteCampaign: roles(model.RoleOwner),
    ActionManageTeam:     roles(model.RoleOwner, model.RoleAdmin),
    ActionInviteCreators: roles(model.RoleOwner, model.RoleAdmin),
    ActionRemoveCreator:  roles(model.RoleOwner, model.RoleAdmin),
    ActionManageBrief:    roles(model.RoleOwner, model.RoleAdmin),
    ActionCreateDeliv:    roles(model.RoleOwner, model.RoleAdmin),
    ActionReviewDraft:    roles(model.RoleOwner, model.RoleAdmin, model.RoleMember, model.RoleViewer),
    ActionVerifyPost:     roles(model.RoleOwner, model.RoleAdmin),
    ActionManagePayments: roles(model.RoleOwner, model.RoleAdmin),
    ActionViewCampaign:   roles(model.RoleOwner, model.RoleAdmin, model.RoleMember, model.RoleViewer),
}

func roles(rs ...string) map[string]bool {
    m := make(map[string]bool, len(rs))
    for _, r := range rs {
        m[r] = true
    }
    return m
}

// Allows reports whether a holder of the given campaign role may perform the
// action. Unknown actions and empty roles are denied.
func Allows(a Action, role string) bool {
    allowed, ok := table[a]
    if !ok {
        return false
    }
    return allowed[role]
}
