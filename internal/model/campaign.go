package model

import "time"

// Campaign statuses. Status is set by brand action through the generic
// update endpoint; there is deliberately no transition table for it.
const (
    CampaignDraft     = "DRAFT"
    CampaignActive    = "ACTIVE"
    CampaignInReview  = "IN_REVIEW"
    CampaignCompleted = "COMPLETED"
    CampaignCancelled = "CANCELLED"
)

// Team roles on a campaign. The brand owner is always an OWNER team member;
// that row is written in the same transaction that creates the campaign.
const (
    RoleOwner  = "OWNER"
    RoleAdmin  = "ADMIN"
    RoleMember = "MEMBER"
    RoleViewer = "VIEWER"
)

// Acknowledgment states for an assigned creator.
const (
    AckPending      = "PENDING"
    AckAcknowledged = "ACKNOWLEDGED"
    AckDeclined     = "DECLINED"
)

// Campaign is one brand's marketing campaign. AgencyID is optional; team
// members and assigned creators live in their own tables and are loaded
// separately by the repository layer.
type Campaign struct {
    ID          uint64    // campaigns.id
    BrandID     uint64    // campaigns.brand_id
    AgencyID    *uint64   // campaigns.agency_id (nullable)
    Name        string    // campaigns.name
    Description string    // campaigns.description
    Status      string    // campaigns.status
    CreatedAt   time.Time // campaigns.created_at
    UpdatedAt   time.Time // campaigns.updated_at
}

// TeamMember links a brand/agency-side collaborator to a campaign with a role.
type TeamMember struct {
    ID         uint64    // campaign_team_members.id
    CampaignID uint64    // campaign_team_members.campaign_id
    UserID     uint64    // campaign_team_members.user_id
    Role       string    // campaign_team_members.role
    CreatedAt  time.Time // campaign_team_members.created_at
}

// AssignedCreator is one entry in a campaign's assignment ledger. Rows are
// only ever created by invitation acceptance, never directly, so a creator's
// consent is mandatory before inclusion.
type AssignedCreator struct {
    ID             uint64     // campaign_creators.id
    CampaignID     uint64     // campaign_creators.campaign_id
    CreatorID      uint64     // campaign_creators.creator_id
    AckStatus      string     // campaign_creators.ack_status
    AcknowledgedAt *time.Time // campaign_creators.acknowledged_at (nullable)
    CreatedAt      time.Time  // campaign_creators.created_at
}

// ValidCampaignStatus reports whether s is a known campaign status.
func ValidCampaignStatus(s string) bool {
    switch s {
    case CampaignDraft, CampaignActive, CampaignInReview, CampaignCompleted, CampaignCancelled:
        return true
    }
    return false
}

// ValidTeamRole reports whether r is a known team role.
func ValidTeamRole(r string) bool {
    switch r {
    case RoleOwner, RoleAdmin, RoleMember, RoleViewer:
        return true
    }
    return false
}
