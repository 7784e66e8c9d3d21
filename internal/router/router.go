package router // package router defines how HTTP routes are registered for the API

import (
    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/brandloop/creator-campaigns/internal/config"
    "github.com/brandloop/creator-campaigns/internal/handler"
    "github.com/brandloop/creator-campaigns/internal/middleware"
    "github.com/brandloop/creator-campaigns/internal/model"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
    Health       *handler.HealthHandler
    Auth         *handler.AuthHandler
    Campaigns    *handler.CampaignHandler
    Invitations  *handler.InvitationHandler
    Assignments  *handler.AssignmentHandler
    Briefs       *handler.BriefHandler
    Deliverables *handler.DeliverableHandler
    Reviews      *handler.ReviewHandler
    Payments     *handler.PaymentHandler
    Reports      *handler.ReportHandler
}

// Register wires every route onto the Echo instance. rdb may be nil; the
// cache and rate-limit middleware are skipped when Redis is unavailable.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
    // Liveness probe for load balancers and monitoring.
    e.GET("/healthz", h.Health.Check)

    if rdb != nil {
        e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
    }

    // Unauthenticated session operations.
    authGroup := e.Group("/v1/auth")
    authGroup.POST("/register", h.Auth.Register)
    authGroup.POST("/login", h.Auth.Login)
    authGroup.POST("/refresh", h.Auth.Refresh)
    authGroup.POST("/forgot-password", h.Auth.ForgotPassword)
    authGroup.POST("/reset-password", h.Auth.ResetPassword)

    // The invitation preview is public: the token is the capability. An
    // optional JWT lets an already-assigned creator see the brief too.
    e.GET("/v1/campaigns/invite/:token", h.Invitations.Preview, middleware.OptionalJWT(cfg.JWTSecret))

    // Everything else requires a session.
    v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
    v1.POST("/auth/logout", h.Auth.Logout)
    v1.GET("/me", h.Auth.Me)

    // Campaign CRUD. Creation is brand-side only; creators reach campaigns
    // through assignment.
    v1.POST("/campaigns", h.Campaigns.Create, middleware.RequireUserType(model.UserTypeBrand, model.UserTypeAgency))
    v1.GET("/campaigns", h.Campaigns.List)
    v1.GET("/campaigns/:id", h.Campaigns.Get)
    v1.PATCH("/campaigns/:id", h.Campaigns.Update)
    v1.DELETE("/campaigns/:id", h.Campaigns.Delete)

    // Team management.
    v1.GET("/campaigns/:id/team", h.Campaigns.ListTeam)
    v1.POST("/campaigns/:id/team", h.Campaigns.AddTeamMember)
    v1.DELETE("/campaigns/:id/team/:user_id", h.Campaigns.RemoveTeamMember)

    // Invitations and the assignment ledger.
    v1.POST("/campaigns/:id/assign-creators", h.Invitations.InviteCreators)
    v1.POST("/campaigns/:id/invite-external", h.Invitations.Invite)
    v1.GET("/campaigns/:id/invitations", h.Invitations.List)
    // Acceptance is open to any authenticated account; the invitation's
    // email match is the real gate.
    v1.POST("/campaigns/invite/:token/accept", h.Invitations.Accept)
    v1.GET("/campaigns/:id/creators", h.Assignments.List)
    v1.POST("/campaigns/:id/acknowledge", h.Assignments.Acknowledge, middleware.RequireUserType(model.UserTypeCreator))
    v1.POST("/campaigns/:id/remove-creator", h.Assignments.Remove)

    // Brief.
    v1.PUT("/campaigns/:id/brief", h.Briefs.Put)
    v1.GET("/campaigns/:id/brief", h.Briefs.Get)

    // Deliverables and the draft/review pipeline.
    v1.POST("/campaigns/:id/deliverables", h.Deliverables.Create)
    v1.GET("/campaigns/:id/deliverables", h.Deliverables.ListByCampaign)
    v1.GET("/deliverables", h.Deliverables.ListMine, middleware.RequireUserType(model.UserTypeCreator))
    v1.GET("/deliverables/:id", h.Deliverables.Get)
    v1.GET("/deliverables/:id/drafts", h.Deliverables.ListDrafts)
    v1.POST("/deliverables/:id/submit-draft", h.Deliverables.SubmitDraft, middleware.RequireUserType(model.UserTypeCreator))
    v1.POST("/deliverables/:id/submit-post", h.Deliverables.SubmitPost, middleware.RequireUserType(model.UserTypeCreator))
    v1.PUT("/deliverables/:id/performance", h.Deliverables.UpdatePerformance, middleware.RequireUserType(model.UserTypeCreator))

    // Reviews.
    v1.POST("/reviews/create", h.Reviews.Create)
    v1.GET("/reviews/:id", h.Reviews.List)
    v1.POST("/reviews/:id/comment", h.Reviews.AddComment)
    v1.POST("/reviews/verify-post/:deliverable_id", h.Reviews.VerifyPost)

    // Payments.
    v1.POST("/campaigns/:id/payments", h.Payments.Create)
    v1.GET("/campaigns/:id/payments", h.Payments.List)
    v1.POST("/payments/:payment_id/trigger", h.Payments.Trigger)
    v1.POST("/payments/:payment_id/paid", h.Payments.MarkPaid)

    // Campaign report, cached in Redis when available.
    if rdb != nil {
        v1.GET("/campaigns/:id/report", h.Reports.Campaign, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))
    } else {
        v1.GET("/campaigns/:id/report", h.Reports.Campaign)
    }
}
