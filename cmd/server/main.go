package main // Entry point package

import (
    "log"

    "github.com/joho/godotenv"
    "github.com/labstack/echo/v4"
    echomw "github.com/labstack/echo/v4/middleware"

    "github.com/brandloop/creator-campaigns/internal/config"
    "github.com/brandloop/creator-campaigns/internal/database"
    "github.com/brandloop/creator-campaigns/internal/handler"
    "github.com/brandloop/creator-campaigns/internal/queue"
    "github.com/brandloop/creator-campaigns/internal/repository"
    "github.com/brandloop/creator-campaigns/internal/router"
)

func main() {
    // .env is optional; real deployments set the environment directly.
    _ = godotenv.Load()
    cfg := config.Load()

    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer func() { _ = db.Close() }()

    // Redis powers the response cache and the rate limiter. Both degrade to
    // pass-through when it is down.
    rdb := config.NewRedisClient()

    users := repository.NewUserRepo(db)
    tokens := repository.NewTokenRepo(db)
    campaigns := repository.NewCampaignRepo(db)
    assignments := repository.NewAssignmentRepo(db)
    invitations := repository.NewInvitationRepo(db)
    briefs := repository.NewBriefRepo(db)
    deliverables := repository.NewDeliverableRepo(db)
    reviews := repository.NewReviewRepo(db)
    payments := repository.NewPaymentRepo(db)
    reports := repository.NewReportRepo(db)

    h := router.Handlers{
        Health:       handler.NewHealthHandler(db),
        Auth:         handler.NewAuthHandler(cfg, users, tokens),
        Campaigns:    handler.NewCampaignHandler(campaigns, assignments, users),
        Invitations:  handler.NewInvitationHandler(db, campaigns, invitations, assignments, briefs, users),
        Assignments:  handler.NewAssignmentHandler(campaigns, assignments, users),
        Briefs:       handler.NewBriefHandler(campaigns, assignments, briefs),
        Deliverables: handler.NewDeliverableHandler(db, campaigns, assignments, deliverables),
        Reviews:      handler.NewReviewHandler(db, campaigns, deliverables, reviews, users),
        Payments:     handler.NewPaymentHandler(db, campaigns, assignments, deliverables, payments, users),
        Reports:      handler.NewReportHandler(campaigns, reports),
    }

    e := echo.New()
    e.HideBanner = true
    e.Use(echomw.Recover())
    e.Use(echomw.Logger())
    router.Register(e, h, cfg, rdb)

    // The notification consumer reconnects on its own; a missing broker only
    // costs outbound email, never API availability.
    go func() {
        if err := queue.StartNotificationConsumer(); err != nil {
            log.Printf("notification consumer stopped: %v", err)
        }
    }()

    addr := ":" + cfg.Port
    log.Printf("listening on %s (env=%s)", addr, cfg.Env)
    if err := e.Start(addr); err != nil {
        log.Fatal(err)
    }
}
