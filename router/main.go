package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/hyeonwoo-dev/tunequiz-api/database"
	"github.com/hyeonwoo-dev/tunequiz-api/handlers"
	admin_handlers "github.com/hyeonwoo-dev/tunequiz-api/handlers/admin"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/hyeonwoo-dev/tunequiz-api/services/scheduler"
)

// Deps carries the wired services the routes depend on
type Deps struct {
	Store      database.Storage
	JobConfigs repository.JobConfigStore
	Ledger     *batch.Service
	Scheduler  *scheduler.Scheduler
}

func SetupRoutes(app *fiber.App, deps Deps) {
	api := app.Group("/api")

	// Health check
	api.Get("/health", func(c *fiber.Ctx) error {
		return handlers.HandleCheckHealth(c, deps.Store)
	})

	// Admin: job catalog and run operations
	jobHandler := admin_handlers.NewJobHandler(deps.JobConfigs, deps.Ledger, deps.Scheduler)
	affectedHandler := admin_handlers.NewAffectedSongHandler(deps.Ledger)

	admin := api.Group("/admin")
	admin.Get("/jobs", jobHandler.ListJobs)
	admin.Post("/jobs/refresh", jobHandler.RefreshAll)
	admin.Get("/jobs/:id", jobHandler.GetJob)
	admin.Patch("/jobs/:id", jobHandler.UpdateJob)
	admin.Post("/jobs/:id/trigger", jobHandler.TriggerJob)
	admin.Post("/jobs/:id/refresh", jobHandler.RefreshOne)
	admin.Get("/jobs/:id/history", jobHandler.JobHistory)
	admin.Post("/jobs/:id/restore-all", affectedHandler.RestoreByJob)

	admin.Get("/affected-songs", affectedHandler.Search)
	admin.Post("/affected-songs/:id/restore", affectedHandler.Restore)
	admin.Post("/executions/:id/restore-all", affectedHandler.RestoreByExecution)
}
