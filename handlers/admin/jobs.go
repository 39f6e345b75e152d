package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/hyeonwoo-dev/tunequiz-api/services/scheduler"
	"github.com/hyeonwoo-dev/tunequiz-api/utils/response"
	"github.com/hyeonwoo-dev/tunequiz-api/utils/validation"
)

// JobHandler exposes the job catalog and its run operations to admins
type JobHandler struct {
	configs   repository.JobConfigStore
	ledger    *batch.Service
	scheduler *scheduler.Scheduler
	validator *validation.Validator
}

// NewJobHandler creates a new job admin handler
func NewJobHandler(configs repository.JobConfigStore, ledger *batch.Service, sched *scheduler.Scheduler) *JobHandler {
	return &JobHandler{
		configs:   configs,
		ledger:    ledger,
		scheduler: sched,
		validator: validation.NewValidator(),
	}
}

// ListJobs handles GET /api/admin/jobs
func (h *JobHandler) ListJobs(c *fiber.Ctx) error {
	configs, err := h.configs.FindAll(c.Context())
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch jobs")
	}
	return response.Success(c, configs)
}

// GetJob handles GET /api/admin/jobs/:id
func (h *JobHandler) GetJob(c *fiber.Ctx) error {
	config, err := h.configs.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch job")
	}
	if config == nil {
		return response.NotFound(c, "Job not found")
	}
	return response.Success(c, config)
}

// UpdateJobRequest is the PATCH body for a job config. Nil fields are left
// untouched.
type UpdateJobRequest struct {
	CronExpression *string `json:"cron_expression" validate:"omitempty,min=9,max=100"`
	ScheduleText   *string `json:"schedule_text" validate:"omitempty,max=50"`
	Enabled        *bool   `json:"enabled"`
}

// UpdateJob handles PATCH /api/admin/jobs/:id. A schedule change takes
// effect immediately through a targeted refresh.
func (h *JobHandler) UpdateJob(c *fiber.Ctx) error {
	var req UpdateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, err)
	}

	config, err := h.configs.FindByID(c.Context(), c.Params("id"))
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch job")
	}
	if config == nil {
		return response.NotFound(c, "Job not found")
	}

	if req.CronExpression != nil {
		config.CronExpression = *req.CronExpression
	}
	if req.ScheduleText != nil {
		config.ScheduleText = *req.ScheduleText
	}
	if req.Enabled != nil {
		config.Enabled = *req.Enabled
	}

	if err := h.configs.Save(c.Context(), config); err != nil {
		return response.InternalServerError(c, "Failed to update job")
	}

	if err := h.scheduler.RefreshOne(c.Context(), config.JobID); err != nil {
		if errors.Is(err, scheduler.ErrInvalidSchedule) {
			// The row is saved but the old schedule keeps running.
			return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
				"Cron expression does not parse; previous schedule still active",
				"INVALID_SCHEDULE", err.Error())
		}
		if !errors.Is(err, batch.ErrNotImplemented) {
			return response.InternalServerError(c, "Failed to refresh schedule")
		}
	}

	return response.SuccessWithMessage(c, "Job updated", config)
}

// TriggerJob handles POST /api/admin/jobs/:id/trigger. The run is
// synchronous; the response carries the finished execution record.
func (h *JobHandler) TriggerJob(c *fiber.Ctx) error {
	exec, err := h.scheduler.TriggerManually(c.Context(), c.Params("id"))
	switch {
	case errors.Is(err, batch.ErrUnknownJob):
		return response.NotFound(c, "Job not found")
	case errors.Is(err, batch.ErrNotImplemented):
		return response.Conflict(c, "Job is not implemented yet")
	case err != nil:
		// The failure is recorded in the ledger; return the record.
		if exec != nil {
			return response.SuccessWithMessage(c, "Job failed", exec)
		}
		return response.InternalServerError(c, "Failed to run job")
	}
	return response.SuccessWithMessage(c, "Job executed", exec)
}

// RefreshAll handles POST /api/admin/jobs/refresh
func (h *JobHandler) RefreshAll(c *fiber.Ctx) error {
	if err := h.scheduler.RefreshAll(c.Context()); err != nil {
		return response.InternalServerError(c, "Failed to refresh schedules")
	}
	return response.SuccessWithMessage(c, "Schedules refreshed", fiber.Map{
		"scheduled": h.scheduler.ScheduledJobs(),
	})
}

// RefreshOne handles POST /api/admin/jobs/:id/refresh
func (h *JobHandler) RefreshOne(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if err := h.scheduler.RefreshOne(c.Context(), jobID); err != nil {
		if errors.Is(err, scheduler.ErrInvalidSchedule) {
			return response.ErrorWithDetails(c, fiber.StatusUnprocessableEntity,
				"Cron expression does not parse", "INVALID_SCHEDULE", err.Error())
		}
		if errors.Is(err, batch.ErrNotImplemented) {
			return response.Conflict(c, "Job is not implemented yet")
		}
		return response.InternalServerError(c, "Failed to refresh schedule")
	}
	return response.SuccessWithMessage(c, "Schedule refreshed", fiber.Map{"job_id": jobID})
}

// JobHistory handles GET /api/admin/jobs/:id/history?limit=
func (h *JobHandler) JobHistory(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	executions, err := h.ledger.RecentExecutions(c.Context(), c.Params("id"), limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to fetch execution history")
	}
	return response.Success(c, executions)
}
