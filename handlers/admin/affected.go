package admin

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/hyeonwoo-dev/tunequiz-api/repository"
	"github.com/hyeonwoo-dev/tunequiz-api/services/batch"
	"github.com/hyeonwoo-dev/tunequiz-api/utils/response"
)

// AffectedSongHandler exposes the affected-song ledger and its restore
// operations to admins
type AffectedSongHandler struct {
	ledger *batch.Service
}

// NewAffectedSongHandler creates a new affected-song admin handler
func NewAffectedSongHandler(ledger *batch.Service) *AffectedSongHandler {
	return &AffectedSongHandler{ledger: ledger}
}

// restoreRequest names the admin performing a restore, for the audit trail.
type restoreRequest struct {
	Actor string `json:"actor"`
}

func parseActor(c *fiber.Ctx) string {
	var req restoreRequest
	if err := c.BodyParser(&req); err != nil || req.Actor == "" {
		return "admin"
	}
	return req.Actor
}

// Search handles GET /api/admin/affected-songs
func (h *AffectedSongHandler) Search(c *fiber.Ctx) error {
	filter := repository.AffectedSongFilter{
		JobID:   c.Query("job_id"),
		Keyword: c.Query("q"),
	}
	filter.Page, _ = strconv.Atoi(c.Query("page", "1"))
	filter.PerPage, _ = strconv.Atoi(c.Query("per_page", "20"))

	if raw := c.Query("restored"); raw != "" {
		restored, err := strconv.ParseBool(raw)
		if err != nil {
			return response.BadRequest(c, "Invalid restored filter")
		}
		filter.Restored = &restored
	}

	entries, total, err := h.ledger.SearchAffected(c.Context(), filter)
	if err != nil {
		return response.InternalServerError(c, "Failed to search affected songs")
	}

	return response.Paginated(c, entries, response.CalculatePagination(filter.Page, filter.PerPage, total))
}

// Restore handles POST /api/admin/affected-songs/:id/restore
func (h *AffectedSongHandler) Restore(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid affected song ID")
	}

	restored, err := h.ledger.RestoreSong(c.Context(), uint(id), parseActor(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to restore song: "+err.Error())
	}
	if !restored {
		return response.SuccessWithMessage(c, "Nothing to restore", fiber.Map{"restored": false})
	}
	return response.SuccessWithMessage(c, "Song restored", fiber.Map{"restored": true})
}

// RestoreByExecution handles POST /api/admin/executions/:id/restore-all
func (h *AffectedSongHandler) RestoreByExecution(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return response.BadRequest(c, "Invalid execution ID")
	}

	count, err := h.ledger.RestoreAllByExecution(c.Context(), uint(id), parseActor(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to restore songs: "+err.Error())
	}
	return response.SuccessWithMessage(c, "Songs restored", fiber.Map{"restored_count": count})
}

// RestoreByJob handles POST /api/admin/jobs/:id/restore-all
func (h *AffectedSongHandler) RestoreByJob(c *fiber.Ctx) error {
	count, err := h.ledger.RestoreAllByJob(c.Context(), c.Params("id"), parseActor(c))
	if err != nil {
		return response.InternalServerError(c, "Failed to restore songs: "+err.Error())
	}
	return response.SuccessWithMessage(c, "Songs restored", fiber.Map{"restored_count": count})
}
