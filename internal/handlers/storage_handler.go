package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"planner-service/internal/services"
)

// StorageHandler exposes the state of the two storage tiers.
type StorageHandler struct {
	projects *services.ProjectService
	logger   *slog.Logger
}

func NewStorageHandler(projects *services.ProjectService, logger *slog.Logger) *StorageHandler {
	return &StorageHandler{projects: projects, logger: logger}
}

// GetStatus handles GET /storage/status
// @Summary Storage status
// @Description Reachability of the durable store and statistics of the local cache
// @Tags storage
// @Produce json
// @Success 200 {object} services.StorageStatus "Storage status"
// @Router /storage/status [get]
func (h *StorageHandler) GetStatus(c *fiber.Ctx) error {
	return c.JSON(h.projects.Status(c.UserContext()))
}

// SyncLocal handles POST /admin/sync
// @Summary Sync local cache to the durable store
// @Description Insert projects written while the durable store was down, and index them
// @Tags storage
// @Produce json
// @Success 200 {object} map[string]interface{} "Sync report"
// @Failure 503 {object} map[string]interface{} "Durable store unavailable"
// @Router /admin/sync [post]
func (h *StorageHandler) SyncLocal(c *fiber.Ctx) error {
	report, err := h.projects.SyncLocalToDurable(c.UserContext())
	if err != nil {
		h.logger.Warn("sync failed", "error", err)
		return errorResponse(c, statusFor(err), "Sync failed", err)
	}
	return c.JSON(fiber.Map{
		"success": report.Success(),
		"report":  report,
		"summary": report.GetSummary(),
	})
}

// Health handles GET /health
// @Summary Health check
// @Tags storage
// @Success 200 {object} map[string]interface{} "Service is up"
// @Router /health [get]
func (h *StorageHandler) Health(c *fiber.Ctx) error {
	st := h.projects.Status(c.UserContext())
	return c.JSON(fiber.Map{
		"status":            "ok",
		"durable_available": st.DurableAvailable,
	})
}
