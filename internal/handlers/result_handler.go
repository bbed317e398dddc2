package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"cvscreener/internal/models"
	"cvscreener/internal/repositories"
	"cvscreener/internal/services"
)

type ResultHandler struct {
	runRepo repositories.RunRepository
}

func NewResultHandler(runRepo repositories.RunRepository) *ResultHandler {
	return &ResultHandler{
		runRepo: runRepo,
	}
}

// HandleGetResult handles GET /result/:id. Completed runs carry both
// the order-preserving result slice and a score-ranked view; a
// "recommendation" query parameter filters the ranked view by tier.
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	run, ok := h.findRun(c)
	if !ok {
		return nil
	}

	response := models.ResultResponse{
		ID:       run.ID.String(),
		Status:   string(run.Status),
		JobTitle: run.JobTitle,
	}

	if run.Status == models.StatusCompleted {
		response.Results = run.Results
		ranked := services.RankResults(run.Results)
		if tier := c.Query("recommendation"); tier != "" {
			ranked = services.FilterByRecommendation(ranked, models.Recommendation(tier))
		}
		response.Ranked = ranked
	}

	if run.Status == models.StatusFailed {
		response.ErrorMessage = run.ErrorMessage
	}

	return c.JSON(response)
}

// HandleGetReport handles GET /result/:id/report, returning a Markdown
// summary of a completed run.
func (h *ResultHandler) HandleGetReport(c *fiber.Ctx) error {
	run, ok := h.findRun(c)
	if !ok {
		return nil
	}

	if run.Status != models.StatusCompleted {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error":  "run is not completed",
			"status": string(run.Status),
		})
	}

	c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return c.SendString(services.BuildSummaryReport(run.Results))
}

func (h *ResultHandler) findRun(c *fiber.Ctx) (*models.AnalysisRun, bool) {
	runID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		_ = c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid run ID format",
		})
		return nil, false
	}

	run, err := h.runRepo.FindByID(runID)
	if err != nil {
		_ = c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "run not found",
		})
		return nil, false
	}

	return run, true
}
