package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/in"
	"github.com/jpmarichal/ccmwf-go/pkg/ratelimit"
)

// OrchestratorHandler exposes the trigger endpoints for the ingest
// cycle, a generation sync, and a debug message search.
type OrchestratorHandler struct {
	svc       in.OrchestratorService
	debouncer *ratelimit.Debouncer
}

func NewOrchestratorHandler(svc in.OrchestratorService, debouncer *ratelimit.Debouncer) *OrchestratorHandler {
	return &OrchestratorHandler{svc: svc, debouncer: debouncer}
}

func (h *OrchestratorHandler) Register(app fiber.Router) {
	app.Post("/process-emails", h.ProcessEmails)
	app.Post("/extraccion_generacion", h.SyncGeneration)
	app.Get("/emails/search", h.SearchMessages)
}

// detail writes the documented failure envelope: a bare {"detail": ...}
// message alongside the given status.
func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"detail": message})
}

// ProcessEmails triggers a full ingest cycle. Duplicate triggers
// within the debounce window are rejected rather than double-run, since
// a cycle can take long enough for an impatient caller to retry.
func (h *OrchestratorHandler) ProcessEmails(c *fiber.Ctx) error {
	ctx := c.Context()

	if h.debouncer != nil && h.debouncer.IsDuplicate(ctx, "process-emails") {
		return detail(c, fiber.StatusTooManyRequests, "a process-emails cycle is already running")
	}
	if h.debouncer != nil {
		h.debouncer.Mark(ctx, "process-emails")
	}

	report, err := h.svc.ProcessIncoming(ctx)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "result": report})
}

type syncGenerationRequest struct {
	GenerationDate string `json:"fecha_generacion"`
	FolderID       string `json:"drive_folder_id"`
	Force          bool   `json:"force"`
}

func (h *OrchestratorHandler) SyncGeneration(c *fiber.Ctx) error {
	var req syncGenerationRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "invalid request body")
	}

	gen := domain.GenerationDate(req.GenerationDate)
	if !gen.IsValid() {
		return detail(c, fiber.StatusBadRequest, "fecha_generacion must be YYYYMMDD")
	}
	if req.FolderID == "" {
		return detail(c, fiber.StatusBadRequest, "drive_folder_id is required")
	}

	report, err := h.svc.SyncGeneration(c.Context(), gen, req.FolderID, req.Force)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "report": report})
}

func (h *OrchestratorHandler) SearchMessages(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return detail(c, fiber.StatusBadRequest, "query is required")
	}

	messages, err := h.svc.SearchMessages(c.Context(), query)
	if err != nil {
		return detail(c, fiber.StatusInternalServerError, err.Error())
	}
	return c.JSON(fiber.Map{"success": true, "emails": messages})
}
