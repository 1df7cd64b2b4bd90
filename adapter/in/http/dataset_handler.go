package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jpmarichal/ccmwf-go/config"
	"github.com/jpmarichal/ccmwf-go/core/domain"
	"github.com/jpmarichal/ccmwf-go/core/port/out"
	cacheservice "github.com/jpmarichal/ccmwf-go/core/service/cache"
	"github.com/jpmarichal/ccmwf-go/core/service/dataset"
	"github.com/jpmarichal/ccmwf-go/pkg/response"
)

// DatasetHandler exposes the dataset pipelines: a refresh trigger that
// rebuilds all of them concurrently for one generation, and a
// cache-backed read per dataset_id.
type DatasetHandler struct {
	cfg     *config.Config
	records out.MissionaryRecordRepository
	cache   *cacheservice.Service
	runner  *dataset.Runner
}

func NewDatasetHandler(cfg *config.Config, records out.MissionaryRecordRepository, cache *cacheservice.Service, runner *dataset.Runner) *DatasetHandler {
	return &DatasetHandler{cfg: cfg, records: records, cache: cache, runner: runner}
}

func (h *DatasetHandler) Register(app fiber.Router) {
	app.Post("/datasets/refresh", h.Refresh)
	app.Get("/datasets/:id", h.Get)
}

type refreshRequest struct {
	GenerationDate string `json:"generation_date"`
}

func (h *DatasetHandler) Refresh(c *fiber.Ctx) error {
	if h.records == nil || h.runner == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "DATASETS_UNAVAILABLE", "dataset storage is not configured")
	}

	var req refreshRequest
	if err := c.BodyParser(&req); err != nil {
		return response.Error(c, fiber.StatusBadRequest, "INVALID_BODY", err.Error())
	}
	gen := domain.GenerationDate(req.GenerationDate)
	if !gen.IsValid() {
		return response.Error(c, fiber.StatusBadRequest, "INVALID_GENERATION_DATE", "generation_date is required")
	}

	now := time.Now().UTC()
	pipelines := h.pipelines(gen, now)
	if err := h.runner.RunAll(c.Context(), h.cfg.BranchID, gen, pipelines); err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "DATASET_REFRESH_FAILED", err.Error())
	}
	return response.OK(c, fiber.Map{"status": "refreshed", "generation_date": string(gen)})
}

func (h *DatasetHandler) Get(c *fiber.Ctx) error {
	if h.records == nil {
		return response.Error(c, fiber.StatusServiceUnavailable, "DATASETS_UNAVAILABLE", "dataset storage is not configured")
	}

	id := c.Params("id")
	gen := domain.GenerationDate(c.Query("generation_date"))
	if !gen.IsValid() {
		return response.Error(c, fiber.StatusBadRequest, "INVALID_GENERATION_DATE", "generation_date is required")
	}

	now := time.Now().UTC()
	var pipeline dataset.Pipeline
	for _, p := range h.pipelines(gen, now) {
		if p.DatasetID() == id {
			pipeline = p
			break
		}
	}
	if pipeline == nil {
		return response.Error(c, fiber.StatusNotFound, "DATASET_NOT_FOUND", "unknown dataset_id: "+id)
	}

	key := domain.CacheKey(id, h.cfg.BranchID, gen)
	payload, err := h.cache.GetOrLoad(c.Context(), key, func(ctx context.Context) ([]byte, error) {
		result, _, runErr := dataset.Run(ctx, pipeline, h.cfg.BranchID, gen)
		if runErr != nil {
			return nil, runErr
		}
		return dataset.Serialize(result)
	})
	if err != nil {
		return response.Error(c, fiber.StatusInternalServerError, "DATASET_LOAD_FAILED", err.Error())
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

func (h *DatasetHandler) pipelines(gen domain.GenerationDate, now time.Time) []dataset.Pipeline {
	return []dataset.Pipeline{
		&dataset.BranchSummaryPipeline{Repo: h.records, AllowedBranches: h.cfg.ActiveBranches(), Generation: gen},
		&dataset.UpcomingArrivalsPipeline{Repo: h.records, BranchID: h.cfg.BranchID, Days: h.cfg.UpcomingArrivalDays, Now: now},
		&dataset.UpcomingBirthdaysPipeline{Repo: h.records, BranchID: h.cfg.BranchID, Days: h.cfg.UpcomingBirthdayDays, Now: now},
	}
}
