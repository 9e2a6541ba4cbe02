// internal/handlers/scrape/scrape_handler.go
package scrape

import (
	"net/http"
	"strconv"

	"leadscout-service/internal/domain/candidate"
	domain "leadscout-service/internal/domain/scrape"
	"leadscout-service/internal/middleware"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/scrape"

	"github.com/gin-gonic/gin"
)

type ScrapeHandler struct {
	scrapeService *service.Service
}

func NewScrapeHandler(scrapeService *service.Service) *ScrapeHandler {
	return &ScrapeHandler{scrapeService: scrapeService}
}

// Launch starts a scraping job. Requires a valid subscription (enforced by
// the route chain) and an unexhausted quota.
func (h *ScrapeHandler) Launch(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req domain.CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid job payload", err)
		return
	}

	job, err := h.scrapeService.Launch(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotEntitled):
			response.PaymentRequired(c, "active subscription required")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "monthly scrape quota reached")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to launch job", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "scraping job launched", job)
}

// Get retrieves one job.
func (h *ScrapeHandler) Get(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid job ID", err)
		return
	}

	job, err := h.scrapeService.Get(c.Request.Context(), userID, middleware.IsAdmin(c), id)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "job not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your job")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to load job", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "job retrieved", job)
}

// ListMine returns the caller's jobs.
func (h *ScrapeHandler) ListMine(c *gin.Context) {
	userID := middleware.MustGetUserID(c)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	jobs, err := h.scrapeService.ListForUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list jobs", err)
		return
	}

	response.Success(c, http.StatusOK, "jobs retrieved", jobs)
}

// ReportStatus is the engine callback updating job progress.
func (h *ScrapeHandler) ReportStatus(c *gin.Context) {
	reference := c.Param("reference")

	var req domain.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid status payload", err)
		return
	}

	job, err := h.scrapeService.ReportStatus(c.Request.Context(), reference, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "job not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update job", err)
		return
	}

	response.Success(c, http.StatusOK, "job updated", job)
}

// IngestCandidates is the engine callback delivering scraped profiles.
func (h *ScrapeHandler) IngestCandidates(c *gin.Context) {
	reference := c.Param("reference")

	var batch []*candidate.Candidate
	if err := c.ShouldBindJSON(&batch); err != nil {
		response.ValidationError(c, "invalid candidates payload", err)
		return
	}

	job, err := h.scrapeService.IngestCandidates(c.Request.Context(), reference, batch)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "job not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to store candidates", err)
		return
	}

	response.Success(c, http.StatusOK, "candidates stored", gin.H{
		"jobId": job.ID,
		"count": len(batch),
	})
}
