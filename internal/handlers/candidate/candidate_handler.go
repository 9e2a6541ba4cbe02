// internal/handlers/candidate/candidate_handler.go
package candidate

import (
	"net/http"
	"strconv"

	domain "leadscout-service/internal/domain/candidate"
	xerrors "leadscout-service/internal/pkg/errors"
	"leadscout-service/internal/pkg/response"
	service "leadscout-service/internal/service/scrape"

	"github.com/gin-gonic/gin"
)

type CandidateHandler struct {
	scrapeService *service.Service
}

func NewCandidateHandler(scrapeService *service.Service) *CandidateHandler {
	return &CandidateHandler{scrapeService: scrapeService}
}

// List returns candidate profiles, filterable by job and keyword.
func (h *CandidateHandler) List(c *gin.Context) {
	scrapeID, _ := strconv.ParseInt(c.Query("scrapeId"), 10, 64)
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	filter := domain.Filter{
		ScrapeID: scrapeID,
		Keyword:  c.Query("q"),
		Limit:    limit,
		Offset:   offset,
	}

	candidates, err := h.scrapeService.ListCandidates(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list candidates", err)
		return
	}

	response.Success(c, http.StatusOK, "candidates retrieved", candidates)
}

// Get retrieves one candidate profile.
func (h *CandidateHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid candidate ID", err)
		return
	}

	cand, err := h.scrapeService.GetCandidate(c.Request.Context(), id)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "candidate not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load candidate", err)
		return
	}

	response.Success(c, http.StatusOK, "candidate retrieved", cand)
}
