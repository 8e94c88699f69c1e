package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verba-edu/scholarship-api/internal/service"
	"github.com/verba-edu/scholarship-api/pkg/response"
)

// AllocationHandler exposes allocation run, results and export endpoints.
type AllocationHandler struct {
	allocations *service.AllocationService
	exports     *service.ExportService
}

// NewAllocationHandler constructs AllocationHandler.
func NewAllocationHandler(allocations *service.AllocationService, exports *service.ExportService) *AllocationHandler {
	return &AllocationHandler{allocations: allocations, exports: exports}
}

// Run godoc
// @Summary Run scholarship allocation
// @Description Rank every program cohort and assign scholarship tiers; the pass is idempotent
// @Tags Allocations
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /allocations/run [post]
func (h *AllocationHandler) Run(c *gin.Context) {
	summary, err := h.allocations.Run(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Results godoc
// @Summary Get allocation results
// @Tags Allocations
// @Produce json
// @Param scholarsOnly query bool false "Only students holding a scholarship"
// @Success 200 {object} response.Envelope
// @Router /allocations/results [get]
func (h *AllocationHandler) Results(c *gin.Context) {
	scholarsOnly := c.Query("scholarsOnly") == "true"
	results, err := h.allocations.Results(c.Request.Context(), scholarsOnly)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Export godoc
// @Summary Export allocation results
// @Tags Allocations
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "csv or pdf"
// @Param scholarsOnly query bool false "Only students holding a scholarship"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /allocations/results/export [get]
func (h *AllocationHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", service.FormatCSV)
	scholarsOnly := c.Query("scholarsOnly") == "true"

	file, err := h.exports.Render(c.Request.Context(), format, scholarsOnly)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Filename+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
