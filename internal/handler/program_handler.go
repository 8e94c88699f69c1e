package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verba-edu/scholarship-api/internal/catalog"
	"github.com/verba-edu/scholarship-api/pkg/response"
)

// ProgramHandler exposes the static program catalog.
type ProgramHandler struct {
	catalog *catalog.ProgramCatalog
}

// NewProgramHandler constructs ProgramHandler.
func NewProgramHandler(programs *catalog.ProgramCatalog) *ProgramHandler {
	return &ProgramHandler{catalog: programs}
}

// List godoc
// @Summary List programs
// @Description Seat quotas and subject groups of the admission plan
// @Tags Programs
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *ProgramHandler) List(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.catalog.List(), nil)
}
