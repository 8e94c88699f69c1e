package handler

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/verba-edu/scholarship-api/internal/service"
	"github.com/verba-edu/scholarship-api/pkg/config"
	appErrors "github.com/verba-edu/scholarship-api/pkg/errors"
	"github.com/verba-edu/scholarship-api/pkg/response"
)

// ImportHandler exposes the CSV bulk import endpoints.
type ImportHandler struct {
	imports *service.ImportService
	cfg     config.ImportConfig
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports *service.ImportService, cfg config.ImportConfig) *ImportHandler {
	return &ImportHandler{imports: imports, cfg: cfg}
}

// Import godoc
// @Summary Import students from CSV
// @Description Upload a CSV export; parseable rows are committed in one transaction, rejected rows are reported
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	report, err := h.imports.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Preview godoc
// @Summary Preview a CSV import
// @Description Show the resolved column mapping and scored sample rows without persisting anything
// @Tags Import
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CSV file"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /students/import/preview [post]
func (h *ImportHandler) Preview(c *gin.Context) {
	file, ok := h.openUpload(c)
	if !ok {
		return
	}
	defer file.Close()

	preview, err := h.imports.Preview(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, preview, nil)
}

func (h *ImportHandler) openUpload(c *gin.Context) (multipart.File, bool) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field 'file' is required"))
		return nil, false
	}
	if header.Size > h.cfg.MaxFileSizeBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file exceeds the upload size limit"))
		return nil, false
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open upload"))
		return nil, false
	}
	return f, true
}
