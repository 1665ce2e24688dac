package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidinfra/taxengine/internal/api/dto"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/logger"
	"github.com/vidinfra/taxengine/internal/service"
)

type TaxHandler struct {
	service service.DocumentTaxService
	logger  *logger.Logger
}

func NewTaxHandler(service service.DocumentTaxService, logger *logger.Logger) *TaxHandler {
	return &TaxHandler{
		service: service,
		logger:  logger,
	}
}

// ComputeDocument computes per-line and aggregated taxes for one document.
func (h *TaxHandler) ComputeDocument(c *gin.Context) {
	var req dto.ComputeDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ComputeDocumentTaxes(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ComputeBatch computes many independent documents in parallel.
func (h *TaxHandler) ComputeBatch(c *gin.Context) {
	var req dto.BatchComputeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.ComputeDocumentsBatch(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
