package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vidinfra/taxengine/internal/api/dto"
	ierr "github.com/vidinfra/taxengine/internal/errors"
	"github.com/vidinfra/taxengine/internal/logger"
	"github.com/vidinfra/taxengine/internal/service"
)

type TaxDefinitionHandler struct {
	service service.TaxDefinitionService
	logger  *logger.Logger
}

func NewTaxDefinitionHandler(service service.TaxDefinitionService, logger *logger.Logger) *TaxDefinitionHandler {
	return &TaxDefinitionHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TaxDefinitionHandler) Create(c *gin.Context) {
	var req dto.CreateTaxDefinitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(ierr.WithError(err).
			WithHint("Invalid request format").
			Mark(ierr.ErrValidation))
		return
	}

	resp, err := h.service.CreateTaxDefinition(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

func (h *TaxDefinitionHandler) GetByCode(c *gin.Context) {
	resp, err := h.service.GetTaxDefinitionByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaxDefinitionHandler) List(c *gin.Context) {
	resp, err := h.service.ListTaxDefinitions(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *TaxDefinitionHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteTaxDefinition(c.Request.Context(), c.Param("id")); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
