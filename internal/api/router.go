package api

import (
	"github.com/gin-gonic/gin"

	v1 "github.com/vidinfra/taxengine/internal/api/v1"
	"github.com/vidinfra/taxengine/internal/rest/middleware"
)

type Handlers struct {
	Tax           *v1.TaxHandler
	TaxDefinition *v1.TaxDefinitionHandler
}

func NewRouter(handlers Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.ErrorHandler())

	v1Group := router.Group("/v1")
	registerV1Routes(v1Group, handlers)

	return router
}

func registerV1Routes(router *gin.RouterGroup, handlers Handlers) {
	tax := router.Group("/tax")
	{
		tax.POST("/compute", handlers.Tax.ComputeDocument)
		tax.POST("/compute/batch", handlers.Tax.ComputeBatch)
	}

	definitions := router.Group("/taxdefinitions")
	{
		definitions.POST("", handlers.TaxDefinition.Create)
		definitions.GET("", handlers.TaxDefinition.List)
		definitions.GET("/:code", handlers.TaxDefinition.GetByCode)
		definitions.DELETE("/:id", handlers.TaxDefinition.Delete)
	}
}
