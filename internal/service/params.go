package service

import (
	"github.com/vidinfra/taxengine/internal/config"
	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/integration/taxprovider"
	"github.com/vidinfra/taxengine/internal/logger"
)

// ServiceParams holds the dependencies every service needs.
type ServiceParams struct {
	Logger            *logger.Logger
	Config            *config.Configuration
	TaxDefinitionRepo taxrate.Repository
	Registry          *RegistryManager
	ProviderClient    taxprovider.Client
}
