package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/vidinfra/taxengine/internal/api"
	v1 "github.com/vidinfra/taxengine/internal/api/v1"
	"github.com/vidinfra/taxengine/internal/config"
	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/httpclient"
	"github.com/vidinfra/taxengine/internal/integration/taxprovider"
	"github.com/vidinfra/taxengine/internal/logger"
	"github.com/vidinfra/taxengine/internal/repository/memory"
	"github.com/vidinfra/taxengine/internal/service"
	"github.com/vidinfra/taxengine/internal/validator"
)

func init() {
	// Set UTC timezone for the entire application
	time.Local = time.UTC
}

func main() {
	app := fx.New(
		fx.Provide(
			validator.NewValidator,
			config.NewConfig,
			newLogger,
			newTaxDefinitionRepo,
			service.NewRegistryManager,
			newProviderClient,
			newServiceParams,
			service.NewDocumentTaxService,
			service.NewTaxDefinitionService,
			v1.NewTaxHandler,
			v1.NewTaxDefinitionHandler,
			newRouter,
		),
		fx.Invoke(startServer),
	)

	app.Run()
}

func newLogger(cfg *config.Configuration) (*logger.Logger, error) {
	return logger.NewLogger(cfg.Logging.Level)
}

func newTaxDefinitionRepo() taxrate.Repository {
	return memory.NewTaxDefinitionStore()
}

func newProviderClient(cfg *config.Configuration) taxprovider.Client {
	httpClient := httpclient.NewRetryableClient(cfg.Provider.Timeout, cfg.Provider.MaxRetries)
	return taxprovider.NewClient(cfg.Provider, httpClient)
}

func newServiceParams(
	log *logger.Logger,
	cfg *config.Configuration,
	repo taxrate.Repository,
	registry *service.RegistryManager,
	provider taxprovider.Client,
) service.ServiceParams {
	return service.ServiceParams{
		Logger:            log,
		Config:            cfg,
		TaxDefinitionRepo: repo,
		Registry:          registry,
		ProviderClient:    provider,
	}
}

func newRouter(
	taxHandler *v1.TaxHandler,
	definitionHandler *v1.TaxDefinitionHandler,
) *gin.Engine {
	return api.NewRouter(api.Handlers{
		Tax:           taxHandler,
		TaxDefinition: definitionHandler,
	})
}

func startServer(
	lc fx.Lifecycle,
	cfg *config.Configuration,
	router *gin.Engine,
	log *logger.Logger,
) {
	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Infow("starting server", "address", cfg.Server.Address)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatalw("server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Infow("shutting down server")
			return server.Shutdown(ctx)
		},
	})
}
