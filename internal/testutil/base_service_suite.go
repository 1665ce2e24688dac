package testutil

import (
	"context"

	"github.com/stretchr/testify/suite"

	"github.com/vidinfra/taxengine/internal/config"
	"github.com/vidinfra/taxengine/internal/domain/taxrate"
	"github.com/vidinfra/taxengine/internal/logger"
	"github.com/vidinfra/taxengine/internal/repository/memory"
	"github.com/vidinfra/taxengine/internal/types"
	"github.com/vidinfra/taxengine/internal/validator"
)

// BaseServiceTestSuite provides common functionality for service test suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	cfg    *config.Configuration
	logger *logger.Logger
	repo   taxrate.Repository
}

// SetupTest initializes fresh dependencies before each test
func (s *BaseServiceTestSuite) SetupTest() {
	validator.NewValidator()

	s.ctx = types.SetRequestID(context.Background(), types.GenerateUUID())
	s.cfg = config.GetDefaultConfig()
	s.logger = logger.NewNopLogger()
	s.repo = memory.NewTaxDefinitionStore()
}

func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.cfg
}

func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

func (s *BaseServiceTestSuite) GetTaxDefinitionRepo() taxrate.Repository {
	return s.repo
}
