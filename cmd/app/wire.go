//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/kai-insight/internal/bootstrap"
	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/auth"
	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/domain/preferences"
	"github.com/yanqian/kai-insight/internal/infra/config"
	httpiface "github.com/yanqian/kai-insight/internal/interface/http"
	"github.com/yanqian/kai-insight/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAnalysisConfig,
		provideGenerator,
		provideTextGenerator,
		provideImageGenerator,
		provideHistoryConfig,
		provideAuthConfig,
		providePostgresPool,
		provideUserRepository,
		provideKeyValue,
		analysis.NewService,
		history.NewService,
		preferences.NewService,
		auth.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
