package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/factory"
	"github.com/mikey/binsight/internal/logging"
	"github.com/mikey/binsight/internal/overrides"
	"github.com/mikey/binsight/internal/ports"
	"github.com/mikey/binsight/internal/profile"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewVisionFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewFrontendFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewNormalizerFactory); err != nil {
		return nil, err
	}

	// Register vision client
	if err := container.Provide(func(f *factory.VisionFactory) (core.VisionClient, error) {
		return f.CreateVisionClient()
	}); err != nil {
		return nil, err
	}

	// Register item store
	if err := container.Provide(func(f *factory.StoreFactory) (core.ItemStore, error) {
		return f.CreateItemStore()
	}); err != nil {
		return nil, err
	}

	// Register image normalizer
	if err := container.Provide(func(f *factory.NormalizerFactory) core.ImageNormalizer {
		return f.CreateNormalizer()
	}); err != nil {
		return nil, err
	}

	// Register override checker
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (core.OverrideChecker, error) {
		entries := cfg.GetStringSlice("classifier.overrides")
		if len(entries) == 0 {
			return nil, nil
		}
		logger.Info("Loaded classifier overrides", zap.Strings("overrides", entries))
		checker, err := overrides.NewChecker(entries, logger)
		if err != nil {
			return nil, err
		}
		return checker, nil
	}); err != nil {
		return nil, err
	}

	// Register profile store
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (*profile.Store, error) {
		return profile.NewStore(cfg.GetString("profile.path"), logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier service
	if err := container.Provide(core.NewClassifierService); err != nil {
		return nil, err
	}

	// Register scan frontend
	if err := container.Provide(func(f *factory.FrontendFactory) (ports.ScanFrontend, error) {
		return f.CreateScanFrontend()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
