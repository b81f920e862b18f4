package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/scanner"
	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/ports"
	"github.com/mikey/binsight/internal/profile"
)

// FrontendFactory creates scan frontends based on configuration
type FrontendFactory struct {
	cfg      *config.Config
	logger   *zap.Logger
	service  *core.ClassifierService
	store    core.ItemStore
	profiles *profile.Store
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(
	cfg *config.Config,
	logger *zap.Logger,
	service *core.ClassifierService,
	store core.ItemStore,
	profiles *profile.Store,
) *FrontendFactory {
	return &FrontendFactory{
		cfg:      cfg,
		logger:   logger,
		service:  service,
		store:    store,
		profiles: profiles,
	}
}

// CreateScanFrontend creates a scan frontend based on the configuration
func (f *FrontendFactory) CreateScanFrontend() (ports.ScanFrontend, error) {
	serverConfig := f.cfg.GetServer()

	switch serverConfig.FrontendType {
	case "http":
		return scanner.NewHTTPScanner(
			f.service,
			f.store,
			f.profiles,
			f.logger,
			serverConfig.ListenAddress,
			serverConfig.MaxBodySize,
		)
	case "cli":
		return scanner.NewCliScanner(
			f.service,
			f.store,
			f.logger,
			f.cfg.GetBool("logging.verbose"),
		)
	default:
		return nil, fmt.Errorf("unsupported frontend type: %s", serverConfig.FrontendType)
	}
}
