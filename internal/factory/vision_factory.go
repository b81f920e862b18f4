package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/bedrock"
	"github.com/mikey/binsight/internal/adapters/gemini"
	"github.com/mikey/binsight/internal/adapters/openai"
	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/core"
)

// VisionFactory creates vision clients
type VisionFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewVisionFactory creates a new vision factory
func NewVisionFactory(cfg *config.Config, logger *zap.Logger) *VisionFactory {
	return &VisionFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateVisionClient creates a new vision client based on the configuration
func (f *VisionFactory) CreateVisionClient() (core.VisionClient, error) {
	visionConfig := f.cfg.GetVision()

	switch visionConfig.Provider {
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger).CreateVisionClient()
	case "gemini":
		return gemini.NewFactory(f.cfg, f.logger).CreateVisionClient()
	case "openai":
		return openai.NewFactory(f.cfg, f.logger).CreateVisionClient()
	default:
		return nil, fmt.Errorf("unsupported vision provider: %s", visionConfig.Provider)
	}
}
