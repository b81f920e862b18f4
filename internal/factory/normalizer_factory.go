package factory

import (
	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/imaging"
)

// NormalizerFactory creates image normalizers based on configuration
type NormalizerFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewNormalizerFactory creates a new normalizer factory
func NewNormalizerFactory(cfg *config.Config, logger *zap.Logger) *NormalizerFactory {
	return &NormalizerFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateNormalizer creates an image normalizer from the configuration
func (f *NormalizerFactory) CreateNormalizer() *imaging.Normalizer {
	imageConfig := f.cfg.GetImage()
	return imaging.NewNormalizer(imageConfig.TargetSize, imageConfig.JPEGQuality, f.logger)
}
