package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ClassifierService is the core service for classifying captured images
type ClassifierService struct {
	vision     VisionClient
	normalizer ImageNormalizer
	overrides  OverrideChecker
	logger     *zap.Logger
}

// NewClassifierService creates a new classifier service. overrides may be
// nil when no override rules are configured.
func NewClassifierService(
	vision VisionClient,
	normalizer ImageNormalizer,
	overrides OverrideChecker,
	logger *zap.Logger,
) *ClassifierService {
	return &ClassifierService{
		vision:     vision,
		normalizer: normalizer,
		overrides:  overrides,
		logger:     logger,
	}
}

// Classify normalizes the image, asks the vision provider for candidate
// labels exactly once, and maps the top candidate to a disposal category.
// It returns ErrInvalidImage for undecodable input and ErrNoResult when the
// provider yields no candidates. Failed calls are never retried.
func (s *ClassifierService) Classify(ctx context.Context, image []byte) (*ClassificationResult, error) {
	normalized, err := s.normalizer.Normalize(image)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	candidates, err := s.vision.LabelImage(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("vision provider failure: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoResult
	}

	top := candidates[0]
	for _, c := range candidates[1:] {
		if c.Confidence > top.Confidence {
			top = c
		}
	}

	category, forced := Category(""), false
	if s.overrides != nil {
		category, forced = s.overrides.Match(top.Label)
	}
	if !forced {
		category = MapLabel(top.Label)
	}

	s.logger.Debug("Classified image",
		zap.String("label", top.Label),
		zap.String("category", string(category)),
		zap.Float64("confidence", top.Confidence),
		zap.Bool("override", forced))

	return &ClassificationResult{
		Label:        top.Label,
		Category:     category,
		Confidence:   top.Confidence,
		ClassifiedAt: time.Now(),
		ModelUsed:    s.vision.ModelID(),
	}, nil
}
