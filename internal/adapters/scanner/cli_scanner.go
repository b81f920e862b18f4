package scanner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/core"
)

// CliScanner implements a command-line interface for one-off scans
type CliScanner struct {
	service *core.ClassifierService
	store   core.ItemStore
	logger  *zap.Logger
	verbose bool
}

// NewCliScanner creates a new CLI scanner
func NewCliScanner(service *core.ClassifierService, store core.ItemStore, logger *zap.Logger, verbose bool) (*CliScanner, error) {
	return &CliScanner{
		service: service,
		store:   store,
		logger:  logger,
		verbose: verbose,
	}, nil
}

// ProcessImage classifies a single image and displays the results. When
// save is true the result is persisted to the item store, with name and
// category overriding the classifier's suggestion if non-empty.
func (s *CliScanner) ProcessImage(ctx context.Context, image []byte, save bool, name string, category string) (*core.ClassificationResult, error) {
	s.logger.Debug("Processing image", zap.Int("bytes", len(image)))

	if len(image) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	fmt.Printf("\n=== Image Summary ===\n")
	fmt.Printf("Size: %d bytes\n", len(image))
	fmt.Printf("\n")

	fmt.Printf("=== Classification ===\n")
	fmt.Printf("Classifying image with vision provider...\n")
	startTime := time.Now()

	session := core.NewScanSession(s.service, s.store, s.logger)
	result, err := session.Submit(ctx, image)
	if err != nil {
		s.logger.Error("Failed to classify image", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}
	duration := time.Since(startTime)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Label: %s\n", result.Label)
	fmt.Printf("Category: %s\n", result.Category.DisplayName())
	fmt.Printf("Confidence: %.4f\n", result.Confidence)
	fmt.Printf("Model used: %s\n", result.ModelUsed)
	fmt.Printf("Processing time: %v\n", duration)

	if !save {
		session.Discard()
		return result, nil
	}

	var overrideCategory core.Category
	if category != "" {
		parsed, err := core.ParseCategory(category)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return nil, err
		}
		overrideCategory = parsed
	}

	item, err := session.Save(ctx, name, overrideCategory)
	if err != nil {
		s.logger.Error("Failed to save item", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		return nil, err
	}

	fmt.Printf("\n=== Saved ===\n")
	fmt.Printf("ID: %s\n", item.ID)
	fmt.Printf("Name: %s\n", item.Name)
	fmt.Printf("Category: %s\n", item.Category.DisplayName())

	return result, nil
}

// ListItems prints the saved scan history, most recent first
func (s *CliScanner) ListItems(ctx context.Context, limit int) error {
	items, err := s.store.List(ctx, limit)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return err
	}

	fmt.Printf("\n=== Scan History (%d items) ===\n", len(items))
	for _, item := range items {
		fmt.Printf("%s  %-12s  %.4f  %s  %s\n",
			item.Timestamp.Format(time.RFC3339),
			item.Category.DisplayName(),
			item.Confidence,
			item.ID,
			item.Name)
	}
	return nil
}

// Start is a no-op for the CLI scanner
func (s *CliScanner) Start() error {
	return nil
}

// Stop is a no-op for the CLI scanner
func (s *CliScanner) Stop() error {
	return nil
}
