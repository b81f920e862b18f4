package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/scanner"
	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/di"
)

func main() {
	flags := di.ParseFlags()

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	cli *scanner.CliScanner,
	visionClient core.VisionClient,
	itemStore core.ItemStore,
	flags *di.CLIFlags,
) error {
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	defer func() {
		if closer, ok := visionClient.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close vision client", zap.Error(err))
			}
		}
		if closer, ok := itemStore.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close item store", zap.Error(err))
			}
		}
	}()

	if flags.List {
		return cli.ListItems(ctx, flags.Limit)
	}

	image, err := readImage(flags.InputFile)
	if err != nil {
		logger.Error("Failed to read image", zap.Error(err))
		return err
	}

	_, err = cli.ProcessImage(ctx, image, flags.Save, flags.Name, flags.Category)
	return err
}

// readImage reads the input image from a file, or stdin when no file is given
func readImage(path string) ([]byte, error) {
	if path == "" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}
