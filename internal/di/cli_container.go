package di

import (
	"flag"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/binsight/internal/adapters/scanner"
	"github.com/mikey/binsight/internal/config"
	"github.com/mikey/binsight/internal/core"
	"github.com/mikey/binsight/internal/factory"
	"github.com/mikey/binsight/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Vision provider flags
	Provider    string
	MaxTokens   int
	Temperature float64
	TopP        float64
	Candidates  int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string

	// Image flags
	TargetSize  int
	JPEGQuality int

	// Store flags
	StoreType  string
	SQLitePath string

	// Action flags
	InputFile string
	Save      bool
	Name      string
	Category  string
	List      bool
	Limit     int

	Verbose    bool
	JSONLog    bool
	ConfigFile string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	// Vision provider flags
	flag.StringVar(&flags.Provider, "provider", "openai", "Vision provider (bedrock, gemini, openai)")
	flag.IntVar(&flags.MaxTokens, "max-tokens", 500, "Maximum tokens for the vision response")
	flag.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for vision generation")
	flag.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for vision generation")
	flag.IntVar(&flags.Candidates, "candidates", 3, "Maximum candidate labels to request")

	// Bedrock flags
	flag.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	flag.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-3-haiku-20240307-v1:0", "Bedrock model ID")

	// Gemini flags
	flag.StringVar(&flags.GeminiAPIKey, "gemini-api-key", "", "API key for Google Gemini")
	flag.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	flag.StringVar(&flags.OpenAIAPIKey, "openai-api-key", "", "API key for OpenAI")
	flag.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")

	// Image flags
	flag.IntVar(&flags.TargetSize, "target-size", 224, "Square size images are scaled to before labeling")
	flag.IntVar(&flags.JPEGQuality, "jpeg-quality", 85, "JPEG quality for normalized images")

	// Store flags
	flag.StringVar(&flags.StoreType, "store", "memory", "Item store type (memory, sqlite)")
	flag.StringVar(&flags.SQLitePath, "sqlite-path", "", "Path to the SQLite item store")

	// Action flags
	flag.StringVar(&flags.InputFile, "file", "", "Input image file (use stdin if not specified)")
	flag.BoolVar(&flags.Save, "save", false, "Persist the classified item to the store")
	flag.StringVar(&flags.Name, "name", "", "Item name to save (defaults to the detected label)")
	flag.StringVar(&flags.Category, "category", "", "Category override when saving (recyclable, compost, trash)")
	flag.BoolVar(&flags.List, "list", false, "List saved items instead of scanning")
	flag.IntVar(&flags.Limit, "limit", 0, "Maximum number of items to list (0 for all)")

	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.New()
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewVisionFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
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

	// Register classifier service with no overrides
	if err := container.Provide(func(
		vision core.VisionClient,
		f *factory.NormalizerFactory,
		logger *zap.Logger,
	) *core.ClassifierService {
		return core.NewClassifierService(vision, f.CreateNormalizer(), nil, logger)
	}); err != nil {
		return nil, err
	}

	// Register CLI scanner
	if err := container.Provide(func(
		service *core.ClassifierService,
		store core.ItemStore,
		logger *zap.Logger,
		flags *CLIFlags,
	) (*scanner.CliScanner, error) {
		return scanner.NewCliScanner(service, store, logger, flags.Verbose)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.frontend_type", "cli")
	v.Set("logging.verbose", flags.Verbose)

	// Set vision provider
	v.Set("vision.provider", flags.Provider)

	// Set provider-specific configuration
	switch flags.Provider {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_candidates", flags.Candidates)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_candidates", flags.Candidates)
	case "openai":
		v.Set("openai.api_key", flags.OpenAIAPIKey)
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_candidates", flags.Candidates)
	}

	// Set image normalization
	v.Set("image.target_size", flags.TargetSize)
	v.Set("image.jpeg_quality", flags.JPEGQuality)

	// Set item store
	v.Set("store.type", flags.StoreType)
	if flags.SQLitePath != "" {
		v.Set("store.type", "sqlite")
		v.Set("store.sqlite_path", flags.SQLitePath)
	}

	return config.NewFromViper(v)
}
