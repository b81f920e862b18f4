package config

// VisionConfig represents the configuration for the vision provider
type VisionConfig struct {
	Provider string
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey        string
	ModelName     string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxCandidates int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey        string
	ModelName     string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxCandidates int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region        string
	ModelID       string
	MaxTokens     int
	Temperature   float32
	TopP          float32
	MaxCandidates int
}

// ServerConfig represents the configuration for the scan frontend
type ServerConfig struct {
	FrontendType  string
	ListenAddress string
	MaxBodySize   int
}

// StoreConfig represents the configuration for the item store
type StoreConfig struct {
	Type       string
	SQLitePath string
	MySQLDSN   string
}

// ImageConfig represents the configuration for image normalization
type ImageConfig struct {
	TargetSize  int
	JPEGQuality int
}

// GetVision returns the vision provider configuration
func (c *Config) GetVision() VisionConfig {
	return VisionConfig{
		Provider: c.GetString("vision.provider"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:        c.GetString("openai.api_key"),
		ModelName:     c.GetString("openai.model_name"),
		MaxTokens:     c.GetInt("openai.max_tokens"),
		Temperature:   float32(c.GetFloat64("openai.temperature")),
		TopP:          float32(c.GetFloat64("openai.top_p")),
		MaxCandidates: c.GetInt("openai.max_candidates"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:        c.GetString("gemini.api_key"),
		ModelName:     c.GetString("gemini.model_name"),
		MaxTokens:     c.GetInt("gemini.max_tokens"),
		Temperature:   float32(c.GetFloat64("gemini.temperature")),
		TopP:          float32(c.GetFloat64("gemini.top_p")),
		MaxCandidates: c.GetInt("gemini.max_candidates"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:        c.GetString("bedrock.region"),
		ModelID:       c.GetString("bedrock.model_id"),
		MaxTokens:     c.GetInt("bedrock.max_tokens"),
		Temperature:   float32(c.GetFloat64("bedrock.temperature")),
		TopP:          float32(c.GetFloat64("bedrock.top_p")),
		MaxCandidates: c.GetInt("bedrock.max_candidates"),
	}
}

// GetServer returns the scan frontend configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		FrontendType:  c.GetString("server.frontend_type"),
		ListenAddress: c.GetString("server.listen_address"),
		MaxBodySize:   c.GetInt("server.max_body_size"),
	}
}

// GetStore returns the item store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:       c.GetString("store.type"),
		SQLitePath: c.GetString("store.sqlite_path"),
		MySQLDSN:   c.GetString("store.mysql_dsn"),
	}
}

// GetImage returns the image normalization configuration
func (c *Config) GetImage() ImageConfig {
	return ImageConfig{
		TargetSize:  c.GetInt("image.target_size"),
		JPEGQuality: c.GetInt("image.jpeg_quality"),
	}
}
