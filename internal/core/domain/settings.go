package domain

import "time"

const unknownDescription = "Unknown"

// EmbeddingProvider identifies the service that turns text into vectors.
type EmbeddingProvider string

// Available embedding providers.
const (
	// EmbeddingProviderHashing is the built-in offline feature-hashing model.
	EmbeddingProviderHashing EmbeddingProvider = "hashing"

	// EmbeddingProviderOllama is a local Ollama instance.
	EmbeddingProviderOllama EmbeddingProvider = "ollama"

	// EmbeddingProviderOpenAI is the OpenAI cloud API or a compatible server.
	EmbeddingProviderOpenAI EmbeddingProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p EmbeddingProvider) IsValid() bool {
	switch p {
	case EmbeddingProviderHashing, EmbeddingProviderOllama, EmbeddingProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p EmbeddingProvider) RequiresAPIKey() bool {
	return p == EmbeddingProviderOpenAI
}

// IsLocal returns true if this provider runs without network access.
func (p EmbeddingProvider) IsLocal() bool {
	return p == EmbeddingProviderHashing
}

// String returns the string representation.
func (p EmbeddingProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p EmbeddingProvider) Description() string {
	switch p {
	case EmbeddingProviderHashing:
		return "Hashing (offline)"
	case EmbeddingProviderOllama:
		return "Ollama (local)"
	case EmbeddingProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// AllEmbeddingProviders returns every supported provider.
func AllEmbeddingProviders() []EmbeddingProvider {
	return []EmbeddingProvider{
		EmbeddingProviderHashing,
		EmbeddingProviderOllama,
		EmbeddingProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[EmbeddingProvider]string {
	return map[EmbeddingProvider]string{
		EmbeddingProviderHashing: "hashing-unigram-bigram",
		EmbeddingProviderOllama:  "all-minilm",
		EmbeddingProviderOpenAI:  "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}

// StoreKind selects where per-document records and the final result are kept.
type StoreKind string

// Available record stores.
const (
	// StoreJSON writes one JSON file per document plus the final result file.
	StoreJSON StoreKind = "json"

	// StoreSQLite keeps records in a SQLite database in the output directory.
	StoreSQLite StoreKind = "sqlite"

	// StoreMemory keeps records in process memory only.
	StoreMemory StoreKind = "memory"
)

// IsValid returns true if the store kind is recognised.
func (k StoreKind) IsValid() bool {
	switch k {
	case StoreJSON, StoreSQLite, StoreMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k StoreKind) String() string {
	return string(k)
}

// InputSettings locates the documents and manifests of a run.
type InputSettings struct {
	// Dir is the directory scanned for input documents.
	Dir string

	// Queries is the path of the query manifest.
	Queries string

	// References is the path of the optional reference-answer manifest.
	References string
}

// OutputSettings controls where records and the final result go.
type OutputSettings struct {
	// Dir is the output directory.
	Dir string

	// Store selects the record store backend.
	Store StoreKind

	// FinalName is the file name of the final result within Dir.
	FinalName string
}

// SegmenterSettings bounds passage construction.
type SegmenterSettings struct {
	// MaxLength is the character budget of a passage.
	MaxLength int

	// MaxCount caps the number of passages per document.
	MaxCount int
}

// MatcherSettings controls passage selection.
type MatcherSettings struct {
	// TopK is the number of passages kept per query.
	TopK int
}

// RankingSettings controls the final cross-document ranking.
type RankingSettings struct {
	// TopN is the number of ranked entries kept.
	TopN int

	// TitlePrefix starts every section title.
	TitlePrefix string

	// TitleLength is the number of query characters used in a section title.
	TitleLength int

	// TitleSuffix ends every section title.
	TitleSuffix string
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider EmbeddingProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama and OpenAI-compatible servers).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string

	// Dimensions is the vector size. Zero uses the model default.
	Dimensions int

	// BatchSize is the number of passages embedded per request.
	BatchSize int

	// RequestsPerSecond limits calls to the provider. Zero means unlimited.
	RequestsPerSecond float64

	// Timeout bounds each provider request.
	Timeout time.Duration
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// WorkerSettings bounds pipeline concurrency.
type WorkerSettings struct {
	// QueryWorkers is the number of queries answered concurrently per document.
	QueryWorkers int

	// DocumentWorkers is the number of documents processed concurrently.
	DocumentWorkers int
}

// AppSettings holds all application settings.
type AppSettings struct {
	Input     InputSettings
	Output    OutputSettings
	Segmenter SegmenterSettings
	Matcher   MatcherSettings
	Ranking   RankingSettings
	Embedding EmbeddingSettings
	Workers   WorkerSettings

	// Personas maps query group names to their persona and job.
	Personas map[string]PersonaJob
}

// DefaultAppSettings returns settings with sensible defaults.
// The offline hashing embedder is used until a provider is configured.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Input: InputSettings{
			Dir:        "input",
			Queries:    "sample_queries.json",
			References: "sample_references.json",
		},
		Output: OutputSettings{
			Dir:       "output",
			Store:     StoreJSON,
			FinalName: "result.json",
		},
		Segmenter: SegmenterSettings{
			MaxLength: 300,
			MaxCount:  200,
		},
		Matcher: MatcherSettings{
			TopK: 5,
		},
		Ranking: RankingSettings{
			TopN:        30,
			TitlePrefix: "Relevant to: ",
			TitleLength: 40,
			TitleSuffix: "...",
		},
		Embedding: EmbeddingSettings{
			Provider:   EmbeddingProviderHashing,
			Model:      DefaultEmbeddingModels()[EmbeddingProviderHashing],
			Dimensions: 384,
			BatchSize:  32,
			Timeout:    60 * time.Second,
		},
		Workers: WorkerSettings{
			QueryWorkers:    4,
			DocumentWorkers: 1,
		},
		Personas: DefaultPersonaJobs(),
	}
}

// PipelineConfig holds post-processor pipeline configuration.
// Uses generic map-based config for extensibility - new processors can be added
// without modifying this struct.
type PipelineConfig struct {
	// Processors is the ordered list of processor names to run.
	Processors []string

	// ProcessorConfigs holds per-processor configuration as generic maps.
	// Key is processor name, value is processor-specific config.
	ProcessorConfigs map[string]map[string]any
}

// GetProcessorConfig returns config for a specific processor, or nil if not set.
func (c *PipelineConfig) GetProcessorConfig(name string) map[string]any {
	if c.ProcessorConfigs == nil {
		return nil
	}
	return c.ProcessorConfigs[name]
}

// PipelineConfigFor builds the segmentation pipeline from segmenter settings.
func PipelineConfigFor(s SegmenterSettings) PipelineConfig {
	return PipelineConfig{
		Processors: []string{"segmenter"},
		ProcessorConfigs: map[string]map[string]any{
			"segmenter": {
				"max_length": s.MaxLength,
				"max_count":  s.MaxCount,
			},
		},
	}
}

// DefaultPipelineConfig returns the default pipeline configuration.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfigFor(DefaultAppSettings().Segmenter)
}
