package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driven"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyInputDir           = "input.dir"
	keyInputQueries       = "input.queries"
	keyInputReferences    = "input.references"
	keyOutputDir          = "output.dir"
	keyOutputStore        = "output.store"
	keyOutputFinalName    = "output.final_name"
	keySegmenterMaxLength = "segmenter.max_length"
	keySegmenterMaxCount  = "segmenter.max_count"
	keyMatcherTopK        = "matcher.top_k"
	keyRankingTopN        = "ranking.top_n"
	keyRankingTitlePrefix = "ranking.title_prefix"
	keyRankingTitleLength = "ranking.title_length"
	keyRankingTitleSuffix = "ranking.title_suffix"
	keyEmbedProvider      = "embedding.provider"
	keyEmbedModel         = "embedding.model"
	keyEmbedBaseURL       = "embedding.base_url"
	keyEmbedAPIKey        = "embedding.api_key"
	keyEmbedDimensions    = "embedding.dimensions"
	keyEmbedBatchSize     = "embedding.batch_size"
	keyEmbedRPS           = "embedding.requests_per_second"
	keyEmbedTimeout       = "embedding.timeout_seconds"
	keyQueryWorkers       = "pipeline.query_workers"
	keyDocumentWorkers    = "pipeline.document_workers"

	personasPrefix = "personas."
	personaField   = "persona"
	jobField       = "job_to_be_done"
)

// Environment variables that override the stored API key, in priority order.
//
//nolint:gosec // G101: These are variable names, not actual credentials.
var apiKeyEnvVars = []string{"DIGEST_EMBEDDING_API_KEY", "OPENAI_API_KEY"}

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
)

var settingKeys = map[string]keyKind{
	keyInputDir:           kindString,
	keyInputQueries:       kindString,
	keyInputReferences:    kindString,
	keyOutputDir:          kindString,
	keyOutputStore:        kindString,
	keyOutputFinalName:    kindString,
	keySegmenterMaxLength: kindInt,
	keySegmenterMaxCount:  kindInt,
	keyMatcherTopK:        kindInt,
	keyRankingTopN:        kindInt,
	keyRankingTitlePrefix: kindString,
	keyRankingTitleLength: kindInt,
	keyRankingTitleSuffix: kindString,
	keyEmbedProvider:      kindString,
	keyEmbedModel:         kindString,
	keyEmbedBaseURL:       kindString,
	keyEmbedAPIKey:        kindString,
	keyEmbedDimensions:    kindInt,
	keyEmbedBatchSize:     kindInt,
	keyEmbedRPS:           kindFloat,
	keyEmbedTimeout:       kindInt,
	keyQueryWorkers:       kindInt,
	keyDocumentWorkers:    kindInt,
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	provider := s.getProvider(defaults.Embedding.Provider)
	model := s.configStore.GetString(keyEmbedModel)
	if model == "" {
		model = domain.DefaultEmbeddingModels()[provider]
	}

	settings := &domain.AppSettings{
		Input: domain.InputSettings{
			Dir:        s.getString(keyInputDir, defaults.Input.Dir),
			Queries:    s.getString(keyInputQueries, defaults.Input.Queries),
			References: s.getString(keyInputReferences, defaults.Input.References),
		},
		Output: domain.OutputSettings{
			Dir:       s.getString(keyOutputDir, defaults.Output.Dir),
			Store:     s.getStore(defaults.Output.Store),
			FinalName: s.getString(keyOutputFinalName, defaults.Output.FinalName),
		},
		Segmenter: domain.SegmenterSettings{
			MaxLength: s.getInt(keySegmenterMaxLength, defaults.Segmenter.MaxLength),
			MaxCount:  s.getInt(keySegmenterMaxCount, defaults.Segmenter.MaxCount),
		},
		Matcher: domain.MatcherSettings{
			TopK: s.getInt(keyMatcherTopK, defaults.Matcher.TopK),
		},
		Ranking: domain.RankingSettings{
			TopN:        s.getInt(keyRankingTopN, defaults.Ranking.TopN),
			TitlePrefix: s.getRawString(keyRankingTitlePrefix, defaults.Ranking.TitlePrefix),
			TitleLength: s.getInt(keyRankingTitleLength, defaults.Ranking.TitleLength),
			TitleSuffix: s.getRawString(keyRankingTitleSuffix, defaults.Ranking.TitleSuffix),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          provider,
			Model:             model,
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // No default - adapters pick their own
			APIKey:            s.apiKey(),
			Dimensions:        s.getInt(keyEmbedDimensions, defaults.Embedding.Dimensions),
			BatchSize:         s.getInt(keyEmbedBatchSize, defaults.Embedding.BatchSize),
			RequestsPerSecond: s.configStore.GetFloat(keyEmbedRPS),
			Timeout:           time.Duration(s.getInt(keyEmbedTimeout, int(defaults.Embedding.Timeout/time.Second))) * time.Second,
		},
		Workers: domain.WorkerSettings{
			QueryWorkers:    s.getInt(keyQueryWorkers, defaults.Workers.QueryWorkers),
			DocumentWorkers: s.getInt(keyDocumentWorkers, defaults.Workers.DocumentWorkers),
		},
		Personas: s.personas(defaults.Personas),
	}

	return settings, nil
}

// Set parses and stores a single setting by its dotted key.
func (s *SettingsService) Set(key, value string) error {
	if group, field, ok := parsePersonaKey(key); ok {
		if group == "" || (field != personaField && field != jobField) {
			return fmt.Errorf("%w: persona keys are personas.<group>.%s or personas.<group>.%s",
				domain.ErrInvalidInput, personaField, jobField)
		}
		return s.configStore.Set(key, value)
	}

	kind, ok := settingKeys[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	switch key {
	case keyOutputStore:
		if !domain.StoreKind(value).IsValid() {
			return fmt.Errorf("%w: unknown store %q (json, sqlite, memory)", domain.ErrInvalidInput, value)
		}
	case keyEmbedProvider:
		if !domain.EmbeddingProvider(value).IsValid() {
			return fmt.Errorf("%w: unknown embedding provider %q", domain.ErrInvalidInput, value)
		}
	}

	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, int64(n))
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		return s.configStore.Set(key, f)
	default:
		return s.configStore.Set(key, value)
	}
}

// Keys returns the dotted keys Set accepts, excluding per-group persona keys.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKeys))
	for k := range settingKeys {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks if current settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if !settings.Embedding.IsConfigured() {
		if settings.Embedding.Provider.RequiresAPIKey() {
			return fmt.Errorf("%w: embedding provider %s requires an API key", domain.ErrInvalidInput, settings.Embedding.Provider)
		}
		return fmt.Errorf("%w: embedding provider %q is not supported", domain.ErrInvalidInput, settings.Embedding.Provider)
	}
	if settings.Segmenter.MaxLength <= 0 || settings.Segmenter.MaxCount <= 0 {
		return fmt.Errorf("%w: segmenter limits must be positive", domain.ErrInvalidInput)
	}
	if settings.Input.Dir == "" || settings.Output.Dir == "" {
		return fmt.Errorf("%w: input and output directories are required", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getRawString allows an explicitly stored empty string.
func (s *SettingsService) getRawString(key, defaultVal string) string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetString(key)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getProvider(defaultVal domain.EmbeddingProvider) domain.EmbeddingProvider {
	provider := domain.EmbeddingProvider(s.configStore.GetString(keyEmbedProvider))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getStore(defaultVal domain.StoreKind) domain.StoreKind {
	kind := domain.StoreKind(s.configStore.GetString(keyOutputStore))
	if !kind.IsValid() {
		return defaultVal
	}
	return kind
}

// apiKey prefers the environment over the stored key.
func (s *SettingsService) apiKey() string {
	for _, name := range apiKeyEnvVars {
		if v := s.getenv(name); v != "" {
			return v
		}
	}
	return s.configStore.GetString(keyEmbedAPIKey)
}

// personas overlays configured groups on the defaults.
func (s *SettingsService) personas(defaults map[string]domain.PersonaJob) map[string]domain.PersonaJob {
	out := make(map[string]domain.PersonaJob, len(defaults))
	for group, pj := range defaults {
		out[group] = pj
	}

	for _, key := range s.configStore.Keys() {
		group, field, ok := parsePersonaKey(key)
		if !ok || group == "" {
			continue
		}
		pj := out[group]
		switch field {
		case personaField:
			pj.Persona = s.configStore.GetString(key)
		case jobField:
			pj.Job = s.configStore.GetString(key)
		default:
			continue
		}
		out[group] = pj
	}
	return out
}

// parsePersonaKey splits "personas.<group>.<field>".
func parsePersonaKey(key string) (group, field string, ok bool) {
	rest, found := strings.CutPrefix(key, personasPrefix)
	if !found {
		return "", "", false
	}
	idx := strings.LastIndex(rest, ".")
	if idx < 0 {
		return rest, "", true
	}
	return rest[:idx], rest[idx+1:], true
}
