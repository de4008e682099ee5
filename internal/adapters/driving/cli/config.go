package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `View and change digest configuration.

Settings are stored as dotted keys, for example:
  digest config set segmenter.max_length 200
  digest config set embedding.provider openai
  digest config set personas.travel_queries.persona "Travel Planner"`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List configuration keys",
	RunE:  runConfigKeys,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Input]")
	cmd.Printf("  Directory: %s\n", settings.Input.Dir)
	cmd.Printf("  Queries: %s\n", settings.Input.Queries)
	cmd.Printf("  References: %s\n", settings.Input.References)
	cmd.Println()

	cmd.Println("[Output]")
	cmd.Printf("  Directory: %s\n", settings.Output.Dir)
	cmd.Printf("  Store: %s\n", settings.Output.Store)
	cmd.Printf("  Final result: %s\n", settings.Output.FinalName)
	cmd.Println()

	cmd.Println("[Segmenter]")
	cmd.Printf("  Max length: %d\n", settings.Segmenter.MaxLength)
	cmd.Printf("  Max count: %d\n", settings.Segmenter.MaxCount)
	cmd.Println()

	cmd.Println("[Matching]")
	cmd.Printf("  Top K: %d\n", settings.Matcher.TopK)
	cmd.Printf("  Top N: %d\n", settings.Ranking.TopN)
	cmd.Printf("  Section title: %q + %d characters + %q\n",
		settings.Ranking.TitlePrefix, settings.Ranking.TitleLength, settings.Ranking.TitleSuffix)
	cmd.Println()

	cmd.Println("[Embedding]")
	cmd.Printf("  Provider: %s\n", settings.Embedding.Provider.Description())
	cmd.Printf("  Model: %s\n", settings.Embedding.Model)
	if settings.Embedding.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", settings.Embedding.BaseURL)
	}
	if settings.Embedding.Provider.RequiresAPIKey() {
		if settings.Embedding.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(settings.Embedding.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	cmd.Printf("  Dimensions: %d\n", settings.Embedding.Dimensions)
	cmd.Printf("  Batch size: %d\n", settings.Embedding.BatchSize)
	if settings.Embedding.RequestsPerSecond > 0 {
		cmd.Printf("  Rate limit: %g requests/s\n", settings.Embedding.RequestsPerSecond)
	} else {
		cmd.Printf("  Rate limit: unlimited\n")
	}
	cmd.Printf("  Timeout: %s\n", settings.Embedding.Timeout)
	cmd.Println()

	cmd.Println("[Pipeline]")
	cmd.Printf("  Query workers: %d\n", settings.Workers.QueryWorkers)
	cmd.Printf("  Document workers: %d\n", settings.Workers.DocumentWorkers)
	cmd.Println()

	cmd.Println("[Personas]")
	groups := make([]string, 0, len(settings.Personas))
	for g := range settings.Personas {
		groups = append(groups, g)
	}
	sort.Strings(groups)
	for _, g := range groups {
		pj := settings.Personas[g]
		cmd.Printf("  %s\n", g)
		cmd.Printf("    Persona: %s\n", pj.Persona)
		cmd.Printf("    Job: %s\n", pj.Job)
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'digest config set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key, value := args[0], args[1]
	if err := settingsService.Set(key, value); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return fmt.Errorf("%w\nRun 'digest config keys' to list valid keys", err)
		}
		return fmt.Errorf("failed to save setting: %w", err)
	}

	shown := value
	if strings.HasSuffix(key, "api_key") {
		shown = maskAPIKey(value)
	}
	cmd.Printf("Set %s = %s\n", key, shown)
	return nil
}

func runConfigKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	cmd.Println("personas.<group>.persona")
	cmd.Println("personas.<group>.job_to_be_done")
	return nil
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
