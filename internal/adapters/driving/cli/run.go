package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/core/ports/driving"
)

var printJSON bool

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Process every document and build the digest",
	Long: `Answers every query in the query manifest against every document in the
input directory, stores one record set per document, then ranks all records
into the final digest.

Documents that cannot be read are reported and skipped. The command fails
only when no document could be processed.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Write per-document records without aggregating",
	Long: `Answers every query against every input document and stores the records.
Run 'digest aggregate' afterwards to build the digest from stored records.`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

var aggregateCmd = &cobra.Command{
	Use:   "aggregate",
	Short: "Rank stored records into the digest",
	Long: `Reads every stored record set and ranks the records into the final digest.
No embedding provider is contacted.
The memory store keeps no records between commands; use 'digest run' with it.`,
	Args: cobra.NoArgs,
	RunE: runAggregate,
}

func init() {
	runCmd.Flags().BoolVar(&printJSON, "json", false, "print the final result as JSON")
	aggregateCmd.Flags().BoolVar(&printJSON, "json", false, "print the final result as JSON")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(processCmd)
	rootCmd.AddCommand(aggregateCmd)
}

func openDigest(ctx context.Context, scope serviceScope) (driving.DigestService, *domain.AppSettings, func(), error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, nil, err
	}
	digest, cleanup, err := newDigestService(ctx, settings, scope)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to set up pipeline: %w", err)
	}
	return digest, settings, cleanup, nil
}

func runRun(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	digest, settings, cleanup, err := openDigest(ctx, scopeFull)
	if err != nil {
		return err
	}
	defer cleanup()

	report, final, runErr := digest.Run(ctx)
	if report != nil {
		printRunReport(cmd, report)
	}
	if final != nil {
		if err := publishFinal(cmd, settings, final); err != nil {
			return err
		}
	}
	if runErr != nil {
		return fmt.Errorf("run failed: %w", runErr)
	}
	return nil
}

func runProcess(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	digest, _, cleanup, err := openDigest(ctx, scopeFull)
	if err != nil {
		return err
	}
	defer cleanup()

	manifest, err := digest.LoadManifest(ctx)
	if err != nil {
		return err
	}

	report, err := digest.ProcessAll(ctx, manifest)
	if report != nil {
		printRunReport(cmd, report)
	}
	if err != nil {
		return fmt.Errorf("processing failed: %w", err)
	}
	return nil
}

func runAggregate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	digest, settings, cleanup, err := openDigest(ctx, scopeAggregate)
	if err != nil {
		return err
	}
	defer cleanup()

	manifest, err := digest.LoadManifest(ctx)
	if err != nil {
		return err
	}

	final, err := digest.Aggregate(ctx, manifest)
	if err != nil {
		return fmt.Errorf("aggregation failed: %w", err)
	}
	return publishFinal(cmd, settings, final)
}

// publishFinal exports the final result when needed and prints it.
func publishFinal(cmd *cobra.Command, settings *domain.AppSettings, final *domain.FinalResult) error {
	path, err := exportFinal(cmd.Context(), settings.Output, final)
	if err != nil {
		return fmt.Errorf("failed to write final result: %w", err)
	}

	if printJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(final)
	}

	printFinal(cmd, final)
	if path != "" {
		cmd.Printf("Final result written to %s\n", path)
	}
	return nil
}
