package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/persona-digest/internal/connectors/filesystem"
	"github.com/custodia-labs/persona-digest/internal/core/domain"
	"github.com/custodia-labs/persona-digest/internal/normalisers"
)

var (
	segmentMaxLength int
	segmentMaxCount  int
	segmentJSON      bool
)

var segmentCmd = &cobra.Command{
	Use:   "segment [file]",
	Short: "Show the passages a document is split into",
	Long: `Extracts the text of a single document and prints the passages it is
split into. Passage limits come from the configuration unless overridden.`,
	Args: cobra.ExactArgs(1),
	RunE: runSegment,
}

func init() {
	segmentCmd.Flags().IntVar(&segmentMaxLength, "max-length", 0, "passage length budget in characters")
	segmentCmd.Flags().IntVar(&segmentMaxCount, "max-count", 0, "maximum number of passages")
	segmentCmd.Flags().BoolVar(&segmentJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(segmentCmd)
}

type passageOutput struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func runSegment(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	seg := domain.DefaultAppSettings().Segmenter
	if settingsService != nil {
		settings, err := settingsService.Get()
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		seg = settings.Segmenter
	}
	if segmentMaxLength > 0 {
		seg.MaxLength = segmentMaxLength
	}
	if segmentMaxCount > 0 {
		seg.MaxCount = segmentMaxCount
	}

	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(path)
	mimeType := normalisers.MIMETypeFor(name)
	if mimeType == "" {
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedType, name)
	}

	source := filesystem.New(filepath.Dir(path), normalisers.MIMETypeFor)
	raw, err := source.Fetch(ctx, domain.DocumentRef{Name: name, URI: filesystem.URI(path), MIMEType: mimeType})
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", name, err)
	}

	normalised, err := normalisers.DefaultRegistry().Normalise(ctx, raw)
	if err != nil {
		return err
	}
	doc := normalised.Document
	doc.Name = name

	pipeline, err := buildPipeline(seg)
	if err != nil {
		return err
	}
	passages, err := pipeline.Process(ctx, &doc)
	if err != nil {
		return err
	}

	if segmentJSON {
		out := make([]passageOutput, len(passages))
		for i, p := range passages {
			out[i] = passageOutput{Index: p.Index, Text: p.Text}
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	st := stylesFor(cmd.OutOrStderr())
	cmd.Println(st.Title.Render(fmt.Sprintf("%s: %d passages", name, len(passages))))
	for _, p := range passages {
		cmd.Printf("  %s %s\n", st.Label.Render(fmt.Sprintf("[%d]", p.Index)), p.Text)
	}
	return nil
}
