package cli

import (
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/persona-digest/internal/core/domain"
)

// reportStyles holds the styles used for command output.
type reportStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Error   lipgloss.Style
	Muted   lipgloss.Style
}

// stylesFor returns coloured styles when w is a terminal and plain ones otherwise.
func stylesFor(w io.Writer) reportStyles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return reportStyles{plain, plain, plain, plain, plain, plain}
	}
	return reportStyles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color("#06B6D4")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("#F9E2AF")),
		Error:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F38BA8")),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func printRunReport(cmd *cobra.Command, report *domain.RunReport) {
	st := stylesFor(cmd.OutOrStderr())

	cmd.Println(st.Title.Render("Run " + report.RunID))
	if report.Total() == 0 {
		cmd.Println(st.Warning.Render("  No input documents found."))
		return
	}

	cmd.Printf("  %s %d of %d documents, %d records\n",
		st.Success.Render("Processed"), len(report.Processed), report.Total(), report.Records)
	for _, f := range report.Failed {
		cmd.Printf("  %s %s: %v\n", st.Error.Render("Failed"), f.Document, f.Err)
	}
	for _, f := range report.QueryFailures {
		cmd.Printf("  %s %q on %s: %v\n", st.Warning.Render("Skipped query"), f.Query, f.Document, f.Err)
	}
	cmd.Println()
}

func printFinal(cmd *cobra.Command, final *domain.FinalResult) {
	st := stylesFor(cmd.OutOrStderr())

	cmd.Println(st.Title.Render("Digest"))
	cmd.Printf("  %s %s\n", st.Label.Render("Persona:"), final.Metadata.Persona)
	cmd.Printf("  %s %s\n", st.Label.Render("Job:"), final.Metadata.JobToBeDone)
	cmd.Printf("  %s %d\n", st.Label.Render("Documents:"), len(final.Metadata.InputDocuments))
	cmd.Println()

	if len(final.ExtractedSections) == 0 {
		cmd.Println(st.Muted.Render("  No sections extracted."))
		return
	}
	for _, s := range final.ExtractedSections {
		cmd.Printf("  [%d] %s\n", s.ImportanceRank, s.SectionTitle)
		cmd.Println(st.Muted.Render("      " + s.Document + ", page " + strconv.Itoa(s.PageNumber)))
	}
	cmd.Println()
}
