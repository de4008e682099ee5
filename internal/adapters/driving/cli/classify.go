package cli

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [hint]",
	Short: "Show the persona label for a hint",
	Long: `Classifies a persona hint the way queries are classified during a run.
Labels are user-centric, business, technical, legal and general.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	if personaClassifier == nil {
		return errors.New("persona classifier not configured")
	}
	cmd.Println(personaClassifier.Classify(strings.Join(args, " ")))
	return nil
}
