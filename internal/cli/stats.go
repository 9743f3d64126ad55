package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sibylscope/sibyl/internal/viewer"
)

var statsJSON bool

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "emit the summary as JSON")
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats <trace-file>",
	Short: "Summarize a trace: counts, duration, errors, slowest operations",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	backend, closeBackend, err := openBackend(args[0])
	if err != nil {
		return err
	}
	defer closeBackend()

	events, err := backend.Load()
	if err != nil {
		return err
	}
	summary := viewer.Summarize(events)

	if statsJSON {
		out, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("cli: encode summary: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}
	viewer.WriteSummary(os.Stdout, summary)
	return nil
}
