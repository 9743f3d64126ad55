package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	sibyl "github.com/sibylscope/sibyl"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <trace-file>",
	Short: "Check that every record in a trace file parses",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	backend, closeBackend, err := openBackend(args[0])
	if err != nil {
		return err
	}
	defer closeBackend()

	events, err := backend.Load()
	if err != nil {
		var corrupt *sibyl.CorruptRecordError
		if errors.As(err, &corrupt) {
			return fmt.Errorf("record %d is corrupt: %w", corrupt.Line, corrupt.Err)
		}
		return err
	}
	fmt.Printf("ok: %d events\n", len(events))
	return nil
}
