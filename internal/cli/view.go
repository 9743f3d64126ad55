package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sibylscope/sibyl/internal/viewer"
)

var (
	viewFollow   bool
	viewNoColor  bool
	viewMaxDepth int
)

func init() {
	viewCmd.Flags().BoolVarP(&viewFollow, "follow", "f", false, "re-render when the trace file changes")
	viewCmd.Flags().BoolVar(&viewNoColor, "no-color", false, "disable ANSI colors")
	viewCmd.Flags().IntVar(&viewMaxDepth, "max-depth", 0, "limit tree depth (0 = unlimited)")
	rootCmd.AddCommand(viewCmd)
}

var viewCmd = &cobra.Command{
	Use:   "view <trace-file>",
	Short: "Render a trace file as an indented call tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runView,
}

func runView(cmd *cobra.Command, args []string) error {
	path := args[0]
	backend, closeBackend, err := openBackend(path)
	if err != nil {
		return err
	}
	defer closeBackend()

	opts := viewer.RenderOptions{
		Color:    !viewNoColor,
		MaxDepth: viewMaxDepth,
	}

	render := func() error {
		events, err := backend.Load()
		if err != nil {
			return err
		}
		viewer.RenderTree(os.Stdout, events, opts)
		return nil
	}

	if err := render(); err != nil {
		return err
	}
	if !viewFollow {
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return viewer.Follow(ctx, path, func() {
		fmt.Println("---")
		if err := render(); err != nil {
			fmt.Fprintf(os.Stderr, "sibyl: reload: %v\n", err)
		}
	})
}
