package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	sibyl "github.com/sibylscope/sibyl"
	"github.com/sibylscope/sibyl/internal/viewer"
)

var (
	servePort int
	serveOpen bool
)

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8735, "port to listen on")
	serveCmd.Flags().BoolVar(&serveOpen, "open", false, "open the viewer in the default browser")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve <trace-file>",
	Short: "Serve a trace file over HTTP with a live web view",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	backend, closeBackend, err := openBackend(args[0])
	if err != nil {
		return err
	}
	defer closeBackend()

	addr := fmt.Sprintf("127.0.0.1:%d", servePort)
	fmt.Printf("serving %s at http://%s/\n", args[0], addr)

	return viewer.Serve(addr, func() ([]sibyl.Event, error) {
		return backend.Load()
	}, serveOpen)
}
