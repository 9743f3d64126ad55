package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	sibyl "github.com/sibylscope/sibyl"
)

var demoOut string

func init() {
	demoCmd.Flags().StringVarP(&demoOut, "out", "o", "", "output path (default: timestamped file in the current directory)")
	rootCmd.AddCommand(demoCmd)
}

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Generate a sample trace for exploring the viewer",
	RunE:  runDemo,
}

func runDemo(cmd *cobra.Command, args []string) error {
	backend := sibyl.NewFileBackend(demoOut)
	tracer := sibyl.New(backend)
	ctx := context.Background()

	userID, err := tracer.Log(sibyl.TraceUser, sibyl.ActionInput,
		map[string]any{"message": "What is the weather in Paris?"})
	if err != nil {
		return err
	}

	err = tracer.Run(sibyl.TraceAgent, sibyl.ActionStart,
		map[string]any{"name": "weather_agent"}, func(*sibyl.Span) error {
			llm := sibyl.WrapLLM(tracer, "gpt-4", func(ctx context.Context, prompt string) (string, error) {
				time.Sleep(30 * time.Millisecond)
				return "Use the weather tool for Paris.", nil
			})
			if _, err := llm(ctx, "What is the weather in Paris?"); err != nil {
				return err
			}

			lookup := sibyl.WrapTool(tracer, "weather_lookup", func(ctx context.Context, args map[string]any) (any, error) {
				time.Sleep(10 * time.Millisecond)
				return map[string]any{"temperature_c": 21, "sky": "clear"}, nil
			})
			_, err := lookup(ctx, map[string]any{"city": "Paris"})
			return err
		}, sibyl.WithParent(userID))
	if err != nil {
		return err
	}

	if _, err := tracer.Log(sibyl.TraceAgent, sibyl.ActionRespond,
		map[string]any{"message": "21°C and clear in Paris."},
		sibyl.WithParent(userID)); err != nil {
		return err
	}
	if err := tracer.Flush(); err != nil {
		return err
	}

	fmt.Printf("wrote demo trace to %s\n", backend.Path())
	fmt.Printf("try: sibyl view %s\n", backend.Path())
	return nil
}
