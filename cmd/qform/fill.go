package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/pkg/orchestrator"
	"github.com/goliatone/go-qform/pkg/renderers/tui"
)

func newFillCommand(a *app) *cobra.Command {
	var (
		response string
		format   string
		output   string
		wait     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "fill <questionnaire>",
		Short: "Fill in a questionnaire interactively on the terminal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			driver := a.driver
			if driver == nil {
				driver = tui.NewSurveyDriver(cmd.ErrOrStderr())
			}
			engine, err := a.engine(nil, []tui.Option{
				tui.WithPromptDriver(driver),
				tui.WithOutputFormat(tui.OutputFormat(format)),
				tui.WithOptionsWait(wait),
			})
			if err != nil {
				return err
			}

			req := orchestrator.Request{
				Source:   source(args[0]),
				Renderer: tui.Name,
			}
			if response != "" {
				src := source(response)
				req.ResponseSource = &src
			}

			start := time.Now()
			out, err := engine.Generate(cmd.Context(), req)
			if err != nil {
				return err
			}
			a.logger.Debug("questionnaire filled", zap.String("source", args[0]), elapsed(start))
			return writeOutput(cmd.OutOrStdout(), output, out)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&response, "response", "", "questionnaire response to resume from")
	flags.StringVar(&format, "format", string(tui.OutputFormatJSON), "output format (json, yaml, form, pretty)")
	flags.StringVarP(&output, "output", "o", "", "output file (default stdout)")
	flags.DurationVar(&wait, "options-wait", 5*time.Second, "how long choice prompts wait for loading options")
	return cmd
}
