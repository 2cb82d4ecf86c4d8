package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/pkg/orchestrator"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
)

type renderFlags struct {
	response string
	issues   string
	renderer string
	output   string
	roots    []string
	locale   string
	title    string
	action   string
}

func newRenderCommand(a *app) *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render <questionnaire>",
		Short: "Render a questionnaire as an HTML form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.render(cmd, args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.response, "response", "", "questionnaire response used to seed answers")
	flags.StringVar(&f.issues, "issues", "", "JSON or YAML map of linkId paths to validation messages")
	flags.StringVar(&f.renderer, "renderer", "", "renderer name (default from config)")
	flags.StringVarP(&f.output, "output", "o", "", "output file (default stdout)")
	flags.StringSliceVar(&f.roots, "roots", nil, "render only these root linkIds")
	flags.StringVar(&f.locale, "locale", "", "locale for chrome messages")
	flags.StringVar(&f.title, "title", "", "override the form title")
	flags.StringVar(&f.action, "action", "", "form action URL")
	return cmd
}

func (a *app) render(cmd *cobra.Command, arg string, f renderFlags) error {
	start := time.Now()
	engine, err := a.engine(nil, nil)
	if err != nil {
		return err
	}

	req := orchestrator.Request{
		Source:       source(arg),
		Renderer:     f.renderer,
		ThemeName:    a.cfg.Theme.Name,
		ThemeVariant: a.cfg.Theme.Variant,
		RenderOptions: render.RenderOptions{
			Title:  f.title,
			Action: f.action,
			Roots:  f.roots,
			Locale: f.locale,
		},
	}
	if req.Renderer == "" {
		req.Renderer = a.cfg.Renderer
	}
	if f.response != "" {
		src := source(f.response)
		req.ResponseSource = &src
	}
	if f.issues != "" {
		issues, err := readIssues(f.issues)
		if err != nil {
			return err
		}
		req.Issues = issues
	}

	out, err := engine.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}
	if err := writeOutput(cmd.OutOrStdout(), f.output, out); err != nil {
		return err
	}
	a.logger.Debug("rendered questionnaire",
		zap.String("source", arg),
		zap.Int("bytes", len(out)),
		elapsed(start),
	)
	return nil
}

func readIssues(path string) (map[string][]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issues: %w", err)
	}
	var issues map[string][]string
	if err := questionnaire.Decode(data, &issues); err != nil {
		return nil, fmt.Errorf("decode issues %s: %w", path, err)
	}
	return issues, nil
}
