package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/internal/logging"
	"github.com/goliatone/go-qform/pkg/orchestrator"
	"github.com/goliatone/go-qform/pkg/questionnaire"
	"github.com/goliatone/go-qform/pkg/render"
	"github.com/goliatone/go-qform/pkg/renderers/tui"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla"
)

// app carries the state shared by every subcommand once the root command has
// resolved its configuration.
type app struct {
	v       *viper.Viper
	out     io.Writer
	cfgFile string
	cfg     Config
	logger  *zap.Logger

	// driver replaces the survey prompts of `fill` when set.
	driver tui.PromptDriver
}

func newRootCommand(out io.Writer) *cobra.Command {
	return newApp(out).command()
}

func newApp(out io.Writer) *app {
	return &app{v: viper.New(), out: out}
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "qform",
		Short:         "Render and fill in questionnaires",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	cmd.SetOut(a.out)

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default ./qform.yaml or ~/.config/qform/qform.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.String("theme", "", "theme name")
	flags.String("variant", "", "theme variant")
	flags.String("terminology", "", "FHIR terminology server base URL")
	flags.Bool("preload", true, "wait for value set expansions before rendering")
	flags.String("presets", "", "preset document patched onto every built tree")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("theme.name", flags.Lookup("theme"))
	_ = a.v.BindPFlag("theme.variant", flags.Lookup("variant"))
	_ = a.v.BindPFlag("terminology.url", flags.Lookup("terminology"))
	_ = a.v.BindPFlag("preload", flags.Lookup("preload"))
	_ = a.v.BindPFlag("presets", flags.Lookup("presets"))

	cmd.AddCommand(
		newRenderCommand(a),
		newFillCommand(a),
		newServeCommand(a),
	)
	return cmd
}

func (a *app) init() error {
	cfg, err := loadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	if used := a.v.ConfigFileUsed(); used != "" {
		a.logger.Debug("config loaded", zap.String("file", used))
	}
	return nil
}

// engine assembles the orchestrator from the resolved configuration.
// Renderer options apply to the HTML renderer; the terminal renderer is
// registered alongside it.
func (a *app) engine(htmlOpts []vanilla.Option, tuiOpts []tui.Option) (*orchestrator.Orchestrator, error) {
	registry := render.NewRegistry()

	html, err := vanilla.New(htmlOpts...)
	if err != nil {
		return nil, fmt.Errorf("vanilla renderer: %w", err)
	}
	registry.MustRegister(html)

	terminal, err := tui.New(tuiOpts...)
	if err != nil {
		return nil, fmt.Errorf("tui renderer: %w", err)
	}
	registry.MustRegister(terminal)

	opts := []orchestrator.Option{
		orchestrator.WithRegistry(registry),
		orchestrator.WithDefaultRenderer(vanilla.Name),
		orchestrator.WithPreload(a.cfg.Preload),
		orchestrator.WithLogger(a.logger),
	}
	if url := strings.TrimSpace(a.cfg.Terminology.URL); url != "" {
		opts = append(opts, orchestrator.WithTerminologyServer(url, a.cfg.Terminology.Timeout))
	}
	if len(a.cfg.Theme.Manifests) > 0 {
		manifests, err := loadManifests(a.cfg.Theme.Manifests)
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithThemeManifests(a.cfg.Theme.Name, a.cfg.Theme.Variant, manifests...))
	}
	if path := strings.TrimSpace(a.cfg.Presets); path != "" {
		preset, err := orchestrator.NewPresetTransformerFromFS(os.DirFS(filepath.Dir(path)), filepath.Base(path))
		if err != nil {
			return nil, err
		}
		opts = append(opts, orchestrator.WithTransformers(preset))
	}
	return orchestrator.New(opts...), nil
}

// source turns a CLI argument into a loader source: http(s) URLs are fetched,
// anything else is read from disk.
func source(arg string) questionnaire.Source {
	if strings.HasPrefix(arg, "http://") || strings.HasPrefix(arg, "https://") {
		return questionnaire.SourceFromURL(arg)
	}
	return questionnaire.SourceFromFile(arg)
}

func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func elapsed(start time.Time) zap.Field {
	return zap.Duration("elapsed", time.Since(start))
}
