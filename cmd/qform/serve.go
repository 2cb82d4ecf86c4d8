package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/goliatone/go-qform/components/valuesets"
	"github.com/goliatone/go-qform/pkg/options"
	"github.com/goliatone/go-qform/pkg/renderers/vanilla"
	"github.com/goliatone/go-qform/pkg/server"
	"github.com/goliatone/go-qform/pkg/session"
)

const lookupEndpoint = "/valuesets"

func newServeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve questionnaires as stateful HTML forms",
		Args:  cobra.NoArgs,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			// .env is optional; values only fill variables that are unset.
			if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("load .env: %w", err)
			}
			return a.init()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			handler, err := a.handler(cmd.Context())
			if err != nil {
				return err
			}
			return a.serve(cmd.Context(), handler)
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address")
	flags.String("forms", "", "directory of questionnaire definitions")
	_ = a.v.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = a.v.BindPFlag("server.forms", flags.Lookup("forms"))
	return cmd
}

// handler wires the session store, the catalog and the render pipeline.
func (a *app) handler(ctx context.Context) (http.Handler, error) {
	sc := a.cfg.Server

	catalog, err := server.LoadCatalog(ctx, os.DirFS(sc.Forms))
	if err != nil {
		return nil, fmt.Errorf("load forms from %s: %w", sc.Forms, err)
	}

	engine, err := a.engine([]vanilla.Option{vanilla.WithLookupEndpoint(lookupEndpoint)}, nil)
	if err != nil {
		return nil, err
	}

	lookups := []valuesets.OptionFn{valuesets.WithLogger(a.logger)}
	if url := strings.TrimSpace(a.cfg.Terminology.URL); url != "" {
		embedded, err := valuesets.DefaultCatalog()
		if err != nil {
			return nil, err
		}
		lookups = append(lookups,
			valuesets.WithFetcher(valuesets.Chain(embedded, &options.HTTPFetcher{BaseURL: url})),
			valuesets.WithTimeout(a.cfg.Terminology.Timeout),
		)
	}

	store := session.NewStore(
		session.WithExpiration(sc.SessionTTL, sc.SessionTTL/2),
		session.WithLogger(a.logger),
	)
	srv, err := server.New(engine, store, catalog,
		server.WithLogger(a.logger),
		server.WithRateLimit(sc.RateLimit, time.Second),
		server.WithAllowedOrigins(sc.AllowedOrigins...),
		server.WithValueSets(valuesets.New(lookups...)),
	)
	if err != nil {
		return nil, err
	}
	a.logger.Info("questionnaires loaded", zap.Strings("names", catalog.Names()))
	return srv.Handler(), nil
}

func (a *app) serve(ctx context.Context, handler http.Handler) error {
	sc := a.cfg.Server
	httpServer := &http.Server{
		Addr:              sc.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	a.logger.Info("listening", zap.String("addr", sc.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down", zap.Duration("grace", sc.ShutdownGrace))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), sc.ShutdownGrace)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
