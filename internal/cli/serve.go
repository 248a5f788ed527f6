package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/updatelog/internal/api"
	"github.com/roach88/updatelog/internal/importer"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON HTTP API",
		Long: `Serve the meeting update API over HTTP.

The database is created if it does not exist. The server stops gracefully
on SIGINT or SIGTERM.

Example:
  updatelog serve --db ./updatelog.db --addr :8080
  updatelog serve --config ./updatelog.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func runServe(opts *ServeOptions, cmd *cobra.Command) error {
	s, err := opts.open(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	addr := s.cfg.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	server := api.New(s.engine, s.logger, api.Options{
		CORSOrigins: s.cfg.HTTP.CORSOrigins,
		Import: importer.Options{
			Sheet:        s.cfg.Import.Sheet,
			ClientColumn: s.cfg.Import.ClientColumn,
		},
		ExportSheet: s.cfg.Export.Sheet,
	})

	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			s.logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	s.logger.Info("server starting", "db", s.cfg.Database, "addr", addr)
	fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s. Press Ctrl-C to stop.\n", addr)

	if err := server.ListenAndServe(ctx, addr); err != nil {
		return WrapExitError(ExitCommandError, "server error", err)
	}

	s.logger.Info("server stopped gracefully")
	return nil
}
