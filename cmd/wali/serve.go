package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/server"
	"github.com/hyperjump/wali/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

func newServerCmd(opts *globalOptions) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Start the HTTP server",
		Long:  `Serves the HTTP API and, when watch directories are configured, ingests files dropped into them.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.dirty = true
			if host != "" {
				a.cfg.Server.Host = host
			}
			if port != 0 {
				a.cfg.Server.Port = port
			}

			inbox, err := a.startInbox(ctx, nil)
			if err != nil {
				return err
			}
			if inbox != nil {
				defer inbox.Stop()
			}

			srv := server.NewServer(a.engine, a.indexer, a.store, a.index, a.backend, a.cfg, a.logger)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info("Shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Stop(shutdownCtx)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides config)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides config)")
	return cmd
}

func newWatchCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [directory...]",
		Short: "Ingest files dropped into directories until interrupted",
		Long:  `Watches the given directories (or the configured ones) and keeps the knowledge base in step with their files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, opts)
			if err != nil {
				return err
			}
			defer a.Close()
			a.dirty = true

			dirs := args
			if len(dirs) == 0 {
				dirs = a.cfg.Watch.Directories
			}
			if len(dirs) == 0 {
				return errors.New("no directories to watch; pass some or set watch.directories")
			}
			inbox, err := a.startInbox(ctx, dirs)
			if err != nil {
				return err
			}
			cmd.Printf("Watching %s. Press Ctrl+C to stop.\n", strings.Join(dirs, ", "))
			<-ctx.Done()
			inbox.Stop()
			return nil
		},
	}
}

// startInbox starts watching dirs, or the configured directories when dirs is empty.
// It returns nil when there is nothing to watch.
func (a *app) startInbox(ctx context.Context, dirs []string) (*watcher.Inbox, error) {
	if len(dirs) == 0 {
		dirs = a.cfg.Watch.Directories
	}
	if len(dirs) == 0 {
		return nil, nil
	}
	inbox := watcher.NewInbox(dirs, a.cfg.Watch.Extensions, a.cfg.Watch.RecursiveOrDefault(), a.indexer,
		watcher.WithLogger(a.logger))
	if err := inbox.Start(ctx); err != nil {
		return nil, err
	}
	n := inbox.Sync(ctx)
	a.logger.Info("watching directories", zap.Strings("dirs", dirs), zap.Int("synced", n))
	return inbox, nil
}
