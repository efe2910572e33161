// Package main is the wali CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/wali/internal/backend"
	"github.com/hyperjump/wali/internal/cli"
	"github.com/hyperjump/wali/internal/config"
	"github.com/hyperjump/wali/internal/indexer"
	"github.com/hyperjump/wali/internal/search"
	"github.com/hyperjump/wali/internal/storage"
	"github.com/hyperjump/wali/internal/vector"
	"github.com/hyperjump/wali/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "~/.wali/config.yaml"

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath string
	debug      bool
	output     string
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}
	root := &cobra.Command{
		Use:           "wali",
		Short:         "Ask questions about your own documents",
		Long:          `wali ingests local documents into a knowledge base and answers questions grounded on them.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")

	root.AddCommand(
		newServerCmd(opts),
		newIngestCmd(opts),
		newAskCmd(opts),
		newDocumentsCmd(opts),
		newConversationsCmd(opts),
		newSetKeyCmd(opts),
		newStatusCmd(opts),
		newWatchCmd(opts),
		newReindexCmd(opts),
	)
	return root
}

// loadConfig loads config from path. When path is the default, config.yaml in the
// current directory wins if it exists; when neither exists the built-in defaults
// are used. Returns the config and the path that was actually loaded ("" for defaults).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, err := os.Getwd(); err == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		path = expandHome(path)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			cfg := config.Default()
			config.ApplyEnv(cfg)
			if err := cfg.Validate(); err != nil {
				return nil, "", err
			}
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func expandHome(path string) string {
	if len(path) < 2 || path[:2] != "~/" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}

// app holds the wired components one command runs against.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Storage
	index   vector.Index
	backend *backend.Backend
	indexer *indexer.Indexer
	engine  *search.Engine
	format  cli.OutputFormat
	// dirty marks the vector index for saving on Close.
	dirty bool
}

// openApp loads config and wires storage, the vector index, the backend and both
// pipelines. The caller must Close the app.
func openApp(ctx context.Context, opts *globalOptions) (*app, error) {
	format, err := cli.ParseOutputFormat(opts.output)
	if err != nil {
		return nil, err
	}
	cfg, _, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger, err := utils.NewLogger(cfg.Debug || opts.debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	index, err := vector.NewIndex(string(vector.IndexTypeMemory), cfg.Embedding.Dimensions)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize vector index: %w", err)
	}
	if err := vector.LoadFile(index, cfg.Storage.VectorIndexPath); err != nil {
		logger.Warn("vector index load skipped (run reindex)",
			zap.String("path", cfg.Storage.VectorIndexPath), zap.Error(err))
	}

	be := backend.New(cfg, backend.WithLogger(logger))
	if !be.IsConfigured() {
		key, ok, err := store.GetSetting(ctx, backend.SettingAPIKey)
		if err != nil {
			logger.Warn("stored api key unreadable", zap.Error(err))
		} else if ok {
			if err := be.Configure(key); err != nil {
				logger.Warn("stored api key rejected", zap.Error(err))
			}
		}
	}

	idx, err := indexer.NewIndexer(store, index, be, cfg.RAG, cfg.Embedding, indexer.WithLogger(logger))
	if err != nil {
		_ = store.Close()
		return nil, err
	}
	engine := search.NewEngine(store, index, be, cfg.RAG, search.WithLogger(logger))

	a := &app{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		index:   index,
		backend: be,
		indexer: idx,
		engine:  engine,
		format:  format,
	}
	a.checkIndex(ctx)
	return a, nil
}

// checkIndex warns when the vector snapshot and the stored chunks disagree.
func (a *app) checkIndex(ctx context.Context) {
	chunks, err := a.store.CountChunks(ctx)
	if err != nil {
		return
	}
	if int64(a.index.Len()) != chunks {
		a.logger.Warn("vector index out of sync with storage; run \"wali reindex\"",
			zap.Int("vectors", a.index.Len()), zap.Int64("chunks", chunks))
	}
}

// Close persists the vector index when it changed and releases storage.
func (a *app) Close() {
	if a.dirty {
		if err := vector.SaveFile(a.index, a.cfg.Storage.VectorIndexPath); err != nil {
			a.logger.Warn("vector index save failed",
				zap.String("path", a.cfg.Storage.VectorIndexPath), zap.Error(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("storage close failed", zap.Error(err))
	}
	_ = a.logger.Sync()
}
