package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"dynpage/internal/config"
	"dynpage/internal/logging"
	"dynpage/pkg/layout"
	"dynpage/pkg/storage"
	"dynpage/pkg/tree"
)

var (
	dbPath     string
	configPath string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "dynpage",
		Short:         "Inspect and exercise a dynamic-size B+tree page store",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&dbPath, "db", "dynpage.db", "path to the data file")
	root.PersistentFlags().StringVar(&configPath, "config", "", "optional config file (yaml/json/toml)")

	root.AddCommand(newPutCmd())
	root.AddCommand(newGetCmd())
	root.AddCommand(newDelCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newDumpCmd())
	return root
}

// openTree loads configuration, opens the page store at dbPath, and
// constructs the byte-keyed tree used by every subcommand. The caller
// must call the returned close function once done.
func openTree() (*tree.Tree[[]byte, []byte], *storage.Store, *zap.Logger, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	logger, err := logging.New(cfg.Logging.Level)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	store := storage.NewStore(dbPath, cfg.Storage.PageSize)
	if err := store.Open(); err != nil {
		_ = logger.Sync()
		return nil, nil, nil, nil, err
	}

	t, err := tree.New[[]byte, []byte](store, layout.NewBytesLayout(), tree.CompareBytes, logger)
	if err != nil {
		store.Close()
		_ = logger.Sync()
		return nil, nil, nil, nil, err
	}

	closeFn := func() {
		store.Close()
		_ = logger.Sync()
	}
	return t, store, logger, closeFn, nil
}
