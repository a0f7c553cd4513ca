package main

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/loader"
	"github.com/sells-group/restock/internal/store"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import order datasets into the order ledger",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if len(inputFiles) == 0 {
			return eris.New("at least one --file is required")
		}

		ds, err := loader.LoadFiles(ctx, inputFiles)
		if err != nil {
			return eris.Wrap(err, "import")
		}
		if len(ds.Orders) == 0 {
			return eris.New("import: no orders found in input files")
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		batch, err := importDataset(ctx, st, ds)
		if err != nil {
			return err
		}

		zap.L().Info("import complete",
			zap.String("batch_id", batch.ID),
			zap.Int("orders", batch.OrderCount),
			zap.Int("messages", batch.MessageCount),
		)
		return nil
	},
}

// importDataset records ds as one ledger batch labelled with --source.
func importDataset(ctx context.Context, st store.Store, ds *loader.Dataset) (*store.Batch, error) {
	source := importSource
	if source == "" {
		source = strings.Join(inputFiles, ",")
	}
	batch, err := st.Import(ctx, source, ds.Orders, ds.Messages)
	if err != nil {
		return nil, eris.Wrap(err, "import")
	}
	return batch, nil
}

var batchesLimit int

var batchesCmd = &cobra.Command{
	Use:   "batches",
	Short: "List recent ledger imports",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		batches, err := st.ListBatches(ctx, batchesLimit)
		if err != nil {
			return eris.Wrap(err, "batches")
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), batches)
		}
		if len(batches) == 0 {
			cmd.PrintErrln("No imports found.")
			return nil
		}
		formatBatches(cmd.OutOrStdout(), batches)
		return nil
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the order ledger schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		st, err := initStore(cmd.Context())
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		zap.L().Info("ledger migrated",
			zap.String("driver", cfg.Store.Driver),
		)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "label recorded on the import batch (default: the file list)")
	batchesCmd.Flags().IntVar(&batchesLimit, "limit", 20, "max number of batches to display")

	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(batchesCmd)
	rootCmd.AddCommand(migrateCmd)
}
