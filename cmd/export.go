package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/export"
	"github.com/sells-group/restock/internal/metrics"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the inventory sync sheet and ledger to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), metrics.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		items, err := env.Service.Inventory(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "export")
		}
		if err := export.Save(exportOut, items); err != nil {
			return err
		}

		zap.L().Info("export complete",
			zap.String("path", exportOut),
			zap.Int("items", len(items)),
		)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "inventory.xlsx", "output workbook path")
	rootCmd.AddCommand(exportCmd)
}
