package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/config"
)

var (
	cfg        *config.Config
	inputFiles []string
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "restock",
	Short: "Order-to-inventory analytics",
	Long:  "Reconciles product names across purchase orders, builds consumption velocity profiles and reorder recommendations, and serves journey and inventory views.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return err
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVarP(&inputFiles, "file", "f", nil, "order dataset files (json, yaml, csv, xlsx); defaults to the order ledger")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "print results as JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
