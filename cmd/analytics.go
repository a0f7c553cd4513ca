package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/restock/internal/journey"
	"github.com/sells-group/restock/internal/metrics"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List velocity profiles, fastest-moving first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), metrics.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		profiles, err := env.Service.Profiles(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "profiles")
		}
		if jsonOutput {
			return printJSON(os.Stdout, profiles)
		}
		formatProfiles(os.Stdout, profiles)
		return nil
	},
}

var similarCmd = &cobra.Command{
	Use:   "similar <key-or-name>",
	Short: "List profiles whose names look like the given one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), metrics.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		matches, err := env.Service.Similar(cmd.Context(), args[0])
		if err != nil {
			return eris.Wrap(err, "similar")
		}
		if jsonOutput {
			return printJSON(os.Stdout, matches)
		}
		formatSimilar(os.Stdout, matches)
		return nil
	},
}

var (
	journeyView  string
	journeyQuery string
)

var journeyCmd = &cobra.Command{
	Use:   "journey",
	Short: "Show the message, order and line-item journey",
	RunE: func(cmd *cobra.Command, _ []string) error {
		view, err := journey.ParseView(journeyView)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), metrics.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		tree, err := env.Service.Journey(cmd.Context(), view, journeyQuery)
		if err != nil {
			return eris.Wrap(err, "journey")
		}
		if jsonOutput {
			return printJSON(os.Stdout, tree)
		}
		formatJourney(os.Stdout, tree)
		return nil
	},
}

var inventorySync bool

var inventoryCmd = &cobra.Command{
	Use:   "inventory",
	Short: "Show the inventory ledger with reorder recommendations",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), metrics.NewRegistry())
		if err != nil {
			return err
		}
		defer env.Close()

		if inventorySync {
			records, err := env.Service.SyncRecords(cmd.Context())
			if err != nil {
				return eris.Wrap(err, "inventory sync")
			}
			if jsonOutput {
				return printJSON(os.Stdout, records)
			}
			formatSyncRecords(os.Stdout, records)
			return nil
		}

		items, err := env.Service.Inventory(cmd.Context())
		if err != nil {
			return eris.Wrap(err, "inventory")
		}
		if jsonOutput {
			return printJSON(os.Stdout, items)
		}
		formatInventory(os.Stdout, items)
		return nil
	},
}

func init() {
	journeyCmd.Flags().StringVar(&journeyView, "view", "chronological", "grouping: chronological, supplier or item")
	journeyCmd.Flags().StringVarP(&journeyQuery, "query", "q", "", "search text; narrows the chronological view")
	inventoryCmd.Flags().BoolVar(&inventorySync, "sync", false, "print downstream sync records instead of the ledger")

	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(journeyCmd)
	rootCmd.AddCommand(inventoryCmd)
}
