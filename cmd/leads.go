package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/prospecta/leads-cli/internal/store"
)

var (
	leadsTerm  string
	leadsLimit int
)

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List stored leads, best scores first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		rows, err := st.ListLeads(ctx, store.LeadFilter{
			Term:  leadsTerm,
			Limit: leadsLimit,
		})
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	},
}

func init() {
	leadsCmd.Flags().StringVar(&leadsTerm, "term", "", "filter by the search term that captured the lead")
	leadsCmd.Flags().IntVar(&leadsLimit, "limit", 0, "maximum rows to return")
	rootCmd.AddCommand(leadsCmd)
}
