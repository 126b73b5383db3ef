package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/prospecta/leads-cli/internal/store"
)

var (
	exportOut  string
	exportTerm string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored leads to an XLSX spreadsheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := store.ExportXLSX(ctx, st, exportOut, store.LeadFilter{Term: exportTerm}); err != nil {
			return eris.Wrap(err, "export xlsx")
		}

		zap.L().Info("export complete", zap.String("path", exportOut))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportOut, "out", "leads.xlsx", "output spreadsheet path")
	exportCmd.Flags().StringVar(&exportTerm, "term", "", "filter by the search term that captured the lead")
	rootCmd.AddCommand(exportCmd)
}
