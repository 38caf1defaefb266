package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/extratos/verifier/internal/runlog"
)

func newHistoryCommand(g *globalFlags) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previous reconcile runs recorded in the report directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := g.load(cmd)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = cfg.Report.OutDir
			}

			entries, err := runlog.Read(outDir)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintf(w, "No runs recorded in %s\n", outDir)
				return nil
			}
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s  %d/%d matched (%s%%)  %d movements  %s  [%s]\n",
					e.ID, e.Timestamp.Format("2006-01-02 15:04"),
					e.Matched, e.Expected, e.Rate.StringFixed(1),
					e.Movements, e.Report, strings.Join(e.Statements, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "report directory (default from config)")

	return cmd
}
