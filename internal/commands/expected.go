package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/extratos/verifier/internal/session"
	"github.com/extratos/verifier/internal/source"
)

func newExpectedCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "expected <spreadsheet>",
		Short: "Print the expected-amount list found in a spreadsheet",
		Long: `Collects every positive amount in the first sheet of a workbook (or a
delimited file), removes duplicates and prints them largest first, in the
format accepted by "reconcile --expected".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			svc, err := session.NewService(cfg, logger)
			if err != nil {
				return err
			}

			grid, err := source.ReadGrid(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), svc.PrefillExpected(grid))
			return nil
		},
	}
}
