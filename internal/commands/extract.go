package commands

import (
	"github.com/spf13/cobra"

	"github.com/extratos/verifier/internal/session"
)

func newExtractCommand(g *globalFlags) *cobra.Command {
	var (
		dir string
		all bool
	)

	cmd := &cobra.Command{
		Use:   "extract [statement...]",
		Short: "Print the movements read from statement exports",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := g.load(cmd)
			if err != nil {
				return err
			}
			paths, err := statementPaths(args, dir)
			if err != nil {
				return err
			}
			svc, err := session.NewService(cfg, logger)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			sess, err := loadStatements(w, svc, paths, cfg.Statements.Encoding, logger)
			if err != nil {
				return err
			}
			if all {
				printMovements(w, "Movements:", sess.Records, cfg.Report.Currency)
			} else {
				printMovements(w, "Sample of movements:", sess.Sample(sampleSize), cfg.Report.Currency)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "also read every .csv/.txt export in this directory")
	cmd.Flags().BoolVar(&all, "all", false, "print every movement instead of a sample")

	return cmd
}
