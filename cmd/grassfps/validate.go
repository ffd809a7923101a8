package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

type validateParams struct {
	configParams
	strict bool
}

func init() {
	var params validateParams

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration",
		Long: `Validate the configuration against its schema and check every flag
operation. With --strict every editor identifier pattern is compiled as well.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			root, err := params.load(log)
			if err != nil {
				return err
			}

			if params.strict {
				m, err := root.Matcher(log)
				if err != nil {
					return err
				}
				if err := root.ValidatePatterns(m); err != nil {
					return err
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "configuration ok, %d categories\n", len(root.Categories))
			return nil
		},
	}

	params.addFlags(validate.Flags())
	validate.Flags().BoolVar(&params.strict, "strict", false, "compile all editor identifier patterns")

	RootCommand.AddCommand(validate)
}
