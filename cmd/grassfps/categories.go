package main

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func init() {
	var params configParams
	var only []string

	categories := &cobra.Command{
		Use:   "categories",
		Short: "List the configured categories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}

			root, err := params.load(log)
			if err != nil {
				return err
			}

			selected, err := root.Select(only...)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.Header("#", "Identifier", "Policy", "Filter", "Fields")
			for i, c := range selected {
				fields := strings.Join(c.EnabledFields(), ", ")
				if fields == "" {
					fields = "-"
				}
				if err := table.Append([]string{strconv.Itoa(i), c.Identifier, c.Policy(), c.Filter.String(), fields}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}

	params.addFlags(categories.Flags())
	categories.Flags().StringSliceVar(&only, "only", nil, "list only categories whose identifier matches the glob")

	RootCommand.AddCommand(categories)
}
