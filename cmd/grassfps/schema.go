package main

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	ext_config "github.com/grassfps/grassfps/config"
	"github.com/grassfps/grassfps/internal/config"
)

func init() {
	var reflect bool

	schema := &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs := ext_config.Schema()
			if reflect {
				var err error
				if bs, err = config.ReflectSchema(); err != nil {
					return err
				}
			}
			_, err := cmd.OutOrStdout().Write(bs)
			return err
		},
	}
	schema.Flags().BoolVar(&reflect, "reflect", false, "reflect the schema from the configuration types instead of printing the embedded one")

	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Print the default configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bs, err := yaml.Marshal(config.Default())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(bs)
			return err
		},
	}

	RootCommand.AddCommand(schema, defaults)
}
