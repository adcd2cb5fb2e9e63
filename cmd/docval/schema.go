package main

import (
	"fmt"

	"github.com/GiantCroissant-Lunar/pigeon-pea/pkg/registry"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of the docs registry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		schema, err := registry.SchemaJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), schema)
		return nil
	},
}
