package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/builder"
)

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check [schema]",
		Short: "Check a schema file for errors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema_path := a.schemaPath()
			if len(args) > 0 {
				cwd, _ := os.Getwd()
				schema_path = resolvePath(cwd, args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checking %s for errors\n", schema_path)

			schema, err := builder.LoadSchemaFile(schema_path)
			if err != nil {
				return fmt.Errorf("Invalid schema; %w", err)
			}

			for _, name := range sortedTables(schema) {
				model := schema.Tables.Get(name)
				fmt.Fprintf(out, "  %s: %d properties\n", name, len(model.Properties()))
			}
			fmt.Fprintln(out, "Schema checks successful: Schema is valid")
			return nil
		},
	}
}
