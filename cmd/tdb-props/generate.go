package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/builder"
	"github.com/tobsdb/tdbprop/internal/generate"
)

func newGenerateCmd(a *app) *cobra.Command {
	var lang, out string

	cmd := &cobra.Command{
		Use:   "generate --lang LANG",
		Short: "Generate wire types from the schema",
		Long: `Generate renders the configured schema as json, typescript (ts) or
golang (go) wire types.

Example:
  tdb-props generate --lang go --out ./schema/types.go`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := builder.LoadSchemaFile(a.schemaPath())
			if err != nil {
				return fmt.Errorf("load schema: %w", err)
			}
			res, err := generate.SchemaToLang(schema, lang)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(res)
				return err
			}
			return os.WriteFile(out, res, 0o644)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "json", "output language: json, ts or go")
	cmd.Flags().StringVar(&out, "out", "", "output file (default: stdout)")
	return cmd
}
