package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/typesystem"
)

func newValidateCmd(a *app) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "validate --table T [record.json]",
		Short: "Coerce and validate a JSON record",
		Long: `Validate reads a JSON object (from the file, or stdin), coerces every value
into its property's type, validates the record and prints its wire form.

Example:
  tdb-props validate --table user user.json
  echo '{"name": "a"}' | tdb-props validate --table user`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model(table)
			if err != nil {
				return err
			}
			data, err := readRecordData(cmd, args)
			if err != nil {
				return err
			}
			r, err := buildRecord(model, data)
			if err != nil {
				return err
			}
			wire, err := r.ToWire(typesystem.NewJSON())
			if err != nil {
				return err
			}
			return printJSON(cmd, wire)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table the record belongs to")
	return cmd
}

func mustJSON(v any) string {
	out, err := json.Marshal(v)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
