package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/typesystem"
)

func newCoerceCmd(a *app) *cobra.Command {
	var table, field string

	cmd := &cobra.Command{
		Use:   "coerce --table T --field F VALUE",
		Short: "Coerce a value into a property's type",
		Long: `Coerce converts VALUE into the native type of the property and prints
the result in wire form with the resulting type.

Example:
  tdb-props coerce --table user --field age 42`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model(table)
			if err != nil {
				return err
			}
			p, ok := model.Property(field)
			if !ok {
				return fmt.Errorf("Field not found: %s.%s", table, field)
			}

			native, err := p.CoerceValue(field, args[0])
			if err != nil {
				return err
			}
			wire, err := p.Datatype().ToWire(typesystem.NewJSON(), native)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", mustJSON(wire), p.Datatype())
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table the field belongs to")
	cmd.Flags().StringVar(&field, "field", "", "field (property) name")
	return cmd
}
