package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/typesystem"
)

func newSaveCmd(a *app) *cobra.Command {
	var table, id string

	cmd := &cobra.Command{
		Use:   "save --table T [record.json]",
		Short: "Validate a JSON record and persist it",
		Long: `Save validates a JSON record like validate does and persists it through
the configured store, printing the record id.

Example:
  tdb-props save --table user user.json
  tdb-props save --store ws --url ws://localhost:7085 --table user --id abc user.json`,
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
			r.ID = id

			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			if err := r.Save(cmd.Context(), store, typesystem.NewJSON()); err != nil {
				return fmt.Errorf("save record: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), r.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table the record belongs to")
	cmd.Flags().StringVar(&id, "id", "", "record id (default: generated)")
	return cmd
}

func newLoadCmd(a *app) *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "load --table T ID",
		Short: "Load a stored record and print its wire form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.model(table)
			if err != nil {
				return err
			}

			store, closeStore, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			ts := typesystem.NewJSON()
			r, err := model.Load(cmd.Context(), store, ts, args[0])
			if err != nil {
				return err
			}
			wire, err := r.ToWire(ts)
			if err != nil {
				return err
			}
			return printJSON(cmd, wire)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "table the record belongs to")
	return cmd
}
