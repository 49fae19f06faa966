package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"

	"github.com/tobsdb/tdbprop/internal/builder"
	"github.com/tobsdb/tdbprop/internal/conn"
	"github.com/tobsdb/tdbprop/internal/record"
	"github.com/tobsdb/tdbprop/internal/sqlite"
)

func sortedTables(schema *builder.Schema) []string {
	names := schema.Tables.Keys()
	slices.Sort(names)
	return names
}

// model loads the configured schema and returns the model for table.
func (a *app) model(table string) (*record.Model, error) {
	if table == "" {
		return nil, fmt.Errorf("No table specified; use --table")
	}
	schema, err := builder.LoadSchemaFile(a.schemaPath())
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return schema.Model(table)
}

// openStore opens the configured store. The caller must call the returned
// close func.
func (a *app) openStore(ctx context.Context) (record.Store, func() error, error) {
	switch kind := a.cfg.GetString(cfgKeyStore); kind {
	case storeSQLite:
		cwd, _ := os.Getwd()
		dir := resolvePath(cwd, a.cfg.GetString(cfgKeyDataDir))
		if dir == "" {
			dir = filepath.Join(cwd, DefaultDataDirName)
		}
		s, err := sqlite.Open(dir)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return s, s.Close, nil
	case storeWS:
		c, err := conn.NewClient(a.cfg.GetString(cfgKeyURL), a.cfg.GetString(cfgKeyDB), conn.ClientOptions{})
		if err != nil {
			return nil, nil, err
		}
		if err := c.Connect(ctx); err != nil {
			return nil, nil, fmt.Errorf("connect ws store: %w", err)
		}
		return c, c.Disconnect, nil
	default:
		return nil, nil, fmt.Errorf("Invalid store: %s", kind)
	}
}

// readRecordData reads a JSON object from the file named in args, or from
// stdin when no file is given.
func readRecordData(cmd *cobra.Command, args []string) (map[string]any, error) {
	var r io.Reader = cmd.InOrStdin()
	if len(args) > 0 && args[0] != "-" {
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return nil, err
		}
		r = bytes.NewReader(raw)
	}

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var data map[string]any
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("parse record: %w", err)
	}
	return data, nil
}

// buildRecord coerces and sets every value of data on a new record. A JSON
// null is set as is and left to the nullability check.
func buildRecord(model *record.Model, data map[string]any) (*record.Record, error) {
	r := model.New()
	for _, p := range model.Properties() {
		raw, ok := data[p.Name()]
		if !ok {
			continue
		}
		var err error
		if raw == nil {
			err = r.Set(p.Name(), nil)
		} else {
			err = r.Coerce(p.Name(), raw)
		}
		if err != nil {
			return nil, err
		}
	}
	for key := range data {
		if _, ok := model.Property(key); !ok {
			return nil, fmt.Errorf("%w: %s.%s", record.ErrPropertyNotFound, model.Name, key)
		}
	}
	return r, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
