package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/tobsdb/tdbprop/pkg"
)

// app carries the flags and loaded configuration shared by all commands.
type app struct {
	configDir string
	cfg       *viper.Viper
}

// flags bound onto config keys
var boundFlags = map[string]string{
	"schema":    cfgKeySchema,
	"log-level": cfgKeyLogLevel,
	"store":     cfgKeyStore,
	"data-dir":  cfgKeyDataDir,
	"url":       cfgKeyURL,
	"db":        cfgKeyDB,
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:               "tdb-props",
		Short:             "Check schemas and validate records against typed properties",
		Version:           Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configDir, "config-dir", "", "configuration directory (default: $(CWD)/.tdbprops)")
	pf.String("schema", "", "schema file (default: schema.tdb)")
	pf.String("log-level", "", "log level: none, error or debug")
	pf.String("store", "", "record store: sqlite or ws")
	pf.String("data-dir", "", "sqlite data directory (default: $(CWD)/.tdbprops-db)")
	pf.String("url", "", "websocket store url")
	pf.String("db", "", "websocket store database")

	root.AddCommand(
		newVersionCmd(),
		newCheckCmd(a),
		newCoerceCmd(a),
		newValidateCmd(a),
		newSaveCmd(a),
		newLoadCmd(a),
		newServeCmd(a),
		newGenerateCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	dir, err := resolveConfigDir(a.configDir)
	if err != nil {
		return err
	}
	a.configDir = dir

	v, err := loadConfig(dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	for flag, key := range boundFlags {
		if err := v.BindPFlag(key, cmd.Root().PersistentFlags().Lookup(flag)); err != nil {
			return err
		}
	}
	a.cfg = v

	level, err := pkg.ParseLogLevel(v.GetString(cfgKeyLogLevel))
	if err != nil {
		return err
	}
	pkg.SetLogLevel(level)
	pkg.DebugLog("loaded config", pkg.Fields("dir", dir, "store", v.GetString(cfgKeyStore)))
	return nil
}

// schemaPath resolves the configured schema against the working directory.
func (a *app) schemaPath() string {
	cwd, _ := os.Getwd()
	return resolvePath(cwd, a.cfg.GetString(cfgKeySchema))
}
