package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	DefaultConfigDirName = ".tdbprops"
	DefaultDataDirName   = ".tdbprops-db"

	EnvPrefix    = "TDBPROPS"
	EnvConfigDir = EnvPrefix + "_CONFIG_DIR"

	cfgKeySchema   = "schema"
	cfgKeyLogLevel = "log_level"
	cfgKeyStore    = "store"
	cfgKeyDataDir  = "data_dir"
	cfgKeyURL      = "url"
	cfgKeyDB       = "db"

	storeSQLite = "sqlite"
	storeWS     = "ws"

	defaultSchema   = "schema.tdb"
	defaultLogLevel = "error"
	defaultURL      = "ws://localhost:7085"
	defaultDB       = "default"
)

// defaultConfigYAML is written to config.yaml on first run.
const defaultConfigYAML = `# tdb-props configuration

# Schema file; .yaml/.yml files use the YAML layout
schema: schema.tdb

# none, error or debug
log_level: error

# Record store: sqlite or ws
store: sqlite

# Data directory for the sqlite store (default: $(CWD)/.tdbprops-db)
# data_dir:

# Websocket store
url: ws://localhost:7085
db: default
`

// resolveConfigDir applies --config-dir > TDBPROPS_CONFIG_DIR > $(CWD)/.tdbprops.
func resolveConfigDir(flagValue string) (string, error) {
	if flagValue != "" {
		return filepath.Abs(flagValue)
	}
	if env := os.Getenv(EnvConfigDir); env != "" {
		return filepath.Abs(env)
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(cwd, DefaultConfigDirName), nil
}

// loadConfig reads config.yaml from configDir, creating the directory and a
// default file on first run. Environment variables prefixed TDBPROPS_
// override file values.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := ensureDefaultConfigFile(configDir); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeySchema, defaultSchema)
	v.SetDefault(cfgKeyLogLevel, defaultLogLevel)
	v.SetDefault(cfgKeyStore, storeSQLite)
	v.SetDefault(cfgKeyURL, defaultURL)
	v.SetDefault(cfgKeyDB, defaultDB)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	return v, nil
}

func ensureDefaultConfigFile(configDir string) error {
	path := filepath.Join(configDir, configFileExt)

	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	return os.WriteFile(path, []byte(defaultConfigYAML), 0o644)
}

// resolvePath makes p absolute relative to base. An empty p stays empty.
func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}
