package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	configFileExt  = "config.yaml"

	cfgKeyDataDir     = "data_dir"
	cfgKeyDB          = "db"
	cfgKeyJournalMode = "journal_mode"
	cfgKeyForeignKeys = "foreign_keys"
	cfgKeyBusyTimeout = "busy_timeout_ms"
)

const configHeader = "# shelf configuration\n# data_dir is optional and overridable by --data-dir.\n\n"

// configFile holds the structure written to config.yaml.
type configFile struct {
	DataDir       string `yaml:"data_dir,omitempty"`
	DB            string `yaml:"db"`
	JournalMode   string `yaml:"journal_mode"`
	ForeignKeys   bool   `yaml:"foreign_keys"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

func defaultConfigFile() configFile {
	return configFile{
		DB:            paths.DefaultDatabaseName,
		JournalMode:   types.JournalWAL,
		ForeignKeys:   true,
		BusyTimeoutMS: 5000,
	}
}

// loadConfig reads config.yaml from the resolved config directory using Viper.
// It creates the config directory and a default config.yaml on first run.
// A missing config.yaml is not an error.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure config dir: %w", err)
	}
	if err := writeConfigIfMissing(filepath.Join(configDir, configFileExt), defaultConfigFile()); err != nil {
		return nil, fmt.Errorf("ensure default config: %w", err)
	}

	def := defaultConfigFile()
	v := viper.New()
	v.SetDefault(cfgKeyDB, def.DB)
	v.SetDefault(cfgKeyJournalMode, def.JournalMode)
	v.SetDefault(cfgKeyForeignKeys, def.ForeignKeys)
	v.SetDefault(cfgKeyBusyTimeout, def.BusyTimeoutMS)
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

// writeConfigIfMissing creates config.yaml from cfg if the file does not
// exist. If it already exists, the function returns nil.
func writeConfigIfMissing(path string, cfg configFile) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, append([]byte(configHeader), data...), 0o644)
}

// resolved is the outcome of flag, environment and config.yaml resolution.
type resolved struct {
	configDir string
	dataDir   string
	cfg       types.Config
}

// resolve loads config.yaml and builds the connection config. The data
// directory is not created.
func resolve() (resolved, error) {
	configDir, err := paths.ResolveConfigDir(flags.configDir)
	if err != nil {
		return resolved{}, fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := loadConfig(configDir)
	if err != nil {
		return resolved{}, err
	}
	dataDir, err := paths.ResolveDataDir(flags.dataDir, v.GetString(cfgKeyDataDir))
	if err != nil {
		return resolved{}, fmt.Errorf("resolve data dir: %w", err)
	}

	db := flags.db
	if db == "" {
		db = v.GetString(cfgKeyDB)
	}
	return resolved{
		configDir: configDir,
		dataDir:   dataDir,
		cfg: types.Config{
			Path:          paths.ResolveDatabase(dataDir, db),
			JournalMode:   v.GetString(cfgKeyJournalMode),
			ForeignKeys:   v.GetBool(cfgKeyForeignKeys),
			BusyTimeoutMS: v.GetInt(cfgKeyBusyTimeout),
		},
	}, nil
}
