package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/storeadmin/internal/paths"
	"github.com/mesh-intelligence/storeadmin/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"

	// Config keys.
	cfgKeyDatabase = "database"
	cfgKeyLogLevel = "log_level"
	cfgKeyLogFile  = "log_file"

	envPrefix = "STOREADMIN"
)

// configHeader precedes the generated config.yaml.
const configHeader = `# storeadmin configuration
# Relative paths are resolved against the data directory.
# Every key can be overridden by STOREADMIN_<KEY> in the environment.

`

// loadConfig reads config.yaml from configDir using Viper. It creates the
// directory and a default config.yaml on first run.
func loadConfig(configDir string) (*viper.Viper, error) {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	if _, err := writeConfigIfMissing(filepath.Join(configDir, paths.ConfigFileName)); err != nil {
		return nil, fmt.Errorf("write default config: %w", err)
	}

	v := viper.New()
	v.SetDefault(cfgKeyDatabase, types.DefaultDatabase)
	v.SetDefault(cfgKeyLogLevel, types.DefaultLogLevel)
	v.SetDefault(cfgKeyLogFile, paths.LogFileName)
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// configFromViper resolves the loaded keys into a Config. Relative paths
// are placed in dataDir.
func configFromViper(v *viper.Viper, dataDir string) types.Config {
	return types.Config{
		Database: paths.ResolveDatabase(dataDir, v.GetString(cfgKeyDatabase)),
		LogLevel: strings.ToLower(v.GetString(cfgKeyLogLevel)),
		LogFile:  paths.ResolveLogFile(dataDir, v.GetString(cfgKeyLogFile)),
	}
}

// writeConfigIfMissing creates config.yaml with default values if the file
// does not exist. It reports whether a file was written.
func writeConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}

	cfg := types.Config{
		Database: types.DefaultDatabase,
		LogLevel: types.DefaultLogLevel,
		LogFile:  paths.LogFileName,
	}
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return false, err
	}
	return true, nil
}
