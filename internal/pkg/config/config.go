// Package config loads the configuration file and the environment into viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/kiosk404/swarmscope/internal/pkg/logger"
)

const (
	// EnvPrefix prefixes every environment variable read through viper.
	EnvPrefix = "SWARM"
	// HomeDirName is the per-user directory under $HOME.
	HomeDirName = ".swarmscope"
)

// envAliases maps viper keys to the short environment names the stream
// toggles have always been set with.
var envAliases = map[string]string{
	"stream.debug-events": "SWARM_DEBUG_EVENTS",
	"stream.buffering":    "SWARM_EVENT_BUFFERING",
	"stream.buffer-size":  "SWARM_EVENT_BUFFER_SIZE",
	"stream.highlight":    "SWARM_HIGHLIGHT_CODEX",
}

// HomeDir returns ~/.swarmscope, or ./.swarmscope when $HOME cannot be resolved.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return HomeDirName
	}
	return filepath.Join(home, HomeDirName)
}

// LoadConfig reads cfg when set, otherwise looks for <defaultName>.{yaml,json}
// in the working directory and in HomeDir. A missing default file is not an error.
func LoadConfig(cfg string, defaultName string) error {
	return LoadInto(viper.GetViper(), cfg, defaultName)
}

// LoadInto is LoadConfig for a caller-owned viper instance.
func LoadInto(v *viper.Viper, cfg string, defaultName string) error {
	if cfg != "" {
		v.SetConfigFile(cfg)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath(HomeDir())
		v.SetConfigName(defaultName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfg == "" && errors.As(err, &notFound) {
			logger.Debug("[Config] no %s config file found, using flags and environment", defaultName)
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	logger.Debug("[Config] using config file %s", v.ConfigFileUsed())
	return nil
}
