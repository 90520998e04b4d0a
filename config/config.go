// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/reprise-cli/reprise/constant"
	"github.com/reprise-cli/reprise/filesystem"
	"github.com/reprise-cli/reprise/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer normalizes configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state: defaults, environment bindings and the optional config file.
func Setup() error {
	viper.SetConfigName(constant.Reprise)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Reprise)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return err
	}

	return nil
}

// Millis reads an integer millisecond setting as a duration.
func Millis(key string) time.Duration {
	return time.Duration(positiveInt(key)) * time.Millisecond
}

// Seconds reads an integer second setting as a duration.
func Seconds(key string) time.Duration {
	return time.Duration(positiveInt(key)) * time.Second
}

// positiveInt returns the setting, or its registered default when unset or non-positive.
func positiveInt(key string) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	if f, ok := Default[key]; ok {
		if v, ok := f.Value.(int); ok {
			return v
		}
	}
	return 0
}
