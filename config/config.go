package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/santiagomed/modkit/fs"
	"github.com/santiagomed/modkit/generator/module"
	"github.com/spf13/viper"
)

// FileName is the config file looked up in the project and in ~/.modkit.
const FileName = "modkit"

// Config stores the project-wide defaults of every generation command.
type Config struct {
	Organization string `mapstructure:"organization"`
	Root         string `mapstructure:"root"`
	BasePath     string `mapstructure:"base_path"`
	DI           string `mapstructure:"di"`
	Datasource   string `mapstructure:"datasource"`
	Presentation bool   `mapstructure:"presentation"`
	API          bool   `mapstructure:"api"`
	TemplatesDir string `mapstructure:"templates_dir"`
	Debug        bool   `mapstructure:"debug"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		Organization: "com.example",
		Root:         "feature",
		BasePath:     ".",
		DI:           "hilt",
		Datasource:   "none",
		Presentation: true,
	}
}

// LoadConfig reads modkit.yaml from configPath, the working directory or
// ~/.modkit, then applies MODKIT_* environment variables. When configPath
// names a .yaml file that file must exist; otherwise a missing file leaves
// the defaults in place.
func LoadConfig(fsys *fs.FileSystem, configPath string) (*Config, error) {
	v := viper.New()
	v.SetFs(fsys.Fs)

	def := DefaultConfig()
	v.SetDefault("organization", def.Organization)
	v.SetDefault("root", def.Root)
	v.SetDefault("base_path", def.BasePath)
	v.SetDefault("di", def.DI)
	v.SetDefault("datasource", def.Datasource)
	v.SetDefault("presentation", def.Presentation)
	v.SetDefault("api", def.API)
	v.SetDefault("templates_dir", def.TemplatesDir)
	v.SetDefault("debug", def.Debug)

	if ext := filepath.Ext(configPath); ext == ".yaml" || ext == ".yml" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		if configPath != "" {
			v.AddConfigPath(configPath)
		}
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".modkit"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("MODKIT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if strings.TrimSpace(config.Organization) == "" {
		return fmt.Errorf("organization is required")
	}
	if _, err := module.ParseDiStrategy(config.DI); err != nil {
		return err
	}
	if _, err := module.ParseDatasource(config.Datasource); err != nil {
		return err
	}
	return nil
}

// ModuleParams builds feature module params from the configured defaults.
func (c *Config) ModuleParams(feature string) (module.Params, error) {
	ds, err := module.ParseDatasource(c.Datasource)
	if err != nil {
		return module.Params{}, err
	}
	d, err := module.ParseDiStrategy(c.DI)
	if err != nil {
		return module.Params{}, err
	}
	return module.NewParams(c.BasePath, c.Root, feature, c.Organization).
		WithPresentation(c.Presentation).
		WithAPI(c.API).
		WithDatasource(ds).
		WithDI(d), nil
}
