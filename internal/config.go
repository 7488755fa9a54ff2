package internal

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/clipsift/clipsift/internal/ffmpeg"
	"github.com/clipsift/clipsift/internal/pipeline"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mitchellh/go-homedir"
)

const userDirSuffix = "clipsift"

// ClipsiftConfig is the struct used to contain the
// various user config supplied by file, or
// manually inside the code.
type ClipsiftConfig struct {
	Pipeline     pipeline.Config `yaml:"pipeline"`
	Ffmpeg       ffmpeg.Config   `yaml:"ffmpeg"`
	CacheDirPath string          `yaml:"cache_dir" env:"CACHE_DIR"`
	HTTPTimeout  time.Duration   `yaml:"http_timeout" env:"HTTP_TIMEOUT" env-default:"30s"`
	ApiHostAddr  string          `yaml:"host" env:"HOST_ADDR" env-default:"0.0.0.0"`
	ApiHostPort  string          `yaml:"port" env:"HOST_PORT" env-default:"8080"`
}

// LoadFromFile loads a configuration file formatted in YAML in to a
// ClipsiftConfig struct; any value absent from the file falls back
// to its environment variable and then its default.
func (config *ClipsiftConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration - %v", err.Error())
	}

	return nil
}

// LoadFromEnv populates the config purely from the environment,
// used when no config file path was supplied.
func (config *ClipsiftConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration - %v", err.Error())
	}

	return nil
}

// CacheDir returns the directory used for persisted extraction
// results. It will first look in the config for a value, but if
// none is found a default under the user's home directory is used.
func (config *ClipsiftConfig) CacheDir() string {
	if config.CacheDirPath != "" {
		return config.CacheDirPath
	}

	home, err := homedir.Dir()
	if err != nil {
		panic(fmt.Sprintf("FAILURE to derive user home dir %s", err))
	}

	return filepath.Join(home, "."+userDirSuffix, "cache")
}
