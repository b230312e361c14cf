// Package config builds the process configuration from an optional .env
// file and RELSTAGE_ environment variables, where "__" separates sections
// (RELSTAGE_DATABASE__DRIVER sets database.driver).
package config

import (
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	koanf "github.com/knadh/koanf/v2"
	"github.com/sirupsen/logrus"
)

const envPrefix = "RELSTAGE_"

var current atomic.Pointer[Config]

// Load reads .env and the environment, validates, and caches the result.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	return load(env.Provider(envPrefix, ".", envKey))
}

func envKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimPrefix(s, envPrefix), "__", "."))
}

func load(provider koanf.Provider) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(provider, nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	if err := validateStruct(&cfg); err != nil {
		return nil, err
	}

	current.Store(&cfg)
	logrus.Debugf("config loaded: driver=%s mode=%q compression=%s", cfg.Database.Driver, cfg.NodeCategoryStagingMode, cfg.Compression)
	return &cfg, nil
}

// Get returns the last loaded config, or nil before the first Load.
func Get() *Config { return current.Load() }

// KafkaBrokers splits the comma separated broker list.
func (c *Config) KafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.Kafka.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}
