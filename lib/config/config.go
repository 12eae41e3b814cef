// Package config loads application settings: built-in defaults overridden by
// GOJIPEDIA_* environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server ServerConfig `koanf:"server"`
	DB     DBConfig     `koanf:"db"`
	Auth   AuthConfig   `koanf:"auth"`
	Amazon AmazonConfig `koanf:"amazon"`
	OpenAI OpenAIConfig `koanf:"openai"`
	Jobs   JobsConfig   `koanf:"jobs"`
}

type ServerConfig struct {
	Port string `koanf:"port"`
}

type DBConfig struct {
	Path string `koanf:"path"`
	Seed bool   `koanf:"seed"`
}

type AuthConfig struct {
	JWTSecret     string `koanf:"jwtsecret"`
	TokenLifetime int    `koanf:"tokenlifetime"` // hours
}

// AmazonConfig holds PA-API credentials. The product refresh job degrades to
// a no-op when the keys are unset.
type AmazonConfig struct {
	AccessKey    string `koanf:"accesskey"`
	SecretKey    string `koanf:"secretkey"`
	AssociateTag string `koanf:"associatetag"`
	Marketplace  string `koanf:"marketplace"`
	Host         string `koanf:"host"`
	Region       string `koanf:"region"`
}

type OpenAIConfig struct {
	APIKey string `koanf:"apikey"`
}

type JobsConfig struct {
	DeactivateAfterFailures int      `koanf:"deactivateafterfailures"`
	SearchTerms             []string `koanf:"searchterms"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{Port: "8080"},
		DB:     DBConfig{Path: "gojipedia.db", Seed: true},
		Auth:   AuthConfig{TokenLifetime: 24},
		Amazon: AmazonConfig{
			Marketplace: "www.amazon.com",
			Host:        "webservices.amazon.com",
			Region:      "us-east-1",
		},
		Jobs: JobsConfig{
			DeactivateAfterFailures: 3,
			SearchTerms:             []string{"Godzilla figure", "Godzilla Blu-ray", "King Ghidorah"},
		},
	}
}

// Load builds the config from defaults and GOJIPEDIA_* environment
// variables, e.g. GOJIPEDIA_SERVER_PORT or GOJIPEDIA_AMAZON_ACCESSKEY.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaults(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := k.Load(env.Provider("GOJIPEDIA_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "GOJIPEDIA_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}
