package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL          string `toml:"redis_url"`
		TokenHeader       string `toml:"token_header"`
		SessionKeyPrefix  string `toml:"session_key_prefix"`
		SessionTTLMinutes int    `toml:"session_ttl_minutes"`
	} `toml:"auth"`

	API struct {
		UserIDHeader string `toml:"user_id_header"`
		RoleHeader   string `toml:"role_header"`
	} `toml:"api"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Batches struct {
		GiveExtraTo string `toml:"give_extra_to"`
	} `toml:"batches"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.SessionKeyPrefix == "" {
		config.Auth.SessionKeyPrefix = "session:"
	}
	if config.Auth.SessionTTLMinutes == 0 {
		config.Auth.SessionTTLMinutes = 12 * 60
	}
	if config.API.UserIDHeader == "" {
		config.API.UserIDHeader = "X-User-Id"
	}
	if config.API.RoleHeader == "" {
		config.API.RoleHeader = "X-User-Role"
	}

	return &config, nil
}
