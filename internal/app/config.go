package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/avolkhin/sqlarena/internal/clock"
	"github.com/avolkhin/sqlarena/internal/sandbox"
)

type GSheetExport struct {
	CompetitionID int64  `toml:"competition_id"`
	SheetID       string `toml:"sheet_id"`
	SheetName     string `toml:"sheet_name"`
	Schedule      string `toml:"schedule"`
}

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL         string `toml:"redis_url"`
		TokenHeader      string `toml:"token_header"`
		TokenKeyTemplate string `toml:"token_key_template"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Sandbox struct {
		Server   sandbox.ServerConfig `toml:"server"`
		Denylist []string             `toml:"denylist"`
	} `toml:"sandbox"`

	Clock struct {
		OffsetHours int `toml:"offset_hours"`
	} `toml:"clock"`

	Bot struct {
		Token    string  `toml:"token"`
		AdminIDs []int64 `toml:"admin_ids"`
	} `toml:"bot"`

	GSheet struct {
		CredentialsPath string         `toml:"credentials_path"`
		Exports         []GSheetExport `toml:"exports"`
	} `toml:"gsheet"`
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
	if config.Sandbox.Server.Host == "" {
		return nil, fmt.Errorf("Sandbox database server host is not specified in config")
	}
	if len(config.Sandbox.Denylist) == 0 {
		config.Sandbox.Denylist = sandbox.DefaultDenylist
	}
	if config.Clock.OffsetHours == 0 {
		config.Clock.OffsetHours = clock.DefaultOffsetHours
	}

	return &config, nil
}
