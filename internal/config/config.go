// Package config loads the process configuration from the environment and
// an optional .env file, and form definitions from YAML.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
)

// Ledger backends.
const (
	LedgerSheets = "sheets"
	LedgerSQLite = "sqlite"
	LedgerRedis  = "redis"
	LedgerMemory = "memory"
)

// ErrMissing is matched by every MissingError.
var ErrMissing = errors.New("missing required configuration")

// MissingError lists the required keys that were not set.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMissing, strings.Join(e.Keys, ", "))
}

func (e *MissingError) Unwrap() error {
	return ErrMissing
}

// Config is the process configuration. Field tags are the environment keys.
type Config struct {
	BotToken       string `mapstructure:"BOT_TOKEN"`
	OperatorChatID string `mapstructure:"OPERATOR_CHAT_ID"`

	LedgerBackend   string `mapstructure:"LEDGER_BACKEND"`
	SpreadsheetID   string `mapstructure:"SPREADSHEET_ID"`
	SheetName       string `mapstructure:"SHEET_NAME"`
	CredentialsFile string `mapstructure:"CREDENTIALS_FILE"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`
	RedisURL        string `mapstructure:"REDIS_URL"`
	RedisStream     string `mapstructure:"REDIS_STREAM"`

	FormFile    string        `mapstructure:"FORM_FILE"`
	CatalogFile string        `mapstructure:"CATALOG_FILE"`
	HTTPAddr    string        `mapstructure:"HTTP_ADDR"`
	SinkTimeout time.Duration `mapstructure:"SINK_TIMEOUT"`
	MaxWorkers  int           `mapstructure:"MAX_WORKERS"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFile   string `mapstructure:"LOG_FILE"`
	TraceFile string `mapstructure:"TRACE_FILE"`
}

// Default returns the configuration used for unset keys.
func Default() Config {
	return Config{
		LedgerBackend: LedgerSheets,
		SheetName:     "Sheet1",
		SQLitePath:    "intake.db",
		RedisStream:   "intake:ledger",
		CatalogFile:   "catalog.pdf",
		HTTPAddr:      ":8080",
		SinkTimeout:   10 * time.Second,
		LogLevel:      "info",
	}
}

// Load reads the given .env files (".env" when none is given), then the
// process environment. Missing .env files are ignored; variables already
// set in the environment win over the files.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}
	return FromEnviron(os.Environ())
}

// FromEnviron decodes a KEY=VALUE list.
func FromEnviron(environ []string) (*Config, error) {
	values := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		values[k] = v
	}
	return FromMap(values)
}

// FromMap decodes values over Default. Empty values count as unset.
func FromMap(values map[string]string) (*Config, error) {
	cfg := Default()

	input := make(map[string]any, len(values))
	for k, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			input[k] = v
		}
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Result:           &cfg,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(input); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	cfg.LedgerBackend = strings.ToLower(cfg.LedgerBackend)
	return &cfg, nil
}

// Requirements selects which backends Validate checks.
type Requirements struct {
	// Telegram requires the bot token.
	Telegram bool
	// Notifier requires the operator chat.
	Notifier bool
}

// Validate reports the missing keys for the selected backends as a
// *MissingError, or an error for an unknown ledger backend.
func (c *Config) Validate(req Requirements) error {
	var missing []string
	need := func(key, value string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	if req.Telegram || req.Notifier {
		need("BOT_TOKEN", c.BotToken)
	}
	if req.Notifier {
		need("OPERATOR_CHAT_ID", c.OperatorChatID)
	}

	switch c.LedgerBackend {
	case LedgerSheets:
		need("SPREADSHEET_ID", c.SpreadsheetID)
		need("CREDENTIALS_FILE", c.CredentialsFile)
	case LedgerSQLite:
		need("SQLITE_PATH", c.SQLitePath)
	case LedgerRedis:
		need("REDIS_URL", c.RedisURL)
	case LedgerMemory:
	default:
		return fmt.Errorf("unknown LEDGER_BACKEND %q", c.LedgerBackend)
	}

	if c.MaxWorkers < 0 {
		return fmt.Errorf("MAX_WORKERS must not be negative, got %d", c.MaxWorkers)
	}

	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}
