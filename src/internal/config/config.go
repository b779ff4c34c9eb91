package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const defaultConnectionString = "Host=localhost;Port=5432;Database=bank_ledger_db;Username=postgres;Password=postgres;Timeout=30;CommandTimeout=30"
const defaultChannelID = "BackOffice"
const defaultChannelKey = "BackOfficeKey001"

type StorageMode string

const (
	StorageMemory   StorageMode = "memory"
	StoragePostgres StorageMode = "postgres"
	StorageSQLite   StorageMode = "sqlite"
)

// Policy holds the ledger's fee, interest and watch thresholds.
type Policy struct {
	FreeTransactionLimit      int             `toml:"free_transaction_limit"`
	TransactionFee            decimal.Decimal `toml:"transaction_fee"`
	LowBalanceThreshold       decimal.Decimal `toml:"low_balance_threshold"`
	LargeTransactionThreshold decimal.Decimal `toml:"large_transaction_threshold"`
	VelocityLimit             int             `toml:"velocity_limit"`
	VelocityWindowSeconds     int             `toml:"velocity_window_seconds"`
	InactivityPeriodMonths    int             `toml:"inactivity_period_months"`
}

func (p Policy) VelocityWindow() time.Duration {
	return time.Duration(p.VelocityWindowSeconds) * time.Second
}

type Config struct {
	StorageMode   StorageMode `toml:"storage_mode"`
	DatabaseDSN   string      `toml:"database_dsn"`
	SQLitePath    string      `toml:"sqlite_path"`
	MigrationsDir string      `toml:"migrations_dir"`
	HTTPAddr      string      `toml:"http_addr"`
	ChannelID     string      `toml:"channel_id"`
	ChannelKey    string      `toml:"channel_key"`
	Timezone      string      `toml:"timezone"`

	LogLevel  string `toml:"log_level"`
	LogOutput string `toml:"log_output"`
	LogFile   string `toml:"log_file"`

	KafkaBrokers           []string `toml:"kafka_brokers"`
	KafkaNotificationTopic string   `toml:"kafka_notification_topic"`

	Policy Policy `toml:"policy"`
}

func Defaults() Config {
	return Config{
		StorageMode:   StorageMemory,
		DatabaseDSN:   defaultConnectionString,
		SQLitePath:    filepath.Join("data", "bank-ledger.db"),
		MigrationsDir: filepath.Join("src", "migrations", "postgres"),
		HTTPAddr:      ":8080",
		ChannelID:     defaultChannelID,
		ChannelKey:    defaultChannelKey,
		Timezone:      "UTC",
		LogLevel:      "info",
		LogOutput:     "stdout",
		LogFile:       filepath.Join("logs", "bank-ledger.log"),

		KafkaNotificationTopic: "bank-ledger.notifications",

		Policy: Policy{
			FreeTransactionLimit:      2,
			TransactionFee:            decimal.RequireFromString("5.00"),
			LowBalanceThreshold:       decimal.RequireFromString("100.00"),
			LargeTransactionThreshold: decimal.RequireFromString("5000.00"),
			VelocityLimit:             10,
			VelocityWindowSeconds:     60,
			InactivityPeriodMonths:    12,
		},
	}
}

// Load reads .env (if present), then the TOML file named by CONFIG_FILE (if set),
// then environment variables. Later sources win.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Defaults()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode config file %q: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.DatabaseDSN = normalizeConnectionString(cfg.DatabaseDSN)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.StorageMode {
	case StorageMemory, StoragePostgres, StorageSQLite:
	default:
		return fmt.Errorf("STORAGE_MODE must be one of memory, postgres, sqlite")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.Policy.FreeTransactionLimit < 0 {
		return fmt.Errorf("FREE_TRANSACTION_LIMIT cannot be negative")
	}
	if !c.Policy.TransactionFee.IsPositive() {
		return fmt.Errorf("TRANSACTION_FEE must be greater than zero")
	}
	if c.Policy.VelocityLimit <= 0 || c.Policy.VelocityWindowSeconds <= 0 {
		return fmt.Errorf("VELOCITY_LIMIT and VELOCITY_WINDOW must be greater than zero")
	}
	if c.Policy.InactivityPeriodMonths <= 0 {
		return fmt.Errorf("INACTIVITY_PERIOD_MONTHS must be greater than zero")
	}
	return nil
}

func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func applyEnv(cfg *Config) error {
	setString(&cfg.DatabaseDSN, "DATABASE_DSN")
	setString(&cfg.SQLitePath, "SQLITE_PATH")
	setString(&cfg.MigrationsDir, "MIGRATIONS_DIR")
	setString(&cfg.HTTPAddr, "HTTP_ADDR")
	setString(&cfg.ChannelID, "CHANNEL_ID")
	setString(&cfg.ChannelKey, "CHANNEL_KEY")
	setString(&cfg.Timezone, "TIMEZONE")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.LogOutput, "LOG_OUTPUT")
	setString(&cfg.LogFile, "LOG_FILE")
	setString(&cfg.KafkaNotificationTopic, "KAFKA_NOTIFICATION_TOPIC")

	if mode := strings.TrimSpace(os.Getenv("STORAGE_MODE")); mode != "" {
		cfg.StorageMode = StorageMode(strings.ToLower(mode))
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = cfg.KafkaBrokers[:0]
		for _, broker := range strings.Split(brokers, ",") {
			if trimmed := strings.TrimSpace(broker); trimmed != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, trimmed)
			}
		}
	}

	if err := setInt(&cfg.Policy.FreeTransactionLimit, "FREE_TRANSACTION_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Policy.VelocityLimit, "VELOCITY_LIMIT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Policy.InactivityPeriodMonths, "INACTIVITY_PERIOD_MONTHS"); err != nil {
		return err
	}
	if raw := strings.TrimSpace(os.Getenv("VELOCITY_WINDOW")); raw != "" {
		window, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("VELOCITY_WINDOW: %w", err)
		}
		cfg.Policy.VelocityWindowSeconds = int(window / time.Second)
	}
	if err := setDecimal(&cfg.Policy.TransactionFee, "TRANSACTION_FEE"); err != nil {
		return err
	}
	if err := setDecimal(&cfg.Policy.LowBalanceThreshold, "LOW_BALANCE_THRESHOLD"); err != nil {
		return err
	}
	if err := setDecimal(&cfg.Policy.LargeTransactionThreshold, "LARGE_TRANSACTION_THRESHOLD"); err != nil {
		return err
	}

	return nil
}

func setString(target *string, key string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*target = value
	}
}

func setInt(target *int, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("%s must be an integer: %w", key, err)
	}
	*target = value
	return nil
}

func setDecimal(target *decimal.Decimal, key string) error {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return fmt.Errorf("%s must be numeric: %w", key, err)
	}
	*target = value
	return nil
}

func normalizeConnectionString(raw string) string {
	if strings.Contains(raw, "://") || !strings.Contains(raw, ";") {
		return raw
	}

	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	hasSSLMode := false

	for _, part := range parts {
		p := strings.TrimSpace(part)
		if p == "" {
			continue
		}

		kv := strings.SplitN(p, "=", 2)
		if len(kv) != 2 {
			continue
		}

		key := strings.ToLower(strings.TrimSpace(kv[0]))
		val := strings.TrimSpace(kv[1])

		switch key {
		case "host":
			out = append(out, "host="+val)
		case "port":
			out = append(out, "port="+val)
		case "database":
			out = append(out, "dbname="+val)
		case "username":
			out = append(out, "user="+val)
		case "password":
			out = append(out, "password="+val)
		case "timeout", "connect timeout":
			out = append(out, "connect_timeout="+val)
		case "commandtimeout", "command timeout":
			out = append(out, "statement_timeout="+val+"s")
		case "sslmode":
			hasSSLMode = true
			out = append(out, "sslmode="+val)
		default:
			out = append(out, key+"="+val)
		}
	}

	if len(out) == 0 {
		return raw
	}

	if !hasSSLMode {
		out = append(out, "sslmode=disable")
	}

	return strings.Join(out, " ")
}
