package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration values.
type Config struct {
	WorkDir string
	DataDir string
	VenvDir string

	ScrapeCommand string
	GridsCommand  string
	UploadCommand string
	TaskTimeout   time.Duration

	MailCommand       string
	MailRecipients    []string
	DiscordWebhookURL string
	RequestTimeout    time.Duration

	KeepLocalArchive bool
	PruneDataDir     bool

	LedgerPath  string
	LockTimeout time.Duration

	InfluxURL    string
	InfluxOrg    string
	InfluxBucket string
	InfluxToken  string

	ScrapeCron  string
	GridsCron   string
	ArchiveCron string
	RunOnStart  bool

	LogFormat string
}

const (
	defaultEnvFile       = ".env"
	defaultWorkDir       = "."
	defaultDataDir       = "data"
	defaultScrapeCommand = "python scrape_data.py"
	defaultGridsCommand  = "python update_grids.py"
	defaultUploadCommand = "python google_drive/upload_file.py"
	defaultMailCommand   = "mail"
	defaultTimeout       = 30 * time.Second
	defaultLedgerPath    = "waffle-cron.db"
	defaultLockTimeout   = 5 * time.Second
	defaultScrapeCron    = "0 3 * * *" // 03:00 every day
	defaultGridsCron     = "0 1 * * *" // 01:00 every day
	defaultArchiveCron   = "0 5 1 * *" // 05:00 on the first of the month
	defaultLogFormat     = "json"
)

// Load builds a Config from environment variables with sane defaults.
// Variables from the env file (ENV_FILE, default .env) are applied first
// without overriding the process environment.
func Load() (*Config, error) {
	if err := loadEnvFile(getenvDefault("ENV_FILE", defaultEnvFile)); err != nil {
		return nil, err
	}

	cfg := &Config{
		WorkDir:           getenvDefault("WORK_DIR", defaultWorkDir),
		DataDir:           getenvDefault("DATA_DIR", defaultDataDir),
		VenvDir:           os.Getenv("VENV_DIR"),
		ScrapeCommand:     getenvDefault("SCRAPE_COMMAND", defaultScrapeCommand),
		GridsCommand:      getenvDefault("GRIDS_COMMAND", defaultGridsCommand),
		UploadCommand:     getenvDefault("UPLOAD_COMMAND", defaultUploadCommand),
		TaskTimeout:       parseDurationDefault("TASK_TIMEOUT", 0),
		MailCommand:       getenvDefault("MAIL_COMMAND", defaultMailCommand),
		MailRecipients:    parseListDefault("MAIL_RECIPIENTS", nil),
		DiscordWebhookURL: os.Getenv("DISCORD_WEBHOOK_URL"),
		RequestTimeout:    parseDurationDefault("REQUEST_TIMEOUT", defaultTimeout),
		KeepLocalArchive:  parseBoolDefault("ARCHIVE_KEEP_LOCAL", false),
		PruneDataDir:      parseBoolDefault("ARCHIVE_PRUNE_DATA", true),
		LedgerPath:        getenvDefault("LEDGER_PATH", defaultLedgerPath),
		LockTimeout:       parseDurationDefault("LOCK_TIMEOUT", defaultLockTimeout),
		InfluxURL:         os.Getenv("INFLUXDB_URL"),
		InfluxOrg:         os.Getenv("INFLUXDB_ORG"),
		InfluxBucket:      os.Getenv("INFLUXDB_BUCKET"),
		InfluxToken:       os.Getenv("INFLUXDB_API_TOKEN"),
		ScrapeCron:        getenvAllowEmpty("SCRAPE_CRON", defaultScrapeCron),
		GridsCron:         getenvAllowEmpty("GRIDS_CRON", defaultGridsCron),
		ArchiveCron:       getenvAllowEmpty("ARCHIVE_CRON", defaultArchiveCron),
		RunOnStart:        parseBoolDefault("RUN_ON_START", false),
		LogFormat:         getenvDefault("LOG_FORMAT", defaultLogFormat),
	}

	if err := validateDataDir(cfg.WorkDir, cfg.DataDir); err != nil {
		return nil, err
	}

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultTimeout
	}

	if cfg.LockTimeout <= 0 {
		cfg.LockTimeout = defaultLockTimeout
	}

	if cfg.TaskTimeout < 0 {
		cfg.TaskTimeout = 0
	}

	return cfg, nil
}

// validateDataDir rejects a DATA_DIR that resolves to WORK_DIR or one of its
// parents, since a successful upload removes DATA_DIR recursively.
func validateDataDir(workDir, dataDir string) error {
	if dataDir == "" {
		return fmt.Errorf("DATA_DIR must not be empty")
	}
	if !filepath.IsAbs(dataDir) {
		dataDir = filepath.Join(workDir, dataDir)
	}

	work, err := filepath.Abs(workDir)
	if err != nil {
		return fmt.Errorf("WORK_DIR: %w", err)
	}
	data, err := filepath.Abs(dataDir)
	if err != nil {
		return fmt.Errorf("DATA_DIR: %w", err)
	}

	rel, err := filepath.Rel(data, work)
	if err == nil && (rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))) {
		return fmt.Errorf("DATA_DIR %s must be inside WORK_DIR %s, not contain it", data, work)
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getenvAllowEmpty distinguishes an unset variable from one set to "" (used to disable cron jobs).
func getenvAllowEmpty(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return strings.TrimSpace(val)
	}
	return fallback
}

func parseBoolDefault(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func parseListDefault(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var items []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
