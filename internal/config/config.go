package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Default file names, resolved against DATA_PATH when the matching variable is unset.
const (
	DefaultTicketFile = "需求工单统计表.xlsx"
	DefaultOrgFile    = "启用组织.xlsx"
	DefaultOutputFile = "ticket_data.json"
	DefaultBackupFile = "需求工单统计表_backup.xlsx"
)

// AppConfig holds the complete application configuration.
type AppConfig struct {
	DataPath   string `validate:"required"`
	TicketFile string `validate:"required"`
	// OrgFile may be empty, which disables top-level department resolution.
	OrgFile    string
	OutputFile string `validate:"required"`
	BackupFile string `validate:"required,nefield=TicketFile"`
	WebRoot    string `validate:"required"`
	LogDir     string

	ListenAddr        string        `validate:"required"`
	RegenerateTimeout time.Duration `validate:"gt=0"`
	MaxUploadMB       int64         `validate:"gt=0"`

	EnableMermaidCharts bool
}

// Load loads the configuration from .env files and environment variables.
func Load() (*AppConfig, error) {
	// Binary directory first, so an installed server picks up its own .env.
	exePath, err := os.Executable()
	exeDir := ""
	if err == nil {
		exeDir = filepath.Dir(exePath)
		envPath := filepath.Join(exeDir, ".env")
		if err := godotenv.Load(envPath); err == nil {
			log.Debug().Str("path", envPath).Msg("Loaded configuration from binary directory")
		}
	}

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found in working directory, relying on environment variables or binary-relative .env")
	}

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		if exeDir != "" {
			dataPath = exeDir
		} else {
			dataPath = "."
		}
	}

	cfg := FromEnv(dataPath)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds a configuration for dataPath from the current environment without touching .env files.
func FromEnv(dataPath string) *AppConfig {
	timeoutSecs, _ := strconv.Atoi(getEnv("REGENERATE_TIMEOUT_SECONDS", "60"))
	maxUpload, _ := strconv.ParseInt(getEnv("MAX_UPLOAD_MB", "20"), 10, 64)

	orgFile := DefaultOrgFile
	if v, ok := os.LookupEnv("ORG_FILE"); ok {
		orgFile = v
	}

	return &AppConfig{
		DataPath:            dataPath,
		TicketFile:          resolve(dataPath, getEnv("TICKET_FILE", DefaultTicketFile)),
		OrgFile:             resolve(dataPath, orgFile),
		OutputFile:          resolve(dataPath, getEnv("OUTPUT_FILE", DefaultOutputFile)),
		BackupFile:          resolve(dataPath, getEnv("BACKUP_FILE", DefaultBackupFile)),
		WebRoot:             resolve(dataPath, getEnv("WEB_ROOT", ".")),
		LogDir:              getEnv("LOGS_FOLDER", filepath.Join(dataPath, "logs")),
		ListenAddr:          getEnv("LISTEN_ADDR", ":8001"),
		RegenerateTimeout:   time.Duration(timeoutSecs) * time.Second,
		MaxUploadMB:         maxUpload,
		EnableMermaidCharts: getEnvBool("ENABLE_MERMAID_CHARTS", false),
	}
}

// Validate checks the struct tags of the configuration.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// resolve anchors relative paths at the data directory. Empty stays empty.
func resolve(dataPath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dataPath, p)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
