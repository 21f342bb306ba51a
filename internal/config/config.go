package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Database        DatabaseConfig        `json:"database"`
	Port            int                   `json:"port"`
	JWTSecret       string                `json:"jwt_secret"`
	JWTTTLHours     int                   `json:"jwt_ttl_hours"`
	LogConfig       logger.LogConfig      `json:"log_config"`
	FileStore       FileStoreConfig       `json:"file_store"`
	AutoSave        AutoSaveConfig        `json:"auto_save"`
	ConflictCleanup ConflictCleanupConfig `json:"conflict_cleanup"`
	Versions        VersionsConfig        `json:"versions"`
	MaxUploadMB     int64                 `json:"max_upload_mb"`
	CORSAllowlist   []string              `json:"cors_allowlist"`
}

// VersionsConfig tunes history pruning. Zero values fall back to the
// service defaults (threshold 100, keep 50).
type VersionsConfig struct {
	PruneThreshold int `json:"prune_threshold"`
	PruneKeep      int `json:"prune_keep"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// FileStoreConfig selects a registered store backend; Data is decoded
// by the backend factory itself.
type FileStoreConfig struct {
	Type string                 `json:"type"`
	Data map[string]interface{} `json:"data"`
}

type AutoSaveConfig struct {
	Disable     bool   `json:"disable"`
	Cron        string `json:"cron"`
	MaxPerSweep int    `json:"max_per_sweep"`
}

type ConflictCleanupConfig struct {
	Disable     bool   `json:"disable"`
	Cron        string `json:"cron"`
	RetainHours int    `json:"retain_hours"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Database.DSN == "" && (cfg.Database.Host == "" || cfg.Database.User == "" || cfg.Database.DBName == "") {
		return nil, fmt.Errorf("database dsn or host/user/db_name is required")
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.FileStore.Type == "local" && cfg.FileStore.Data == nil {
		cfg.FileStore.Data = map[string]interface{}{"dir": "./data/files"}
	}
	if cfg.AutoSave.Cron == "" {
		cfg.AutoSave.Cron = "*/5 * * * *"
	}
	if cfg.AutoSave.MaxPerSweep == 0 {
		cfg.AutoSave.MaxPerSweep = 20
	}
	if cfg.ConflictCleanup.Cron == "" {
		cfg.ConflictCleanup.Cron = "30 3 * * *"
	}
	if cfg.ConflictCleanup.RetainHours == 0 {
		cfg.ConflictCleanup.RetainHours = 24 * 7
	}
	if cfg.MaxUploadMB == 0 {
		cfg.MaxUploadMB = 16
	}
	return &cfg, nil
}
