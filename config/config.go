package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

const envPrefix = "TOUGHPOS_"

// SysConfig system settings
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig admin api settings
type WebConfig struct {
	Host         string   `yaml:"host"`
	Port         int      `yaml:"port"`
	Secret       string   `yaml:"secret"`
	AllowOrigins []string `yaml:"allow_origins"`
	RateLimit    float64  `yaml:"rate_limit"` // requests per second per client, 0 disables
	RateBurst    int      `yaml:"rate_burst"`
	BodyLimit    string   `yaml:"body_limit"`
}

// DBConfig database settings
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// StorageConfig blob storage settings
type StorageConfig struct {
	Type       string        `yaml:"type"` // local or s3
	Dir        string        `yaml:"dir"`
	Bucket     string        `yaml:"bucket"`
	Region     string        `yaml:"region"`
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key"`
	SecretKey  string        `yaml:"secret_key"`
	GCSchedule string        `yaml:"gc_schedule"`
	GCGrace    time.Duration `yaml:"gc_grace"`
	GCWorkers  int           `yaml:"gc_workers"`
}

// LogConfig logger settings
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

type AppConfig struct {
	System   SysConfig     `yaml:"system"`
	Web      WebConfig     `yaml:"web"`
	Database DBConfig      `yaml:"database"`
	Storage  StorageConfig `yaml:"storage"`
	Logger   LogConfig     `yaml:"logger"`
}

// GetUploadDir returns the directory backing the local blob store
func (c *AppConfig) GetUploadDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return filepath.Join(c.System.Workdir, "data")
}

// GetLogDir returns the log directory under the workdir
func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

// Validate checks settings that must be present before the process may start.
func (c *AppConfig) Validate() error {
	if strings.TrimSpace(c.Web.Secret) == "" {
		return errors.New("web.secret is required (set TOUGHPOS_WEB_SECRET or JWT_SECRET)")
	}
	switch c.Database.Type {
	case "postgres", "sqlite":
	default:
		return errors.New("database.type must be postgres or sqlite")
	}
	switch c.Storage.Type {
	case "local", "s3":
	default:
		return errors.New("storage.type must be local or s3")
	}
	if c.Storage.Type == "s3" && c.Storage.Bucket == "" {
		return errors.New("storage.bucket is required for s3 storage")
	}
	return nil
}

// DefaultAppConfig returns the built-in defaults
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "ToughPOS",
			Location: "Asia/Jakarta",
			Workdir:  "/var/toughpos",
		},
		Web: WebConfig{
			Host:         "0.0.0.0",
			Port:         3000,
			AllowOrigins: []string{"http://localhost:5173"},
			RateLimit:    0,
			RateBurst:    20,
			BodyLimit:    "8M",
		},
		Database: DBConfig{
			Type:     "postgres",
			Host:     "127.0.0.1",
			Port:     5432,
			Name:     "toughpos",
			User:     "postgres",
			Passwd:   "postgres",
			MaxConn:  100,
			IdleConn: 10,
		},
		Storage: StorageConfig{
			Type:       "local",
			Region:     "auto",
			GCSchedule: "@daily",
			GCGrace:    time.Hour,
			GCWorkers:  8,
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/toughpos/logs/toughpos.log",
		},
	}
}

// LoadConfig loads defaults, then the yaml file (when it exists), then .env and
// TOUGHPOS_* environment variables.
func LoadConfig(cfile string) (*AppConfig, error) {
	cfg := DefaultAppConfig()
	if cfile != "" {
		data, err := os.ReadFile(cfile)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, err
		}
	}
	// .env is optional
	_ = godotenv.Load()
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(cfg *AppConfig) {
	setString(&cfg.System.Workdir, "SYSTEM_WORKDIR")
	setString(&cfg.System.Location, "SYSTEM_LOCATION")
	setBool(&cfg.System.Debug, "SYSTEM_DEBUG")

	setString(&cfg.Web.Host, "WEB_HOST")
	setInt(&cfg.Web.Port, "WEB_PORT")
	setString(&cfg.Web.Secret, "WEB_SECRET")
	if cfg.Web.Secret == "" {
		cfg.Web.Secret = os.Getenv("JWT_SECRET")
	}
	if v, ok := os.LookupEnv(envPrefix + "WEB_ALLOW_ORIGINS"); ok {
		cfg.Web.AllowOrigins = splitList(v)
	}
	if v, ok := os.LookupEnv(envPrefix + "WEB_RATE_LIMIT"); ok {
		cfg.Web.RateLimit = cast.ToFloat64(v)
	}
	setInt(&cfg.Web.RateBurst, "WEB_RATE_BURST")

	setString(&cfg.Database.Type, "DB_TYPE")
	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.Name, "DB_NAME")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Passwd, "DB_PWD")
	setBool(&cfg.Database.Debug, "DB_DEBUG")

	setString(&cfg.Storage.Type, "STORAGE_TYPE")
	setString(&cfg.Storage.Dir, "STORAGE_DIR")
	setString(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	setString(&cfg.Storage.Region, "STORAGE_REGION")
	setString(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	setString(&cfg.Storage.GCSchedule, "STORAGE_GC_SCHEDULE")
	if v, ok := os.LookupEnv(envPrefix + "STORAGE_GC_GRACE"); ok {
		cfg.Storage.GCGrace = cast.ToDuration(v)
	}

	setString(&cfg.Logger.Mode, "LOGGER_MODE")
	setBool(&cfg.Logger.FileEnable, "LOGGER_FILE_ENABLE")
	setString(&cfg.Logger.Filename, "LOGGER_FILENAME")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = cast.ToInt(v)
	}
}

func setBool(dst *bool, key string) {
	if v, ok := os.LookupEnv(envPrefix + key); ok && v != "" {
		*dst = cast.ToBool(v)
	}
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
