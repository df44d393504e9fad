package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Throttle  ThrottleConfig  `yaml:"throttle"`
	Storage   StorageConfig   `yaml:"storage"`
	Gemini    GeminiConfig    `yaml:"gemini"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	JWT       JWTConfig       `yaml:"jwt"`
	Admin     AdminConfig     `yaml:"admin"`
	CORS      CORSConfig      `yaml:"cors"`
	Log       LogConfig       `yaml:"log"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
}

type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Mode    string `yaml:"mode"`     // debug, release, test
	BaseURL string `yaml:"base_url"` // public origin used in emails and absolute links
}

// IsDebug reports whether the server runs in gin debug mode.
func (s ServerConfig) IsDebug() bool {
	return s.Mode == "" || s.Mode == "debug"
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
	LogSQL bool   `yaml:"log_sql"`
}

// RedisConfig backs the shared cache, the throttle store and the async queue.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// CacheConfig holds response cache lifetimes in seconds.
type CacheConfig struct {
	ListTTL       int `yaml:"list_ttl"`
	LeadershipTTL int `yaml:"leadership_ttl"`
	StatsTTL      int `yaml:"stats_ttl"`
	CategoriesTTL int `yaml:"categories_ttl"`
	HomepageTTL   int `yaml:"homepage_ttl"`
}

func (c CacheConfig) List() time.Duration       { return seconds(c.ListTTL, 15*time.Minute) }
func (c CacheConfig) Leadership() time.Duration { return seconds(c.LeadershipTTL, 10*time.Minute) }
func (c CacheConfig) Stats() time.Duration      { return seconds(c.StatsTTL, 30*time.Minute) }
func (c CacheConfig) Categories() time.Duration { return seconds(c.CategoriesTTL, time.Hour) }
func (c CacheConfig) Homepage() time.Duration   { return seconds(c.HomepageTTL, 15*time.Minute) }

type ThrottleConfig struct {
	SubmissionRate string  `yaml:"submission_rate"` // e.g. "5/hour"
	AnonRate       string  `yaml:"anon_rate"`       // e.g. "100/day"
	BurstRPS       float64 `yaml:"burst_rps"`
	Burst          int     `yaml:"burst"`
}

type StorageConfig struct {
	Backend        string   `yaml:"backend"` // local, s3
	MediaRoot      string   `yaml:"media_root"`
	MediaURL       string   `yaml:"media_url"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes"`
	S3             S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"` // S3-compatible providers; empty for AWS
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	UsePathStyle    bool   `yaml:"use_path_style"`
	PublicURL       string `yaml:"public_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
	Timeout int    `yaml:"timeout"` // seconds
}

func (g GeminiConfig) RequestTimeout() time.Duration { return seconds(g.Timeout, 30*time.Second) }

type SMTPConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	UseTLS   bool   `yaml:"use_tls"`
}

type JWTConfig struct {
	Secret            string `yaml:"secret"`
	ExpireHour        int    `yaml:"expire_hour"`
	RefreshExpireHour int    `yaml:"refresh_expire_hour"`
}

// AccessHours and RefreshHours fall back to 24 hours and 30 days.
func (j JWTConfig) AccessHours() int  { return positive(j.ExpireHour, 24) }
func (j JWTConfig) RefreshHours() int { return positive(j.RefreshExpireHour, 720) }

func positive(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Email    string `yaml:"email"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level         string `yaml:"level"`
	RetentionDays int    `yaml:"retention_days"`
}

type SchedulerConfig struct {
	Enabled         bool   `yaml:"enabled"`
	LogCleanupSpec  string `yaml:"log_cleanup_spec"`
	CacheWarmupSpec string `yaml:"cache_warmup_spec"`
}

var GlobalConfig *Config

// Load reads .env (if present), then the YAML file, then environment overrides.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		cfg = DefaultConfig()
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	cfg.overrideFromEnv()
	GlobalConfig = cfg
	return cfg, nil
}

const (
	defaultJWTSecret     = "azayd-secret-key-change-in-production"
	defaultAdminPassword = "admin"
)

// InsecureDefaults lists the shipped credentials still in use.
func (c *Config) InsecureDefaults() []string {
	var found []string
	if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
		found = append(found, "jwt.secret")
	}
	if c.Admin.Password == "" || c.Admin.Password == defaultAdminPassword {
		found = append(found, "admin.password")
	}
	return found
}

// CheckSecrets refuses the shipped credentials in release mode.
func (c *Config) CheckSecrets() error {
	found := c.InsecureDefaults()
	if len(found) == 0 || c.Server.IsDebug() {
		return nil
	}
	return fmt.Errorf("default credentials are not allowed in %s mode: set %s", c.Server.Mode, strings.Join(found, ", "))
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:    "0.0.0.0",
			Port:    "8000",
			Mode:    "debug",
			BaseURL: "http://localhost:8000",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "azayd.db?_foreign_keys=on",
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		Cache: CacheConfig{
			ListTTL:       900,
			LeadershipTTL: 600,
			StatsTTL:      1800,
			CategoriesTTL: 3600,
			HomepageTTL:   900,
		},
		Throttle: ThrottleConfig{
			SubmissionRate: "5/hour",
			AnonRate:       "100/day",
			BurstRPS:       20,
			Burst:          40,
		},
		Storage: StorageConfig{
			Backend:        "local",
			MediaRoot:      "media",
			MediaURL:       "/media/",
			MaxUploadBytes: 5 * 1024 * 1024,
		},
		Gemini: GeminiConfig{
			Model:   "gemini-1.5-flash-latest",
			Timeout: 30,
		},
		SMTP: SMTPConfig{
			Enabled: false,
			Port:    587,
			From:    "Azayd IT Team <noreply@azayd.com>",
			UseTLS:  false,
		},
		JWT: JWTConfig{
			Secret:            defaultJWTSecret,
			ExpireHour:        24,
			RefreshExpireHour: 720,
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: defaultAdminPassword,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{
				"https://ayazd.netlify.app",
				"http://localhost:3000",
				"http://localhost:5173",
			},
		},
		Log: LogConfig{
			Level:         "info",
			RetentionDays: 30,
		},
		Scheduler: SchedulerConfig{
			Enabled:         true,
			LogCleanupSpec:  "@daily",
			CacheWarmupSpec: "@every 10m",
		},
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if baseURL := os.Getenv("SERVER_BASE_URL"); baseURL != "" {
		c.Server.BaseURL = baseURL
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if user := os.Getenv("ADMIN_USERNAME"); user != "" {
		c.Admin.Username = user
	}
	if pass := os.Getenv("ADMIN_PASSWORD"); pass != "" {
		c.Admin.Password = pass
	}
	// GEMINI_API_KEY wins over the key name the frontend build used to share.
	if apiKey := os.Getenv("VITE_GEMINI_API_KEY"); apiKey != "" {
		c.Gemini.APIKey = apiKey
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		c.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		c.Gemini.Model = model
	}
	if backend := os.Getenv("STORAGE_BACKEND"); backend != "" {
		c.Storage.Backend = backend
	}
	if root := os.Getenv("MEDIA_ROOT"); root != "" {
		c.Storage.MediaRoot = root
	}
	if bucket := os.Getenv("S3_BUCKET"); bucket != "" {
		c.Storage.S3.Bucket = bucket
	}
	if region := os.Getenv("S3_REGION"); region != "" {
		c.Storage.S3.Region = region
	}
	if endpoint := os.Getenv("S3_ENDPOINT"); endpoint != "" {
		c.Storage.S3.Endpoint = endpoint
	}
	if key := os.Getenv("S3_ACCESS_KEY_ID"); key != "" {
		c.Storage.S3.AccessKeyID = key
	}
	if secret := os.Getenv("S3_SECRET_ACCESS_KEY"); secret != "" {
		c.Storage.S3.SecretAccessKey = secret
	}
	if host := os.Getenv("EMAIL_HOST"); host != "" {
		c.SMTP.Enabled = true
		c.SMTP.Host = host
	}
	if port := os.Getenv("EMAIL_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.SMTP.Port = p
		}
	}
	if user := os.Getenv("EMAIL_HOST_USER"); user != "" {
		c.SMTP.Username = user
	}
	if pass := os.Getenv("EMAIL_HOST_PASSWORD"); pass != "" {
		c.SMTP.Password = pass
	}
	if from := os.Getenv("DEFAULT_FROM_EMAIL"); from != "" {
		c.SMTP.From = from
	}
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.CORS.AllowedOrigins = splitList(origins)
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		// Password format: :password or user:password
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

func seconds(v int, fallback time.Duration) time.Duration {
	if v <= 0 {
		return fallback
	}
	return time.Duration(v) * time.Second
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
