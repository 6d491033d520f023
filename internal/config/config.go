// backend-go/internal/config/config.go
package config

import (
	"net"
	"strings"
	"sync"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DatabaseEnvPrefix prefixes every database environment variable.
const DatabaseEnvPrefix = "ELECTRONIC_STORE"

var defaultCORSOrigins = []string{"http://localhost:5173", "https://report.electroitzone.com"}

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	App      AppConfig
	Cache    CacheConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	LogLevel       string
	ReadTimeout    int
	WriteTimeout   int
	MaxBodyBytes   int64
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Server             string
	Port               int
	User               string
	Password           string
	Database           string
	Encrypt            string
	MaxOpenConns       int
	IdleTimeoutSeconds int
	Required           bool
}

type AuthConfig struct {
	Enabled         bool
	JWTSecret       string
	TokenTTLMinutes int
}

type AppConfig struct {
	StoreName         string
	QueryEnabled      bool
	LoginProcedure    string
	DropdownProcedure string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	DropdownTTLSeconds int
}

type StorageConfig struct {
	Enabled          bool
	Endpoint         string
	AccessKey        string
	SecretKey        string
	Bucket           string
	Region           string
	UseSSL           bool
	Prefix           string
	URLExpiryMinutes int
}

var (
	once     sync.Once
	instance *Config
)

// Load reads .env (when present) and the process environment once.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		v := viper.New()
		v.AutomaticEnv()
		instance = LoadFrom(v)
	})

	return instance
}

// LoadFrom builds a Config from an explicit viper instance. Defaults are
// applied to v before reading.
func LoadFrom(v *viper.Viper) *Config {
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			Mode:           v.GetString("SERVER_MODE"),
			LogLevel:       v.GetString("LOG_LEVEL"),
			ReadTimeout:    v.GetInt("SERVER_READ_TIMEOUT"),
			WriteTimeout:   v.GetInt("SERVER_WRITE_TIMEOUT"),
			MaxBodyBytes:   v.GetInt64("SERVER_MAX_BODY_BYTES"),
			AllowedOrigins: splitList(v.GetStringSlice("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Server:             v.GetString(DatabaseEnvPrefix + "_SERVER"),
			Port:               v.GetInt(DatabaseEnvPrefix + "_PORT"),
			User:               v.GetString(DatabaseEnvPrefix + "_USER"),
			Password:           v.GetString(DatabaseEnvPrefix + "_PASSWORD"),
			Database:           v.GetString(DatabaseEnvPrefix + "_DATABASE"),
			Encrypt:            v.GetString("DB_ENCRYPT"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			IdleTimeoutSeconds: v.GetInt("DB_IDLE_TIMEOUT_SECONDS"),
			Required:           v.GetBool("DB_REQUIRED"),
		},
		Auth: AuthConfig{
			Enabled:         v.GetBool("AUTH_ENABLED"),
			JWTSecret:       v.GetString("AUTH_JWT_SECRET"),
			TokenTTLMinutes: v.GetInt("AUTH_TOKEN_TTL_MINUTES"),
		},
		App: AppConfig{
			StoreName:         v.GetString("APP_STORE_NAME"),
			QueryEnabled:      v.GetBool("API_QUERY_ENABLED"),
			LoginProcedure:    v.GetString("APP_LOGIN_PROCEDURE"),
			DropdownProcedure: v.GetString("APP_DROPDOWN_PROCEDURE"),
		},
		Cache: CacheConfig{
			Enabled:            v.GetBool("CACHE_ENABLED"),
			RedisURL:           v.GetString("REDIS_URL"),
			RedisHost:          v.GetString("REDIS_HOST"),
			RedisPort:          v.GetString("REDIS_PORT"),
			RedisPassword:      v.GetString("REDIS_PASSWORD"),
			RedisDB:            v.GetInt("REDIS_DB"),
			DropdownTTLSeconds: v.GetInt("CACHE_DROPDOWN_TTL_SECONDS"),
		},
		Storage: StorageConfig{
			Enabled:          v.GetBool("EXPORT_STORAGE_ENABLED"),
			Endpoint:         v.GetString("S3_ENDPOINT"),
			AccessKey:        v.GetString("S3_ACCESS_KEY"),
			SecretKey:        v.GetString("S3_SECRET_KEY"),
			Bucket:           v.GetString("S3_BUCKET"),
			Region:           v.GetString("S3_REGION"),
			UseSSL:           v.GetBool("S3_USE_SSL"),
			Prefix:           v.GetString("S3_EXPORT_PREFIX"),
			URLExpiryMinutes: v.GetInt("S3_URL_EXPIRY_MINUTES"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "4000")
	v.SetDefault("SERVER_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_READ_TIMEOUT", 0)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 0)
	v.SetDefault("SERVER_MAX_BODY_BYTES", 1<<20)
	v.SetDefault("CORS_ORIGINS", strings.Join(defaultCORSOrigins, ","))
	v.SetDefault(DatabaseEnvPrefix+"_PORT", 1433)
	v.SetDefault("DB_ENCRYPT", "")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_IDLE_TIMEOUT_SECONDS", 30)
	v.SetDefault("DB_REQUIRED", false)
	v.SetDefault("AUTH_ENABLED", false)
	v.SetDefault("AUTH_JWT_SECRET", "")
	v.SetDefault("AUTH_TOKEN_TTL_MINUTES", 480)
	v.SetDefault("APP_STORE_NAME", "Electronic Store")
	v.SetDefault("API_QUERY_ENABLED", true)
	v.SetDefault("APP_LOGIN_PROCEDURE", "proc_logindone")
	v.SetDefault("APP_DROPDOWN_PROCEDURE", "proc_drp_sale_report")
	v.SetDefault("CACHE_ENABLED", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "127.0.0.1")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_DROPDOWN_TTL_SECONDS", 300)
	v.SetDefault("EXPORT_STORAGE_ENABLED", false)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("S3_EXPORT_PREFIX", "exports/")
	v.SetDefault("S3_URL_EXPIRY_MINUTES", 60)
}

// Validate reports which connection settings are missing. A missing
// setting disables the database without failing startup.
func (c DatabaseConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Server) == "" {
		missing = append(missing, DatabaseEnvPrefix+"_SERVER")
	}
	if strings.TrimSpace(c.User) == "" {
		missing = append(missing, DatabaseEnvPrefix+"_USER")
	}
	if c.Password == "" {
		missing = append(missing, DatabaseEnvPrefix+"_PASSWORD")
	}
	if strings.TrimSpace(c.Database) == "" {
		missing = append(missing, DatabaseEnvPrefix+"_DATABASE")
	}
	if len(missing) > 0 {
		return &domain.ConfigurationMissingError{Keys: missing}
	}
	return nil
}

// EncryptMode returns the go-mssqldb encrypt setting. An explicit
// DB_ENCRYPT wins; otherwise IP hosts connect unencrypted and named hosts
// encrypt with a trusted server certificate.
func (c DatabaseConfig) EncryptMode() string {
	if c.Encrypt != "" {
		return c.Encrypt
	}
	if ip := net.ParseIP(c.Server); ip != nil && ip.To4() != nil {
		return "disable"
	}
	return "true"
}

func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
