package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	qrcode "github.com/skip2/go-qrcode"
)

type Config struct {
	App         AppConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	MinIO       MinIOConfig
	Redis       RedisConfig
	Certificate CertificateConfig
	Log         LogConfig
}

// BaseURL is captured into every certificate's validation URL at issuance.
type AppConfig struct {
	Port           string
	Env            string
	BaseURL        string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

type JWTConfig struct {
	Secret          string
	ExpireHours     int
	RefreshExpHours int
}

type MinIOConfig struct {
	Enabled  bool
	Endpoint string
	User     string
	Password string
	Bucket   string
	UseSSL   bool
}

type RedisConfig struct {
	URL       string
	VerifyTTL time.Duration
}

type CertificateConfig struct {
	ClubName        string
	SignatoryLeft   string
	SignatoryRight  string
	QRSize          int
	QRRecoveryLevel qrcode.RecoveryLevel
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	// .env is optional; production reads the environment directly
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}

	jwtExpire, _ := strconv.Atoi(getEnv("JWT_EXPIRE_HOURS", "24"))
	jwtRefreshExpire, _ := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRE_HOURS", "168"))
	minioSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	minioEnabled, _ := strconv.ParseBool(getEnv("MINIO_ENABLED", "false"))
	verifyTTL, _ := strconv.Atoi(getEnv("VERIFY_CACHE_TTL_SECONDS", "300"))
	qrSize, _ := strconv.Atoi(getEnv("QR_SIZE_PX", "256"))

	return &Config{
		App: AppConfig{
			Port:           getEnv("APP_PORT", "8080"),
			Env:            getEnv("APP_ENV", "development"),
			BaseURL:        strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:3000"), "/"),
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "club_user"),
			Password:       getEnv("DB_PASSWORD", ""),
			Name:           getEnv("DB_NAME", "club_db"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		JWT: JWTConfig{
			Secret:          getEnv("JWT_SECRET", "change-this-secret"),
			ExpireHours:     jwtExpire,
			RefreshExpHours: jwtRefreshExpire,
		},
		MinIO: MinIOConfig{
			Enabled:  minioEnabled,
			Endpoint: getEnv("MINIO_ENDPOINT", "localhost:9000"),
			User:     getEnv("MINIO_USER", "minioadmin"),
			Password: getEnv("MINIO_PASSWORD", "minioadmin123"),
			Bucket:   getEnv("MINIO_BUCKET", "club-certificates"),
			UseSSL:   minioSSL,
		},
		Redis: RedisConfig{
			URL:       getEnv("REDIS_URL", ""),
			VerifyTTL: time.Duration(verifyTTL) * time.Second,
		},
		Certificate: CertificateConfig{
			ClubName:        getEnv("CLUB_NAME", "Sports Club"),
			SignatoryLeft:   getEnv("CERT_SIGNATORY_LEFT", "Competition Director"),
			SignatoryRight:  getEnv("CERT_SIGNATORY_RIGHT", "Club President"),
			QRSize:          qrSize,
			QRRecoveryLevel: qrcode.Medium,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
