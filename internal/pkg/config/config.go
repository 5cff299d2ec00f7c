package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (timeouts, TTLs, etc.), standard settings
// -----------------------------------------------------------------------------

type Config struct {
	Server      ServerConfig
	DB          DBConfig
	Redis       RedisConfig
	CORS        CORSConfig
	Log         LogConfig
	QRToken     QRTokenConfig
	Translation TranslationConfig
	Voice       VoiceConfig
	Sweep       SweepConfig
}

type ServerConfig struct {
	Port          string `envconfig:"PORT" required:"true"`
	PublicBaseURL string `envconfig:"PUBLIC_BASE_URL" default:"http://localhost:8080"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	TimeZone string `envconfig:"DB_TIMEZONE" default:"Asia/Kolkata"`
}

type RedisConfig struct {
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000,http://localhost:8080"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level          string `envconfig:"LOG_LEVEL" default:"info"`
	TimeZone       string `envconfig:"LOG_TIMEZONE" default:"Asia/Kolkata"`
	TimeFormat     string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	TimeZoneOffset int    `envconfig:"LOG_TIMEZONE_OFFSET" default:"19800"` // 5.5*60*60
}

type QRTokenConfig struct {
	Secret   string `envconfig:"QR_TOKEN_SECRET" required:"true"`
	Duration string `envconfig:"QR_TOKEN_DURATION" default:"24h"`
}

type TranslationConfig struct {
	PrimaryURL     string        `envconfig:"TRANSLATION_PRIMARY_URL" default:"http://localhost:9101/translate"`
	SecondaryURL   string        `envconfig:"TRANSLATION_SECONDARY_URL" default:""`
	RequestTimeout time.Duration `envconfig:"TRANSLATION_REQUEST_TIMEOUT" default:"5s"`
	MaxRetries     uint          `envconfig:"TRANSLATION_MAX_RETRIES" default:"2"`
	MaxInflight    int           `envconfig:"TRANSLATION_MAX_INFLIGHT" default:"32"`
	CacheTTL       time.Duration `envconfig:"TRANSLATION_CACHE_TTL" default:"168h"`
}

type VoiceConfig struct {
	SpeechToTextURL string        `envconfig:"SPEECH_TO_TEXT_URL" default:"http://localhost:9102/stt"`
	TextToSpeechURL string        `envconfig:"TEXT_TO_SPEECH_URL" default:"http://localhost:9102/tts"`
	RequestTimeout  time.Duration `envconfig:"SPEECH_REQUEST_TIMEOUT" default:"10s"`
	WorkflowTTL     time.Duration `envconfig:"VOICE_WORKFLOW_TTL" default:"5m"`
	PivotLanguage   string        `envconfig:"VOICE_PIVOT_LANGUAGE" default:"en"`
}

type SweepConfig struct {
	Interval      time.Duration `envconfig:"SWEEP_INTERVAL" default:"1m"`
	RoomRetention time.Duration `envconfig:"SWEEP_ROOM_RETENTION" default:"720h"`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&timezone=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode, c.TimeZone,
	)
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:          "8889", // Test port
			PublicBaseURL: "http://localhost:8889",
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
			TimeZone: "Asia/Kolkata",
		},
		Redis: RedisConfig{
			Addr: "localhost:16379",
		},
		Log: LogConfig{
			Level:          "error", // Error level only for tests
			TimeZone:       "Asia/Kolkata",
			TimeFormat:     "2006-01-02 15:04:05.000",
			TimeZoneOffset: 19800,
		},
		QRToken: QRTokenConfig{
			Secret:   "test-secret",
			Duration: "24h",
		},
		Translation: TranslationConfig{
			RequestTimeout: time.Second,
			MaxRetries:     1,
			MaxInflight:    4,
			CacheTTL:       time.Hour,
		},
		Voice: VoiceConfig{
			WorkflowTTL:   5 * time.Minute,
			PivotLanguage: "en",
		},
		Sweep: SweepConfig{
			Interval:      time.Minute,
			RoomRetention: time.Hour,
		},
	}
}
