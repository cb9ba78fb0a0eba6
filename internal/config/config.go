package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for our application
type Config struct {
	Port                      string
	Origin                    string
	Environment               string
	JWTSecret                 string
	JWTRefreshSecret          string
	JWTExpirationMinutes      int
	JWTRefreshExpirationHours int
	Database                  DatabaseConfig
	Twilio                    TwilioConfig
	Pinecone                  PineconeConfig
	Kafka                     KafkaConfig
	Jobs                      JobsConfig
	MediaDir                  string
	DefaultCountryCode        string
	AppURL                    string
}

// DatabaseConfig holds database connection details
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Name     string
	DSN      string
}

// TwilioConfig holds SMS gateway credentials. SMS dispatch is disabled
// when AccountSID is empty.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// PineconeConfig holds vector-search credentials. The recommendation
// engine degrades to keyword-only scoring when APIKey is empty.
// SyncOnStart rebuilds every active doctor's index document at startup
// so rows predating the index become searchable.
type PineconeConfig struct {
	APIKey      string
	IndexName   string
	Namespace   string
	EmbedModel  string
	SyncOnStart bool
}

// KafkaConfig holds the optional appointment-event sink settings.
// Publishing is disabled when Broker is empty.
type KafkaConfig struct {
	Broker string
	Topic  string
}

// JobsConfig holds scheduled-job tuning knobs.
type JobsConfig struct {
	MorningReminderHour int
	NoShowGraceMinutes  int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	dbConfig := DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "3306"),
		Username: getEnv("DB_USERNAME", "root"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "clinic"),
	}

	// Build DSN (Data Source Name) for MySQL connection
	dbConfig.DSN = fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		dbConfig.Username, dbConfig.Password, dbConfig.Host, dbConfig.Port, dbConfig.Name)

	jwtExpMinutes, err := strconv.Atoi(getEnv("JWT_EXPIRATION_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_EXPIRATION_MINUTES: %w", err)
	}

	jwtRefreshExpHours, err := strconv.Atoi(getEnv("JWT_REFRESH_EXPIRATION_HOURS", "168")) // 7 days
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_EXPIRATION_HOURS: %w", err)
	}

	morningHour, err := strconv.Atoi(getEnv("MORNING_REMINDER_HOUR", "8"))
	if err != nil {
		return nil, fmt.Errorf("invalid MORNING_REMINDER_HOUR: %w", err)
	}

	graceMinutes, err := strconv.Atoi(getEnv("NO_SHOW_GRACE_MINUTES", "15"))
	if err != nil {
		return nil, fmt.Errorf("invalid NO_SHOW_GRACE_MINUTES: %w", err)
	}

	pineconeSync, err := strconv.ParseBool(getEnv("PINECONE_SYNC_ON_START", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid PINECONE_SYNC_ON_START: %w", err)
	}

	return &Config{
		Port:                      getEnv("PORT", "3001"),
		Origin:                    getEnv("ORIGIN", "http://localhost:5173"),
		Environment:               getEnv("APP_ENV", "development"),
		JWTSecret:                 getEnv("JWT_SECRET", "default_jwt_secret"),
		JWTRefreshSecret:          getEnv("JWT_REFRESH_SECRET", "default_refresh_secret"),
		JWTExpirationMinutes:      jwtExpMinutes,
		JWTRefreshExpirationHours: jwtRefreshExpHours,
		Database:                  dbConfig,
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_PHONE_NUMBER", ""),
		},
		Pinecone: PineconeConfig{
			APIKey:      getEnv("PINECONE_API_KEY", ""),
			IndexName:   getEnv("PINECONE_INDEX_NAME", "health-doctors"),
			Namespace:   getEnv("PINECONE_NAMESPACE", ""),
			EmbedModel:  getEnv("PINECONE_EMBED_MODEL", "multilingual-e5-large"),
			SyncOnStart: pineconeSync,
		},
		Kafka: KafkaConfig{
			Broker: getEnv("KAFKA_BROKER", ""),
			Topic:  getEnv("KAFKA_APPOINTMENT_TOPIC", "appointment_events"),
		},
		Jobs: JobsConfig{
			MorningReminderHour: morningHour,
			NoShowGraceMinutes:  graceMinutes,
		},
		MediaDir:           getEnv("MEDIA_DIR", "media"),
		DefaultCountryCode: getEnv("DEFAULT_COUNTRY_CODE", "+977"),
		AppURL:             getEnv("APP_URL", "http://localhost:3001"),
	}, nil
}

// Helper function to get environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
