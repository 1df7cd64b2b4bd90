package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// generateWorkerID creates a unique process identity using hostname and
// PID, used as the default log field when WORKER_ID is not set.
func generateWorkerID() string {
	hostname, _ := os.Hostname()
	if hostname == "" {
		hostname = "ccmwf-go"
	}
	return fmt.Sprintf("%s-%d", hostname, os.Getpid())
}

// CacheProvider selects the cache-layer variant.
type CacheProvider string

const (
	CacheProviderMemory CacheProvider = "memory"
	CacheProviderRemote CacheProvider = "remote"
)

// MailGatewayKind selects the mail-gateway variant.
type MailGatewayKind string

const (
	MailGatewayOAuth MailGatewayKind = "oauth"
	MailGatewayIMAP  MailGatewayKind = "imap"
)

// Config is the process-wide configuration, loaded once at startup and
// passed explicitly through the orchestrator rather than read from
// ambient globals.
type Config struct {
	Port        string
	Environment string
	WorkerID    string

	// Mailbox
	MailUser            string
	MailSubjectPattern  string
	ProcessedMarker     string
	MailGateway         MailGatewayKind
	IMAPHost            string
	IMAPPort            int
	IMAPPassword        string
	OAuthClientID       string
	OAuthClientSecret   string
	OAuthRefreshToken   string
	OAuthTokenURL       string

	// Object store
	AttachmentsFolderID string
	DriveClientID       string
	DriveClientSecret   string
	DriveRefreshToken   string

	// Relational store
	DBDSN string

	// Document store for SyncState
	MongoURL string
	MongoDB  string

	// Cache
	CacheProvider    CacheProvider
	CacheTTLMinutes  int
	RedisURL         string

	// Branch scoping
	BranchID        string
	AllowedBranches []string

	// Dataset windows
	UpcomingArrivalDays  int
	UpcomingBirthdayDays int

	// Logging
	LogFilePath string

	// Encryption at rest for the persisted OAuth refresh token
	EncryptionKey string

	// CORS
	AllowedOrigins []string

	// Scheduler
	SchedulerEnabled      bool
	SchedulerIntervalMin  int
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENV", "development"),
		WorkerID:    getEnv("WORKER_ID", generateWorkerID()),

		MailUser:           getEnv("MAIL_USER", ""),
		MailSubjectPattern: getEnv("MAIL_SUBJECT_PATTERN", "Misioneros que llegan"),
		ProcessedMarker:    getEnv("PROCESSED_MARKER", "ccmwf-processed"),
		MailGateway:        MailGatewayKind(getEnv("MAIL_GATEWAY", string(MailGatewayOAuth))),
		IMAPHost:           getEnv("IMAP_HOST", ""),
		IMAPPort:           getEnvInt("IMAP_PORT", 993),
		IMAPPassword:       getEnv("IMAP_PASSWORD", ""),
		OAuthClientID:      getEnv("OAUTH_CLIENT_ID", ""),
		OAuthClientSecret:  getEnv("OAUTH_CLIENT_SECRET", ""),
		OAuthRefreshToken:  getEnv("OAUTH_REFRESH_TOKEN", ""),
		OAuthTokenURL:      getEnv("OAUTH_TOKEN_URL", ""),

		AttachmentsFolderID: getEnv("ATTACHMENTS_FOLDER_ID", ""),
		DriveClientID:       getEnv("DRIVE_CLIENT_ID", ""),
		DriveClientSecret:   getEnv("DRIVE_CLIENT_SECRET", ""),
		DriveRefreshToken:   getEnv("DRIVE_REFRESH_TOKEN", ""),

		DBDSN: getEnv("DB_DSN", ""),

		MongoURL: getEnv("MONGO_URL", ""),
		MongoDB:  getEnv("MONGO_DATABASE", "ccmwf"),

		CacheProvider:   CacheProvider(getEnv("CACHE_PROVIDER", string(CacheProviderMemory))),
		CacheTTLMinutes: getEnvInt("CACHE_TTL_MINUTES", 30),
		RedisURL:        getEnv("REDIS_URL", ""),

		BranchID:        getEnv("BRANCH_ID", ""),
		AllowedBranches: getEnvSlice("ALLOWED_BRANCHES", nil),

		UpcomingArrivalDays:  getEnvInt("UPCOMING_ARRIVAL_DAYS", 14),
		UpcomingBirthdayDays: getEnvInt("UPCOMING_BIRTHDAY_DAYS", 14),

		LogFilePath: getEnv("LOG_FILE_PATH", ""),

		EncryptionKey: getEnv("ENCRYPTION_KEY", ""),

		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),

		SchedulerEnabled:     getEnvBool("SCHEDULER_ENABLED", true),
		SchedulerIntervalMin: getEnvInt("SCHEDULER_INTERVAL_MIN", 60),
	}

	if cfg.BranchID == "" {
		return nil, fmt.Errorf("BRANCH_ID is required")
	}
	return cfg, nil
}

// ActiveBranches resolves the open question of BRANCH_ID vs
// ALLOWED_BRANCHES interplay as an intersection: ALLOWED_BRANCHES gates
// which branches the process may ever touch, BRANCH_ID narrows that to
// the single branch this process instance is actively serving.
func (c *Config) ActiveBranches() []string {
	if len(c.AllowedBranches) == 0 {
		return []string{c.BranchID}
	}
	for _, b := range c.AllowedBranches {
		if b == c.BranchID {
			return []string{c.BranchID}
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
