package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/campusgeo/attendance-backend-go/internal/domain/attendance"
	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Database   DatabaseConfig
	JWT        JWTConfig
	App        AppConfig
	Attendance AttendanceConfig
	Redis      RedisConfig
	RateLimit  RateLimitConfig
	Cron       CronConfig
}

type DatabaseConfig struct {
	// Driver selects the attendance store: postgres or memory.
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int32
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string
	Version        string
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// AttendanceConfig holds the check-in rules.
type AttendanceConfig struct {
	Timezone             string
	CheckInStart         string
	CheckInEnd           string
	CheckOutStart        string
	CheckOutEnd          string
	GeofenceEnforced     bool
	LockTimeout          time.Duration
	// DefaultRadius is the allowed radius of the seeded campus location.
	DefaultRadius        float64
	SeedDefaultLocations bool
}

// RedisConfig is optional; an empty Addr disables the location cache.
type RedisConfig struct {
	Addr        string
	Password    string
	DB          int
	LocationTTL time.Duration
}

type RateLimitConfig struct {
	TogglesPerSecond float64
	Burst            int
}

type CronConfig struct {
	Enabled              bool
	LocationRefresh      time.Duration
	OpenSessionsInterval time.Duration
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file loaded, using environment", "error", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := getEnvAsInt("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}
	dbMaxConns, err := getEnvAsInt("DB_MAX_CONNS", 10)
	if err != nil {
		return nil, err
	}

	config.Database = DatabaseConfig{
		Driver:   strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres)),
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     dbPort,
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "attendance"),
		SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		MaxConns: int32(dbMaxConns),
	}

	// Application configuration
	appPort, err := getEnvAsInt("APP_PORT", 8080)
	if err != nil {
		return nil, err
	}

	config.App = AppConfig{
		Name:           getEnv("APP_NAME", "attendance-backend"),
		Version:        getEnv("APP_VERSION", "v1.0.0"),
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	accessExpiration, err := getEnvAsDuration("JWT_ACCESS_EXPIRATION_TIME", 24*time.Hour)
	if err != nil {
		return nil, err
	}

	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: accessExpiration,
	}

	// Attendance configuration
	lockTimeout, err := getEnvAsDuration("ATTENDANCE_LOCK_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, err
	}
	defaultRadius, err := getEnvAsFloat("DEFAULT_LOCATION_RADIUS", 500)
	if err != nil {
		return nil, err
	}

	config.Attendance = AttendanceConfig{
		Timezone:             getEnv("ATTENDANCE_TIMEZONE", attendance.DefaultTimezone),
		CheckInStart:         getEnv("CHECKIN_START", "09:00"),
		CheckInEnd:           getEnv("CHECKIN_END", "15:00"),
		CheckOutStart:        getEnv("CHECKOUT_START", "16:00"),
		CheckOutEnd:          getEnv("CHECKOUT_END", "21:00"),
		GeofenceEnforced:     getEnvAsBool("GEOFENCE_ENFORCED", true),
		LockTimeout:          lockTimeout,
		DefaultRadius:        defaultRadius,
		SeedDefaultLocations: getEnvAsBool("SEED_DEFAULT_LOCATIONS", true),
	}

	// Redis configuration
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}
	locationTTL, err := getEnvAsDuration("REDIS_LOCATION_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}

	config.Redis = RedisConfig{
		Addr:        getEnv("REDIS_ADDR", ""),
		Password:    getEnv("REDIS_PASSWORD", ""),
		DB:          redisDB,
		LocationTTL: locationTTL,
	}

	// Rate limit configuration
	toggleRate, err := getEnvAsFloat("RATE_LIMIT_TOGGLES_PER_SECOND", 1)
	if err != nil {
		return nil, err
	}
	toggleBurst, err := getEnvAsInt("RATE_LIMIT_BURST", 5)
	if err != nil {
		return nil, err
	}

	config.RateLimit = RateLimitConfig{
		TogglesPerSecond: toggleRate,
		Burst:            toggleBurst,
	}

	// Cron configuration
	locationRefresh, err := getEnvAsDuration("CRON_LOCATION_REFRESH", 5*time.Minute)
	if err != nil {
		return nil, err
	}
	openSessions, err := getEnvAsDuration("CRON_OPEN_SESSIONS_INTERVAL", time.Hour)
	if err != nil {
		return nil, err
	}

	config.Cron = CronConfig{
		Enabled:              getEnvAsBool("CRON_ENABLED", true),
		LocationRefresh:      locationRefresh,
		OpenSessionsInterval: openSessions,
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case StoreDriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required")
		}
	case StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.Database.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.Attendance.LockTimeout <= 0 {
		return fmt.Errorf("ATTENDANCE_LOCK_TIMEOUT must be positive")
	}
	if c.Attendance.DefaultRadius <= 0 {
		return fmt.Errorf("DEFAULT_LOCATION_RADIUS must be positive")
	}
	if c.RateLimit.TogglesPerSecond < 0 || c.RateLimit.Burst < 0 {
		return fmt.Errorf("rate limit values must not be negative")
	}
	if _, err := c.Attendance.Policy(); err != nil {
		return err
	}
	return nil
}

// Policy builds the time window policy from the attendance settings.
func (a AttendanceConfig) Policy() (attendance.TimeWindowPolicy, error) {
	policy := attendance.DefaultPolicy()
	policy.Location = attendance.LoadLocation(a.Timezone)

	var err error
	if policy.CheckIn, err = parseWindow(a.CheckInStart, a.CheckInEnd); err != nil {
		return policy, fmt.Errorf("CHECKIN window: %w", err)
	}
	if policy.CheckOut, err = parseWindow(a.CheckOutStart, a.CheckOutEnd); err != nil {
		return policy, fmt.Errorf("CHECKOUT window: %w", err)
	}
	return policy, policy.Validate()
}

func parseWindow(start, end string) (attendance.Window, error) {
	s, err := attendance.ParseClockTime(start)
	if err != nil {
		return attendance.Window{}, err
	}
	e, err := attendance.ParseClockTime(end)
	if err != nil {
		return attendance.Window{}, err
	}
	return attendance.Window{Start: s, End: e}, nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvAsFloat(key string, fallback float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getEnvAsBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
