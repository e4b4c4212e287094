package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
)

type Config struct {
	AppPort string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	// Platform account that collects origination fees and pays out
	// principal at acceptance. Must exist before the API starts.
	PlatformAccountID string
	PlatformFee       string

	// Reconciliation sweep knobs.
	GracePeriodDays   int
	DefaultAfterDays  int
	DefaultMinOverdue int
	SweepIntervalSecs int

	// In-process lock acquisition wait before giving up with 503.
	LockWaitMS int

	// Kafka is optional: empty brokers means events are dropped.
	KafkaBrokers []string
	KafkaTopic   string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func Load() *Config {
	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "lenme"),
		MySQLUser: getenv("MYSQL_USER", "lenme"),
		MySQLPass: getenv("MYSQL_PASS", "lenme"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getenvInt("REDIS_DB", 0),
		IdempTTLSecs: getenvInt("IDEMPOTENCY_TTL_SECONDS", 300),

		PlatformAccountID: os.Getenv("PLATFORM_ACCOUNT_ID"),
		PlatformFee:       getenv("PLATFORM_FEE", "50.00"),

		GracePeriodDays:   getenvInt("GRACE_PERIOD_DAYS", 7),
		DefaultAfterDays:  getenvInt("DEFAULT_AFTER_DAYS", 30),
		DefaultMinOverdue: getenvInt("DEFAULT_MIN_OVERDUE", 2),
		SweepIntervalSecs: getenvInt("SWEEP_INTERVAL_SECONDS", 3600),

		LockWaitMS: getenvInt("LOCK_WAIT_MS", 2000),

		KafkaTopic: getenv("KAFKA_TOPIC", "lenme.loan-events"),
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if c.PlatformAccountID == "" {
		return errors.New("missing PLATFORM_ACCOUNT_ID")
	}
	if c.GracePeriodDays < 0 || c.DefaultAfterDays <= c.GracePeriodDays {
		return fmt.Errorf("DEFAULT_AFTER_DAYS (%d) must exceed GRACE_PERIOD_DAYS (%d)",
			c.DefaultAfterDays, c.GracePeriodDays)
	}
	if c.DefaultMinOverdue < 1 {
		return errors.New("DEFAULT_MIN_OVERDUE must be at least 1")
	}
	return nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
