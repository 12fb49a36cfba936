package internal

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"http_server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Security   SecurityConfig   `mapstructure:"security"`
	Messaging  MessagingConfig  `mapstructure:"messaging"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Holidays   HolidaysConfig   `mapstructure:"holidays"`
	Payroll    PayrollConfig    `mapstructure:"payroll"`
	Locking    LockingConfig    `mapstructure:"locking"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Source          string        `mapstructure:"source"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type SecurityConfig struct {
	AdminAPIKey   string        `mapstructure:"admin_api_key"`
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenDuration time.Duration `mapstructure:"token_duration"`
}

// MessagingConfig points at the chat platform used to receive webhook
// events and to push replies and notifications.
type MessagingConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	ChannelToken   string        `mapstructure:"channel_token"`
	ChannelSecret  string        `mapstructure:"channel_secret"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type ClassifierConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type HolidaysConfig struct {
	SourceURL       string        `mapstructure:"source_url"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

// PayrollConfig carries the organization-wide payroll constants. The
// standard shift length, midday break window and overtime threshold are
// configuration, not rules baked into the calculator.
type PayrollConfig struct {
	Timezone           string        `mapstructure:"timezone"`
	StandardShiftHours float64       `mapstructure:"standard_shift_hours"`
	BreakStart         string        `mapstructure:"break_start"`
	BreakEnd           string        `mapstructure:"break_end"`
	OvertimeThreshold  time.Duration `mapstructure:"overtime_threshold"`
	SpecialLeaveLabel  string        `mapstructure:"special_leave_label"`
	SpecialLeaveTable  map[int]int   `mapstructure:"special_leave_table"`
}

type LockingConfig struct {
	Mode      string        `mapstructure:"mode"` // inprocess or redis
	RedisAddr string        `mapstructure:"redis_addr"`
	RedisDB   int           `mapstructure:"redis_db"`
	LockTTL   time.Duration `mapstructure:"lock_ttl"`
}

type LoggingConfig struct {
	Env   string `mapstructure:"env"`
	Level string `mapstructure:"level"`
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Messaging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("messaging config: %v", err))
	}

	if err := c.Payroll.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("payroll config: %v", err))
	}

	if err := c.Locking.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("locking config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Driver != "postgres" && c.Driver != "sqlite" {
		return fmt.Errorf("unsupported database driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("database source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *MessagingConfig) Validate() error {
	if c.APIURL == "" {
		return errors.New("messaging api_url is required")
	}
	if _, err := url.Parse(c.APIURL); err != nil {
		return fmt.Errorf("invalid messaging api_url: %w", err)
	}
	if c.ChannelSecret == "" {
		return errors.New("messaging channel_secret is required")
	}
	return nil
}

func (c *PayrollConfig) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	if c.StandardShiftHours <= 0 {
		return errors.New("standard_shift_hours must be positive")
	}
	for _, hm := range []string{c.BreakStart, c.BreakEnd} {
		if _, err := time.Parse("15:04", hm); err != nil {
			return fmt.Errorf("invalid break window time %q: %w", hm, err)
		}
	}
	return nil
}

func (c *PayrollConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// EntitlementDays resolves years of service to the statutory special-leave
// allotment using the configured breakpoint table.
func (c *PayrollConfig) EntitlementDays(serviceYears int) int {
	thresholds := make([]int, 0, len(c.SpecialLeaveTable))
	for y := range c.SpecialLeaveTable {
		thresholds = append(thresholds, y)
	}
	sort.Ints(thresholds)

	days := 0
	for _, y := range thresholds {
		if serviceYears >= y {
			days = c.SpecialLeaveTable[y]
		}
	}
	return days
}

func (c *LockingConfig) Validate() error {
	switch c.Mode {
	case "", "inprocess":
		return nil
	case "redis":
		if c.RedisAddr == "" {
			return errors.New("redis_addr is required when locking mode is redis")
		}
		return nil
	default:
		return fmt.Errorf("unsupported locking mode %q", c.Mode)
	}
}
