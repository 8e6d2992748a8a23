// Package config builds the one configuration struct the rest of the program
// receives by value. Nothing outside this package reads the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultPollIntervalSec  = 5.0
	defaultPollTimeoutSec   = 0.0 // unbounded
	defaultToleranceMinutes = 120.0
	defaultDBPath           = "./accountability.db"
	defaultConfigFile       = "accountability.yaml"
)

// Config holds all settings for one invocation.
type Config struct {
	APIToken string
	BaseURL  string

	MorningAssistantID string
	EveningAssistantID string
	PhoneNumberID      string
	TargetNumber       string

	PollInterval  time.Duration // floor 1s
	PollTimeout   time.Duration // 0 means no timeout
	TimeTolerance time.Duration // floor 1m

	MorningCallTime  string // "HH:MM", anchors the morning polling window
	SkipOutboundCall bool

	VaultEnabled bool
	VaultRepoURL string
	VaultToken   string
	GitUserName  string
	GitUserEmail string

	DBPath           string
	NotifyWebhookURL string
}

// fileConfig is the optional YAML overlay. Pointer fields so absent keys
// leave defaults alone; environment variables always win over the file.
type fileConfig struct {
	BaseURL              *string  `yaml:"base_url"`
	DBPath               *string  `yaml:"db_path"`
	PollIntervalSeconds  *float64 `yaml:"poll_interval_seconds"`
	PollTimeoutSeconds   *float64 `yaml:"poll_timeout_seconds"`
	TimeToleranceMinutes *float64 `yaml:"time_tolerance_minutes"`
	MorningCallTime      *string  `yaml:"morning_call_time"`
	GitUserName          *string  `yaml:"git_user_name"`
	GitUserEmail         *string  `yaml:"git_user_email"`
	NotifyWebhookURL     *string  `yaml:"notify_webhook_url"`
}

// Load assembles the configuration: defaults, then the YAML overlay, then the
// environment. A .env file in the working directory is honored.
func Load(log *logrus.Logger) Config {
	_ = godotenv.Load()

	cfg := Config{
		BaseURL:         "https://api.vapi.ai",
		DBPath:          defaultDBPath,
		PollInterval:    time.Duration(defaultPollIntervalSec * float64(time.Second)),
		PollTimeout:     0,
		TimeTolerance:   time.Duration(defaultToleranceMinutes * float64(time.Minute)),
		MorningCallTime: "",
	}

	applyFile(&cfg, getenv("ACCOUNTABILITY_CONFIG", defaultConfigFile), log)

	cfg.APIToken = getenv("VAPI_API_TOKEN", cfg.APIToken)
	cfg.BaseURL = getenv("VAPI_BASE_URL", cfg.BaseURL)
	cfg.MorningAssistantID = getenv("MORNING_ASSISTANT_ID", "")
	cfg.EveningAssistantID = getenv("EVENING_ASSISTANT_ID", "")
	cfg.PhoneNumberID = getenv("PHONE_NUMBER_ID", "")
	cfg.TargetNumber = getenv("TARGET_PHONE_NUMBER", "")
	cfg.MorningCallTime = getenv("MORNING_CALL_TIME", cfg.MorningCallTime)
	cfg.SkipOutboundCall = getenvBool("SKIP_OUTBOUND_CALL", false)
	cfg.VaultEnabled = getenvBool("OBSIDIAN_ENABLED", false)
	cfg.VaultRepoURL = getenv("OBSIDIAN_REPO_URL", "")
	cfg.VaultToken = getenv("OBSIDIAN_GITHUB_TOKEN", "")
	cfg.GitUserName = getenv("OBSIDIAN_GIT_USER_NAME", cfg.GitUserName)
	cfg.GitUserEmail = getenv("OBSIDIAN_GIT_USER_EMAIL", cfg.GitUserEmail)
	cfg.DBPath = getenv("DB_PATH", cfg.DBPath)
	cfg.NotifyWebhookURL = getenv("NOTIFY_WEBHOOK_URL", cfg.NotifyWebhookURL)

	intervalSec := getenvFloat("VAPI_POLL_INTERVAL_SECONDS", cfg.PollInterval.Seconds(), log)
	if intervalSec < 1 {
		intervalSec = 1
	}
	cfg.PollInterval = time.Duration(intervalSec * float64(time.Second))

	timeoutSec := getenvFloat("VAPI_POLL_TIMEOUT_SECONDS", cfg.PollTimeout.Seconds(), log)
	if timeoutSec > 0 {
		cfg.PollTimeout = time.Duration(timeoutSec * float64(time.Second))
	} else {
		cfg.PollTimeout = 0
	}

	toleranceMin := getenvFloat("VAPI_CALL_TIME_TOLERANCE_MINUTES", cfg.TimeTolerance.Minutes(), log)
	if toleranceMin < 1 {
		toleranceMin = 1
	}
	cfg.TimeTolerance = time.Duration(toleranceMin * float64(time.Minute))

	return cfg
}

func applyFile(cfg *Config, path string, log *logrus.Logger) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		log.WithError(err).WithField("path", path).Warn("config file ignored")
		return
	}
	if fc.BaseURL != nil {
		cfg.BaseURL = *fc.BaseURL
	}
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.PollIntervalSeconds != nil {
		cfg.PollInterval = time.Duration(*fc.PollIntervalSeconds * float64(time.Second))
	}
	if fc.PollTimeoutSeconds != nil {
		cfg.PollTimeout = time.Duration(*fc.PollTimeoutSeconds * float64(time.Second))
	}
	if fc.TimeToleranceMinutes != nil {
		cfg.TimeTolerance = time.Duration(*fc.TimeToleranceMinutes * float64(time.Minute))
	}
	if fc.MorningCallTime != nil {
		cfg.MorningCallTime = *fc.MorningCallTime
	}
	if fc.GitUserName != nil {
		cfg.GitUserName = *fc.GitUserName
	}
	if fc.GitUserEmail != nil {
		cfg.GitUserEmail = *fc.GitUserEmail
	}
	if fc.NotifyWebhookURL != nil {
		cfg.NotifyWebhookURL = *fc.NotifyWebhookURL
	}
}

// ValidateMorning checks everything the morning workflow needs, before any
// network call is made.
func (c Config) ValidateMorning() error {
	missing := c.missingCommon()
	if c.MorningAssistantID == "" {
		missing = append(missing, "MORNING_ASSISTANT_ID")
	}
	return missingErr(missing)
}

// ValidateEvening checks everything the evening workflow needs.
func (c Config) ValidateEvening() error {
	missing := c.missingCommon()
	if c.MorningAssistantID == "" {
		missing = append(missing, "MORNING_ASSISTANT_ID")
	}
	if c.EveningAssistantID == "" {
		missing = append(missing, "EVENING_ASSISTANT_ID")
	}
	return missingErr(missing)
}

func (c Config) missingCommon() []string {
	var missing []string
	if c.APIToken == "" {
		missing = append(missing, "VAPI_API_TOKEN")
	}
	if c.TargetNumber == "" {
		missing = append(missing, "TARGET_PHONE_NUMBER")
	}
	if !c.SkipOutboundCall && c.PhoneNumberID == "" {
		missing = append(missing, "PHONE_NUMBER_ID")
	}
	if c.VaultEnabled {
		if c.VaultRepoURL == "" {
			missing = append(missing, "OBSIDIAN_REPO_URL")
		}
		if c.VaultToken == "" {
			missing = append(missing, "OBSIDIAN_GITHUB_TOKEN")
		}
	}
	return missing
}

func missingErr(missing []string) error {
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
}

// MorningReference anchors the polling window at today's scheduled morning
// call time in the local zone, falling back to now when MORNING_CALL_TIME is
// unset or malformed.
func (c Config) MorningReference(now time.Time) time.Time {
	if c.MorningCallTime == "" {
		return now
	}
	parsed, err := time.Parse("15:04", c.MorningCallTime)
	if err != nil {
		return now
	}
	return time.Date(now.Year(), now.Month(), now.Day(), parsed.Hour(), parsed.Minute(), 0, 0, now.Location())
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.ToLower(v))
	if err != nil {
		return def
	}
	return b
}

func getenvFloat(key string, def float64, log *logrus.Logger) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.WithFields(logrus.Fields{"key": key, "value": v}).Warnf("invalid numeric value; falling back to %v", def)
		return def
	}
	return f
}
