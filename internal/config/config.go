package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration required by the dialer process.
// All values must come from env (or a .env file loaded by the process runner).
// No business logic should depend on raw environment variables.
type Config struct {
	App       AppConfig
	Twilio    TwilioConfig
	Playback  PlaybackConfig
	Directory DirectoryConfig
	Retry     RetryConfig
	Auth      AuthConfig
}

type AppConfig struct {
	Env  string
	Port int

	// PublicBaseURL is the externally reachable origin Twilio uses for webhooks,
	// e.g. https://dialer.example.com. Never derived from request context.
	PublicBaseURL string
}

type TwilioConfig struct {
	AccountSID string
	AuthToken  string

	// PhoneNumber is the Twilio-owned source number.
	PhoneNumber string
	// PersonalNumber is the operator's own number; used as caller id when
	// PhoneNumber is not set (it must be verified with Twilio).
	PersonalNumber string
	// TargetNumber is only used by the static variant.
	TargetNumber string
}

type PlaybackConfig struct {
	AudioURL string
	// Prompt, when set, is spoken on connect instead of playing AudioURL.
	Prompt string
}

type DirectoryConfig struct {
	ClientID     string
	ClientSecret string
	TenantID     string

	// UserID selects /users/{id}/contacts. Empty means /me/contacts.
	UserID string
}

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

type AuthConfig struct {
	JWTSecret string
	JWTIssuer string
	TokenTTL  time.Duration
}

func Load() (Config, error) {
	c := Config{}
	var parseErrs []error

	c.App.Env = strings.TrimSpace(os.Getenv("APP_ENV"))
	{
		n, err := optionalInt("PORT", 5000)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.App.Port = n
	}
	c.App.PublicBaseURL = strings.TrimRight(strings.TrimSpace(os.Getenv("PUBLIC_BASE_URL")), "/")

	c.Twilio.AccountSID = strings.TrimSpace(os.Getenv("TWILIO_ACCOUNT_SID"))
	c.Twilio.AuthToken = os.Getenv("TWILIO_AUTH_TOKEN")
	c.Twilio.PhoneNumber = strings.TrimSpace(os.Getenv("TWILIO_PHONE_NUMBER"))
	c.Twilio.PersonalNumber = strings.TrimSpace(os.Getenv("PERSONAL_PHONE_NUMBER"))
	c.Twilio.TargetNumber = strings.TrimSpace(os.Getenv("TARGET_PHONE_NUMBER"))

	c.Playback.AudioURL = strings.TrimSpace(os.Getenv("AUDIO_URL"))
	c.Playback.Prompt = strings.TrimSpace(os.Getenv("VOICE_PROMPT"))

	c.Directory.ClientID = strings.TrimSpace(os.Getenv("OUTLOOK_CLIENT_ID"))
	c.Directory.ClientSecret = os.Getenv("OUTLOOK_CLIENT_SECRET")
	c.Directory.TenantID = strings.TrimSpace(os.Getenv("OUTLOOK_TENANT_ID"))
	c.Directory.UserID = strings.TrimSpace(os.Getenv("DIRECTORY_USER_ID"))

	{
		n, err := optionalInt("CALL_MAX_ATTEMPTS", 0)
		n, parseErrs = appendParseErr(parseErrs, n, err)
		c.Retry.MaxAttempts = n
	}
	{
		d, err := optionalDuration("CALL_RETRY_DELAY")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Retry.Delay = d
	}

	c.Auth.JWTSecret = os.Getenv("OPERATOR_JWT_SECRET")
	c.Auth.JWTIssuer = strings.TrimSpace(os.Getenv("OPERATOR_JWT_ISSUER"))
	{
		d, err := optionalDuration("OPERATOR_TOKEN_TTL")
		if err != nil {
			parseErrs = append(parseErrs, err)
		}
		c.Auth.TokenTTL = d
	}

	if err := joinErrors(parseErrs); err != nil {
		return Config{}, err
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks base requirements and applies defaults in place.
// Mode-specific requirements are checked by RequireDirectory and RequireTarget.
func (c *Config) Validate() error {
	var errs []error

	if c.App.Env == "" {
		c.App.Env = "local"
	} else if !isValidEnv(c.App.Env) {
		errs = append(errs, fmt.Errorf("APP_ENV must be one of local, dev, staging, production, got %q", c.App.Env))
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a valid port, got %d", c.App.Port))
	}
	if c.App.PublicBaseURL == "" {
		errs = append(errs, errors.New("PUBLIC_BASE_URL is required"))
	} else if u, err := url.Parse(c.App.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("PUBLIC_BASE_URL must be an absolute URL, got %q", c.App.PublicBaseURL))
	}

	if c.Twilio.AccountSID == "" {
		errs = append(errs, errors.New("TWILIO_ACCOUNT_SID is required"))
	}
	if c.Twilio.AuthToken == "" {
		errs = append(errs, errors.New("TWILIO_AUTH_TOKEN is required"))
	}
	if c.Twilio.PhoneNumber == "" && c.Twilio.PersonalNumber == "" {
		errs = append(errs, errors.New("TWILIO_PHONE_NUMBER is required (or PERSONAL_PHONE_NUMBER as caller id)"))
	}

	if c.Playback.AudioURL == "" {
		errs = append(errs, errors.New("AUDIO_URL is required"))
	}

	// Directory credentials are all-or-none.
	if c.Directory.anySet() {
		errs = append(errs, c.Directory.missing()...)
	}

	if c.Retry.MaxAttempts <= 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.Delay < 0 {
		errs = append(errs, errors.New("CALL_RETRY_DELAY must not be negative"))
	} else if c.Retry.Delay == 0 {
		c.Retry.Delay = 2 * time.Second
	}

	if c.Auth.TokenTTL <= 0 {
		c.Auth.TokenTTL = 12 * time.Hour
	}
	if c.IsProduction() && c.Auth.JWTSecret != "" && len(c.Auth.JWTSecret) < 32 {
		errs = append(errs, errors.New("OPERATOR_JWT_SECRET must be at least 32 bytes in production"))
	}

	return joinErrors(errs)
}

// RequireDirectory reports every directory variable that is missing.
func (c Config) RequireDirectory() error {
	return joinErrors(c.Directory.missing())
}

// RequireTarget reports a missing TARGET_PHONE_NUMBER for the static variant.
func (c Config) RequireTarget() error {
	if c.Twilio.TargetNumber == "" {
		return errors.New("TARGET_PHONE_NUMBER is required")
	}
	return nil
}

func (c Config) IsProduction() bool {
	return c.App.Env == "production"
}

func (c Config) HTTPAddr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}

// SourceNumber is the caller id used for outbound calls.
func (c Config) SourceNumber() string {
	if c.Twilio.PhoneNumber != "" {
		return c.Twilio.PhoneNumber
	}
	return c.Twilio.PersonalNumber
}

// WebhookURL joins a path onto the public base URL.
func (c Config) WebhookURL(path string) string {
	return c.App.PublicBaseURL + "/" + strings.TrimLeft(path, "/")
}

// DirectoryEnabled is true once all directory credentials are present.
func (c Config) DirectoryEnabled() bool {
	return c.Directory.anySet() && len(c.Directory.missing()) == 0
}

func (d DirectoryConfig) anySet() bool {
	return d.ClientID != "" || d.ClientSecret != "" || d.TenantID != ""
}

func (d DirectoryConfig) missing() []error {
	var errs []error
	if d.ClientID == "" {
		errs = append(errs, errors.New("OUTLOOK_CLIENT_ID is required"))
	}
	if d.ClientSecret == "" {
		errs = append(errs, errors.New("OUTLOOK_CLIENT_SECRET is required"))
	}
	if d.TenantID == "" {
		errs = append(errs, errors.New("OUTLOOK_TENANT_ID is required"))
	}
	return errs
}

func optionalInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer, got %q", key, v)
	}
	return n, nil
}

func optionalDuration(key string) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration, got %q", key, v)
	}
	return d, nil
}

func appendParseErr(errs []error, n int, err error) (int, []error) {
	if err != nil {
		errs = append(errs, err)
	}
	return n, errs
}

func isValidEnv(v string) bool {
	switch v {
	case "local", "dev", "staging", "production":
		return true
	default:
		return false
	}
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}
	var b strings.Builder
	b.WriteString("config errors:\n")
	for _, e := range errs {
		b.WriteString("- ")
		b.WriteString(e.Error())
		b.WriteString("\n")
	}
	return errors.New(strings.TrimSpace(b.String()))
}
