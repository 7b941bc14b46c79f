package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
)

// SlackConfig is the part of the configuration needed to talk to Slack.
type SlackConfig struct {
	SlackToken  string `env:"SLACK_TOKEN,required=true"`
	SlackAPIURL string `env:"SLACK_API_URL"`
}

// Config is the full runtime configuration, read from the environment.
type Config struct {
	SlackConfig

	ChannelID     string `env:"SLACK_CHANNEL_ID,required=true"`
	SelfUserID    string `env:"MY_USER_ID,required=true"`
	MessagePrefix string `env:"MY_MESSAGE_PREFIX,required=true"`
	OpenAIToken   string `env:"OPENAI_API_KEY,required=true"`

	OpenAIModel      string        `env:"OPENAI_MODEL,default=gpt-3.5-turbo-instruct"`
	OpenAIBaseURL    string        `env:"OPENAI_BASE_URL"`
	SummaryMaxTokens int           `env:"SUMMARY_MAX_TOKENS,default=1024"`
	PageInterval     time.Duration `env:"SLACK_PAGE_INTERVAL,default=1200ms"`
	TimezoneName     string        `env:"FETCH_TIMEZONE"`

	CSVPath         string `env:"CSV_OUTPUT_PATH,default=generated/slack-messages.csv"`
	SummaryPath     string `env:"SUMMARY_OUTPUT_PATH,default=generated/monthly-summary.txt"`
	SummaryHTMLPath string `env:"SUMMARY_HTML_PATH"`

	// Email configuration
	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     string `env:"SMTP_PORT"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	EmailFrom    string `env:"EMAIL_FROM"`
	EmailToStr   string `env:"EMAIL_TO"`
	EmailTo      []string

	Location *time.Location
}

// Load reads .env files (missing files are ignored) and then the environment.
// With no arguments it reads ".env" in the working directory.
func Load(envFiles ...string) (*Config, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	required := map[string]string{
		"SLACK_CHANNEL_ID":  cfg.ChannelID,
		"SLACK_TOKEN":       cfg.SlackToken,
		"MY_USER_ID":        cfg.SelfUserID,
		"MY_MESSAGE_PREFIX": cfg.MessagePrefix,
		"OPENAI_API_KEY":    cfg.OpenAIToken,
	}
	var missing []string
	for k, v := range required {
		if strings.TrimSpace(v) == "" {
			missing = append(missing, k)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%s is required", strings.Join(missing, ", "))
	}

	if cfg.EmailToStr != "" {
		for _, addr := range strings.Split(cfg.EmailToStr, ",") {
			if trimmed := strings.TrimSpace(addr); trimmed != "" {
				cfg.EmailTo = append(cfg.EmailTo, trimmed)
			}
		}
	}

	cfg.Location = time.Local
	if cfg.TimezoneName != "" {
		loc, err := time.LoadLocation(cfg.TimezoneName)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_TIMEZONE %q: %w", cfg.TimezoneName, err)
		}
		cfg.Location = loc
	}

	if cfg.SummaryMaxTokens <= 0 {
		return nil, fmt.Errorf("SUMMARY_MAX_TOKENS must be greater than 0")
	}
	if cfg.PageInterval < 0 {
		cfg.PageInterval = 0
	}

	return &cfg, nil
}

// LoadSlack reads only the Slack settings, for commands that do not export.
func LoadSlack(envFiles ...string) (*SlackConfig, error) {
	if err := loadDotEnv(envFiles...); err != nil {
		return nil, err
	}

	var cfg SlackConfig
	if _, err := env.UnmarshalFromEnviron(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}
	if strings.TrimSpace(cfg.SlackToken) == "" {
		return nil, fmt.Errorf("SLACK_TOKEN is required")
	}
	return &cfg, nil
}

func loadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}
