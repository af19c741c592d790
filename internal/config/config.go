package config

import (
	"errors"
	"io/fs"
	"strings"

	appErrors "github.com/Tomas-vilte/sonar-funnel/internal/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	SourcePylon  = "pylon"
	SourceGitHub = "github"

	defaultPylonBaseURL = "https://api.usepylon.com"
	defaultGeminiModel  = "gemini-2.5-flash"
	defaultLanguage     = "en"
)

// Config holds the credentials and settings of a triage run. Values come from
// the environment (optionally seeded from .env) and an optional config file,
// with the environment taking precedence.
type Config struct {
	PylonAPIToken    string `mapstructure:"pylon_api_token"`
	PylonBaseURL     string `mapstructure:"pylon_base_url"`
	SlackAPIToken    string `mapstructure:"slack_api_token"`
	SlackChannelID   string `mapstructure:"slack_channel_id"`
	GeminiAPIKey     string `mapstructure:"gemini_api_key"`
	GeminiModel      string `mapstructure:"gemini_model"`
	GitHubToken      string `mapstructure:"github_token"`
	GitHubRepository string `mapstructure:"github_repository"`
	Source           string `mapstructure:"sonar_source"`
	Language         string `mapstructure:"sonar_language"`
}

var envKeys = []string{
	"PYLON_API_TOKEN",
	"PYLON_BASE_URL",
	"SLACK_API_TOKEN",
	"SLACK_CHANNEL_ID",
	"GEMINI_API_KEY",
	"GEMINI_MODEL",
	"GITHUB_TOKEN",
	"GITHUB_REPOSITORY",
	"SONAR_SOURCE",
	"SONAR_LANGUAGE",
}

// Load reads the configuration. envFiles default to ".env"; missing files are
// ignored. configFile is optional and may be yaml, toml or json.
func Load(configFile string, envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, appErrors.ErrConfigFile.WithError(err).WithContext("file", strings.Join(envFiles, ","))
	}

	v := viper.New()
	v.SetDefault("pylon_base_url", defaultPylonBaseURL)
	v.SetDefault("gemini_model", defaultGeminiModel)
	v.SetDefault("sonar_source", SourcePylon)
	v.SetDefault("sonar_language", defaultLanguage)

	for _, key := range envKeys {
		if err := v.BindEnv(strings.ToLower(key), key); err != nil {
			return nil, appErrors.NewAppError(appErrors.TypeInternal, "failed to bind environment variable", err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, appErrors.ErrConfigFile.WithError(err).WithContext("file", configFile)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, appErrors.ErrConfigFile.WithError(err)
	}

	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))
	cfg.Language = strings.ToLower(strings.TrimSpace(cfg.Language))
	return cfg, nil
}

// Validate checks that everything the run needs is present. Slack settings
// are only required when the report will be posted.
func (c *Config) Validate(dryRun bool) error {
	switch c.Source {
	case SourcePylon:
		if c.PylonAPIToken == "" {
			return appErrors.ErrPylonTokenMissing
		}
	case SourceGitHub:
		if c.GitHubToken == "" {
			return appErrors.ErrGitHubTokenMissing
		}
		owner, repo, found := strings.Cut(c.GitHubRepository, "/")
		if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
			return appErrors.ErrGitHubRepositoryMissing.WithContext("repository", c.GitHubRepository)
		}
	default:
		return appErrors.ErrUnknownSource.WithContext("source", c.Source)
	}

	if c.GeminiAPIKey == "" {
		return appErrors.ErrGeminiAPIKeyMissing
	}

	if dryRun {
		return nil
	}
	if c.SlackAPIToken == "" {
		return appErrors.ErrSlackTokenMissing
	}
	if c.SlackChannelID == "" {
		return appErrors.ErrSlackChannelMissing
	}
	return nil
}
