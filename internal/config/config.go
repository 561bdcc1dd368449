package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"visualjobs.local/internal/domain"
)

// Schema versions of the Notion tracker database. v1 keeps the primary
// status in "Follow-up Status"; v2 moved it to a separate "Stage" property.
const (
	SchemaV1 = "v1"
	SchemaV2 = "v2"
)

type Config struct {
	Notion      NotionConfig      `mapstructure:"notion"`
	Properties  PropertyNames     `mapstructure:"properties"`
	Aggregation AggregationConfig `mapstructure:"aggregation"`
	Log         LogConfig         `mapstructure:"log"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	History     HistoryConfig     `mapstructure:"history"`
}

type NotionConfig struct {
	Token         string `mapstructure:"token"`
	DatabaseID    string `mapstructure:"database_id"`
	PageSize      int    `mapstructure:"page_size"`
	SchemaVersion string `mapstructure:"schema_version"`
}

// PropertyNames maps record fields to Notion property names.
type PropertyNames struct {
	Company       string `mapstructure:"company"`
	Position      string `mapstructure:"position"`
	AppliedDate   string `mapstructure:"applied_date"`
	Link          string `mapstructure:"link"`
	FollowUp      string `mapstructure:"follow_up"`
	Stage         string `mapstructure:"stage"`
	OADate        string `mapstructure:"oa_date"`
	InterviewDate string `mapstructure:"interview_date"`
	Accepted      string `mapstructure:"accepted"`
}

type AggregationConfig struct {
	Mode string `mapstructure:"mode"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

// HistoryConfig enables the SQLite run archive when Path is set.
type HistoryConfig struct {
	Path string `mapstructure:"path"`
}

// ConfigError reports a missing or invalid setting. It is always fatal.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

var defaults = map[string]any{
	"notion.page_size":          100,
	"notion.schema_version":     SchemaV1,
	"properties.company":        "Company",
	"properties.position":       "Position",
	"properties.applied_date":   "Applied Date",
	"properties.link":           "Link",
	"properties.follow_up":      "Follow-up Status",
	"properties.stage":          "Stage",
	"properties.oa_date":        "OA Date",
	"properties.interview_date": "Interview Date",
	"properties.accepted":       "Accepted",
	"aggregation.mode":          string(domain.ModePipeline),
	"log.level":                 "info",
	"log.format":                "console",
	"http.port":                 "8050",
	"history.path":              "",
}

// env names per key; the first matching variable wins.
var envNames = map[string][]string{
	"notion.token":          {"NOTION_TOKEN", "NOTION_API_KEY"},
	"notion.database_id":    {"NOTION_DB_ID", "NOTION_DATABASE_ID"},
	"notion.page_size":      {"NOTION_PAGE_SIZE"},
	"notion.schema_version": {"SCHEMA_VERSION"},
	"aggregation.mode":      {"AGGREGATION_MODE"},
	"log.level":             {"LOG_LEVEL"},
	"log.format":            {"LOG_FORMAT"},
	"http.port":             {"PORT"},
	"history.path":          {"HISTORY_DB"},
}

// Load reads .env, an optional YAML file and the environment, in increasing
// order of precedence. path may be empty, in which case config.yaml is looked
// up in the working directory and ./configs.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	for k, names := range envNames {
		if err := v.BindEnv(append([]string{k}, names...)...); err != nil {
			return nil, fmt.Errorf("bind env %s: %w", k, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Notion.DatabaseID = NormalizeNotionID(cfg.Notion.DatabaseID)
	cfg.Aggregation.Mode = strings.ToLower(strings.TrimSpace(cfg.Aggregation.Mode))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings the pipeline cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Notion.Token) == "" {
		return &ConfigError{Field: "notion.token", Reason: "NOTION_TOKEN must be set"}
	}
	if c.Notion.DatabaseID == "" {
		return &ConfigError{Field: "notion.database_id", Reason: "NOTION_DB_ID must be set"}
	}
	switch domain.AggregationMode(c.Aggregation.Mode) {
	case domain.ModePipeline, domain.ModeGroupBy:
	default:
		return &ConfigError{Field: "aggregation.mode", Reason: fmt.Sprintf("unknown mode %q", c.Aggregation.Mode)}
	}
	switch c.Notion.SchemaVersion {
	case SchemaV1, SchemaV2:
	default:
		return &ConfigError{Field: "notion.schema_version", Reason: fmt.Sprintf("unknown schema version %q", c.Notion.SchemaVersion)}
	}
	if c.Notion.PageSize < 1 || c.Notion.PageSize > 100 {
		return &ConfigError{Field: "notion.page_size", Reason: "must be between 1 and 100"}
	}
	return nil
}

// Mode returns the configured aggregation mode.
func (c *Config) Mode() domain.AggregationMode {
	return domain.AggregationMode(c.Aggregation.Mode)
}

// NormalizeNotionID removes dashes if present.
func NormalizeNotionID(id string) string {
	id = strings.TrimSpace(id)
	return strings.ReplaceAll(id, "-", "")
}
