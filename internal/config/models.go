package config

import (
	"strings"
	"time"
)

// ServerConfig selects the filters the server binary runs
type ServerConfig struct {
	Filters       []string
	ReloadTimeout time.Duration
}

// HTTPConfig configures the HTTP filter
type HTTPConfig struct {
	ListenAddress  string
	AllowedOrigins string
	BodyLimit      int
}

// SMTPHeaders names the headers added by the SMTP filter
type SMTPHeaders struct {
	Status string
	Score  string
	Domain string
	Error  string
}

// PostfixConfig is the re-injection target of the SMTP filter
type PostfixConfig struct {
	Enabled bool
	Address string
	Port    int
}

// SMTPConfig configures the SMTP content filter
type SMTPConfig struct {
	ListenAddress   string
	BlockPhishing   bool
	MaxMessageBytes int64
	Headers         SMTPHeaders
	Postfix         PostfixConfig
}

// CorpusConfig selects and locates the historical corpus
type CorpusConfig struct {
	Type        string
	CSVPath     string
	SQLitePath  string
	MySQLDSN    string
	PostgresDSN string
	Table       string
}

// ReputationConfig locates the domain popularity table
type ReputationConfig struct {
	Path                string
	DefaultRank         int
	RegistrableFallback bool
}

// ModelConfig locates the classifier artifact
type ModelConfig struct {
	Path string
}

// ScoringConfig holds the decision policy
type ScoringConfig struct {
	Threshold     float64
	RequireDomain bool
	Timeout       time.Duration
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level       string
	Format      string
	PreviewSize int
}

// FeaturesConfig overrides feature extraction inputs
type FeaturesConfig struct {
	PhishyKeywords []string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	var filters []string
	for _, name := range c.GetStringSlice("server.filters") {
		for _, part := range strings.Split(name, ",") {
			if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
				filters = append(filters, part)
			}
		}
	}

	timeout, err := c.GetDuration("server.reload_timeout")
	if err != nil {
		timeout = 5 * time.Minute
	}

	return ServerConfig{
		Filters:       filters,
		ReloadTimeout: timeout,
	}
}

// GetHTTP returns the HTTP filter configuration
func (c *Config) GetHTTP() HTTPConfig {
	return HTTPConfig{
		ListenAddress:  c.GetString("server.http.listen_address"),
		AllowedOrigins: c.GetString("server.http.allowed_origins"),
		BodyLimit:      c.GetInt("server.http.body_limit"),
	}
}

// GetSMTP returns the SMTP filter configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress:   c.GetString("server.smtp.listen_address"),
		BlockPhishing:   c.GetBool("server.smtp.block_phishing"),
		MaxMessageBytes: int64(c.GetInt("server.smtp.max_message_bytes")),
		Headers: SMTPHeaders{
			Status: c.GetString("server.smtp.headers.status"),
			Score:  c.GetString("server.smtp.headers.score"),
			Domain: c.GetString("server.smtp.headers.domain"),
			Error:  c.GetString("server.smtp.headers.error"),
		},
		Postfix: PostfixConfig{
			Enabled: c.GetBool("server.smtp.postfix.enabled"),
			Address: c.GetString("server.smtp.postfix.address"),
			Port:    c.GetInt("server.smtp.postfix.port"),
		},
	}
}

// GetCorpus returns the corpus configuration
func (c *Config) GetCorpus() CorpusConfig {
	return CorpusConfig{
		Type:        strings.ToLower(c.GetString("corpus.type")),
		CSVPath:     c.GetString("corpus.csv_path"),
		SQLitePath:  c.GetString("corpus.sqlite_path"),
		MySQLDSN:    c.GetString("corpus.mysql_dsn"),
		PostgresDSN: c.GetString("corpus.postgres_dsn"),
		Table:       c.GetString("corpus.table"),
	}
}

// GetReputation returns the reputation table configuration
func (c *Config) GetReputation() ReputationConfig {
	return ReputationConfig{
		Path:                c.GetString("reputation.path"),
		DefaultRank:         c.GetInt("reputation.default_rank"),
		RegistrableFallback: c.GetBool("reputation.registrable_fallback"),
	}
}

// GetModel returns the model configuration
func (c *Config) GetModel() ModelConfig {
	return ModelConfig{
		Path: c.GetString("model.path"),
	}
}

// GetScoring returns the scoring configuration
func (c *Config) GetScoring() ScoringConfig {
	timeout, err := c.GetDuration("scoring.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}

	return ScoringConfig{
		Threshold:     c.GetFloat64("scoring.threshold"),
		RequireDomain: c.GetBool("scoring.require_domain"),
		Timeout:       timeout,
	}
}

// GetFeatures returns the feature extraction configuration
func (c *Config) GetFeatures() FeaturesConfig {
	return FeaturesConfig{
		PhishyKeywords: c.GetStringSlice("features.phishy_keywords"),
	}
}

// GetLogging returns the logging configuration
func (c *Config) GetLogging() LoggingConfig {
	return LoggingConfig{
		Level:       c.GetString("logging.level"),
		Format:      c.GetString("logging.format"),
		PreviewSize: c.GetInt("logging.preview_size"),
	}
}
