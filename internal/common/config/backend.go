package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ifuryst/lol"

	"github.com/amoylab/coursechat/internal/common/cnst"
)

type (
	// BackendConfig is the configuration of the development backend
	BackendConfig struct {
		Addr     string         `yaml:"addr"`
		PID      string         `yaml:"pid"`     // pid file path, empty disables it
		Catalog  string         `yaml:"catalog"` // path to the seed catalog YAML
		Database DatabaseConfig `yaml:"database"`
		Answerer AnswererConfig `yaml:"answerer"`
		CORS     CORSConfig     `yaml:"cors"`
		Metrics  MetricsConfig  `yaml:"metrics"`
		Logger   LoggerConfig   `yaml:"logger"`
		Tracing  TracingConfig  `yaml:"tracing"`
	}

	DatabaseConfig struct {
		Type     string `yaml:"type"`     // mysql, postgres, sqlite
		Host     string `yaml:"host"`     // localhost
		Port     int    `yaml:"port"`     // 3306 (for mysql), 5432 (for postgres)
		User     string `yaml:"user"`     // root (for mysql), postgres (for postgres)
		Password string `yaml:"password"` // password
		DBName   string `yaml:"dbname"`   // database name, or file path for sqlite
		SSLMode  string `yaml:"sslmode"`  // disable (for postgres)
	}

	// AnswererConfig selects how /api/query produces replies
	AnswererConfig struct {
		Type      string       `yaml:"type"`       // rules or openai
		PromptKey string       `yaml:"prompt_key"` // key of the global prompt prefix
		OpenAI    OpenAIConfig `yaml:"openai"`
	}

	OpenAIConfig struct {
		APIKey  string `yaml:"api_key"`
		Model   string `yaml:"model"`
		BaseURL string `yaml:"base_url"`
	}

	CORSConfig struct {
		AllowOrigins     []string `yaml:"allow_origins"`
		AllowCredentials bool     `yaml:"allow_credentials"`
	}

	MetricsConfig struct {
		Enabled   bool      `yaml:"enabled"`
		Path      string    `yaml:"path"`
		Namespace string    `yaml:"namespace"`
		Buckets   []float64 `yaml:"buckets"`
	}
)

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	switch c.Type {
	case "postgres":
		return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
			c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
	case "mysql":
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			c.User, c.Password, c.Host, c.Port, c.DBName)
	case "sqlite":
		return c.DBName
	default:
		return ""
	}
}

// EnsureSQLiteDir creates the directory holding a sqlite database file
func (c *DatabaseConfig) EnsureSQLiteDir() error {
	if c.Type != "sqlite" || c.DBName == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.DBName), 0755); err != nil {
		return fmt.Errorf("failed to create directory for sqlite database: %w", err)
	}
	return nil
}

func (c *BackendConfig) applyDefaults() {
	if c.Addr == "" {
		c.Addr = cnst.DefaultBackendAddr
	}
	if c.Catalog == "" {
		c.Catalog = "catalog.yaml"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DBName == "" {
		c.Database.DBName = "data/coursechat.db"
	}
	if c.Answerer.Type == "" {
		c.Answerer.Type = "rules"
	}
	if c.Answerer.OpenAI.Model == "" {
		c.Answerer.OpenAI.Model = "gpt-3.5-turbo"
	}
	c.CORS.AllowOrigins = lol.UniqSlice(c.CORS.AllowOrigins)
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = "coursechat"
	}
	if len(c.Metrics.Buckets) == 0 {
		c.Metrics.Buckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}
	}
	c.Logger.applyDefaults()
	c.Tracing.applyDefaults("coursechat-mock-backend")
}
