package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultRemoteURL   = "https://api.deepseek.com/v1"
	DefaultRemoteModel = "deepseek-chat"
	DefaultPort        = "8000"
)

type RoutesConfig struct {
	Ask       string `yaml:"ask"`
	Teach     string `yaml:"teach"`
	Knowledge string `yaml:"knowledge"`
}

type ServerConfig struct {
	Host           string       `yaml:"host"`
	Port           string       `yaml:"port"`
	Environment    string       `yaml:"environment"`
	AllowedOrigins []string     `yaml:"allowed_origins,omitempty"`
	Routes         RoutesConfig `yaml:"routes"`
}

func (c ServerConfig) Addr() string {
	return c.Host + ":" + c.Port
}

type RemoteConfig struct {
	Backend     string        `yaml:"backend"`
	APIKey      string        `yaml:"api_key,omitempty"`
	URL         string        `yaml:"url,omitempty"`
	Model       string        `yaml:"model"`
	MaxTokens   int           `yaml:"max_tokens"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

func (c RemoteConfig) Configured() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

type ResolverConfig struct {
	Policy         string   `yaml:"policy"`
	FailureMarkers []string `yaml:"failure_markers,omitempty"`
	SystemPrompt   string   `yaml:"system_prompt,omitempty"`
}

type KnowledgeConfig struct {
	File       string `yaml:"file,omitempty"`
	Watch      bool   `yaml:"watch"`
	MaxEntries int    `yaml:"max_entries"`
}

type AdminConfig struct {
	JWTSecret string `yaml:"jwt_secret,omitempty"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Remote    RemoteConfig    `yaml:"remote"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	Knowledge KnowledgeConfig `yaml:"knowledge"`
	Admin     AdminConfig     `yaml:"admin"`
	Log       LogConfig       `yaml:"log"`
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           DefaultPort,
			Environment:    "production",
			AllowedOrigins: []string{"*"},
			Routes: RoutesConfig{
				Ask:       "/ask",
				Teach:     "/teach",
				Knowledge: "/knowledge",
			},
		},
		Remote: RemoteConfig{
			Backend:     BackendDeepSeek,
			URL:         DefaultRemoteURL,
			Model:       DefaultRemoteModel,
			MaxTokens:   1500,
			Temperature: 0.3,
			Timeout:     30 * time.Second,
		},
		Resolver: ResolverConfig{
			Policy:         string(PolicyLocalFirst),
			FailureMarkers: []string{"API Error"},
		},
		Knowledge: KnowledgeConfig{
			Watch: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads path on top of the defaults. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	return nil
}

// LoadDotEnv loads a .env file into the process environment if one exists.
func LoadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with environment variables. Empty variables are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, names ...string) {
		for _, name := range names {
			if v := strings.TrimSpace(getenv(name)); v != "" {
				*dst = v
				return
			}
		}
	}

	set(&c.Server.Port, "PORT")
	set(&c.Server.Environment, "NETPATH_ENV")
	set(&c.Remote.APIKey, "NETPATH_API_KEY", "DEEPSEEK_API_KEY")
	set(&c.Remote.URL, "NETPATH_API_URL")
	set(&c.Remote.Model, "NETPATH_MODEL")
	set(&c.Remote.Backend, "NETPATH_BACKEND")
	set(&c.Resolver.Policy, "NETPATH_POLICY")
	set(&c.Admin.JWTSecret, "NETPATH_ADMIN_SECRET")
	set(&c.Knowledge.File, "NETPATH_KNOWLEDGE_FILE")
	set(&c.Log.Level, "NETPATH_LOG_LEVEL")

	if v := strings.TrimSpace(getenv("NETPATH_API_TIMEOUT")); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Remote.Timeout = d
		}
	}
}

func (c *Config) Validate() error {
	if _, err := ParsePolicy(c.Resolver.Policy); err != nil {
		return err
	}
	if c.Remote.Timeout <= 0 {
		return fmt.Errorf("remote timeout must be positive, got %s", c.Remote.Timeout)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	return nil
}
