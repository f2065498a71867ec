package config

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chasedut/chatter/internal/env"
	"github.com/qjebbs/go-jsons"
	"github.com/tidwall/sjson"
)

const (
	appName = "chatter"

	defaultServerURL      = "http://localhost:5000"
	defaultRequestTimeout = 60
	defaultWordWrap       = 100
	defaultModelType      = "gemma"
)

// ServerConfig describes how to reach the chat backend.
type ServerConfig struct {
	URL string `json:"url,omitempty" jsonschema:"description=Base URL of the chat backend,default=http://localhost:5000"`
	// Token is sent as a bearer token on every request when set.
	Token string `json:"token,omitempty" jsonschema:"description=Bearer token for the chat backend"`
	// RequestTimeout applies to non-streaming calls only; streaming reads run
	// until the backend closes the body.
	RequestTimeout int `json:"request_timeout,omitempty" jsonschema:"description=Timeout in seconds for non-streaming requests,minimum=1,default=60"`
}

type Options struct {
	DataDirectory string `json:"data_directory,omitempty" jsonschema:"description=Directory for the preferences database and logs"`
	Debug         bool   `json:"debug,omitempty" jsonschema:"description=Enable debug logging"`
	WordWrap      int    `json:"word_wrap,omitempty" jsonschema:"description=Markdown word wrap width,minimum=20,default=100"`
	DefaultModel  string `json:"default_model,omitempty" jsonschema:"description=Model type used when no preference is stored,enum=gemma,enum=phi,enum=openai,enum=gemini"`
}

type Config struct {
	Server  ServerConfig `json:"server"`
	Options *Options     `json:"options,omitempty"`

	workingDir    string
	dataConfigDir string
}

func (c *Config) WorkingDir() string {
	return c.workingDir
}

// RequestTimeout returns the timeout for one-shot requests.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeout) * time.Second
}

// Load reads the global and project config files, merges them in that order
// and applies defaults followed by environment overrides.
func Load(workingDir string, debug bool) (*Config, error) {
	return load(workingDir, debug, env.New())
}

func load(workingDir string, debug bool, e env.Env) (*Config, error) {
	globalPath := globalConfigPath(e)
	cfg, err := loadFromConfigPaths([]string{
		globalPath,
		filepath.Join(workingDir, appName+".json"),
		filepath.Join(workingDir, "."+appName+".json"),
	})
	if err != nil {
		return nil, err
	}
	cfg.workingDir = workingDir
	cfg.dataConfigDir = globalPath
	cfg.setDefaults(e)
	cfg.applyEnv(e)
	if debug {
		cfg.Options.Debug = true
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromConfigPaths(paths []string) (*Config, error) {
	var readers []io.Reader
	for _, path := range paths {
		fd, err := os.Open(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
		}
		defer fd.Close()
		readers = append(readers, fd)
	}
	return loadFromReaders(readers)
}

func loadFromReaders(readers []io.Reader) (*Config, error) {
	if len(readers) == 0 {
		return &Config{}, nil
	}

	merged, err := jsons.Merge(readers)
	if err != nil {
		return nil, fmt.Errorf("failed to merge config files: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(merged, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) setDefaults(e env.Env) {
	if c.Options == nil {
		c.Options = &Options{}
	}
	if c.Server.URL == "" {
		c.Server.URL = defaultServerURL
	}
	if c.Server.RequestTimeout <= 0 {
		c.Server.RequestTimeout = defaultRequestTimeout
	}
	if c.Options.WordWrap <= 0 {
		c.Options.WordWrap = defaultWordWrap
	}
	if c.Options.DefaultModel == "" {
		c.Options.DefaultModel = defaultModelType
	}
	if c.Options.DataDirectory == "" {
		c.Options.DataDirectory = defaultDataDirectory(e)
	}
}

func (c *Config) applyEnv(e env.Env) {
	if v := e.Get("CHATTER_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := e.Get("CHATTER_TOKEN"); v != "" {
		c.Server.Token = v
	}
	if v := e.Get("CHATTER_DATA_DIR"); v != "" {
		c.Options.DataDirectory = v
	}
	c.Server.URL = strings.TrimRight(c.Server.URL, "/")
}

func (c *Config) validate() error {
	if !strings.HasPrefix(c.Server.URL, "http://") && !strings.HasPrefix(c.Server.URL, "https://") {
		return fmt.Errorf("invalid server url %q: must start with http:// or https://", c.Server.URL)
	}
	return nil
}

// SetServerURL overrides the backend URL for this run only.
func (c *Config) SetServerURL(url string) error {
	prev := c.Server.URL
	c.Server.URL = strings.TrimRight(url, "/")
	if err := c.validate(); err != nil {
		c.Server.URL = prev
		return err
	}
	return nil
}

// SetConfigField writes a single dotted key into the global config file,
// leaving the rest of the document untouched.
func (c *Config) SetConfigField(key string, value any) error {
	data, err := os.ReadFile(c.dataConfigDir)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		data = []byte("{}")
	}

	newValue, err := sjson.Set(string(data), key, value)
	if err != nil {
		return fmt.Errorf("failed to set config field %s: %w", key, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.dataConfigDir), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(c.dataConfigDir, []byte(newValue), 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// GlobalConfigPath is the location of the user-wide config file.
func (c *Config) GlobalConfigPath() string {
	return c.dataConfigDir
}

func globalConfigPath(e env.Env) string {
	if xdg := e.Get("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName, appName+".json")
	}
	if runtime.GOOS == "windows" {
		if appData := e.Get("APPDATA"); appData != "" {
			return filepath.Join(appData, appName, appName+".json")
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName, appName+".json")
}

func defaultDataDirectory(e env.Env) string {
	if xdg := e.Get("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, appName)
	}
	if runtime.GOOS == "windows" {
		if local := e.Get("LOCALAPPDATA"); local != "" {
			return filepath.Join(local, appName)
		}
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", appName)
}
