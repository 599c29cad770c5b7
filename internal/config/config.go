package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// MainField is the dictionary key of the generic search route.
const MainField = "main"

// Config holds the facetlinks API configuration.
type Config struct {
	HTTP        HTTPConfig            `yaml:"http"`
	Auth        AuthConfig            `yaml:"auth"`
	Logging     LoggingConfig         `yaml:"logging"`
	Links       LinksConfig           `yaml:"links"`
	DefaultSite string                `yaml:"default_site"`
	Sites       map[string]SiteConfig `yaml:"sites"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int `yaml:"max_body_bytes"`
}

// LinksConfig holds link set settings shared by all sites.
type LinksConfig struct {
	PageWindow  int                `yaml:"page_window"`
	SortOptions []SortOptionConfig `yaml:"sort_options"`
}

// SortOptionConfig is one offered sort order.
type SortOptionConfig struct {
	Field     string `yaml:"field"`
	Direction string `yaml:"direction"`
	Label     string `yaml:"label"`
}

// SiteConfig holds the routing of one site.
type SiteConfig struct {
	BaseURL    string            `yaml:"base_url"`
	Routes     map[string]string `yaml:"routes"` // route name -> chi pattern
	Dictionary Dictionary        `yaml:"dictionary"`
	Items      []ItemRouteConfig `yaml:"items"`
}

// ItemRouteConfig maps an item type to its detail page route.
type ItemRouteConfig struct {
	Type  string `yaml:"type"`
	Route string `yaml:"route"`
}

// DictionaryEntry maps a facet field to a route name.
type DictionaryEntry struct {
	Field string
	Route string
}

// Dictionary is the ordered facet field -> route mapping. YAML order is
// match priority.
type Dictionary []DictionaryEntry

// UnmarshalYAML decodes a mapping keeping key order.
func (d *Dictionary) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: dictionary must be a mapping", node.Line)
	}
	entries := make(Dictionary, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: dictionary entries must be field: route", k.Line)
		}
		entries = append(entries, DictionaryEntry{Field: k.Value, Route: v.Value})
	}
	*d = entries
	return nil
}

// Main returns the route of the main entry.
func (d Dictionary) Main() (string, bool) {
	for _, e := range d {
		if e.Field == MainField {
			return e.Route, true
		}
	}
	return "", false
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from a YAML file.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Links.PageWindow < 0 {
		c.Links.PageWindow = 0
	}
	if c.DefaultSite == "" && len(c.Sites) == 1 {
		for name := range c.Sites {
			c.DefaultSite = name
		}
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Sites) == 0 {
		return fmt.Errorf("sites is required")
	}
	if _, ok := c.Sites[c.DefaultSite]; c.DefaultSite != "" && !ok {
		return fmt.Errorf("default_site %q is not defined in sites", c.DefaultSite)
	}
	for name, s := range c.Sites {
		if err := s.validate(); err != nil {
			return fmt.Errorf("sites.%s: %w", name, err)
		}
	}
	for i, o := range c.Links.SortOptions {
		if o.Field == "" {
			return fmt.Errorf("links.sort_options[%d].field is required", i)
		}
		if o.Direction != "asc" && o.Direction != "desc" {
			return fmt.Errorf("links.sort_options[%d].direction must be \"asc\" or \"desc\", got %q", i, o.Direction)
		}
	}
	return nil
}

func (s SiteConfig) validate() error {
	if s.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	if len(s.Routes) == 0 {
		return fmt.Errorf("routes is required")
	}
	if _, ok := s.Dictionary.Main(); !ok {
		return fmt.Errorf("dictionary.%s is required", MainField)
	}
	seen := make(map[string]bool, len(s.Dictionary))
	for _, e := range s.Dictionary {
		if seen[e.Field] {
			return fmt.Errorf("dictionary.%s is duplicated", e.Field)
		}
		seen[e.Field] = true
		if _, ok := s.Routes[e.Route]; !ok {
			return fmt.Errorf("dictionary.%s: unknown route %q", e.Field, e.Route)
		}
	}
	for i, it := range s.Items {
		if _, ok := s.Routes[it.Route]; !ok {
			return fmt.Errorf("items[%d]: unknown route %q", i, it.Route)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
