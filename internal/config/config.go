// Package config loads portscope settings.
//
// Precedence, highest first: explicitly set flags, PORTSCOPE_ environment
// variables, the config file (portscope.yaml), built-in defaults.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix marks environment variables read as configuration.
// PORTSCOPE_HOST_ADDR sets host.addr.
const EnvPrefix = "PORTSCOPE_"

// Session store backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// MCP transports.
const (
	TransportStdio = "stdio"
	TransportSSE   = "sse"
)

// Defaults.
const (
	DefaultHostAddr    = "localhost:7001"
	DefaultHostTimeout = 10 * time.Second
	DefaultOutput      = "table"
	DefaultColor       = "auto"
	DefaultHTTPPort    = 8080
	DefaultMCPPort     = 8081
	DefaultSessionTTL  = time.Hour
	DefaultRedisAddr   = "localhost:6379"
	DefaultWorkers     = 4

	encryptionKeySize = 32
)

// configFiles are searched in the working directory when no file is given.
var configFiles = []string{"portscope.yaml", "portscope.yml"}

// flagKeys maps flag names onto config keys when they differ.
var flagKeys = map[string]string{
	"host":      "host.addr",
	"timeout":   "host.timeout",
	"port":      "http.port",
	"transport": "mcp.transport",
	"mcp-port":  "mcp.port",
	"sessions":  "sessions.backend",
	"ttl":       "sessions.ttl",
	"redis":     "redis.addr",
}

// ErrInvalid reports a setting outside its allowed values.
var ErrInvalid = errors.New("invalid configuration")

// HostConfig locates the Maya command port.
type HostConfig struct {
	Addr    string        `koanf:"addr"`
	Timeout time.Duration `koanf:"timeout"`
}

// HTTPConfig configures `portscope serve`.
type HTTPConfig struct {
	Port int `koanf:"port"`
}

// MCPConfig configures `portscope mcp`.
type MCPConfig struct {
	Transport string `koanf:"transport"`
	Port      int    `koanf:"port"`
}

// SessionsConfig selects where viewer sessions live.
type SessionsConfig struct {
	Backend string        `koanf:"backend"`
	TTL     time.Duration `koanf:"ttl"`

	// Key is a base64 AES-256 key; when set, sessions are encrypted at rest.
	Key string `koanf:"key"`
	// FallbackKeys still decrypt sessions written before a key rotation.
	FallbackKeys []string `koanf:"fallback_keys"`
}

// EncryptionKeys decodes Key and FallbackKeys. A nil active key means
// encryption is off.
func (s SessionsConfig) EncryptionKeys() (active []byte, fallback [][]byte, err error) {
	if s.Key == "" {
		if len(s.FallbackKeys) > 0 {
			return nil, nil, fmt.Errorf("%w: sessions.fallback_keys requires sessions.key", ErrInvalid)
		}
		return nil, nil, nil
	}
	if active, err = decodeKey("sessions.key", s.Key); err != nil {
		return nil, nil, err
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(fmt.Sprintf("sessions.fallback_keys[%d]", i), k)
		if err != nil {
			return nil, nil, err
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(name, value string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %s is not valid base64: %v", ErrInvalid, name, err)
	}
	if len(key) != encryptionKeySize {
		return nil, fmt.Errorf("%w: %s must decode to %d bytes, got %d", ErrInvalid, name, encryptionKeySize, len(key))
	}
	return key, nil
}

// RedisConfig is used when Sessions.Backend is "redis".
type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// Config is the resolved configuration.
type Config struct {
	Host     HostConfig     `koanf:"host"`
	Scene    string         `koanf:"scene"`
	Output   string         `koanf:"output"`
	Color    string         `koanf:"color"`
	Debug    bool           `koanf:"debug"`
	Workers  int            `koanf:"workers"`
	HTTP     HTTPConfig     `koanf:"http"`
	MCP      MCPConfig      `koanf:"mcp"`
	Sessions SessionsConfig `koanf:"sessions"`
	Redis    RedisConfig    `koanf:"redis"`

	// File is the config file that was read, empty when none was found.
	File string `koanf:"-"`
}

func defaults() map[string]any {
	return map[string]any{
		"host.addr":        DefaultHostAddr,
		"host.timeout":     DefaultHostTimeout.String(),
		"output":           DefaultOutput,
		"color":            DefaultColor,
		"debug":            false,
		"workers":          DefaultWorkers,
		"http.port":        DefaultHTTPPort,
		"mcp.transport":    TransportStdio,
		"mcp.port":         DefaultMCPPort,
		"sessions.backend": BackendMemory,
		"sessions.ttl":     DefaultSessionTTL.String(),
		"redis.addr":       DefaultRedisAddr,
		"redis.db":         0,
	}
}

// findConfigFile returns the explicit path or the first default file present.
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	for _, name := range configFiles {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	return ""
}

// Load resolves the configuration. cfgFile may be empty; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	used := findConfigFile(cfgFile)
	if used != "" {
		if err := k.Load(file.Provider(used), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", used, err)
		}
	}

	// 3. Environment: PORTSCOPE_SESSIONS_TTL -> sessions.ttl
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags that were explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = f.Name
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	cfg.File = used

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks enumerated settings and numeric ranges.
func (c *Config) Validate() error {
	switch c.Sessions.Backend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("%w: sessions.backend must be %q or %q, got %q", ErrInvalid, BackendMemory, BackendRedis, c.Sessions.Backend)
	}
	switch c.MCP.Transport {
	case TransportStdio, TransportSSE:
	default:
		return fmt.Errorf("%w: mcp.transport must be %q or %q, got %q", ErrInvalid, TransportStdio, TransportSSE, c.MCP.Transport)
	}
	switch c.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("%w: color must be auto, always or never, got %q", ErrInvalid, c.Color)
	}
	if _, _, err := c.Sessions.EncryptionKeys(); err != nil {
		return err
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalid, c.Workers)
	}
	if c.Host.Timeout <= 0 {
		return fmt.Errorf("%w: host.timeout must be positive", ErrInvalid)
	}
	return nil
}
