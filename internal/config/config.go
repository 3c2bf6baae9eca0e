package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-smartform-parser/internal/smartform/parser"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort             = 8080
	DefaultHost             = "127.0.0.1"
	DefaultLogLevel         = "info"
	DefaultMaxRequestSize   = 32 * 1024 * 1024 // 32MB
	DefaultMaxRows          = 1_000_000
	DefaultCacheSize        = 128
	DefaultBatchConcurrency = 4

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix is prepended to every environment variable name
	EnvPrefix = "SMARTFORM"
)

// ErrVersionRequested is returned by Load when a version flag is present
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for the SmartForm parser server
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Directory holding row export files for the file based tools
	Directory string

	// Limits
	MaxRequestSize   int64 // bytes
	MaxRows          int
	CacheSize        int
	BatchConcurrency int

	// Parser variant
	TrackGraphics      bool
	TextBlockCapture   bool
	ForceEmptyCaptions bool

	// ConfigFile is an optional YAML, TOML or JSON file read before the
	// environment and flags are applied
	ConfigFile string

	// Application configuration
	Version    string
	ServerName string
	LogLevel   string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	defaults := parser.DefaultOptions()
	return &Config{
		Mode:               ModeStdio, // MCP clients launch over stdio
		Host:               DefaultHost,
		Port:               DefaultPort,
		Directory:          currentDir,
		MaxRequestSize:     DefaultMaxRequestSize,
		MaxRows:            DefaultMaxRows,
		CacheSize:          DefaultCacheSize,
		BatchConcurrency:   DefaultBatchConcurrency,
		TrackGraphics:      defaults.TrackGraphics,
		TextBlockCapture:   defaults.TextBlockCapture,
		ForceEmptyCaptions: defaults.ForceEmptyCaptions,
		Version:            "1.0.0",
		ServerName:         "mcp-smartform-parser",
		LogLevel:           DefaultLogLevel,
	}
}

// LoadFromFlags loads configuration from the process arguments and
// environment
func LoadFromFlags() (*Config, error) {
	return Load(os.Args[0], os.Args[1:])
}

// Load resolves configuration from defaults, an optional config file,
// SMARTFORM_* environment variables and args, in increasing order of
// precedence.
func Load(program string, args []string) (*Config, error) {
	if versionRequested(args) {
		return nil, ErrVersionRequested
	}

	cfg := DefaultConfig()
	v := viper.New()
	flags := pflag.NewFlagSet(program, pflag.ContinueOnError)

	setupViperEnvironment(v, cfg)
	defineCommandLineFlags(flags, cfg)
	flags.Usage = usage(flags, program)

	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}

	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		cfg.ConfigFile = configFile
	}

	populateConfigFromViper(v, cfg)

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures environment lookup and defaults
func setupViperEnvironment(v *viper.Viper, cfg *Config) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", cfg.Mode)
	v.SetDefault("host", cfg.Host)
	v.SetDefault("port", cfg.Port)
	v.SetDefault("dir", cfg.Directory)
	v.SetDefault("loglevel", cfg.LogLevel)
	v.SetDefault("max-request-size", cfg.MaxRequestSize)
	v.SetDefault("max-rows", cfg.MaxRows)
	v.SetDefault("cache-size", cfg.CacheSize)
	v.SetDefault("batch-concurrency", cfg.BatchConcurrency)
	v.SetDefault("track-graphics", cfg.TrackGraphics)
	v.SetDefault("text-blocks", cfg.TextBlockCapture)
	v.SetDefault("empty-captions", cfg.ForceEmptyCaptions)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(flags *pflag.FlagSet, cfg *Config) {
	flags.String("config", "", "Config file (yaml, toml or json) using the flag names as keys")
	flags.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	flags.String("host", cfg.Host, "Server host address (server mode only)")
	flags.Int("port", cfg.Port, "Server port (server mode only)")
	flags.String("dir", cfg.Directory, "Directory containing row export JSON files")
	flags.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	flags.Int64("max-request-size", cfg.MaxRequestSize, "Maximum request body or row export file size in bytes")
	flags.Int("max-rows", cfg.MaxRows, "Maximum rows per request (0 for no limit)")
	flags.Int("cache-size", cfg.CacheSize, "Number of parse results kept in the result cache (0 disables caching)")
	flags.Int("batch-concurrency", cfg.BatchConcurrency, "Documents parsed in parallel by the batch endpoint")
	flags.Bool("track-graphics", cfg.TrackGraphics, "Recognize graphic nodes and attribute extractions to them")
	flags.Bool("text-blocks", cfg.TextBlockCapture, "Collect TDLINE rows of %TEXT regions into window texts")
	flags.Bool("empty-captions", cfg.ForceEmptyCaptions, "Always emit empty caption lists")
}

// usage builds the custom usage message
func usage(flags *pflag.FlagSet, program string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", program)
		fmt.Fprintf(os.Stderr, "\nSmartForm Parser - rebuilds SmartForm page/window trees from flattened XML rows\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                   # MCP over stdio, current directory\n", program)
		fmt.Fprintf(os.Stderr, "  %s --dir=/data/exports               # MCP over stdio, custom directory\n", program)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --port=8081         # HTTP API and MCP over HTTP\n", program)
		fmt.Fprintf(os.Stderr, "  %s --mode=server --track-graphics=false\n", program)
		fmt.Fprintf(os.Stderr, "  %s --config=smartform.yaml\n", program)
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  SMARTFORM_MODE, SMARTFORM_HOST, SMARTFORM_PORT, SMARTFORM_DIR, SMARTFORM_LOGLEVEL\n")
		fmt.Fprintf(os.Stderr, "  SMARTFORM_MAX_REQUEST_SIZE, SMARTFORM_MAX_ROWS, SMARTFORM_CACHE_SIZE\n")
		fmt.Fprintf(os.Stderr, "  SMARTFORM_BATCH_CONCURRENCY, SMARTFORM_TRACK_GRAPHICS, SMARTFORM_TEXT_BLOCKS\n")
		fmt.Fprintf(os.Stderr, "  SMARTFORM_EMPTY_CAPTIONS, SMARTFORM_CONFIG\n")
	}
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(v *viper.Viper, cfg *Config) {
	cfg.Mode = v.GetString("mode")
	cfg.Host = v.GetString("host")
	cfg.Port = v.GetInt("port")
	cfg.Directory = v.GetString("dir")
	cfg.LogLevel = v.GetString("loglevel")
	cfg.MaxRequestSize = v.GetInt64("max-request-size")
	cfg.MaxRows = v.GetInt("max-rows")
	cfg.CacheSize = v.GetInt("cache-size")
	cfg.BatchConcurrency = v.GetInt("batch-concurrency")
	cfg.TrackGraphics = v.GetBool("track-graphics")
	cfg.TextBlockCapture = v.GetBool("text-blocks")
	cfg.ForceEmptyCaptions = v.GetBool("empty-captions")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Directory == "" {
		return errors.New("directory cannot be empty")
	}

	if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create directory %s: %w", c.Directory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access directory %s: %w", c.Directory, err)
	}

	if c.MaxRequestSize <= 0 {
		return errors.New("maximum request size must be positive")
	}
	if c.MaxRows < 0 {
		return errors.New("maximum rows cannot be negative")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size cannot be negative")
	}
	if c.BatchConcurrency < 1 {
		return errors.New("batch concurrency must be at least 1")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// ParseOptions returns the default parser options for requests that do not
// carry their own
func (c *Config) ParseOptions() parser.Options {
	return parser.Options{
		TrackGraphics:      c.TrackGraphics,
		TextBlockCapture:   c.TextBlockCapture,
		ForceEmptyCaptions: c.ForceEmptyCaptions,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Directory: %s, LogLevel: %s, "+
		"MaxRequestSize: %d, MaxRows: %d, CacheSize: %d, BatchConcurrency: %d, "+
		"TrackGraphics: %t, TextBlockCapture: %t, ForceEmptyCaptions: %t}",
		c.Mode, c.Host, c.Port, c.Directory, c.LogLevel,
		c.MaxRequestSize, c.MaxRows, c.CacheSize, c.BatchConcurrency,
		c.TrackGraphics, c.TextBlockCapture, c.ForceEmptyCaptions)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
