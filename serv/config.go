package serv

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dosco/lookahead/core"
	"github.com/dosco/lookahead/serv/internal/util"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

// Environment variables with this prefix override config values.
// Eg. LA_DATABASE_CONNECTION_STRING sets database.connection_string
const envPrefix = "LA_"

// Configuration for the lookahead service
type Config struct {
	// Configuration for the aggregation compiler
	Core core.Config `mapstructure:",squash" jsonschema:"title=Compiler Configuration"`

	// Configuration for the service
	Serv `mapstructure:",squash" jsonschema:"title=Service Configuration"`

	viper *viper.Viper
}

// Configuration for the service
type Serv struct {
	// Application name is used in log and debug messages
	AppName string `mapstructure:"app_name" jsonschema:"title=Application Name"`

	// When enabled logs default to JSON
	Production bool `jsonschema:"title=Production Mode,default=false"`

	// The default path to find all configuration files and the schema
	ConfigPath string `mapstructure:"config_path" jsonschema:"title=Config Path"`

	// GraphQL schema file, relative to the config path
	SchemaFile string `mapstructure:"schema_file" jsonschema:"title=Schema File,default=schema.graphql"`

	// Logging level must be one of debug, error, warn, info
	LogLevel string `mapstructure:"log_level" jsonschema:"title=Log Level,enum=debug,enum=error,enum=warn,enum=info"`

	// Logging Format: "auto" (default, console in dev, JSON in production),
	// "json" (always JSON), or "simple" (always console)
	LogFormat string `mapstructure:"log_format" jsonschema:"title=Logging Format,enum=auto,enum=json,enum=simple"`

	// Poll the schema file for changes and rebuild the compiler when it
	// changes. Disabled in production and when under 1 second.
	SchemaPollDuration time.Duration `mapstructure:"schema_poll_duration" jsonschema:"title=Schema Change Poll Duration,default=10s"`

	// Database configuration
	DB Database `mapstructure:"database" jsonschema:"title=Database"`
}

// Database configuration
type Database struct {
	ConnString string `mapstructure:"connection_string" jsonschema:"title=Connection String,example=mongodb://localhost:27017"`

	DBName string `mapstructure:"name" jsonschema:"title=Database Name"`

	ConnectTimeout time.Duration `mapstructure:"connect_timeout" jsonschema:"title=Connect Timeout,default=10s"`
}

// ReadInConfig function reads in the config file for the environment specified in the GO_ENV
// environment variable.
func ReadInConfig(configFile string) (*Config, error) {
	return readInConfig(configFile, nil)
}

// ReadInConfigFS is the same as ReadInConfig but it also takes a filesytem as an argument
func ReadInConfigFS(configFile string, fs afero.Fs) (*Config, error) {
	return readInConfig(configFile, fs)
}

func readInConfig(configFile string, fs afero.Fs) (*Config, error) {
	cp := filepath.Dir(configFile)
	vi := newViper(cp, filepath.Base(configFile))

	if fs != nil {
		vi.SetFs(fs)
	}

	if err := vi.ReadInConfig(); err != nil {
		return nil, err
	}

	if pcf := vi.GetString("inherits"); pcf != "" {
		cf := vi.ConfigFileUsed()
		vi = newViper(cp, pcf)
		if fs != nil {
			vi.SetFs(fs)
		}

		if err := vi.ReadInConfig(); err != nil {
			return nil, err
		}

		if value := vi.GetString("inherits"); value != "" {
			return nil, fmt.Errorf("inherited config '%s' cannot itself inherit '%s'", pcf, value)
		}

		vi.SetConfigFile(cf)

		if err := vi.MergeInConfig(); err != nil {
			return nil, err
		}
	}

	return decodeConfig(vi, cp)
}

// NewConfig function creates a new configuration from the provided config string
func NewConfig(config, format string) (*Config, error) {
	if format == "" {
		format = "yaml"
	}

	vi := newViperWithDefaults()
	vi.SetConfigType(format)

	if err := vi.ReadConfig(strings.NewReader(config)); err != nil {
		return nil, err
	}
	return decodeConfig(vi, "")
}

func decodeConfig(vi *viper.Viper, configPath string) (*Config, error) {
	for _, e := range os.Environ() {
		if strings.HasPrefix(e, envPrefix) {
			kv := strings.SplitN(e, "=", 2)
			util.SetKeyValue(vi, strings.TrimPrefix(kv[0], envPrefix), kv[1])
		}
	}

	c := &Config{viper: vi}

	if err := vi.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("failed to decode config, %v", err)
	}
	if c.ConfigPath == "" {
		c.ConfigPath = configPath
	}

	if err := c.Core.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// newViperWithDefaults returns a new viper instance with the default settings
func newViperWithDefaults() *viper.Viper {
	vi := viper.New()

	vi.SetDefault("app_name", "lookahead")
	vi.SetDefault("schema_file", "schema.graphql")
	vi.SetDefault("schema_poll_duration", "10s")

	vi.SetDefault("log_level", "info")
	vi.SetDefault("log_format", "auto")

	vi.SetDefault("max_depth", 16)
	vi.SetDefault("default_limit", 20)
	vi.SetDefault("max_limit", 0)
	vi.SetDefault("default_sort", "")

	vi.SetDefault("database.connection_string", "mongodb://localhost:27017")
	vi.SetDefault("database.name", "lookahead")
	vi.SetDefault("database.connect_timeout", "10s")

	vi.SetDefault("env", "development")

	vi.BindEnv("env", "GO_ENV") //nolint:errcheck

	return vi
}

// newViper returns a new viper instance with the default settings
func newViper(configPath, configFile string) *viper.Viper {
	vi := newViperWithDefaults()
	vi.SetConfigName(strings.TrimSuffix(configFile, filepath.Ext(configFile)))

	if configPath == "" {
		vi.AddConfigPath("./config")
	} else {
		vi.AddConfigPath(configPath)
	}

	return vi
}

// AbsolutePath returns the absolute path of the file
func (c *Config) AbsolutePath(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.ConfigPath, p)
}

// ShouldUseJSONLogs returns true if logs should be in JSON format.
// Returns true if log_format is "json" OR if log_format is "auto" and production mode is enabled.
func (c *Config) ShouldUseJSONLogs() bool {
	if c.LogFormat == "json" {
		return true
	}
	if c.LogFormat == "auto" && c.Production {
		return true
	}
	return false
}

// GetConfigName returns the name of the configuration
func GetConfigName() string {
	goEnv := strings.TrimSpace(strings.ToLower(os.Getenv("GO_ENV")))

	switch goEnv {
	case "production", "prod":
		return "prod"

	case "staging", "stage":
		return "stage"

	case "testing", "test":
		return "test"

	case "development", "dev", "":
		return "dev"

	default:
		return goEnv
	}
}
