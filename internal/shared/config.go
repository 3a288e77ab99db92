package shared

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	DefaultConfigPath = "./config.json"
	envPrefix         = "JSONSERVE"
)

type ServerConfig struct {
	Host            string   `json:"host" mapstructure:"host"`
	Port            int      `json:"port" mapstructure:"port"`
	JSONDirectories []string `json:"json_directories" mapstructure:"json_directories"`

	Debug          bool   `json:"debug,omitempty" mapstructure:"debug"`
	LogJSON        bool   `json:"log_json,omitempty" mapstructure:"log_json"`
	LogFile        string `json:"log_file,omitempty" mapstructure:"log_file"`
	AccessLogDB    string `json:"access_log_db,omitempty" mapstructure:"access_log_db"`
	MetricsAddress string `json:"metrics_address,omitempty" mapstructure:"metrics_address"`
}

// DefaultServerConfig is what gets written when no config file exists.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Host:            "localhost",
		Port:            3000,
		JSONDirectories: []string{"./json"},
	}
}

// Validate reports the first field that cannot be used to start a server.
func (c *ServerConfig) Validate() error {
	if strings.TrimSpace(c.Host) == "" {
		return errors.New("host must not be empty")
	}
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port %d out of range 0-65535", c.Port)
	}
	return nil
}

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
	kindStringList
)

func (k valueKind) String() string {
	switch k {
	case kindInt:
		return "an integer"
	case kindBool:
		return "a boolean"
	case kindStringList:
		return "a list of strings"
	default:
		return "a string"
	}
}

type configKey struct {
	name     string
	kind     valueKind
	required bool
}

// configKeys are bound to JSONSERVE_* environment variables so they override
// the file even when the file omits them.
var configKeys = []configKey{
	{"host", kindString, true},
	{"port", kindInt, true},
	{"json_directories", kindStringList, true},
	{"debug", kindBool, false},
	{"log_json", kindBool, false},
	{"log_file", kindString, false},
	{"access_log_db", kindString, false},
	{"metrics_address", kindString, false},
}

func envName(key string) string {
	return envPrefix + "_" + strings.ToUpper(key)
}

func LoadServerConfig(path string) (*ServerConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		if err := v.BindEnv(key.name); err != nil {
			return nil, errors.Wrapf(err, "bind env for %s", key.name)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if err := checkKeys(v); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}

	var c ServerConfig
	if err := v.Unmarshal(&c); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return &c, nil
}

// checkKeys rejects missing required keys and file values of the wrong type.
// Values taken from the environment are always strings and are left to the
// decoder, which splits lists on commas.
func checkKeys(v *viper.Viper) error {
	var errs *multierror.Error
	for _, key := range configKeys {
		if !v.IsSet(key.name) {
			if key.required {
				errs = multierror.Append(errs, errors.Errorf("missing required key %q", key.name))
			}
			continue
		}
		if os.Getenv(envName(key.name)) != "" {
			continue
		}
		if !hasKind(v.Get(key.name), key.kind) {
			errs = multierror.Append(errs, errors.Errorf("%q must be %s", key.name, key.kind))
		}
	}
	return errs.ErrorOrNil()
}

func hasKind(val interface{}, kind valueKind) bool {
	switch kind {
	case kindString:
		_, ok := val.(string)
		return ok
	case kindBool:
		_, ok := val.(bool)
		return ok
	case kindInt:
		switch n := val.(type) {
		case int, int64:
			return true
		case float64:
			return n == math.Trunc(n) && !math.IsInf(n, 0)
		}
		return false
	case kindStringList:
		switch l := val.(type) {
		case []string:
			return true
		case []interface{}:
			for _, item := range l {
				if _, ok := item.(string); !ok {
					return false
				}
			}
			return true
		}
		return false
	}
	return false
}

func SaveServerConfig(path string, c *ServerConfig) error {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}

// LoadOrCreateServerConfig loads path, first writing DefaultServerConfig to it
// when the file does not exist yet. created reports whether that happened.
func LoadOrCreateServerConfig(path string) (c *ServerConfig, created bool, err error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := SaveServerConfig(path, DefaultServerConfig()); err != nil {
			return nil, false, errors.Wrapf(err, "write default config %s", path)
		}
		created = true
	}
	c, err = LoadServerConfig(path)
	return c, created, err
}

// Addr joins host and port for net.Listen.
func (c *ServerConfig) Addr() string {
	return joinHostPort(c.Host, c.Port)
}
