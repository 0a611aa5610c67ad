// Package config holds the process-wide settings of the contract test harness. Settings
// are read once at startup and passed explicitly to the components that need them.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/reservekit/api-contract-tests/calllog"

	"github.com/joho/godotenv"
)

// Environment variable names.
const (
	EnvAuthAutowrap     = "AUTH_AUTOWRAP"
	EnvLogAutowrap      = "LOG_AUTOWRAP"
	EnvLogMode          = "LOG_MODE"
	EnvLogFormat        = "LOG_FORMAT"
	EnvLogMaxBody       = "LOG_MAX_BODY"
	EnvLogShowSensitive = "LOG_SHOW_SENSITIVE"
	EnvAccessToken      = "ACCESS_TOKEN"
	EnvBaseURL          = "API_BASE_URL"
	EnvMetricsAutowrap  = "METRICS_AUTOWRAP"
)

// Config is the resolved harness configuration.
type Config struct {
	// AuthAutowrap enables automatic credential injection. Default true.
	AuthAutowrap bool
	// LogAutowrap enables automatic call logging. Default true.
	LogAutowrap bool
	// LogMode is info (errors only) or debug (every request and response). Default info.
	LogMode calllog.Mode
	// LogFormat is json or pretty. Default json.
	LogFormat calllog.Format
	// LogMaxBody caps serialized bodies in characters; 0 means unlimited.
	LogMaxBody int
	// LogShowSensitive disables header redaction. Default false.
	LogShowSensitive bool
	// AccessToken is the bearer credential; empty disables injection.
	AccessToken string
	// BaseURL is the API base URL shown in log records and used by the HTTP core of the
	// stub service run.
	BaseURL string
	// MetricsAutowrap enables the call counter interceptor. Default false.
	MetricsAutowrap bool
}

// Default returns the configuration used when no variables are set.
func Default() Config {
	return Config{
		AuthAutowrap: true,
		LogAutowrap:  true,
		LogMode:      calllog.ModeInfo,
		LogFormat:    calllog.FormatJSON,
	}
}

// EnvFile is the optional file of variable assignments read by Load.
const EnvFile = ".env"

// Load reads an optional .env file in the working directory, then the process environment.
// A missing file is ignored; a file that cannot be parsed is an error.
func Load() (Config, error) {
	if err := godotenv.Load(EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Default(), fmt.Errorf("%s: %w", EnvFile, err)
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from a variable lookup function such as os.LookupEnv. Unset
// or empty variables keep their defaults; malformed values are errors.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	if lookup == nil {
		return c, nil
	}
	get := func(name string) (string, bool) {
		v, ok := lookup(name)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	var err error
	if c.AuthAutowrap, err = boolVar(get, EnvAuthAutowrap, c.AuthAutowrap); err != nil {
		return c, err
	}
	if c.LogAutowrap, err = boolVar(get, EnvLogAutowrap, c.LogAutowrap); err != nil {
		return c, err
	}
	if c.LogShowSensitive, err = boolVar(get, EnvLogShowSensitive, c.LogShowSensitive); err != nil {
		return c, err
	}
	if c.MetricsAutowrap, err = boolVar(get, EnvMetricsAutowrap, c.MetricsAutowrap); err != nil {
		return c, err
	}
	if v, ok := get(EnvLogMode); ok {
		if c.LogMode, err = calllog.ParseMode(v); err != nil {
			return c, fmt.Errorf("%s: %w", EnvLogMode, err)
		}
	}
	if v, ok := get(EnvLogFormat); ok {
		if c.LogFormat, err = calllog.ParseFormat(v); err != nil {
			return c, fmt.Errorf("%s: %w", EnvLogFormat, err)
		}
	}
	if v, ok := get(EnvLogMaxBody); ok {
		n, perr := strconv.Atoi(v)
		if perr != nil || n < 0 {
			return c, fmt.Errorf("%s: %q is not a non-negative integer", EnvLogMaxBody, v)
		}
		c.LogMaxBody = n
	}
	if v, ok := get(EnvAccessToken); ok {
		c.AccessToken = v
	}
	if v, ok := get(EnvBaseURL); ok {
		c.BaseURL = strings.TrimSuffix(v, "/")
	}
	return c, nil
}

func boolVar(get func(string) (string, bool), name string, def bool) (bool, error) {
	v, ok := get(name)
	if !ok {
		return def, nil
	}
	switch strings.ToLower(v) {
	case "yes", "on":
		return true, nil
	case "no", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("%s: %q is not a boolean", name, v)
	}
	return b, nil
}

// LoggerOptions returns the call logger options implied by the configuration.
func (c Config) LoggerOptions() calllog.Options {
	return calllog.Options{
		Mode:          c.LogMode,
		Format:        c.LogFormat,
		MaxBody:       c.LogMaxBody,
		ShowSensitive: c.LogShowSensitive,
		BaseURL:       c.BaseURL,
	}
}

// AuthEnabled reports whether credential injection should be installed.
func (c Config) AuthEnabled() bool {
	return c.AuthAutowrap && c.AccessToken != ""
}
