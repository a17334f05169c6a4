package cfg

import (
	"cmp"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Transport configuration
	Transport string `long:"transport" env:"TRANSPORT" default:"stdio" choice:"stdio" choice:"http" description:"Tool transport: stdio or http"`
	Port      string `long:"port" env:"PORT" default:"3000" description:"HTTP server port (http transport only)"`

	// Upstream configuration
	RequestTimeout int    `long:"request-timeout" env:"REQUEST_TIMEOUT" default:"15000" description:"Timeout for a single upstream request in milliseconds"`
	FanoutLimit    int    `long:"fanout-limit" env:"FANOUT_LIMIT" default:"0" description:"Maximum concurrent upstream requests per fan-out (0 means unbounded)"`
	RegistryFile   string `long:"registry" env:"REGISTRY_FILE" description:"Provider registry YAML file (defaults to the embedded registry)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"AI News Comb/1.0" description:"User agent string for HTTP requests"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses args and the environment. It returns nil, nil when help
// was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if raw.RequestTimeout <= 0 {
		return nil, fmt.Errorf("request timeout must be positive, got %d", raw.RequestTimeout)
	}
	if raw.FanoutLimit < 0 {
		return nil, fmt.Errorf("fan-out limit must be non-negative, got %d", raw.FanoutLimit)
	}

	cfg := &Cfg{
		Transport:      raw.Transport,
		Port:           raw.Port,
		RequestTimeout: time.Duration(raw.RequestTimeout) * time.Millisecond,
		FanoutLimit:    raw.FanoutLimit,
		RegistryFile:   raw.RegistryFile,
		UserAgent:      raw.UserAgent,
		Debug:          raw.Debug,
		Version:        GetVersion(),
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}
