package cfg

import "time"

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

type Cfg struct {
	// Transport configuration
	Transport string
	Port      string

	// Upstream configuration
	RequestTimeout time.Duration
	FanoutLimit    int
	RegistryFile   string

	// Application metadata
	UserAgent string
	Debug     bool
	Version   string
}
