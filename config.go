package appchains

import (
	"fmt"
	"time"

	"github.com/adamwoolhether/appchains/internal/validate"
	"github.com/adamwoolhether/appchains/poll"
)

// Service defaults.
const (
	DefaultHost       = "api.sequencing.com"
	DefaultBeaconHost = "beacon.sequencing.com"
	DefaultScheme     = "https"
	DefaultPort       = 443
	DefaultUserAgent  = "appchains-go/2"
)

// Config is the immutable connection setup shared by every call a [Client]
// makes. Build one with [DefaultConfig] and adjust fields before [New].
type Config struct {
	// Token is the OAuth bearer token. Beacon lookups work without one.
	Token      string `yaml:"token"`
	Host       string `yaml:"host" validate:"required,hostname_rfc1123"`
	BeaconHost string `yaml:"beaconHost" validate:"required,hostname_rfc1123"`
	Scheme     string `yaml:"scheme" validate:"oneof=http https"`
	Port       int    `yaml:"port" validate:"min=1,max=65535"`
	UserAgent  string `yaml:"userAgent"`

	// PollInterval is the pause between status queries of a pending job.
	PollInterval time.Duration `yaml:"pollInterval" validate:"gt=0"`
	// Timeout bounds one whole report call, polling included. Zero means
	// no bound beyond the caller's context.
	Timeout time.Duration `yaml:"timeout" validate:"gte=0"`
	// RequestTimeout bounds a single HTTP exchange. File downloads through
	// Save are bounded by the caller's context instead.
	RequestTimeout time.Duration `yaml:"requestTimeout" validate:"gte=0"`

	// RateLimit caps outgoing requests per second. Zero disables it.
	RateLimit int `yaml:"rateLimit" validate:"gte=0"`
	// RateBurst defaults to RateLimit.
	RateBurst int `yaml:"rateBurst" validate:"gte=0"`
}

// DefaultConfig returns the production endpoints and a one second
// poll interval. Token is left empty.
func DefaultConfig() Config {
	return Config{
		Host:           DefaultHost,
		BeaconHost:     DefaultBeaconHost,
		Scheme:         DefaultScheme,
		Port:           DefaultPort,
		UserAgent:      DefaultUserAgent,
		PollInterval:   poll.DefaultInterval,
		RequestTimeout: 30 * time.Second,
	}
}

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (c Config) burst() int {
	if c.RateBurst > 0 {
		return c.RateBurst
	}
	return c.RateLimit
}
