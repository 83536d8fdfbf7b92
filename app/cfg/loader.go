package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const MinJWTSecretLength = 16

var ErrHelp = errors.New("help requested")

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// HTTP server
	Port        string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	CORSOrigins string `long:"cors-origins" env:"CORS_ALLOWED_ORIGINS" description:"Comma separated list of allowed CORS origins (any origin when empty)"`

	// Storage
	DBPath        string `long:"db-path" env:"DB_PATH" default:"./data/scraper.db" description:"SQLite database file"`
	BootstrapFile string `long:"bootstrap-file" env:"BOOTSTRAP_FILE" description:"YAML file with users and items to seed at start-up (optional)"`

	// Token issuance
	JWTSecret        string `long:"jwt-secret" env:"JWT_SECRET" description:"HMAC signing secret, at least 16 characters (required)"`
	JWTIssuer        string `long:"jwt-issuer" env:"JWT_ISSUER" default:"SchoolManage" description:"Token issuer"`
	JWTAudience      string `long:"jwt-audience" env:"JWT_AUDIENCE" default:"SchoolManageClient" description:"Token audience"`
	JWTExpiryMinutes int    `long:"jwt-expiry-minutes" env:"JWT_EXPIRY_MINUTES" default:"120" description:"Token lifetime in minutes"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for log timestamps (e.g., UTC, Europe/Berlin)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

// LoadArgs parses the given command line together with the environment.
// ErrHelp is returned when --help was requested.
func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, ErrHelp
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if len(raw.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("JWT secret must be configured and at least %d characters long", MinJWTSecretLength)
	}
	if raw.JWTExpiryMinutes <= 0 {
		return nil, fmt.Errorf("JWT expiry must be positive, got %d minutes", raw.JWTExpiryMinutes)
	}
	if strings.TrimSpace(raw.DBPath) == "" {
		return nil, errors.New("database path must not be empty")
	}

	cfg := &Cfg{
		Port:             raw.Port,
		CORSOrigins:      splitOrigins(raw.CORSOrigins),
		DBPath:           raw.DBPath,
		BootstrapFile:    strings.TrimSpace(raw.BootstrapFile),
		JWTSecret:        raw.JWTSecret,
		JWTIssuer:        raw.JWTIssuer,
		JWTAudience:      raw.JWTAudience,
		JWTExpiryMinutes: raw.JWTExpiryMinutes,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
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

func splitOrigins(value string) []string {
	var origins []string
	for _, origin := range strings.Split(value, ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		loc, err := time.LoadLocation(timezone)
		if err != nil {
			return err
		}
		time.Local = loc
	}
	return nil
}
