package app

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is stripped from environment variable names.
const EnvPrefix = "BOOKCONTENTS"

// Log formats.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
)

// Config contains runtime configuration derived from environment variables.
// Each variable is read with the BOOKCONTENTS_ prefix first and unprefixed
// second, so a plain PORT keeps working on hosting platforms.
type Config struct {
	Host        string   `envconfig:"HOST"`
	Port        string   `envconfig:"PORT" default:"8080"`
	Catalog     string   `envconfig:"CATALOG"`
	MySQLDSN    string   `envconfig:"MYSQL_DSN"`
	DatabaseURL string   `envconfig:"DATABASE_URL"`
	BasePath    string   `envconfig:"BASE_PATH"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"console"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	// DSN is the normalised driver DSN, empty when no database is configured.
	DSN string `ignored:"true"`
}

// LoadConfig loads envFile (when present) and populates Config from the
// environment.
func LoadConfig(envFile string) (Config, error) {
	if err := loadDotEnv(envFile); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return cfg, fmt.Errorf("process environment: %w", err)
	}

	switch cfg.LogFormat {
	case LogFormatConsole, LogFormatJSON:
	default:
		return cfg, fmt.Errorf("unsupported log format %q", cfg.LogFormat)
	}

	rawDSN := cfg.MySQLDSN
	if rawDSN == "" {
		rawDSN = cfg.DatabaseURL
	}
	return cfg.WithDSN(rawDSN)
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func loadDotEnv(path string) error {
	if path == "" {
		path = ".env"
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	return godotenv.Load(path)
}

// WithDSN returns a copy of c that connects to raw, which may be a driver
// DSN or a mysql:// (or mariadb://) URL. An empty raw leaves c unchanged.
// parseTime is switched on unless raw sets it.
func (c Config) WithDSN(raw string) (Config, error) {
	if raw == "" {
		return c, nil
	}
	dsn, err := mysqlDSN(raw)
	if err != nil {
		return c, err
	}
	c.DSN = dsn
	return c, nil
}

func mysqlDSN(raw string) (string, error) {
	dsn := raw
	if strings.Contains(raw, "://") {
		var err error
		if dsn, err = dsnFromURL(raw); err != nil {
			return "", err
		}
	}

	parsed, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("parse mysql dsn: %w", err)
	}
	if !strings.Contains(dsn, "parseTime=") {
		parsed.ParseTime = true
	}
	return parsed.FormatDSN(), nil
}

func dsnFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse mysql url: %w", err)
	}
	switch u.Scheme {
	case "mysql", "mariadb":
	default:
		return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("missing host in database url")
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", fmt.Errorf("missing database name in url path")
	}

	cfg := mysql.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), "3306")
	}
	cfg.DBName = name
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}

	dsn := cfg.FormatDSN()
	if u.RawQuery != "" {
		dsn += "?" + u.RawQuery
	}
	return dsn, nil
}
