package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	toml "github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override file settings. A
// single underscore separates sections and a double underscore stands for a
// literal one: SMP_SML_REQUEST__TIMEOUT sets sml.request_timeout.
const EnvPrefix = "SMP_"

// REST API flavours of the local SMP. They constrain the logical address
// that may be registered at the SML.
const (
	RestTypePeppol     = "peppol"
	RestTypeOASISBDXR1 = "oasis-bdxr-v1"
	RestTypeOASISBDXR2 = "oasis-bdxr-v2"
)

// Keystore formats.
const (
	KeystorePKCS12 = "pkcs12"
	KeystorePEM    = "pem"
)

// Backends selectable for the audit sink and capability cache.
const (
	BackendMemory   = "memory"
	BackendPostgres = "postgres"
	BackendKafka    = "kafka"
	BackendRedis    = "redis"
)

// Config is the full process configuration.
type Config struct {
	Server   Server         `koanf:"server"`
	Log      LogConfig      `koanf:"log"`
	SMP      SMPConfig      `koanf:"smp"`
	SML      SMLConfig      `koanf:"sml"`
	Keystore KeystoreConfig `koanf:"keystore"`
	Database DatabaseConfig `koanf:"database"`
	Redis    RedisConfig    `koanf:"redis"`
	Cache    CacheConfig    `koanf:"cache"`
	Audit    AuditConfig    `koanf:"audit"`
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string        `koanf:"addr"`
	AdminToken      string        `koanf:"admin_token"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// SMPConfig describes the local SMP as it is known to the SML.
type SMPConfig struct {
	ID              string `koanf:"id"`
	PhysicalAddress string `koanf:"physical_address"`
	LogicalAddress  string `koanf:"logical_address"`
	RestType        string `koanf:"rest_type"`
}

// SMLConfig selects the SML and tunes the SOAP transport.
type SMLConfig struct {
	// DefaultID is the SML used by update and certificate actions when the
	// caller does not pick one.
	DefaultID         string        `koanf:"default_id"`
	ConnectionTimeout time.Duration `koanf:"connection_timeout"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	// UpdateRequiresClientCert restricts the SMLs selectable for update to
	// those requiring client certificate authentication.
	UpdateRequiresClientCert bool          `koanf:"update_requires_client_cert"`
	Endpoints                []SMLEndpoint `koanf:"endpoints"`
}

// SMLEndpoint adds an SML to the built-in catalogue.
type SMLEndpoint struct {
	ID                         string `koanf:"id"`
	DisplayName                string `koanf:"display_name"`
	DNSZone                    string `koanf:"dns_zone"`
	ManagementServiceURL       string `koanf:"management_service_url"`
	URLSuffixManageSMP         string `koanf:"url_suffix_manage_smp"`
	URLSuffixManageParticipant string `koanf:"url_suffix_manage_participant"`
	ClientCertificateRequired  bool   `koanf:"client_certificate_required"`
}

// KeystoreConfig locates the SMP signing key used for mutual TLS.
type KeystoreConfig struct {
	Type           string `koanf:"type"`
	Path           string `koanf:"path"`
	Password       string `koanf:"password"`
	CertPath       string `koanf:"cert_path"`
	KeyPath        string `koanf:"key_path"`
	TruststorePath string `koanf:"truststore_path"`
}

type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// RedisConfig configures the Redis connection pool.
type RedisConfig struct {
	URL          string        `koanf:"url"`
	PoolSize     int           `koanf:"pool_size"`
	MinIdleConns int           `koanf:"min_idle_conns"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type CacheConfig struct {
	Backend       string        `koanf:"backend"`
	CapabilityTTL time.Duration `koanf:"capability_ttl"`
}

type AuditConfig struct {
	Backend      string   `koanf:"backend"`
	KafkaBrokers []string `koanf:"kafka_brokers"`
	KafkaTopic   string   `koanf:"kafka_topic"`
}

// Load builds the configuration from defaults, the optional TOML file at
// path and SMP_ environment variables, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			WeaklyTypedInput: true,
			Result:           cfg,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	s = strings.ReplaceAll(s, "__", "%UNDERSCORE%")
	s = strings.ReplaceAll(s, "_", ".")
	return strings.ReplaceAll(s, "%UNDERSCORE%", "_")
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			ShutdownTimeout: 15 * time.Second,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		SMP: SMPConfig{
			RestType: RestTypePeppol,
		},
		SML: SMLConfig{
			ConnectionTimeout: 30 * time.Second,
			RequestTimeout:    30 * time.Second,
		},
		Keystore: KeystoreConfig{Type: KeystorePKCS12},
		Database: DatabaseConfig{
			MaxOpenConns:    10,
			ConnMaxLifetime: 30 * time.Minute,
		},
		Redis: RedisConfig{
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Cache: CacheConfig{
			Backend:       BackendMemory,
			CapabilityTTL: 5 * time.Minute,
		},
		Audit: AuditConfig{
			Backend:    BackendMemory,
			KafkaTopic: "smp.audit",
		},
	}
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if c.Server.AdminToken == "" {
		errs = append(errs, errors.New("server.admin_token is required"))
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("log.format must be json or text, got %q", c.Log.Format))
	}

	if c.SMP.ID == "" {
		errs = append(errs, errors.New("smp.id is required"))
	}
	if c.SMP.PhysicalAddress != "" {
		if ip := net.ParseIP(c.SMP.PhysicalAddress); ip == nil || ip.To4() == nil {
			errs = append(errs, fmt.Errorf("smp.physical_address must be an IPv4 address, got %q", c.SMP.PhysicalAddress))
		}
	}
	if c.SMP.LogicalAddress != "" {
		if u, err := url.Parse(c.SMP.LogicalAddress); err != nil || u.Host == "" {
			errs = append(errs, fmt.Errorf("smp.logical_address must be an absolute URL, got %q", c.SMP.LogicalAddress))
		}
	}
	switch c.SMP.RestType {
	case RestTypePeppol, RestTypeOASISBDXR1, RestTypeOASISBDXR2:
	default:
		errs = append(errs, fmt.Errorf("smp.rest_type %q is not supported", c.SMP.RestType))
	}

	if c.SML.ConnectionTimeout <= 0 || c.SML.RequestTimeout <= 0 {
		errs = append(errs, errors.New("sml timeouts must be positive"))
	}

	switch c.Keystore.Type {
	case KeystorePKCS12:
		if c.Keystore.Path == "" {
			errs = append(errs, errors.New("keystore.path is required for pkcs12 keystores"))
		}
	case KeystorePEM:
		if c.Keystore.CertPath == "" || c.Keystore.KeyPath == "" {
			errs = append(errs, errors.New("keystore.cert_path and keystore.key_path are required for pem keystores"))
		}
	default:
		errs = append(errs, fmt.Errorf("keystore.type %q is not supported", c.Keystore.Type))
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendRedis:
		if c.Redis.URL == "" {
			errs = append(errs, errors.New("redis.url is required for the redis cache backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("cache.backend %q is not supported", c.Cache.Backend))
	}

	switch c.Audit.Backend {
	case BackendMemory:
	case BackendPostgres:
		if c.Database.URL == "" {
			errs = append(errs, errors.New("database.url is required for the postgres audit backend"))
		}
	case BackendKafka:
		if len(c.Audit.KafkaBrokers) == 0 || c.Audit.KafkaTopic == "" {
			errs = append(errs, errors.New("audit.kafka_brokers and audit.kafka_topic are required for the kafka audit backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("audit.backend %q is not supported", c.Audit.Backend))
	}

	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level.
func ParseLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("log.level %q is not a valid level", level)
	}
	return l, nil
}
