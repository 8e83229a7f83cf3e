package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Storage   StorageConfig
	Cache     CacheConfig
	Events    EventsConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
	Swagger   SwaggerConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env      string // development, staging, production
	Name     string
	LogLevel string
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	MaxConns    int
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string con URL encoding para caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimitMB  int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StorageConfig selecciona el backend de persistencia: "postgres" o "memory".
type StorageConfig struct {
	Driver string
}

// CacheConfig configuración de la caché de reportes.
type CacheConfig struct {
	Driver   string // redis | noop
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// EventsConfig configuración del publicador de eventos de dominio.
type EventsConfig struct {
	Driver  string // kafka | noop
	Brokers []string
	Topic   string
}

// SchedulerConfig configuración de los trabajos en segundo plano.
type SchedulerConfig struct {
	Enabled          bool
	MaintenanceSpec  string // expresión cron
	MaintenanceAhead time.Duration
	LockTTL          time.Duration
}

// MetricsConfig habilita /metrics.
type MetricsConfig struct {
	Enabled bool
	Path    string
}

// SwaggerConfig habilita /docs.
type SwaggerConfig struct {
	Enabled bool
	Path    string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, DB_HOST, JWT_SECRET, REDIS_ADDR, etc.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:      getString(v, "APP_ENV", "development"),
			Name:     getString(v, "APP_NAME", "telar-erp"),
			LogLevel: getString(v, "LOG_LEVEL", "info"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "telar_erp"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
			MaxConns:    getInt(v, "DB_MAX_CONNS", 25),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "telar-erp"),
		},
		HTTP: HTTPConfig{
			Host:         getString(v, "HTTP_HOST", "0.0.0.0"),
			Port:         getInt(v, "HTTP_PORT", 8080),
			ReadTimeout:  getDuration(v, "HTTP_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDuration(v, "HTTP_WRITE_TIMEOUT", 30*time.Second),
			BodyLimitMB:  getInt(v, "HTTP_BODY_LIMIT_MB", 8),
		},
		Storage: StorageConfig{
			Driver: getString(v, "STORAGE_DRIVER", "postgres"),
		},
		Cache: CacheConfig{
			Driver:   getString(v, "CACHE_DRIVER", "noop"),
			Addr:     getString(v, "REDIS_ADDR", "localhost:6379"),
			Password: getString(v, "REDIS_PASSWORD", ""),
			DB:       getInt(v, "REDIS_DB", 0),
			TTL:      getDuration(v, "CACHE_TTL", 5*time.Minute),
		},
		Events: EventsConfig{
			Driver:  getString(v, "EVENTS_DRIVER", "noop"),
			Brokers: splitList(getString(v, "KAFKA_BROKERS", "localhost:9092")),
			Topic:   getString(v, "KAFKA_TOPIC", "telar.events"),
		},
		Scheduler: SchedulerConfig{
			Enabled:          getBool(v, "SCHEDULER_ENABLED", false),
			MaintenanceSpec:  getString(v, "SCHEDULER_MAINTENANCE_SPEC", "0 */1 * * *"),
			MaintenanceAhead: getDuration(v, "SCHEDULER_MAINTENANCE_AHEAD", 24*time.Hour),
			LockTTL:          getDuration(v, "SCHEDULER_LOCK_TTL", 5*time.Minute),
		},
		Metrics: MetricsConfig{
			Enabled: getBool(v, "METRICS_ENABLED", true),
			Path:    getString(v, "METRICS_PATH", "/metrics"),
		},
		Swagger: SwaggerConfig{
			Enabled: getBool(v, "SWAGGER_ENABLED", true),
			Path:    getString(v, "SWAGGER_PATH", "docs"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate revisa combinaciones inválidas antes de levantar dependencias.
func (c *Config) Validate() error {
	var errs []error
	switch c.Storage.Driver {
	case "postgres", "memory":
	default:
		errs = append(errs, fmt.Errorf("STORAGE_DRIVER inválido: %q", c.Storage.Driver))
	}
	switch c.Cache.Driver {
	case "redis", "noop":
	default:
		errs = append(errs, fmt.Errorf("CACHE_DRIVER inválido: %q", c.Cache.Driver))
	}
	switch c.Events.Driver {
	case "kafka":
		if len(c.Events.Brokers) == 0 {
			errs = append(errs, errors.New("KAFKA_BROKERS requerido con EVENTS_DRIVER=kafka"))
		}
	case "noop":
	default:
		errs = append(errs, fmt.Errorf("EVENTS_DRIVER inválido: %q", c.Events.Driver))
	}
	if c.JWT.Expiration <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRATION_MINUTES debe ser positivo"))
	}
	if c.App.Env == "production" && c.JWT.Secret == "" {
		errs = append(errs, errors.New("JWT_SECRET requerido en producción"))
	}
	return errors.Join(errs...)
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case int:
			return v.GetInt(key)
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getDuration(v *viper.Viper, key string, def time.Duration) time.Duration {
	if !v.IsSet(key) {
		return def
	}
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return def
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
