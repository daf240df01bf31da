package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App    AppConfig
	Engine EngineConfig
	DB     DBConfig
	JWT    JWTConfig
	HTTP   HTTPConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env       string // development, staging, production
	Name      string
	LogLevel  string
	ConfigDir string // carpeta con config.yaml, categories.yaml y parameters.yaml
}

// EngineConfig ajustes del motor de resolución de categorías y parámetros.
type EngineConfig struct {
	CategoriesFile      string
	ParametersFile      string
	FuzzyThreshold      float64
	MaxCategoryChoices  int
	MaxParameterChoices int
	IdentifierPolicy    string // never | new | always
	Separators          string // cada carácter es un separador
	Interactive         string // false | true | twice
	Workers             int
	Hooks               []string // hooks incorporados en orden de ejecución
	FuzzyCacheSize      int
}

// CategoriesPath ruta absoluta de categories.yaml (relativa a ConfigDir si no es absoluta).
func (c Config) CategoriesPath() string {
	return c.resolve(c.Engine.CategoriesFile)
}

// ParametersPath ruta de parameters.yaml.
func (c Config) ParametersPath() string {
	return c.resolve(c.Engine.ParametersFile)
}

func (c Config) resolve(p string) string {
	if filepath.IsAbs(p) || c.App.ConfigDir == "" {
		return p
	}
	return filepath.Join(c.App.ConfigDir, p)
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
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
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

// JWTConfig configuración de JWT para la API HTTP.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load lee la configuración. Orden de prioridad: variables de entorno, .env,
// config.yaml en configDir, valores por defecto. configDir vacío usa CONFIG_DIR o ".".
func Load(configDir string) (*Config, error) {
	// .env opcional; no pisa variables ya exportadas
	_ = godotenv.Load()

	if configDir == "" {
		configDir = os.Getenv("CONFIG_DIR")
	}
	if configDir == "" {
		configDir = "."
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("leer config.yaml: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:       getString(v, "APP_ENV", "development"),
			Name:      getString(v, "APP_NAME", "partimport"),
			LogLevel:  getString(v, "LOG_LEVEL", "info"),
			ConfigDir: configDir,
		},
		Engine: EngineConfig{
			CategoriesFile:      getString(v, "CATEGORIES_FILE", "categories.yaml"),
			ParametersFile:      getString(v, "PARAMETERS_FILE", "parameters.yaml"),
			FuzzyThreshold:      getFloat(v, "ENGINE_FUZZY_THRESHOLD", 0.85),
			MaxCategoryChoices:  getInt(v, "ENGINE_MAX_CATEGORY_CHOICES", 5),
			MaxParameterChoices: getInt(v, "ENGINE_MAX_PARAMETER_CHOICES", 5),
			IdentifierPolicy:    getString(v, "ENGINE_IDENTIFIER_POLICY", "new"),
			Separators:          getString(v, "ENGINE_IDENTIFIER_SEPARATORS", "-_ "),
			Interactive:         getString(v, "ENGINE_INTERACTIVE", "false"),
			Workers:             getInt(v, "ENGINE_WORKERS", 4),
			Hooks:               getStrings(v, "ENGINE_HOOKS"),
			FuzzyCacheSize:      getInt(v, "ENGINE_FUZZY_CACHE_SIZE", 1024),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "partimport"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "partimport"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
	}

	if cfg.Engine.FuzzyThreshold < 0 || cfg.Engine.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("ENGINE_FUZZY_THRESHOLD fuera de [0,1]: %v", cfg.Engine.FuzzyThreshold)
	}
	return cfg, nil
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

func getFloat(v *viper.Viper, key string, def float64) float64 {
	if v.IsSet(key) {
		if s, ok := v.Get(key).(string); ok {
			f, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return def
			}
			return f
		}
		return v.GetFloat64(key)
	}
	return def
}

// getStrings acepta lista YAML o texto separado por comas (env).
func getStrings(v *viper.Viper, key string) []string {
	if !v.IsSet(key) {
		return nil
	}
	if s, ok := v.Get(key).(string); ok {
		var out []string
		for _, item := range strings.Split(s, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return v.GetStringSlice(key)
}
