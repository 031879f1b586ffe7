// Package config loads the manager's settings: built-in defaults, then an
// optional YAML file, then a .env file, then the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.yaml.in/yaml/v3"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
)

// Config is the complete runtime configuration.
type Config struct {
	Database     DatabaseConfig `yaml:"database"`
	Log          LogConfig      `yaml:"log"`
	Export       ExportConfig   `yaml:"export"`
	SavedQueries string         `yaml:"saved_queries_path" validate:"required"`
	HTTP         HTTPConfig     `yaml:"http"`
	Storage      StorageConfig  `yaml:"storage"`
}

// DatabaseConfig selects the engine and the connection target.
type DatabaseConfig struct {
	Driver         string        `yaml:"driver" validate:"dialect"`
	URL            string        `yaml:"url" validate:"required"`
	User           string        `yaml:"user"`
	Password       string        `yaml:"password"`
	Schema         string        `yaml:"schema" validate:"omitempty,identifier"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" validate:"gte=0"`
	QueryTimeout   time.Duration `yaml:"query_timeout" validate:"gte=0"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error disabled off"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type ExportConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr" validate:"required"`
}

// StorageConfig enables workbook uploads when Endpoint is set.
type StorageConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	AccessKey  string        `yaml:"access_key" validate:"required_with=Endpoint"`
	SecretKey  string        `yaml:"secret_key" validate:"required_with=Endpoint"`
	Bucket     string        `yaml:"bucket" validate:"required_with=Endpoint"`
	UseSSL     bool          `yaml:"use_ssl"`
	Region     string        `yaml:"region"`
	PresignTTL time.Duration `yaml:"presign_ttl" validate:"gte=0"`
}

// Default returns the built-in settings. The database URL has no default.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:         "postgres",
			ConnectTimeout: 10 * time.Second,
			QueryTimeout:   30 * time.Second,
		},
		Log:          LogConfig{Level: "info", Format: "json"},
		Export:       ExportConfig{Dir: "exports"},
		SavedQueries: "saved_queries.json",
		HTTP:         HTTPConfig{Addr: ":8080"},
		Storage:      StorageConfig{Bucket: "exports", PresignTTL: 24 * time.Hour},
	}
}

// Load builds the configuration. path names an optional YAML file and must
// exist when set. envFiles are loaded with godotenv before the environment
// is read; without any, ".env" in the working directory is used when it
// exists. Variables already set in the environment win over .env entries.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindValidation, "cannot read config file", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errs.Wrap(errs.ErrKindValidation, "failed to parse YAML config "+path, err)
		}
	}

	if len(envFiles) == 0 {
		if _, err := os.Stat(".env"); err == nil {
			envFiles = []string{".env"}
		}
	}
	if len(envFiles) > 0 {
		if err := godotenv.Load(envFiles...); err != nil {
			return nil, errs.Wrap(errs.ErrKindValidation, "cannot load env file", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dialect", func(fl validator.FieldLevel) bool {
		_, err := database.ParseDialect(fl.Field().String())
		return err == nil
	})
	_ = v.RegisterValidation("identifier", func(fl validator.FieldLevel) bool {
		return database.ValidIdentifier(fl.Field().String())
	})
	return v
}

// Validate checks every field constraint and reports all failures at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return errs.Wrap(errs.ErrKindValidation, "invalid configuration", err)
	}
	msgs := make([]string, len(verrs))
	for i, fe := range verrs {
		msgs[i] = fmt.Sprintf("%s fails %q", fe.Namespace(), fe.Tag())
	}
	return errs.New(errs.ErrKindValidation, "invalid configuration: "+strings.Join(msgs, "; "))
}

// DatabaseSettings converts to the connection settings. Schema stays empty when
// unset so the session picks the engine default.
func (c *Config) DatabaseSettings() (*database.Config, error) {
	d, err := database.ParseDialect(c.Database.Driver)
	if err != nil {
		return nil, err
	}
	return &database.Config{
		Dialect:        d,
		URL:            c.Database.URL,
		User:           c.Database.User,
		Password:       c.Database.Password,
		Schema:         c.Database.Schema,
		ConnectTimeout: c.Database.ConnectTimeout,
		QueryTimeout:   c.Database.QueryTimeout,
	}, nil
}

// Logger converts to logger settings writing to stderr.
func (c *Config) Logger() *logger.Config {
	lc := logger.DefaultConfig()
	lc.Level = c.Log.Level
	lc.Format = c.Log.Format
	return lc
}

// StorageSettings converts to object-store settings, or nil when uploads are off.
func (c *Config) StorageSettings() *filestore.Config {
	if c.Storage.Endpoint == "" {
		return nil
	}
	return &filestore.Config{
		Endpoint:   c.Storage.Endpoint,
		AccessKey:  c.Storage.AccessKey,
		SecretKey:  c.Storage.SecretKey,
		UseSSL:     c.Storage.UseSSL,
		Region:     c.Storage.Region,
		Bucket:     c.Storage.Bucket,
		PresignTTL: c.Storage.PresignTTL,
	}
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.URL, "DB_URL")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Schema, "DB_SCHEMA")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")
	setString(&cfg.Export.Dir, "EXPORT_DIR")
	setString(&cfg.SavedQueries, "SAVED_QUERIES_PATH")
	setString(&cfg.HTTP.Addr, "HTTP_ADDR")
	setString(&cfg.Storage.Endpoint, "MINIO_ENDPOINT")
	setString(&cfg.Storage.AccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.Storage.SecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.Storage.Bucket, "MINIO_BUCKET")
	setString(&cfg.Storage.Region, "MINIO_REGION")

	for key, dest := range map[string]*time.Duration{
		"DB_CONNECT_TIMEOUT": &cfg.Database.ConnectTimeout,
		"DB_QUERY_TIMEOUT":   &cfg.Database.QueryTimeout,
		"MINIO_PRESIGN_TTL":  &cfg.Storage.PresignTTL,
	} {
		if err := setDuration(dest, key); err != nil {
			return err
		}
	}
	if val := os.Getenv("MINIO_USE_SSL"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return errs.Newf(errs.ErrKindValidation, "MINIO_USE_SSL: invalid boolean %q", val)
		}
		cfg.Storage.UseSSL = b
	}
	return nil
}

func setString(dest *string, key string) {
	if val := os.Getenv(key); val != "" {
		*dest = val
	}
}

// setDuration accepts Go duration syntax or a bare number of seconds.
func setDuration(dest *time.Duration, key string) error {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	if secs, err := strconv.Atoi(val); err == nil {
		*dest = time.Duration(secs) * time.Second
		return nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return errs.Newf(errs.ErrKindValidation, "%s: invalid duration %q", key, val)
	}
	*dest = d
	return nil
}
