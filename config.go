package photoflow

import (
	"os"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config carries all process-scoped settings. Values come from an optional
// YAML file with environment variables taking precedence, so deployments can
// run from env alone.
type Config struct {
	Environment string `yaml:"environment"`
	Port        int    `yaml:"port"`

	Auth struct {
		SigningKey string `yaml:"signing_key"`
		// Token lifetime in hours.
		TokenExpiration int `yaml:"token_expiration"`
		// Cookie lifetime in days.
		CookieExpiration int    `yaml:"cookie_expiration"`
		Issuer           string `yaml:"issuer"`
	} `yaml:"auth"`

	Persistence struct {
		DSN string `yaml:"dsn"`
	} `yaml:"persistence"`

	Mailer struct {
		Endpoint    string `yaml:"endpoint"`
		APIKey      string `yaml:"api_key"`
		SenderName  string `yaml:"sender_name"`
		SenderEmail string `yaml:"sender_email"`
	} `yaml:"mailer"`

	Media struct {
		Endpoint       string `yaml:"endpoint"`
		Region         string `yaml:"region"`
		Bucket         string `yaml:"bucket"`
		AccessKey      string `yaml:"access_key"`
		SecretKey      string `yaml:"secret_key"`
		PublicBaseURL  string `yaml:"public_base_url"`
		DisableTLS     bool   `yaml:"disable_tls"`
		ForcePathStyle bool   `yaml:"force_path_style"`
	} `yaml:"media"`

	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`
}

// LoadConfig reads the YAML file at path (missing file is fine), layers env
// overrides, applies defaults, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		raw, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(raw, cfg); err != nil {
				return nil, errors.Wrap(err, errors.CategoryBadInput, "failed to parse config file")
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read config file")
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Environment, "APP_ENV")
	setInt(&c.Port, "PORT")

	setString(&c.Auth.SigningKey, "JWT_SECRET")
	setInt(&c.Auth.TokenExpiration, "JWT_EXPIRES_IN_HOURS")
	setInt(&c.Auth.CookieExpiration, "JWT_COOKIE_EXPIRES_IN_DAYS")
	setString(&c.Auth.Issuer, "JWT_ISSUER")

	setString(&c.Persistence.DSN, "DB_DSN")

	setString(&c.Mailer.Endpoint, "MAILER_ENDPOINT")
	setString(&c.Mailer.APIKey, "SENDINBLUE_API_KEY")
	setString(&c.Mailer.SenderName, "EMAIL_FROM_NAME")
	setString(&c.Mailer.SenderEmail, "EMAIL_FROM")

	setString(&c.Media.Endpoint, "S3_ENDPOINT")
	setString(&c.Media.Region, "S3_REGION")
	setString(&c.Media.Bucket, "S3_BUCKET")
	setString(&c.Media.AccessKey, "S3_ACCESS_KEY")
	setString(&c.Media.SecretKey, "S3_SECRET_KEY")
	setString(&c.Media.PublicBaseURL, "S3_PUBLIC_BASE_URL")
	setBool(&c.Media.DisableTLS, "S3_DISABLE_TLS")
	setBool(&c.Media.ForcePathStyle, "S3_FORCE_PATH_STYLE")

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				origins = append(origins, p)
			}
		}
		c.CORS.Origins = origins
	}
}

func (c *Config) applyDefaults() {
	if c.Environment == "" {
		c.Environment = EnvDevelopment
	}
	if c.Port == 0 {
		c.Port = 3000
	}
	if c.Auth.TokenExpiration == 0 {
		c.Auth.TokenExpiration = 24
	}
	if c.Auth.CookieExpiration == 0 {
		c.Auth.CookieExpiration = 1
	}
	if c.Auth.Issuer == "" {
		c.Auth.Issuer = "photoflow"
	}
	if c.Persistence.DSN == "" {
		c.Persistence.DSN = "file:photoflow.db?cache=shared&mode=rwc"
	}
	if c.Mailer.Endpoint == "" {
		c.Mailer.Endpoint = "https://api.sendinblue.com"
	}
	if c.Mailer.SenderName == "" {
		c.Mailer.SenderName = "PhotoFlow"
	}
	if c.Media.Region == "" {
		c.Media.Region = "us-east-1"
	}
	if len(c.CORS.Origins) == 0 {
		c.CORS.Origins = []string{"http://localhost:3000"}
	}
}

// Validate enforces the settings the process cannot run without.
func (c *Config) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(c,
			validation.Field(&c.Environment, validation.In(EnvDevelopment, EnvProduction)),
			validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		)
	}, "Invalid configuration")
}

// ValidateSecrets checks the settings only the real server needs; tests and
// tooling can run without them. Each nested section validates on its own
// struct: ozzo resolves fields against the struct it receives.
func (c *Config) ValidateSecrets() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		if err := validation.ValidateStruct(&c.Auth,
			validation.Field(&c.Auth.SigningKey, validation.Required, validation.Length(32, 0)),
		); err != nil {
			return err
		}

		return validation.ValidateStruct(&c.Mailer,
			validation.Field(&c.Mailer.APIKey, validation.Required),
			validation.Field(&c.Mailer.SenderEmail, validation.Required, is.Email),
		)
	}, "Missing required secrets")
}

// IsProduction reports whether the process runs with production hardening
// (secure cookies, opaque 500s).
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
