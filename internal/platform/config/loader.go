package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "voicelock-go/internal/platform/errors"
)

// Loader reads configuration from an optional yaml file layered over the
// built-in defaults, with a .env overlay for secrets.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      "config.yaml",
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file location.
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration. A missing config file is not an
// error; the defaults plus environment are a complete configuration.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using system environment")
		}
	}

	cfg := Default()
	path := ""

	data, err := os.ReadFile(l.path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig, "loader.parse",
				"failed to parse config file", err)
		}
		path = l.path
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, platformerrors.Wrap(platformerrors.KindConfig, "loader.read",
			"failed to read config file", err)
	}

	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Speech.APIKey = v
	}
	if v := os.Getenv("VOICELOCK_JWT_SECRET"); v != "" {
		cfg.Web.JWTSecret = v
	}
	if v := os.Getenv("VOICELOCK_ADMIN_PASS"); v != "" {
		cfg.Web.AdminPass = v
	}
	if v := os.Getenv("VOICELOCK_TOKEN_PORT"); v != "" {
		cfg.Token.PortName = v
	}
	if v := os.Getenv("VOICELOCK_PROFILE"); v != "" {
		cfg.Selected.Profile = v
	}
}

func validate(cfg *Config) error {
	if len(cfg.Profiles) == 0 {
		return platformerrors.New(platformerrors.KindConfig, "loader.validate",
			"at least one locale profile is required")
	}
	if cfg.Selected.Profile != "" {
		if _, ok := cfg.Profiles[cfg.Selected.Profile]; !ok {
			return platformerrors.New(platformerrors.KindConfig, "loader.validate",
				fmt.Sprintf("selected profile %q is not defined", cfg.Selected.Profile))
		}
	}
	if cfg.Biometric.SampleRate <= 0 || cfg.Biometric.CoeffCount <= 0 {
		return platformerrors.New(platformerrors.KindConfig, "loader.validate",
			"biometric sample_rate and coeff_count must be positive")
	}
	return nil
}
