package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/Veraticus/lorekeeper/internal/common"
)

// Persistence modes.
const (
	PersistenceBackend = "backend"
	PersistenceSQLite  = "sqlite"
)

// Defaults applied when no configuration is present.
const (
	DefaultBackendURL = "http://127.0.0.1:8000"
	DefaultTimeout    = 5 * time.Minute
	DefaultLanguage   = "en"
	DefaultLogFile    = "$HOME/.local/share/lore/lore.log"
)

// Settings is the resolved runtime configuration.
type Settings struct {
	BackendURL  string        `validate:"required,url"`
	ProjectPath string        `validate:"required"`
	Language    string        `validate:"required,min=2"`
	Persistence string        `validate:"required,oneof=backend sqlite"`
	Theme       string        `validate:"omitempty,oneof=default catppuccin-mocha"`
	LogFile     string
	Timeout     time.Duration `validate:"gt=0"`
	Snapshots   bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", DefaultBackendURL)
	v.SetDefault("backend.timeout", DefaultTimeout)
	v.SetDefault("project.language", DefaultLanguage)
	v.SetDefault("persistence.mode", PersistenceBackend)
	v.SetDefault("persistence.snapshots", true)
	v.SetDefault("ui.theme", "default")
	v.SetDefault("logging.file", DefaultLogFile)
}

// Load reads Settings from v and validates them.
func Load(v *viper.Viper) (Settings, error) {
	s := Settings{
		BackendURL:  v.GetString("backend.url"),
		ProjectPath: ExpandPath(v.GetString("project.path")),
		Language:    v.GetString("project.language"),
		Persistence: v.GetString("persistence.mode"),
		Theme:       v.GetString("ui.theme"),
		LogFile:     ExpandPath(v.GetString("logging.file")),
		Timeout:     v.GetDuration("backend.timeout"),
		Snapshots:   v.GetBool("persistence.snapshots"),
	}

	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate validates the Settings using the validator.
func (s *Settings) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", common.ErrInvalidConfig, err)
	}
	return nil
}
