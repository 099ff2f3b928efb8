package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	DirName           = "jobsh"
	ConfigurationName = "config.yaml"
	LogsDirName       = "session_logs"
)

const (
	ColorAlways = "always"
	ColorAuto   = "auto"
	ColorNever  = "never"
)

type Configuration struct {
	configFs afero.Fs

	Prompt         string `json:"prompt" validate:"required"`
	JobTableSize   int    `json:"job_table_size" validate:"gte=1,lte=4096"`
	SearchPath     bool   `json:"search_path"`
	Color          string `json:"color" validate:"oneof=always auto never"`
	LogLevel       string `json:"log_level" validate:"oneof=debug info warn error"`
	AppLog         string `json:"app_log" validate:"omitempty,excludes=/"`
	RecordSessions bool   `json:"record_sessions"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		c.configFs = afero.NewMemMapFs()
	}
	return c.configFs
}

// CreateSessionLog creates a transcript file with the given name.
func (c *Configuration) CreateSessionLog(name string) (afero.File, error) {
	if err := c.fs().MkdirAll(LogsDirName, 0700); err != nil {
		return nil, err
	}
	toCreate := filepath.Join(LogsDirName, name)
	return c.fs().Create(toCreate)
}

// OpenAppLog opens the application log in an append only state. It returns
// nil if logging is disabled.
func (c *Configuration) OpenAppLog() (afero.File, error) {
	if c.AppLog == "" {
		return nil, nil
	}
	return c.fs().OpenFile(c.AppLog, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

func (c *Configuration) ReadAppLog() (afero.File, error) {
	return c.fs().OpenFile(c.AppLog, os.O_RDONLY, 0600)
}

// Default returns the built-in configuration. It's used when no config
// directory exists, so the app log is disabled and session logs are kept in
// memory.
func Default() *Configuration {
	out := defaultConfig()
	out.AppLog = ""
	return out
}

// DefaultDir returns the per-user config directory, falling back to the
// working directory if the platform has none.
func DefaultDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "."
	}
	return filepath.Join(dir, DirName)
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
