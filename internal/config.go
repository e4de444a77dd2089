package internal

import (
	"fmt"
	"log/slog"
	"net/url"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/raido/internal/builder"
)

// Config represents the application configuration.
type Config struct {
	App   ApplicationConfig `yaml:"app"`
	Site  SiteConfig        `yaml:"site"`
	Build BuildConfig       `yaml:"build"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	return c.Build.Validate()
}

// BuildOptions maps the configuration onto one build invocation.
func (c *Config) BuildOptions() builder.Options {
	return builder.Options{
		ContentDir:      c.Build.ContentDir,
		LayoutsDir:      c.Build.LayoutsDir,
		StaticDir:       c.Build.StaticDir,
		OutputDir:       c.Build.OutputDir,
		SiteTitle:       c.Site.Title,
		SiteDescription: c.Site.Description,
		BaseURL:         c.Site.BaseURL,
	}
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds dev server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the dev server listen address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// SiteConfig holds site-wide values rendered into every page and the feed.
type SiteConfig struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	BaseURL     string `yaml:"base_url"`
}

// Validate validates the site configuration. BaseURL may be empty (links
// stay relative) but when set it must be an absolute URL.
func (c *SiteConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Title, validation.Required),
	); err != nil {
		return err
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || !u.IsAbs() {
			return fmt.Errorf("site: base_url %q is not an absolute URL", c.BaseURL)
		}
	}
	return nil
}

// BuildConfig holds the source and output directory layout.
type BuildConfig struct {
	ContentDir string `yaml:"content_dir"`
	LayoutsDir string `yaml:"layouts_dir"`
	StaticDir  string `yaml:"static_dir"`
	OutputDir  string `yaml:"output_dir"`
}

// Validate validates the build configuration. StaticDir is optional.
func (c *BuildConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.ContentDir, validation.Required),
		validation.Field(&c.LayoutsDir, validation.Required),
		validation.Field(&c.OutputDir, validation.Required),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 1313,
			},
		},
		Site: SiteConfig{
			Title: "My Raido Site",
		},
		Build: BuildConfig{
			ContentDir: "./content",
			LayoutsDir: "./layouts",
			StaticDir:  "./static",
			OutputDir:  "./public",
		},
	}
}
