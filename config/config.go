// Package config loads console settings from the environment, an optional
// .env file and command-line flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"accredify/apiclient"
)

// DefaultTemplateCode is the checklist template selected automatically on
// the PG regulations page.
const DefaultTemplateCode = "PMDC-PG-2023"

type Config struct {
	APIBase       string
	HTTPTimeout   time.Duration
	SessionCookie string
	SessionTTL    time.Duration
	TemplateCode  string
	LogLevel      string
	Dev           bool
}

// New returns a viper instance with defaults and environment bindings.
// Keys are read from ACCREDIFY_* variables; the API base also honours
// NEXT_PUBLIC_API_BASE.
func New() *viper.Viper {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	v.SetDefault("api_base", apiclient.DefaultBaseURL)
	v.SetDefault("http_timeout", time.Duration(0))
	v.SetDefault("session_cookie", "accredify_session")
	v.SetDefault("session_ttl", 7*24*time.Hour)
	v.SetDefault("checklist_template_code", DefaultTemplateCode)
	v.SetDefault("log_level", "info")
	v.SetDefault("dev", false)

	v.SetEnvPrefix("ACCREDIFY")
	v.AutomaticEnv()
	_ = v.BindEnv("api_base", "ACCREDIFY_API_BASE", "NEXT_PUBLIC_API_BASE")
	return v
}

// LoadDotEnv loads path into the process environment when it exists.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("config: stat %s: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// BindFlags registers the console flags on cmd and binds them into v.
func BindFlags(cmd *cobra.Command, v *viper.Viper) error {
	flags := cmd.PersistentFlags()
	flags.String("api-base", v.GetString("api_base"), "accreditation backend base URL")
	flags.String("log-level", v.GetString("log_level"), "log level (debug, info, warn, error)")
	if err := v.BindPFlag("api_base", flags.Lookup("api-base")); err != nil {
		return fmt.Errorf("config: bind api-base: %w", err)
	}
	if err := v.BindPFlag("log_level", flags.Lookup("log-level")); err != nil {
		return fmt.Errorf("config: bind log-level: %w", err)
	}
	return nil
}

// Load reads the current values out of v.
func Load(v *viper.Viper) Config {
	return Config{
		APIBase:       v.GetString("api_base"),
		HTTPTimeout:   v.GetDuration("http_timeout"),
		SessionCookie: v.GetString("session_cookie"),
		SessionTTL:    v.GetDuration("session_ttl"),
		TemplateCode:  v.GetString("checklist_template_code"),
		LogLevel:      v.GetString("log_level"),
		Dev:           v.GetBool("dev"),
	}
}
