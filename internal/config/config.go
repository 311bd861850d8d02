// Package config loads the application configuration from an optional YAML
// file and EXPENSES_* environment variables.
package config

import "time"

// Config holds all application configuration. It is built once at startup and
// passed explicitly to the components that need it.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	OIDC     OIDCConfig     `mapstructure:"oidc"`
}

// ServerConfig contains HTTP listener and logging settings.
type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=json console"`
}

// DatabaseConfig selects and tunes the store.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"required,oneof=postgres memory"`
	URL             string        `mapstructure:"url" validate:"required_if=Driver postgres"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"gte=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// AuthConfig contains token and login settings.
type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetime time.Duration `mapstructure:"token_lifetime" validate:"gt=0"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	// LegacyHeader accepts the deprecated "Bearer <user id>" header.
	LegacyHeader     bool            `mapstructure:"legacy_header"`
	BootstrapManager BootstrapConfig `mapstructure:"bootstrap_manager"`
}

// BootstrapConfig names a manager account created when the user table is
// empty. Both fields empty disables seeding.
type BootstrapConfig struct {
	Username string `mapstructure:"username" validate:"required_with=Password"`
	Password string `mapstructure:"password" validate:"required_with=Username,omitempty,min=8"`
}

// OIDCConfig enables single sign-on for managers.
type OIDCConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	IssuerURL    string `mapstructure:"issuer_url" validate:"required_if=Enabled true,omitempty,url"`
	ClientID     string `mapstructure:"client_id" validate:"required_if=Enabled true"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURL  string `mapstructure:"redirect_url" validate:"required_if=Enabled true,omitempty,url"`
}
