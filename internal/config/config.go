package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Mail     MailConfig     `mapstructure:"mail"     validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	// ResetTokenLifetimeMinutes bounds how long an emailed password-reset
	// token stays valid.
	ResetTokenLifetimeMinutes int `mapstructure:"reset_token_lifetime_minutes" validate:"required,gt=0"`
}

// MailConfig contains settings for outbound email and the reset link target.
type MailConfig struct {
	SMTPHost string `mapstructure:"smtp_host" validate:"required"`
	SMTPPort int    `mapstructure:"smtp_port" validate:"required,gt=0,lt=65536"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"      validate:"required"`
	// ResetBaseURL is the frontend URL the reset link points at, e.g.
	// http://localhost:3000. The uid and token path segments are appended.
	ResetBaseURL string `mapstructure:"reset_base_url" validate:"required,url"`
}
