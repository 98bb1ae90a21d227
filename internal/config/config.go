package config

import "time"

// Config holds client configuration values.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Account
	Email    string `mapstructure:"email" yaml:"email"`
	Password string `mapstructure:"password" yaml:"password"`

	// Device identity
	DeviceName string `mapstructure:"device_name" yaml:"device_name"`
	DeviceUUID string `mapstructure:"device_uuid" yaml:"device_uuid"`
	Language   string `mapstructure:"language" yaml:"language"`
	AppVersion string `mapstructure:"app_version" yaml:"app_version"`
	OSVersion  string `mapstructure:"os_version" yaml:"os_version"`

	// Servers
	AuthURL  string `mapstructure:"auth_url" yaml:"auth_url"`
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Connection
	EventBuffer      int           `mapstructure:"event_buffer" yaml:"event_buffer"`
	HandshakeTimeout time.Duration `mapstructure:"handshake_timeout" yaml:"handshake_timeout"`
	WriteTimeout     time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`

	// Credential store
	StorePath string `mapstructure:"store_path" yaml:"store_path"`
	StoreKey  string `mapstructure:"store_key" yaml:"store_key"`

	// Control API
	ControlAddr           string        `mapstructure:"control_addr" yaml:"control_addr"`
	ControlJWTSecret      string        `mapstructure:"control_jwt_secret" yaml:"control_jwt_secret"`
	ControlJWTIssuer      string        `mapstructure:"control_jwt_issuer" yaml:"control_jwt_issuer"`
	ControlJWTAudience    string        `mapstructure:"control_jwt_audience" yaml:"control_jwt_audience"`
	ControlAllowedOrigins []string      `mapstructure:"control_allowed_origins" yaml:"control_allowed_origins"`
	ReadHeaderTimeout     time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout       time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		LogLevel:              "info",
		DeviceName:            "TEST_DEVICE",
		Language:              "ko",
		AppVersion:            "3.4.7",
		OSVersion:             "10.0",
		AuthURL:               "https://katalk.kakao.com/win32",
		Endpoint:              "wss://ticket-loco.kakao.com/ws",
		EventBuffer:           256,
		HandshakeTimeout:      10 * time.Second,
		WriteTimeout:          10 * time.Second,
		StorePath:             "kakaosession.db",
		ControlAddr:           "127.0.0.1:8080",
		ControlJWTIssuer:      "kakaosession",
		ControlAllowedOrigins: []string{"http://localhost:3000"},
		ReadHeaderTimeout:     5 * time.Second,
		ShutdownTimeout:       5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	setString(&c.LogLevel, other.LogLevel)
	setString(&c.Email, other.Email)
	setString(&c.Password, other.Password)
	setString(&c.DeviceName, other.DeviceName)
	setString(&c.DeviceUUID, other.DeviceUUID)
	setString(&c.Language, other.Language)
	setString(&c.AppVersion, other.AppVersion)
	setString(&c.OSVersion, other.OSVersion)
	setString(&c.AuthURL, other.AuthURL)
	setString(&c.Endpoint, other.Endpoint)
	setString(&c.StorePath, other.StorePath)
	setString(&c.StoreKey, other.StoreKey)
	setString(&c.ControlAddr, other.ControlAddr)
	setString(&c.ControlJWTSecret, other.ControlJWTSecret)
	setString(&c.ControlJWTIssuer, other.ControlJWTIssuer)
	setString(&c.ControlJWTAudience, other.ControlJWTAudience)

	if other.EventBuffer != 0 {
		c.EventBuffer = other.EventBuffer
	}
	if other.HandshakeTimeout != 0 {
		c.HandshakeTimeout = other.HandshakeTimeout
	}
	if other.WriteTimeout != 0 {
		c.WriteTimeout = other.WriteTimeout
	}
	if len(other.ControlAllowedOrigins) > 0 {
		c.ControlAllowedOrigins = other.ControlAllowedOrigins
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
