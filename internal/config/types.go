// SPDX-License-Identifier: MIT

package config

// Sections is the typed, namespaced configuration produced by Build. It holds
// only value types, so copies never alias each other.
//
// The `config` tag names the section or field as seen by the Accessor. Fields
// tagged ",derived" are computed from other fields and have no environment key.
type Sections struct {
	App       AppConfig       `config:"app"`
	Database  DatabaseConfig  `config:"database"`
	Auth      AuthConfig      `config:"auth"`
	Cache     CacheConfig     `config:"cache"`
	Telemetry TelemetryConfig `config:"telemetry"`
}

// AppConfig holds process-level settings.
type AppConfig struct {
	Env          string `config:"env"`
	Port         int    `config:"port"`
	APIPrefix    string `config:"apiPrefix"`
	LogLevel     string `config:"logLevel"`
	RateLimitRPM int    `config:"rateLimitRPM"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Host          string `config:"host"`
	Port          int    `config:"port"`
	Username      string `config:"username"`
	Password      string `config:"password"`
	Database      string `config:"database"`
	Schema        string `config:"schema"`
	Logging       bool   `config:"logging"`
	Synchronize   bool   `config:"synchronize"`
	MigrationsRun bool   `config:"migrationsRun"`

	// SSL is true exactly when app.env is "production".
	SSL bool `config:"ssl,derived"`
}

// AuthConfig holds JWT settings.
type AuthConfig struct {
	Secret    string `config:"secret"`
	ExpiresIn int    `config:"expiresIn"` // seconds
}

// CacheConfig holds Redis settings.
type CacheConfig struct {
	Host     string `config:"host"`
	Port     int    `config:"port"`
	Password string `config:"password"`
	DB       int    `config:"db"`
}

// TelemetryConfig holds OpenTelemetry exporter settings.
type TelemetryConfig struct {
	Enabled       bool   `config:"enabled"`
	Exporter      string `config:"exporter"`
	Endpoint      string `config:"endpoint"`
	SamplePercent int    `config:"samplePercent"`
}

// IsProduction reports whether the app runs in the production environment.
func (a AppConfig) IsProduction() bool {
	return a.Env == EnvProduction
}
