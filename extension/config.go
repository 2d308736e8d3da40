package extension

// Config holds the Gatehouse extension configuration.
// Fields can be set programmatically via Option functions or loaded from
// YAML configuration files (under "extensions.gatehouse" or "gatehouse" keys).
type Config struct {
	// DisableRoutes prevents HTTP route registration.
	DisableRoutes bool `json:"disable_routes" mapstructure:"disable_routes" yaml:"disable_routes"`

	// DisableMigrate prevents auto-migration on start.
	DisableMigrate bool `json:"disable_migrate" mapstructure:"disable_migrate" yaml:"disable_migrate"`

	// AutoSeed populates the built-in roles and permission catalog on start.
	AutoSeed bool `json:"auto_seed" mapstructure:"auto_seed" yaml:"auto_seed"`

	// InitialSuperAdmin is a user ID granted the super-admin role during
	// seeding. Only honored when AutoSeed is true.
	InitialSuperAdmin string `json:"initial_super_admin" mapstructure:"initial_super_admin" yaml:"initial_super_admin"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{}
}
