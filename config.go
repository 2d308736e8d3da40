package gatehouse

import "time"

// Config holds configuration for the Gatehouse engine.
type Config struct {
	// SuperAdminRole is the role name that bypasses all capability
	// checks. Defaults to "developer".
	SuperAdminRole string `json:"super_admin_role,omitempty"`

	// AdminRole is the role name that, together with SuperAdminRole,
	// grants coarse admin access. Defaults to "admin".
	AdminRole string `json:"admin_role,omitempty"`

	// Ranks orders role names for display precedence (lower rank wins).
	// Unranked roles sort after ranked ones in store order. The rank
	// table is display-only and never consulted for authorization.
	Ranks map[string]int `json:"ranks,omitempty"`

	// CacheTTL is the time-to-live passed to the cache for capability
	// results. Zero leaves the expiry to the cache's own default.
	CacheTTL time.Duration `json:"cache_ttl,omitempty"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		SuperAdminRole: "developer",
		AdminRole:      "admin",
		Ranks: map[string]int{
			"developer": 1,
			"admin":     2,
			"manager":   3,
			"user":      4,
		},
	}
}

// rank returns the display rank of a role name. Unranked names sort last.
func (c Config) rank(name string) int {
	if r, ok := c.Ranks[name]; ok {
		return r
	}
	return int(^uint(0) >> 1)
}
