package driven

// ConfigStore provides access to application configuration.
// Keys are dot-separated paths into the nested file ("limits.max_pages").
type ConfigStore interface {
	// Get retrieves a raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" when missing or not a string.
	GetString(key string) string

	// GetInt returns 0 when missing or not an integer.
	GetInt(key string) int

	// GetFloat returns 0 when missing or not numeric.
	GetFloat(key string) float64

	// GetBool returns false when missing or not a boolean.
	GetBool(key string) bool

	// Set stores a value and persists immediately.
	Set(key string, value any) error

	// Keys returns every set key, sorted.
	Keys() []string

	// Save persists the current configuration.
	Save() error

	// Load re-reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
