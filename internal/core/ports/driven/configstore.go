package driven

import "time"

// ConfigStore provides access to application configuration.
// Keys are dot separated, e.g. "embedding.provider".
// Secrets are never stored here; they come from the environment.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string value. Empty if missing or not a string.
	GetString(key string) string

	// GetInt retrieves an integer value. 0 if missing or not an integer.
	GetInt(key string) int

	// GetBool retrieves a boolean value. False if missing or not a boolean.
	GetBool(key string) bool

	// GetDuration retrieves a duration written as a string such as "300ms".
	// 0 if missing or unparseable.
	GetDuration(key string) time.Duration

	// Set stores a configuration value and persists it immediately.
	Set(key string, value any) error

	// Keys returns every stored key, sorted.
	Keys() []string

	// Save persists the current configuration to storage.
	Save() error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
