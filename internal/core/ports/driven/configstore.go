package driven

// ConfigStore is a persisted key/value view of the settings file.
// Keys are dot separated ("translation.provider"). Typed getters return the
// zero value when a key is absent or holds another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	// GetFloat widens integers.
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set updates a value and persists the file.
	Set(key string, value any) error
	Save() error
	Load() error

	Path() string

	// Keys lists every configured key, sorted.
	Keys() []string
}
