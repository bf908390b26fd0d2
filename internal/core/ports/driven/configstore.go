package driven

// Configuration keys understood by finconnect.
const (
	ConfigDataDir        = "data_dir"
	ConfigRepositoryKind = "repository.kind"
	ConfigRepository     = "repository.location"
	ConfigGitHubToken    = "repository.github_token"
	ConfigErrorsPath     = "errors_path"
	ConfigVerbose        = "log.verbose"
)

// ConfigStore provides access to application configuration.
// Implementations handle persistence (e.g., TOML files) and type conversion.
// Nested tables are exposed with dot-notation keys ("repository.kind").
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	// Returns the value and a boolean indicating if the key exists.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	// Returns empty string if key doesn't exist or isn't a string.
	GetString(key string) string

	// GetBool retrieves a boolean configuration value.
	// Returns false if key doesn't exist or isn't a boolean.
	GetBool(key string) bool

	// Set stores a configuration value.
	// The value is persisted immediately.
	Set(key string, value any) error

	// Load reads configuration from storage.
	Load() error

	// Path returns the configuration file path.
	Path() string
}
