package domain

// RepositoryKind selects how the module repository is reached.
type RepositoryKind string

// Available repository kinds.
const (
	// RepositoryFile reads the index from a local directory.
	RepositoryFile RepositoryKind = "file"

	// RepositoryHTTP reads the index from an HTTP(S) base URL.
	RepositoryHTTP RepositoryKind = "http"

	// RepositoryGitHub reads the index from a GitHub repository.
	RepositoryGitHub RepositoryKind = "github"
)

// IsValid returns true if the repository kind is recognised.
func (k RepositoryKind) IsValid() bool {
	switch k {
	case RepositoryFile, RepositoryHTTP, RepositoryGitHub:
		return true
	default:
		return false
	}
}

// Settings is the resolved application configuration.
// Values come from the config file and may be overridden by the environment.
type Settings struct {
	// DataDir holds the module cache (index database and manifests).
	DataDir string `env:"FINCONNECT_DATA_DIR"`

	// RepositoryKind selects the repository adapter.
	RepositoryKind RepositoryKind `env:"FINCONNECT_REPOSITORY_KIND"`

	// Repository locates the repository: a directory, a base URL, or owner/repo[@ref].
	Repository string `env:"FINCONNECT_REPOSITORY"`

	// GitHubToken authenticates GitHub repository reads, when set.
	GitHubToken string `env:"FINCONNECT_GITHUB_TOKEN"`

	// ErrorsPath is the JSON error-code table. Empty uses the built-in table.
	ErrorsPath string `env:"FINCONNECT_ERRORS_PATH"`

	// Verbose enables debug logging.
	Verbose bool `env:"FINCONNECT_VERBOSE"`
}
