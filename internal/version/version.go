// Package version holds build metadata set with
// -ldflags "-X github.com/kailas-cloud/pinsearch/internal/version.Version=...".
package version

//nolint:gochecknoglobals // written by the linker
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// UserAgent identifies pinsearch to search backends, e.g. "pinsearch/1.4.0 (abc123)".
func UserAgent() string {
	return "pinsearch/" + Version + " (" + Commit + ")"
}
