package config

// Build information, set from main
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// SetBuildFlags records the values injected at link time
func SetBuildFlags(version, commit, date string) {
	Version = version
	Commit = commit
	Date = date
}
